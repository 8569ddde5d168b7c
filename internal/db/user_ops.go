package db

import (
	"database/sql"
	"fmt"
	"log"

	"MedStore/internal/constants"
	"MedStore/internal/models"
)

// CreateUser создает нового пользователя. Email должен быть уникальным:
// конфликт возвращается как ошибка вызывающему коду (422 на уровне API).
func CreateUser(name, email, passwordHash, role string) (models.User, error) {
	var u models.User
	err := DB.QueryRow(`
        INSERT INTO users (name, email, password, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING id, name, email, password, role, created_at, updated_at`,
		name, email, passwordHash, role).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		log.Printf("CreateUser: ошибка создания пользователя %s: %v", email, err)
		return u, err
	}
	log.Printf("Зарегистрирован новый пользователь #%d (%s).", u.ID, u.Email)
	return u, nil
}

// GetUserByEmail извлекает пользователя по email.
// Возвращает sql.ErrNoRows, если пользователь не найден.
func GetUserByEmail(email string) (models.User, error) {
	var u models.User
	err := DB.QueryRow(`
        SELECT id, name, email, password, role, created_at, updated_at
        FROM users WHERE email = $1`, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, err
		}
		log.Printf("GetUserByEmail: ошибка получения пользователя %s: %v", email, err)
		return u, err
	}
	return u, nil
}

// GetUserByID извлекает пользователя по его id.
func GetUserByID(id int64) (models.User, error) {
	var u models.User
	err := DB.QueryRow(`
        SELECT id, name, email, password, role, created_at, updated_at
        FROM users WHERE id = $1`, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, err
		}
		log.Printf("GetUserByID: ошибка получения пользователя %d: %v", id, err)
		return u, err
	}
	return u, nil
}

// GetSupportAdmin возвращает аккаунт поддержки.
// Если preferredID задан (не 0), ищется именно этот администратор; иначе
// берется администратор с наименьшим id - детерминированный выбор вместо
// "первой попавшейся" записи. Если администраторов нет, возвращается
// sql.ErrNoRows.
func GetSupportAdmin(preferredID int64) (models.User, error) {
	var u models.User
	var err error
	if preferredID != 0 {
		err = DB.QueryRow(`
            SELECT id, name, email, password, role, created_at, updated_at
            FROM users WHERE id = $1 AND role = $2`, preferredID, constants.ROLE_ADMIN).Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
		if err == nil {
			return u, nil
		}
		if err != sql.ErrNoRows {
			log.Printf("GetSupportAdmin: ошибка получения администратора %d: %v", preferredID, err)
			return u, err
		}
		// Настроенный администратор не найден - откатываемся к выбору по id.
		log.Printf("GetSupportAdmin: настроенный SUPPORT_ADMIN_ID=%d не найден среди администраторов.", preferredID)
	}

	err = DB.QueryRow(`
        SELECT id, name, email, password, role, created_at, updated_at
        FROM users WHERE role = $1 ORDER BY id ASC LIMIT 1`, constants.ROLE_ADMIN).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, err
		}
		log.Printf("GetSupportAdmin: ошибка поиска администратора: %v", err)
		return u, err
	}
	return u, nil
}

// EnsureAdminUser создает администратора, если его еще нет (аналог сидера).
// Вызывается при старте, когда заданы ADMIN_EMAIL/ADMIN_PASSWORD.
func EnsureAdminUser(name, email, passwordHash string) error {
	var exists bool
	err := DB.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		log.Printf("EnsureAdminUser: ошибка проверки существования %s: %v", email, err)
		return err
	}
	if exists {
		return nil
	}
	_, err = CreateUser(name, email, passwordHash, constants.ROLE_ADMIN)
	if err != nil {
		return fmt.Errorf("не удалось создать администратора %s: %w", email, err)
	}
	log.Printf("Создан администратор %s.", email)
	return nil
}
