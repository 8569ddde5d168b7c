package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"log"

	"github.com/google/uuid"

	"MedStore/internal/models"
)

// Токены доступа хранятся в виде SHA-256 хэша; клиенту выдается
// исходное значение один раз при логине. Контракт такой же, как у
// персональных токенов: bearer-токен разрешается ровно в одного
// пользователя, иначе запрос отклоняется.

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CreateAPIToken выпускает новый токен для пользователя и возвращает его
// открытое значение.
func CreateAPIToken(userID int64, name string) (string, error) {
	plain := uuid.New().String() + uuid.New().String()
	_, err := DB.Exec(`
        INSERT INTO api_tokens (user_id, name, token_hash, created_at)
        VALUES ($1, $2, $3, NOW())`, userID, name, hashToken(plain))
	if err != nil {
		log.Printf("CreateAPIToken: ошибка выпуска токена для пользователя %d: %v", userID, err)
		return "", err
	}
	log.Printf("Выпущен токен '%s' для пользователя %d.", name, userID)
	return plain, nil
}

// GetUserByToken разрешает bearer-токен в пользователя.
// Возвращает sql.ErrNoRows для неизвестного токена.
func GetUserByToken(token string) (models.User, error) {
	var u models.User
	err := DB.QueryRow(`
        SELECT u.id, u.name, u.email, u.password, u.role, u.created_at, u.updated_at
        FROM api_tokens t
        JOIN users u ON u.id = t.user_id
        WHERE t.token_hash = $1`, hashToken(token)).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, err
		}
		log.Printf("GetUserByToken: ошибка разрешения токена: %v", err)
		return u, err
	}

	// Отметка последнего использования не критична - ошибку только логируем.
	if _, errUpd := DB.Exec(`UPDATE api_tokens SET last_used_at = NOW() WHERE token_hash = $1`, hashToken(token)); errUpd != nil {
		log.Printf("GetUserByToken: не удалось обновить last_used_at: %v", errUpd)
	}
	return u, nil
}

// DeleteAPITokensForUser отзывает все токены пользователя (выход из системы).
func DeleteAPITokensForUser(userID int64) error {
	_, err := DB.Exec(`DELETE FROM api_tokens WHERE user_id = $1`, userID)
	if err != nil {
		log.Printf("DeleteAPITokensForUser: ошибка отзыва токенов пользователя %d: %v", userID, err)
		return err
	}
	return nil
}
