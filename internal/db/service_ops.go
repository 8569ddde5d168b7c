package db

import (
	"database/sql"
	"log"

	"MedStore/internal/models"
)

// GetServices возвращает список услуг.
func GetServices() ([]models.Service, error) {
	rows, err := DB.Query(`
        SELECT id, title, description, icon, created_at, updated_at
        FROM services ORDER BY id`)
	if err != nil {
		log.Printf("GetServices: ошибка получения услуг: %v", err)
		return nil, err
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var s models.Service
		var description, icon sql.NullString
		if errScan := rows.Scan(&s.ID, &s.Title, &description, &icon, &s.CreatedAt, &s.UpdatedAt); errScan != nil {
			log.Printf("GetServices: ошибка сканирования услуги: %v", errScan)
			continue
		}
		s.Description = description.String
		s.Icon = icon.String
		services = append(services, s)
	}
	return services, rows.Err()
}

// GetServiceByID извлекает услугу по id.
func GetServiceByID(id int64) (models.Service, error) {
	var s models.Service
	var description, icon sql.NullString
	err := DB.QueryRow(`
        SELECT id, title, description, icon, created_at, updated_at
        FROM services WHERE id = $1`, id).Scan(&s.ID, &s.Title, &description, &icon, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("GetServiceByID: ошибка получения услуги %d: %v", id, err)
		}
		return s, err
	}
	s.Description = description.String
	s.Icon = icon.String
	return s, nil
}

// CreateService создает услугу.
func CreateService(title, description, icon string) (models.Service, error) {
	var id int64
	err := DB.QueryRow(`
        INSERT INTO services (title, description, icon, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id`, title, description, icon).Scan(&id)
	if err != nil {
		log.Printf("CreateService: ошибка создания услуги '%s': %v", title, err)
		return models.Service{}, err
	}
	return GetServiceByID(id)
}

// UpdateService обновляет услугу.
func UpdateService(id int64, title, description, icon string) (models.Service, error) {
	res, err := DB.Exec(`
        UPDATE services SET title=$1, description=$2, icon=$3, updated_at=NOW() WHERE id=$4`,
		title, description, icon, id)
	if err != nil {
		log.Printf("UpdateService: ошибка обновления услуги %d: %v", id, err)
		return models.Service{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.Service{}, sql.ErrNoRows
	}
	return GetServiceByID(id)
}

// DeleteService удаляет услугу.
func DeleteService(id int64) error {
	res, err := DB.Exec(`DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		log.Printf("DeleteService: ошибка удаления услуги %d: %v", id, err)
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
