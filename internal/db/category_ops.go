package db

import (
	"database/sql"
	"log"

	"MedStore/internal/models"
)

// GetCategories возвращает все категории.
func GetCategories() ([]models.Category, error) {
	rows, err := DB.Query(`
        SELECT id, name, description, created_at, updated_at
        FROM categories ORDER BY id`)
	if err != nil {
		log.Printf("GetCategories: ошибка получения категорий: %v", err)
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		var description sql.NullString
		if errScan := rows.Scan(&c.ID, &c.Name, &description, &c.CreatedAt, &c.UpdatedAt); errScan != nil {
			log.Printf("GetCategories: ошибка сканирования категории: %v", errScan)
			continue
		}
		c.Description = description.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryByID извлекает категорию по id.
func GetCategoryByID(id int64) (models.Category, error) {
	var c models.Category
	var description sql.NullString
	err := DB.QueryRow(`
        SELECT id, name, description, created_at, updated_at
        FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name, &description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("GetCategoryByID: ошибка получения категории %d: %v", id, err)
		}
		return c, err
	}
	c.Description = description.String
	return c, nil
}

// CreateCategory создает категорию.
func CreateCategory(name, description string) (models.Category, error) {
	var id int64
	err := DB.QueryRow(`
        INSERT INTO categories (name, description, created_at, updated_at)
        VALUES ($1, $2, NOW(), NOW()) RETURNING id`, name, description).Scan(&id)
	if err != nil {
		log.Printf("CreateCategory: ошибка создания категории '%s': %v", name, err)
		return models.Category{}, err
	}
	return GetCategoryByID(id)
}

// UpdateCategory обновляет категорию.
func UpdateCategory(id int64, name, description string) (models.Category, error) {
	res, err := DB.Exec(`
        UPDATE categories SET name=$1, description=$2, updated_at=NOW() WHERE id=$3`,
		name, description, id)
	if err != nil {
		log.Printf("UpdateCategory: ошибка обновления категории %d: %v", id, err)
		return models.Category{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.Category{}, sql.ErrNoRows
	}
	return GetCategoryByID(id)
}

// DeleteCategory удаляет категорию.
func DeleteCategory(id int64) error {
	res, err := DB.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		log.Printf("DeleteCategory: ошибка удаления категории %d: %v", id, err)
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
