package db

import (
	"database/sql"
	"encoding/json"
	"log"

	"MedStore/internal/models"
)

func scanTestimonialRow(rows *sql.Rows) (models.Testimonial, error) {
	var t models.Testimonial
	var email, designation sql.NullString
	var rawAvatar []byte
	err := rows.Scan(&t.ID, &t.Name, &email, &designation, &t.Message, &rawAvatar, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	t.Email = email.String
	t.Designation = designation.String
	t.Avatar = scanImages(rawAvatar)
	return t, nil
}

// GetTestimonials возвращает все отзывы.
func GetTestimonials() ([]models.Testimonial, error) {
	rows, err := DB.Query(`
        SELECT id, name, email, designation, message, avatar, created_at, updated_at
        FROM testimonials ORDER BY id`)
	if err != nil {
		log.Printf("GetTestimonials: ошибка получения отзывов: %v", err)
		return nil, err
	}
	defer rows.Close()

	var testimonials []models.Testimonial
	for rows.Next() {
		t, errScan := scanTestimonialRow(rows)
		if errScan != nil {
			log.Printf("GetTestimonials: ошибка сканирования отзыва: %v", errScan)
			continue
		}
		testimonials = append(testimonials, t)
	}
	return testimonials, rows.Err()
}

// GetTestimonialByID извлекает отзыв по id.
func GetTestimonialByID(id int64) (models.Testimonial, error) {
	rows, err := DB.Query(`
        SELECT id, name, email, designation, message, avatar, created_at, updated_at
        FROM testimonials WHERE id = $1`, id)
	if err != nil {
		log.Printf("GetTestimonialByID: ошибка получения отзыва %d: %v", id, err)
		return models.Testimonial{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return models.Testimonial{}, err
		}
		return models.Testimonial{}, sql.ErrNoRows
	}
	return scanTestimonialRow(rows)
}

// CreateTestimonial создает отзыв. avatars - пути сохраненных файлов.
func CreateTestimonial(name, email, designation, message string, avatars []string) (models.Testimonial, error) {
	if avatars == nil {
		avatars = []string{}
	}
	rawAvatar, _ := json.Marshal(avatars)
	var id int64
	err := DB.QueryRow(`
        INSERT INTO testimonials (name, email, designation, message, avatar, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id`,
		name, email, designation, message, rawAvatar).Scan(&id)
	if err != nil {
		log.Printf("CreateTestimonial: ошибка создания отзыва от '%s': %v", name, err)
		return models.Testimonial{}, err
	}
	return GetTestimonialByID(id)
}

// UpdateTestimonial обновляет отзыв. avatars=nil не трогает аватары.
func UpdateTestimonial(id int64, name, email, designation, message string, avatars []string) (models.Testimonial, error) {
	current, err := GetTestimonialByID(id)
	if err != nil {
		return models.Testimonial{}, err
	}
	if avatars == nil {
		avatars = current.Avatar
	}
	rawAvatar, _ := json.Marshal(avatars)

	_, err = DB.Exec(`
        UPDATE testimonials SET name=$1, email=$2, designation=$3, message=$4, avatar=$5, updated_at=NOW()
        WHERE id=$6`, name, email, designation, message, rawAvatar, id)
	if err != nil {
		log.Printf("UpdateTestimonial: ошибка обновления отзыва %d: %v", id, err)
		return models.Testimonial{}, err
	}
	return GetTestimonialByID(id)
}

// DeleteTestimonial удаляет отзыв.
func DeleteTestimonial(id int64) error {
	res, err := DB.Exec(`DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		log.Printf("DeleteTestimonial: ошибка удаления отзыва %d: %v", id, err)
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
