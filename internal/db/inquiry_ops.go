package db

import (
	"log"

	"MedStore/internal/constants"
	"MedStore/internal/models"
)

// CreateInquiry сохраняет обращение по товару.
func CreateInquiry(name, email, message string, productID int64) (models.Inquiry, error) {
	var inq models.Inquiry
	err := DB.QueryRow(`
        INSERT INTO inquiries (name, email, message, product_id, status, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, name, email, message, product_id, status, created_at`,
		name, email, message, productID, constants.INQUIRY_STATUS_NEW).Scan(
		&inq.ID, &inq.Name, &inq.Email, &inq.Message, &inq.ProductID, &inq.Status, &inq.CreatedAt)
	if err != nil {
		log.Printf("CreateInquiry: ошибка сохранения обращения от %s: %v", email, err)
		return inq, err
	}
	log.Printf("Сохранено обращение #%d по товару %d.", inq.ID, productID)
	return inq, nil
}

// GetInquiries возвращает все обращения (для административного экспорта).
func GetInquiries() ([]models.Inquiry, error) {
	rows, err := DB.Query(`
        SELECT id, name, email, message, product_id, status, created_at
        FROM inquiries ORDER BY created_at DESC`)
	if err != nil {
		log.Printf("GetInquiries: ошибка получения обращений: %v", err)
		return nil, err
	}
	defer rows.Close()

	var inquiries []models.Inquiry
	for rows.Next() {
		var inq models.Inquiry
		errScan := rows.Scan(&inq.ID, &inq.Name, &inq.Email, &inq.Message, &inq.ProductID, &inq.Status, &inq.CreatedAt)
		if errScan != nil {
			log.Printf("GetInquiries: ошибка сканирования обращения: %v", errScan)
			continue
		}
		inquiries = append(inquiries, inq)
	}
	return inquiries, rows.Err()
}
