package models

import "time"

// Inquiry - обращение по конкретному товару с формы на странице товара.
// В отличие от контактной формы, обращение сохраняется в БД.
type Inquiry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	ProductID int64     `json:"product_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
