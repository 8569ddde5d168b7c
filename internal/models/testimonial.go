package models

import "time"

// Testimonial - отзыв клиента, отображаемый на витрине.
type Testimonial struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Designation string    `json:"designation"`
	Message     string    `json:"message"`
	Avatar      []string  `json:"avatar"` // пути к загруженным аватарам
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
