package models

import "time"

// User represents a user account of the storefront.
// Роль хранится строкой: "user" или "admin" (см. constants).
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // bcrypt-хэш, наружу не отдается
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin сообщает, является ли пользователь администратором магазина.
func (u User) IsAdmin() bool {
	return u.Role == "admin"
}
