package models

import "time"

// Product - товар каталога медицинского оборудования.
// Изображения хранятся в БД как JSON-массив относительных путей
// (например "products/<uuid>.png"); абсолютные URL собираются при выдаче.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"` // цена хранится строкой, как в исходной схеме
	Description string    `json:"description"`
	CategoryID  int64     `json:"category_id"`
	Images      []string  `json:"images"`
	Category    *Category `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category - категория товаров.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
