package db

import (
	"database/sql"
	"encoding/json"
	"log"

	"MedStore/internal/models"
)

// scanImages разбирает JSONB-колонку с массивом путей к изображениям.
// Старые записи могли хранить одиночную строку - это тоже принимается.
func scanImages(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var images []string
	if err := json.Unmarshal(raw, &images); err == nil {
		return images
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	log.Printf("scanImages: не удалось разобрать значение images: %s", string(raw))
	return []string{}
}

func scanProductRow(rows *sql.Rows) (models.Product, error) {
	var p models.Product
	var rawImages []byte
	var description sql.NullString
	var categoryID sql.NullInt64
	var catName, catDescription sql.NullString
	var catID sql.NullInt64

	err := rows.Scan(&p.ID, &p.Name, &p.Price, &description, &categoryID, &rawImages,
		&p.CreatedAt, &p.UpdatedAt, &catID, &catName, &catDescription)
	if err != nil {
		return p, err
	}
	p.Description = description.String
	p.CategoryID = categoryID.Int64
	p.Images = scanImages(rawImages)
	if catID.Valid {
		p.Category = &models.Category{ID: catID.Int64, Name: catName.String, Description: catDescription.String}
	}
	return p, nil
}

const productSelect = `
    SELECT p.id, p.name, p.price, p.description, p.category_id, p.images,
           p.created_at, p.updated_at, c.id, c.name, c.description
    FROM products p
    LEFT JOIN categories c ON c.id = p.category_id`

// GetProducts возвращает все товары; search фильтрует по имени и описанию.
func GetProducts(search string) ([]models.Product, error) {
	var rows *sql.Rows
	var err error
	if search != "" {
		rows, err = DB.Query(productSelect+`
            WHERE p.name ILIKE '%' || $1 || '%' OR p.description ILIKE '%' || $1 || '%'
            ORDER BY p.id`, search)
	} else {
		rows, err = DB.Query(productSelect + ` ORDER BY p.id`)
	}
	if err != nil {
		log.Printf("GetProducts: ошибка получения товаров (search '%s'): %v", search, err)
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, errScan := scanProductRow(rows)
		if errScan != nil {
			log.Printf("GetProducts: ошибка сканирования товара: %v", errScan)
			continue
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		log.Printf("GetProducts: ошибка после итерации по строкам: %v", err)
		return nil, err
	}
	return products, nil
}

// GetNewArrivals возвращает limit самых свежих товаров.
func GetNewArrivals(limit int) ([]models.Product, error) {
	rows, err := DB.Query(productSelect+` ORDER BY p.created_at DESC LIMIT $1`, limit)
	if err != nil {
		log.Printf("GetNewArrivals: ошибка получения новинок: %v", err)
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, errScan := scanProductRow(rows)
		if errScan != nil {
			log.Printf("GetNewArrivals: ошибка сканирования товара: %v", errScan)
			continue
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProductByID извлекает товар вместе с категорией.
func GetProductByID(id int64) (models.Product, error) {
	rows, err := DB.Query(productSelect+` WHERE p.id = $1`, id)
	if err != nil {
		log.Printf("GetProductByID: ошибка получения товара %d: %v", id, err)
		return models.Product{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return models.Product{}, err
		}
		return models.Product{}, sql.ErrNoRows
	}
	return scanProductRow(rows)
}

// CreateProduct создает товар. images - относительные пути сохраненных файлов.
func CreateProduct(name, price, description string, categoryID int64, images []string) (models.Product, error) {
	rawImages, _ := json.Marshal(images)
	var id int64
	err := DB.QueryRow(`
        INSERT INTO products (name, price, description, category_id, images, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        RETURNING id`, name, price, description, categoryID, rawImages).Scan(&id)
	if err != nil {
		log.Printf("CreateProduct: ошибка создания товара '%s': %v", name, err)
		return models.Product{}, err
	}
	log.Printf("Создан товар #%d '%s'.", id, name)
	return GetProductByID(id)
}

// UpdateProduct обновляет поля товара. Пустые значения означают "оставить
// как есть"; images=nil не трогает изображения.
func UpdateProduct(id int64, name, price, description string, categoryID int64, images []string) (models.Product, error) {
	current, err := GetProductByID(id)
	if err != nil {
		return models.Product{}, err
	}

	if name == "" {
		name = current.Name
	}
	if price == "" {
		price = current.Price
	}
	if description == "" {
		description = current.Description
	}
	if categoryID == 0 {
		categoryID = current.CategoryID
	}
	if images == nil {
		images = current.Images
	}
	rawImages, _ := json.Marshal(images)

	_, err = DB.Exec(`
        UPDATE products SET name=$1, price=$2, description=$3, category_id=$4, images=$5, updated_at=NOW()
        WHERE id=$6`, name, price, description, categoryID, rawImages, id)
	if err != nil {
		log.Printf("UpdateProduct: ошибка обновления товара %d: %v", id, err)
		return models.Product{}, err
	}
	return GetProductByID(id)
}

// DeleteProduct удаляет товар.
func DeleteProduct(id int64) error {
	res, err := DB.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		log.Printf("DeleteProduct: ошибка удаления товара %d: %v", id, err)
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	log.Printf("Товар #%d удален.", id)
	return nil
}
