package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"MedStore/internal/constants"
	"MedStore/internal/db"
	"MedStore/internal/models"
	"MedStore/internal/utils"
)

// productResponse - товар с абсолютными URL изображений.
type productResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Price       string           `json:"price"`
	Description string           `json:"description"`
	CategoryID  int64            `json:"category_id"`
	Images      []string         `json:"images"`
	Category    *models.Category `json:"category"`
}

// newArrivalResponse - сокращенная карточка для блока новинок.
type newArrivalResponse struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Price  string   `json:"price"`
	Images []string `json:"images"`
}

func (h *Handlers) toProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Images:      utils.NormalizeImageURLs(p.Images, h.Cfg.BaseURL),
		Category:    p.Category,
	}
}

// ListProducts возвращает товары; параметр search фильтрует по имени и описанию.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := db.GetProducts(r.URL.Query().Get("search"))
	if err != nil {
		log.Printf("API ListProducts: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	response := make([]productResponse, 0, len(products))
	for _, p := range products {
		response = append(response, h.toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}

// SearchProducts - вариант поиска с запросом в пути.
func (h *Handlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	products, err := db.GetProducts(query)
	if err != nil {
		log.Printf("API SearchProducts ('%s'): %v", query, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	response := make([]productResponse, 0, len(products))
	for _, p := range products {
		response = append(response, h.toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}

// NewArrivals возвращает четыре самых свежих товара.
func (h *Handlers) NewArrivals(w http.ResponseWriter, r *http.Request) {
	products, err := db.GetNewArrivals(4)
	if err != nil {
		log.Printf("API NewArrivals: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	response := make([]newArrivalResponse, 0, len(products))
	for _, p := range products {
		response = append(response, newArrivalResponse{
			ID:     p.ID,
			Name:   p.Name,
			Price:  p.Price,
			Images: utils.NormalizeImageURLs(p.Images, h.Cfg.BaseURL),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// ShowProduct возвращает товар по id.
func (h *Handlers) ShowProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := db.GetProductByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
			return
		}
		log.Printf("API ShowProduct %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(product))
}

// productFormInput читает поля товара из multipart-формы либо из JSON-тела.
// Админка шлет FormData (с файлами), но JSON тоже принимается.
func productFormInput(r *http.Request) (name, price, description string, categoryID int64, hasFiles bool, err error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var req struct {
			Name        string `json:"name"`
			Price       string `json:"price"`
			Description string `json:"description"`
			CategoryID  int64  `json:"category_id"`
		}
		if errDecode := decodeJSONBody(r, &req); errDecode != nil {
			return "", "", "", 0, false, errDecode
		}
		return req.Name, req.Price, req.Description, req.CategoryID, false, nil
	}

	if errParse := r.ParseMultipartForm(constants.MAX_UPLOAD_SIZE); errParse != nil {
		return "", "", "", 0, false, errParse
	}
	categoryID, _ = strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	return r.FormValue("name"), r.FormValue("price"), r.FormValue("description"), categoryID, true, nil
}

// CreateProduct создает товар. Изображения из поля images сохраняются
// в хранилище под uuid-именами.
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	name, price, description, categoryID, hasFiles, err := productFormInput(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	errs := map[string][]string{}
	if strings.TrimSpace(name) == "" {
		errs["name"] = append(errs["name"], "The name field is required.")
	}
	if strings.TrimSpace(price) == "" {
		errs["price"] = append(errs["price"], "The price field is required.")
	}
	if categoryID == 0 {
		errs["category_id"] = append(errs["category_id"], "The category_id field is required.")
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	var images []string
	if hasFiles {
		images, err = saveUploadedFiles(r, "images", constants.MEDIA_DIR_PRODUCTS)
		if err != nil {
			log.Printf("API CreateProduct: ошибка сохранения изображений: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "Could not save images")
			return
		}
	}
	if images == nil {
		images = []string{}
	}

	product, err := db.CreateProduct(name, price, description, categoryID, images)
	if err != nil {
		log.Printf("API CreateProduct: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(product))
}

// UpdateProduct обновляет товар; незаполненные поля остаются прежними.
// Новые изображения, если они переданы, заменяют старый набор.
func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	name, price, description, categoryID, hasFiles, err := productFormInput(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var images []string
	if hasFiles {
		images, err = saveUploadedFiles(r, "images", constants.MEDIA_DIR_PRODUCTS)
		if err != nil {
			log.Printf("API UpdateProduct: ошибка сохранения изображений: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "Could not save images")
			return
		}
	}

	product, err := db.UpdateProduct(id, name, price, description, categoryID, images)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
			return
		}
		log.Printf("API UpdateProduct %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "product": h.toProductResponse(product)})
}

// DeleteProduct удаляет товар.
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := db.DeleteProduct(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
			return
		}
		log.Printf("API DeleteProduct %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// ProductQR отдает PNG с QR-кодом ссылки на страницу товара
// (для печати этикеток и шаринга).
func (h *Handlers) ProductQR(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if _, err := db.GetProductByID(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
			return
		}
		log.Printf("API ProductQR %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	link := fmt.Sprintf("%s/products/%d", h.Cfg.BaseURL, id)
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Printf("API ProductQR %d: ошибка генерации QR-кода: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
