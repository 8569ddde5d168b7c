package api

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"MedStore/internal/db"
	"MedStore/internal/models"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListCategories возвращает все категории.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := db.GetCategories()
	if err != nil {
		log.Printf("API ListCategories: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	if categories == nil {
		categories = make([]models.Category, 0)
	}
	writeJSON(w, http.StatusOK, categories)
}

// ShowCategory возвращает категорию по id.
func (h *Handlers) ShowCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	category, err := db.GetCategoryByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Category not found"})
			return
		}
		log.Printf("API ShowCategory %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve category")
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// CreateCategory создает категорию.
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeValidationErrors(w, map[string][]string{"name": {"The name field is required."}})
		return
	}

	category, err := db.CreateCategory(strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		log.Printf("API CreateCategory: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// UpdateCategory обновляет категорию.
func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req categoryRequest
	if errBody := decodeJSONBody(r, &req); errBody != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeValidationErrors(w, map[string][]string{"name": {"The name field is required."}})
		return
	}

	category, err := db.UpdateCategory(id, strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Category not found"})
			return
		}
		log.Printf("API UpdateCategory %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// DeleteCategory удаляет категорию.
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := db.DeleteCategory(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Category not found"})
			return
		}
		log.Printf("API DeleteCategory %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}
