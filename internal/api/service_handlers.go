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

type serviceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ListServices возвращает список услуг для витрины.
func (h *Handlers) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := db.GetServices()
	if err != nil {
		log.Printf("API ListServices: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}
	if services == nil {
		services = make([]models.Service, 0)
	}
	writeJSON(w, http.StatusOK, services)
}

// ShowService возвращает услугу по id.
func (h *Handlers) ShowService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid service ID")
		return
	}

	service, err := db.GetServiceByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Service not found"})
			return
		}
		log.Printf("API ShowService %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve service")
		return
	}
	writeJSON(w, http.StatusOK, service)
}

// CreateService создает услугу.
func (h *Handlers) CreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeValidationErrors(w, map[string][]string{"title": {"The title field is required."}})
		return
	}

	service, err := db.CreateService(strings.TrimSpace(req.Title), req.Description, req.Icon)
	if err != nil {
		log.Printf("API CreateService: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to create service")
		return
	}
	writeJSON(w, http.StatusCreated, service)
}

// UpdateService обновляет услугу.
func (h *Handlers) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid service ID")
		return
	}

	var req serviceRequest
	if errBody := decodeJSONBody(r, &req); errBody != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeValidationErrors(w, map[string][]string{"title": {"The title field is required."}})
		return
	}

	service, err := db.UpdateService(id, strings.TrimSpace(req.Title), req.Description, req.Icon)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Service not found"})
			return
		}
		log.Printf("API UpdateService %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update service")
		return
	}
	writeJSON(w, http.StatusOK, service)
}

// DeleteService удаляет услугу.
func (h *Handlers) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid service ID")
		return
	}

	if err := db.DeleteService(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Service not found"})
			return
		}
		log.Printf("API DeleteService %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to delete service")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Service deleted successfully"})
}
