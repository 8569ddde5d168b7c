package api

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"MedStore/internal/constants"
	"MedStore/internal/db"
	"MedStore/internal/models"
	"MedStore/internal/utils"
)

// testimonialResponse - отзыв с абсолютными URL аватаров.
type testimonialResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Designation string   `json:"designation"`
	Message     string   `json:"message"`
	Avatar      []string `json:"avatar"`
}

func (h *Handlers) toTestimonialResponse(t models.Testimonial) testimonialResponse {
	return testimonialResponse{
		ID:          t.ID,
		Name:        t.Name,
		Email:       t.Email,
		Designation: t.Designation,
		Message:     t.Message,
		Avatar:      utils.NormalizeImageURLs(t.Avatar, h.Cfg.BaseURL),
	}
}

// testimonialFormInput читает поля отзыва из multipart-формы либо из JSON.
func testimonialFormInput(r *http.Request) (name, email, designation, message string, hasFiles bool, err error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var req struct {
			Name        string `json:"name"`
			Email       string `json:"email"`
			Designation string `json:"designation"`
			Message     string `json:"message"`
		}
		if errDecode := decodeJSONBody(r, &req); errDecode != nil {
			return "", "", "", "", false, errDecode
		}
		return req.Name, req.Email, req.Designation, req.Message, false, nil
	}

	if errParse := r.ParseMultipartForm(constants.MAX_UPLOAD_SIZE); errParse != nil {
		return "", "", "", "", false, errParse
	}
	return r.FormValue("name"), r.FormValue("email"), r.FormValue("designation"), r.FormValue("message"), true, nil
}

// ListTestimonials возвращает все отзывы.
func (h *Handlers) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	testimonials, err := db.GetTestimonials()
	if err != nil {
		log.Printf("API ListTestimonials: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve testimonials")
		return
	}

	response := make([]testimonialResponse, 0, len(testimonials))
	for _, t := range testimonials {
		response = append(response, h.toTestimonialResponse(t))
	}
	writeJSON(w, http.StatusOK, response)
}

// CreateTestimonial создает отзыв; аватар приходит в поле avatar формы.
func (h *Handlers) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	name, email, designation, message, hasFiles, err := testimonialFormInput(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	errs := map[string][]string{}
	if strings.TrimSpace(name) == "" {
		errs["name"] = append(errs["name"], "The name field is required.")
	}
	if strings.TrimSpace(message) == "" {
		errs["message"] = append(errs["message"], "The message field is required.")
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	var avatars []string
	if hasFiles {
		avatars, err = saveUploadedFiles(r, "avatar", constants.MEDIA_DIR_TESTIMONIALS)
		if err != nil {
			log.Printf("API CreateTestimonial: ошибка сохранения аватара: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "Could not save avatar")
			return
		}
	}

	testimonial, err := db.CreateTestimonial(strings.TrimSpace(name), email, designation, message, avatars)
	if err != nil {
		log.Printf("API CreateTestimonial: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to create testimonial")
		return
	}
	writeJSON(w, http.StatusCreated, h.toTestimonialResponse(testimonial))
}

// UpdateTestimonial обновляет отзыв; новый аватар заменяет старый.
func (h *Handlers) UpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid testimonial ID")
		return
	}

	name, email, designation, message, hasFiles, err := testimonialFormInput(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var avatars []string
	if hasFiles {
		avatars, err = saveUploadedFiles(r, "avatar", constants.MEDIA_DIR_TESTIMONIALS)
		if err != nil {
			log.Printf("API UpdateTestimonial: ошибка сохранения аватара: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "Could not save avatar")
			return
		}
	}

	testimonial, err := db.UpdateTestimonial(id, strings.TrimSpace(name), email, designation, message, avatars)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Testimonial not found"})
			return
		}
		log.Printf("API UpdateTestimonial %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update testimonial")
		return
	}
	writeJSON(w, http.StatusOK, h.toTestimonialResponse(testimonial))
}

// DeleteTestimonial удаляет отзыв.
func (h *Handlers) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid testimonial ID")
		return
	}

	if err := db.DeleteTestimonial(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Testimonial not found"})
			return
		}
		log.Printf("API DeleteTestimonial %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to delete testimonial")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Testimonial deleted successfully"})
}
