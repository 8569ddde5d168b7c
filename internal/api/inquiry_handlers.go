package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"MedStore/internal/db"
	"MedStore/internal/utils"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type inquiryRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	ProductID int64  `json:"product_id"`
}

func validateContactFields(name, email, message string) map[string][]string {
	errs := map[string][]string{}
	if strings.TrimSpace(name) == "" {
		errs["name"] = append(errs["name"], "The name field is required.")
	}
	if _, ok := utils.ValidateEmail(email); !ok {
		errs["email"] = append(errs["email"], "The email must be a valid email address.")
	}
	if strings.TrimSpace(message) == "" {
		errs["message"] = append(errs["message"], "The message field is required.")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ContactMessage принимает сообщение с формы обратной связи и пересылает его
// администратору по почте и в Telegram. В БД такие сообщения не сохраняются.
func (h *Handlers) ContactMessage(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := validateContactFields(req.Name, req.Email, req.Message); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	body := fmt.Sprintf("Name: %s\nEmail: %s\n\n%s", req.Name, req.Email, req.Message)
	if h.Mail != nil {
		if err := h.Mail.Send("New Contact Message from Website", body); err != nil {
			log.Printf("ContactMessage: ошибка отправки письма: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "Failed to send message"})
			return
		}
	}
	if h.Notifier != nil {
		h.Notifier.NotifyAdmin(fmt.Sprintf("Новое сообщение с сайта от %s (%s):\n%s", req.Name, req.Email, req.Message))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Contact message sent successfully!"})
}

// CreateInquiry сохраняет обращение по конкретному товару и уведомляет
// администратора.
func (h *Handlers) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	var req inquiryRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := validateContactFields(req.Name, req.Email, req.Message)
	if req.ProductID == 0 {
		if errs == nil {
			errs = map[string][]string{}
		}
		errs["product_id"] = append(errs["product_id"], "The product_id field is required.")
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	product, err := db.GetProductByID(req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeValidationErrors(w, map[string][]string{"product_id": {"The selected product_id is invalid."}})
			return
		}
		log.Printf("CreateInquiry: ошибка проверки товара %d: %v", req.ProductID, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to submit inquiry")
		return
	}

	inquiry, err := db.CreateInquiry(strings.TrimSpace(req.Name), strings.ToLower(strings.TrimSpace(req.Email)), req.Message, req.ProductID)
	if err != nil {
		log.Printf("CreateInquiry: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to submit inquiry")
		return
	}

	// Уведомления - best effort, обращение уже сохранено.
	body := fmt.Sprintf("Product: %s\nName: %s\nEmail: %s\n\n%s", product.Name, req.Name, req.Email, req.Message)
	if h.Mail != nil {
		if errMail := h.Mail.Send("New Product Inquiry: "+product.Name, body); errMail != nil {
			log.Printf("CreateInquiry: ошибка отправки письма: %v", errMail)
		}
	}
	if h.Notifier != nil {
		h.Notifier.NotifyAdmin(fmt.Sprintf("Новое обращение по товару '%s' от %s (%s)", product.Name, req.Name, req.Email))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Inquiry submitted successfully!",
		"data":    inquiry,
	})
}

// ExportInquiries выгружает все обращения в XLSX-файл (для админки).
func (h *Handlers) ExportInquiries(w http.ResponseWriter, r *http.Request) {
	inquiries, err := db.GetInquiries()
	if err != nil {
		log.Printf("ExportInquiries: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to export inquiries")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inquiries"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Name", "Email", "Message", "Product ID", "Status", "Created At"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for row, inq := range inquiries {
		values := []interface{}{
			inq.ID, inq.Name, inq.Email, inq.Message, inq.ProductID, inq.Status,
			inq.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("inquiries_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(w); err != nil {
		log.Printf("ExportInquiries: ошибка записи XLSX: %v", err)
	}
}
