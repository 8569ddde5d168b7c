package api

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"MedStore/internal/constants"
	"MedStore/internal/models"
)

// Обработчики чата клиент <-> администратор.
//
// Сообщения хранятся канонично: user_id - всегда клиент, admin_id - всегда
// администратор, is_admin помечает автора. Ящик поддержки один: это либо
// явно настроенный SUPPORT_ADMIN_ID, либо администратор с наименьшим id.

// sendChatRequest - тело запроса отправки сообщения.
type sendChatRequest struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id,omitempty"`
}

// SendChatMessage отправляет сообщение.
// Клиент пишет в ящик поддержки (user_id из тела игнорируется);
// администратор обязан указать user_id клиента-адресата.
func (h *Handlers) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	authUser, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	var req sendChatRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeValidationErrors(w, map[string][]string{"message": {"The message field is required."}})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeValidationErrors(w, map[string][]string{"message": {"The message field is required."}})
		return
	}

	admin, err := h.Users.GetSupportAdmin(h.Cfg.SupportAdminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "No admin available")
			return
		}
		log.Printf("SendChatMessage: ошибка поиска администратора: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "Failed to send message"})
		return
	}

	var userID, adminID int64
	isAdmin := authUser.IsAdmin()
	if isAdmin {
		if req.UserID == 0 {
			writeJSONError(w, http.StatusUnprocessableEntity, "user_id is required when admin sends message")
			return
		}
		target, errTarget := h.Users.GetUserByID(req.UserID)
		if errTarget != nil || target.IsAdmin() {
			writeValidationErrors(w, map[string][]string{"user_id": {"The selected user_id is invalid."}})
			return
		}
		userID = req.UserID
		adminID = authUser.ID
	} else {
		// user_id из тела игнорируется: клиент не может писать от чужого имени.
		userID = authUser.ID
		adminID = admin.ID
	}

	msg, err := h.Chat.AddChatMessage(userID, adminID, req.Message, isAdmin)
	if err != nil {
		log.Printf("SendChatMessage: ошибка сохранения сообщения: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "Failed to send message"})
		return
	}

	// Будим long-poll ожидания этой беседы.
	h.waiters.notify(userID)

	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "chat": msg})
}

// GetChatMessages возвращает страницу переписки.
// Администратор читает беседу клиента из пути; обычный пользователь всегда
// получает только свою беседу, каким бы ни было значение в пути.
// Параметры: page (окно с нового конца, по 20 сообщений), а также
// after_id + wait для long-poll ожидания новых сообщений.
func (h *Handlers) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	authUser, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	admin, err := h.Users.GetSupportAdmin(h.Cfg.SupportAdminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "No admin available")
			return
		}
		log.Printf("GetChatMessages: ошибка поиска администратора: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve messages")
		return
	}

	// В пути - id клиента беседы (для PUT/DELETE тот же сегмент занят id
	// сообщения, поэтому имя параметра общее).
	var partnerID int64
	if authUser.IsAdmin() {
		pathID, errParse := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if errParse != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		partnerID = pathID
	} else {
		// Самоограничение: путь не дает прочитать чужую переписку.
		partnerID = authUser.ID
	}

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if p, errPage := strconv.Atoi(v); errPage == nil && p > 0 {
			page = p
		}
	}

	// Long-poll: ждем сообщение новее after_id, но не дольше wait секунд.
	if afterStr := r.URL.Query().Get("after_id"); afterStr != "" {
		afterID, errAfter := strconv.ParseInt(afterStr, 10, 64)
		waitSec, _ := strconv.Atoi(r.URL.Query().Get("wait"))
		if errAfter == nil && waitSec > 0 {
			if waitSec > constants.CHAT_MAX_WAIT_SECONDS {
				waitSec = constants.CHAT_MAX_WAIT_SECONDS
			}
			h.waitForNewMessages(r, partnerID, admin.ID, afterID, time.Duration(waitSec)*time.Second)
		}
	}

	messages, err := h.Chat.GetMessagesBetween(partnerID, admin.ID, page, h.Cfg.ChatPageSize)
	if err != nil {
		log.Printf("GetChatMessages: ошибка получения сообщений беседы %d: %v", partnerID, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve messages")
		return
	}
	if messages == nil {
		messages = make([]models.ChatMessage, 0)
	}
	writeJSON(w, http.StatusOK, messages)
}

// waitForNewMessages блокирует запрос, пока в беседе не появится сообщение
// новее afterID, либо пока не истечет срок ожидания или соединение.
func (h *Handlers) waitForNewMessages(r *http.Request, userID, adminID, afterID int64, wait time.Duration) {
	deadline := time.Now().Add(wait)
	for {
		latest, err := h.Chat.GetLatestMessageID(userID, adminID)
		if err != nil || latest > afterID {
			return
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}

		ch := h.waiters.wait(userID)
		select {
		case <-ch:
			// Появилось новое сообщение - перечитываем на следующем витке.
		case <-time.After(remaining):
			h.waiters.cancel(userID, ch)
			return
		case <-r.Context().Done():
			h.waiters.cancel(userID, ch)
			return
		}
	}
}

// GetConversations возвращает список бесед администратора,
// отсортированный по времени последнего сообщения (свежие сверху).
func (h *Handlers) GetConversations(w http.ResponseWriter, r *http.Request) {
	authUser, ok := userFromContext(r)
	if !ok || !authUser.IsAdmin() {
		writeJSONError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	conversations, err := h.Chat.GetConversations(authUser.ID)
	if err != nil {
		log.Printf("GetConversations: ошибка получения списка бесед: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve conversations")
		return
	}
	if conversations == nil {
		conversations = make([]models.Conversation, 0)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": conversations})
}

// updateChatRequest - тело запроса редактирования сообщения.
type updateChatRequest struct {
	Message string `json:"message"`
}

// UpdateChatMessage редактирует текст сообщения.
// Разрешено автору (владельцу user_id) или администратору.
// created_at при редактировании не меняется.
func (h *Handlers) UpdateChatMessage(w http.ResponseWriter, r *http.Request) {
	authUser, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	var req updateChatRequest
	if errBody := decodeJSONBody(r, &req); errBody != nil || strings.TrimSpace(req.Message) == "" {
		writeValidationErrors(w, map[string][]string{"message": {"The message field is required."}})
		return
	}

	msg, err := h.Chat.GetChatMessageByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "Message not found")
			return
		}
		log.Printf("UpdateChatMessage: ошибка получения сообщения %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update message")
		return
	}

	if !authUser.IsAdmin() && msg.UserID != authUser.ID {
		writeJSONError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	updated, err := h.Chat.UpdateChatMessageText(id, req.Message)
	if err != nil {
		log.Printf("UpdateChatMessage: ошибка обновления сообщения %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update message")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteChatMessage безвозвратно удаляет сообщение.
// Разрешено автору (владельцу user_id) или администратору. Повторное
// удаление того же id отвечает 404, а не вторым успехом.
func (h *Handlers) DeleteChatMessage(w http.ResponseWriter, r *http.Request) {
	authUser, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	msg, err := h.Chat.GetChatMessageByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "Message not found")
			return
		}
		log.Printf("DeleteChatMessage: ошибка получения сообщения %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to delete message")
		return
	}

	if !authUser.IsAdmin() && msg.UserID != authUser.ID {
		writeJSONError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	if err := h.Chat.DeleteChatMessage(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "Message not found")
			return
		}
		log.Printf("DeleteChatMessage: ошибка удаления сообщения %d: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to delete message")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Message deleted"})
}
