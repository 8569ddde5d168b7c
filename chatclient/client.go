package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"MedStore/internal/models"
)

// APIError - ошибка, которую вернул сервер.
// Message берется из тела ответа ({"error"}, {"message"} или первая
// ошибка валидации), чтобы показать пользователю то же, что видит веб.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API ответил %d: %s", e.Status, e.Message)
}

// Client - HTTP-клиент чата поддержки.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Session Session
}

// NewClient создает клиента для API по адресу baseURL от имени session.
func NewClient(baseURL string, session Session) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 40 * time.Second},
		Session: session,
	}
}

// do выполняет запрос с bearer-токеном сессии и разбирает ответ в out.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Session.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: extractErrorMessage(raw)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// extractErrorMessage достает человекочитаемое сообщение из тела ошибки.
func extractErrorMessage(raw []byte) string {
	var payload struct {
		Error   string              `json:"error"`
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
		for _, msgs := range payload.Errors {
			if len(msgs) > 0 {
				return msgs[0]
			}
		}
	}
	return strings.TrimSpace(string(raw))
}

// Send отправляет сообщение. Для администратора userID - клиент-адресат;
// для обычного пользователя значение игнорируется сервером.
func (c *Client) Send(ctx context.Context, message string, userID int64) (models.ChatMessage, error) {
	body := map[string]interface{}{"message": message}
	if c.Session.IsAdmin() && userID != 0 {
		body["user_id"] = userID
	}

	var resp struct {
		Chat models.ChatMessage `json:"chat"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/chat/send", body, &resp); err != nil {
		return models.ChatMessage{}, err
	}
	return resp.Chat, nil
}

// Messages возвращает страницу переписки с клиентом userID
// (обычный пользователь получает свою беседу независимо от userID).
func (c *Client) Messages(ctx context.Context, userID int64, page int) ([]models.ChatMessage, error) {
	path := "/api/chat/" + strconv.FormatInt(userID, 10)
	if page > 1 {
		path += "?page=" + strconv.Itoa(page)
	}
	var messages []models.ChatMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Edit меняет текст сообщения id.
func (c *Client) Edit(ctx context.Context, id int64, message string) (models.ChatMessage, error) {
	var updated models.ChatMessage
	err := c.do(ctx, http.MethodPut, "/api/chat/"+strconv.FormatInt(id, 10),
		map[string]string{"message": message}, &updated)
	return updated, err
}

// Delete безвозвратно удаляет сообщение id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/chat/"+strconv.FormatInt(id, 10), nil, nil)
}

// Conversations возвращает список бесед (только для администратора).
func (c *Client) Conversations(ctx context.Context) ([]models.Conversation, error) {
	var resp struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/conversations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}
