package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"MedStore/internal/constants"
	"MedStore/internal/models"
)

func testSession(role string) Session {
	return Session{UserID: 7, Name: "Тест", Role: role, Token: "test-token"}
}

func TestClientSendSetsAuthAndPath(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"chat":    models.ChatMessage{ID: 1, UserID: 7, Message: "привет"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testSession(constants.ROLE_USER))
	msg, err := c.Send(context.Background(), "привет", 0)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.ID != 1 || msg.Message != "привет" {
		t.Fatalf("неожиданный ответ: %+v", msg)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("неожиданный заголовок Authorization: %q", gotAuth)
	}
	if gotPath != "/api/chat/send" {
		t.Fatalf("неожиданный путь: %q", gotPath)
	}
	if _, ok := gotBody["user_id"]; ok {
		t.Fatal("обычный пользователь не должен отправлять user_id")
	}
}

func TestClientAdminSendIncludesUserID(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"chat": models.ChatMessage{ID: 2}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testSession(constants.ROLE_ADMIN))
	if _, err := c.Send(context.Background(), "ответ", 42); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotBody["user_id"] != float64(42) {
		t.Fatalf("администратор должен передавать user_id, тело: %v", gotBody)
	}
}

func TestClientSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "No admin available"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testSession(constants.ROLE_USER))
	_, err := c.Send(context.Background(), "привет", 0)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ожидалась APIError, получено %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "No admin available" {
		t.Fatalf("неожиданная ошибка: %+v", apiErr)
	}
}

func TestClientExtractsValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"errors":  map[string][]string{"message": {"The message field is required."}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testSession(constants.ROLE_USER))
	_, err := c.Send(context.Background(), "", 0)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ожидалась APIError, получено %v", err)
	}
	if apiErr.Message != "The message field is required." {
		t.Fatalf("не извлечено сообщение валидации: %q", apiErr.Message)
	}
}

func TestClientMessagesPagination(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]models.ChatMessage{{ID: 1}, {ID: 2}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testSession(constants.ROLE_USER))
	messages, err := c.Messages(context.Background(), 7, 3)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("ожидалось 2 сообщения, получено %d", len(messages))
	}
	if gotQuery != "page=3" {
		t.Fatalf("неожиданный query: %q", gotQuery)
	}
}

func TestClientConversations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/conversations" {
			t.Errorf("неожиданный путь: %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"conversations": []models.Conversation{{UserID: 5, UserName: "Клиент"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testSession(constants.ROLE_ADMIN))
	conversations, err := c.Conversations(context.Background())
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(conversations) != 1 || conversations[0].UserID != 5 {
		t.Fatalf("неожиданный список бесед: %+v", conversations)
	}
}

func TestClientDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/chat/15" {
			t.Errorf("неожиданный запрос: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "Message deleted"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testSession(constants.ROLE_USER))
	if err := c.Delete(context.Background(), 15); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
