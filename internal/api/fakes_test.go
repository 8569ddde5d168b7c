package api

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"MedStore/internal/config"
	"MedStore/internal/constants"
	"MedStore/internal/models"
)

// fakeStore - хранилище в памяти, реализующее UserStore и ChatStore.
type fakeStore struct {
	mu         sync.Mutex
	users      map[int64]models.User
	tokens     map[string]int64
	messages   map[int64]models.ChatMessage
	nextUserID int64
	nextMsgID  int64
	clock      time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]models.User),
		tokens:   make(map[string]int64),
		messages: make(map[int64]models.ChatMessage),
		clock:    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// now выдает строго возрастающие метки времени, чтобы порядок
// сообщений в тестах был детерминированным.
func (f *fakeStore) now() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) CreateUser(name, email, passwordHash, role string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextUserID++
	u := models.User{
		ID:           f.nextUserID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    f.now(),
		UpdatedAt:    f.clock,
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) GetUserByEmail(email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, sql.ErrNoRows
}

func (f *fakeStore) GetUserByID(id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeStore) GetSupportAdmin(preferredID int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if preferredID != 0 {
		if u, ok := f.users[preferredID]; ok && u.IsAdmin() {
			return u, nil
		}
	}
	var admin models.User
	for _, u := range f.users {
		if !u.IsAdmin() {
			continue
		}
		if admin.ID == 0 || u.ID < admin.ID {
			admin = u
		}
	}
	if admin.ID == 0 {
		return models.User{}, sql.ErrNoRows
	}
	return admin, nil
}

func (f *fakeStore) CreateAPIToken(userID int64, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := fmt.Sprintf("token-%s-%d-%d", name, userID, len(f.tokens))
	f.tokens[token] = userID
	return token, nil
}

func (f *fakeStore) GetUserByToken(token string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[token]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return f.users[id], nil
}

func (f *fakeStore) DeleteAPITokensForUser(userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for token, id := range f.tokens {
		if id == userID {
			delete(f.tokens, token)
		}
	}
	return nil
}

func (f *fakeStore) AddChatMessage(userID, adminID int64, message string, isAdmin bool) (models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMsgID++
	m := models.ChatMessage{
		ID:        f.nextMsgID,
		UserID:    userID,
		AdminID:   adminID,
		Message:   message,
		IsAdmin:   isAdmin,
		CreatedAt: f.now(),
		UpdatedAt: f.clock,
	}
	f.messages[m.ID] = m
	return m, nil
}

func (f *fakeStore) GetChatMessageByID(id int64) (models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return models.ChatMessage{}, sql.ErrNoRows
	}
	return m, nil
}

func (f *fakeStore) UpdateChatMessageText(id int64, message string) (models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return models.ChatMessage{}, sql.ErrNoRows
	}
	m.Message = message
	m.UpdatedAt = f.now()
	f.messages[id] = m
	return m, nil
}

func (f *fakeStore) DeleteChatMessage(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.messages, id)
	return nil
}

// pairMessages возвращает сообщения пары в хронологическом порядке.
func (f *fakeStore) pairMessages(userID, adminID int64) []models.ChatMessage {
	var list []models.ChatMessage
	for _, m := range f.messages {
		if m.UserID == userID && m.AdminID == adminID {
			list = append(list, m)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (f *fakeStore) GetMessagesBetween(userID, adminID int64, page, pageSize int) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.pairMessages(userID, adminID)

	// Окна отсчитываются с нового конца: страница 1 - самые свежие.
	end := len(list) - (page-1)*pageSize
	if end <= 0 {
		return nil, nil
	}
	start := end - pageSize
	if start < 0 {
		start = 0
	}
	return list[start:end], nil
}

func (f *fakeStore) GetLatestMessageID(userID, adminID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest int64
	for _, m := range f.messages {
		if m.UserID == userID && m.AdminID == adminID && m.ID > latest {
			latest = m.ID
		}
	}
	return latest, nil
}

func (f *fakeStore) GetConversations(adminID int64) ([]models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lastByUser := make(map[int64]models.ChatMessage)
	for _, m := range f.messages {
		if m.AdminID != adminID || m.UserID == adminID {
			continue
		}
		last, ok := lastByUser[m.UserID]
		if !ok || m.CreatedAt.After(last.CreatedAt) {
			lastByUser[m.UserID] = m
		}
	}

	var conversations []models.Conversation
	for userID, m := range lastByUser {
		conversations = append(conversations, models.Conversation{
			UserID:             userID,
			UserName:           f.users[userID].Name,
			LastMessage:        m.Message,
			LastMessageTime:    m.CreatedAt,
			LastMessageIsAdmin: m.IsAdmin,
		})
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageTime.After(conversations[j].LastMessageTime)
	})
	return conversations, nil
}

func (f *fakeStore) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// newTestRouter собирает обработчики с фейковым хранилищем и полный роутер,
// чтобы тесты проходили через маршрутизацию и middleware.
func newTestRouter() (*chi.Mux, *fakeStore) {
	store := newFakeStore()
	cfg := &config.Config{
		BaseURL:      "http://example.test",
		ChatPageSize: constants.CHAT_PAGE_SIZE,
	}
	h := NewHandlers(cfg, store, store, nil, nil)
	r := chi.NewRouter()
	SetupRoutes(r, h)
	return r, store
}

// mustToken выдает токен для пользователя напрямую через хранилище.
func mustToken(store *fakeStore, userID int64) string {
	token, _ := store.CreateAPIToken(userID, "test-token")
	return token
}
