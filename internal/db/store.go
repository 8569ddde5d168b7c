package db

import "MedStore/internal/models"

// Store - тонкая обертка над функциями пакета, реализующая интерфейсы
// хранилищ из internal/api. Позволяет тестам подставлять свою реализацию.
type Store struct{}

func NewStore() *Store { return &Store{} }

// --- Пользователи и токены ---

func (s *Store) CreateUser(name, email, passwordHash, role string) (models.User, error) {
	return CreateUser(name, email, passwordHash, role)
}

func (s *Store) GetUserByEmail(email string) (models.User, error) {
	return GetUserByEmail(email)
}

func (s *Store) GetUserByID(id int64) (models.User, error) {
	return GetUserByID(id)
}

func (s *Store) GetSupportAdmin(preferredID int64) (models.User, error) {
	return GetSupportAdmin(preferredID)
}

func (s *Store) CreateAPIToken(userID int64, name string) (string, error) {
	return CreateAPIToken(userID, name)
}

func (s *Store) GetUserByToken(token string) (models.User, error) {
	return GetUserByToken(token)
}

func (s *Store) DeleteAPITokensForUser(userID int64) error {
	return DeleteAPITokensForUser(userID)
}

// --- Сообщения чата ---

func (s *Store) AddChatMessage(userID, adminID int64, message string, isAdmin bool) (models.ChatMessage, error) {
	return AddChatMessage(userID, adminID, message, isAdmin)
}

func (s *Store) GetChatMessageByID(id int64) (models.ChatMessage, error) {
	return GetChatMessageByID(id)
}

func (s *Store) UpdateChatMessageText(id int64, message string) (models.ChatMessage, error) {
	return UpdateChatMessageText(id, message)
}

func (s *Store) DeleteChatMessage(id int64) error {
	return DeleteChatMessage(id)
}

func (s *Store) GetMessagesBetween(userID, adminID int64, page, pageSize int) ([]models.ChatMessage, error) {
	return GetMessagesBetween(userID, adminID, page, pageSize)
}

func (s *Store) GetLatestMessageID(userID, adminID int64) (int64, error) {
	return GetLatestMessageID(userID, adminID)
}

func (s *Store) GetConversations(adminID int64) ([]models.Conversation, error) {
	return GetConversations(adminID)
}
