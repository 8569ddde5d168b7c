package api

import (
	"MedStore/internal/config"
	"MedStore/internal/models"
)

// UserStore - операции над пользователями и токенами, нужные API.
// Интерфейсы позволяют подменять хранилище в тестах обработчиков.
type UserStore interface {
	CreateUser(name, email, passwordHash, role string) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
	GetUserByID(id int64) (models.User, error)
	GetSupportAdmin(preferredID int64) (models.User, error)
	CreateAPIToken(userID int64, name string) (string, error)
	GetUserByToken(token string) (models.User, error)
	DeleteAPITokensForUser(userID int64) error
}

// ChatStore - операции хранилища сообщений чата.
type ChatStore interface {
	AddChatMessage(userID, adminID int64, message string, isAdmin bool) (models.ChatMessage, error)
	GetChatMessageByID(id int64) (models.ChatMessage, error)
	UpdateChatMessageText(id int64, message string) (models.ChatMessage, error)
	DeleteChatMessage(id int64) error
	GetMessagesBetween(userID, adminID int64, page, pageSize int) ([]models.ChatMessage, error)
	GetLatestMessageID(userID, adminID int64) (int64, error)
	GetConversations(adminID int64) ([]models.Conversation, error)
}

// Mailer отправляет письма на ящик магазина.
type Mailer interface {
	Send(subject, body string) error
}

// Notifier отправляет уведомления администратору (Telegram).
type Notifier interface {
	NotifyAdmin(text string)
}

// Handlers содержит зависимости обработчиков API.
type Handlers struct {
	Cfg      *config.Config
	Users    UserStore
	Chat     ChatStore
	Mail     Mailer
	Notifier Notifier

	waiters *chatWaiters
}

// NewHandlers собирает обработчики API с их зависимостями.
func NewHandlers(cfg *config.Config, users UserStore, chat ChatStore, mail Mailer, notifier Notifier) *Handlers {
	return &Handlers{
		Cfg:      cfg,
		Users:    users,
		Chat:     chat,
		Mail:     mail,
		Notifier: notifier,
		waiters:  newChatWaiters(),
	}
}
