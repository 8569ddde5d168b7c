package models

import "time"

// ChatMessage представляет сообщение переписки клиента с администратором.
// Поля user_id/admin_id закреплены за ролями участников, а не за направлением:
// user_id - ВСЕГДА клиент (не-админ), admin_id - ВСЕГДА администратор.
// Автор определяется флагом is_admin. Канонический порядок хранения
// поддерживается на уровне API, поэтому читающим запросам не нужны
// "защитные" условия с перестановкой пары.
type ChatMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	AdminID   int64     `json:"admin_id"`
	Message   string    `json:"message"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Conversation - производная (не хранимая в БД) запись списка бесед администратора:
// один элемент на каждого клиента, с которым есть история переписки.
type Conversation struct {
	UserID             int64     `json:"user_id"`
	UserName           string    `json:"user_name"`
	LastMessage        string    `json:"last_message"`
	LastMessageTime    time.Time `json:"last_message_time"`
	LastMessageIsAdmin bool      `json:"last_message_is_admin"`
}
