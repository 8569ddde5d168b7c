// Package chatclient - Go-клиент чата поддержки магазина: HTTP-вызовы API
// и фоновый опрос новых сообщений.
package chatclient

import (
	"encoding/json"
	"errors"
	"os"

	"MedStore/internal/constants"
)

// Session - учетные данные, с которыми клиент ходит в API.
// Передается явно при создании клиента: никакого неявного глобального
// состояния с двумя слотами хранения.
type Session struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

// IsAdmin сообщает, принадлежит ли сессия администратору.
func (s Session) IsAdmin() bool {
	return s.Role == constants.ROLE_ADMIN
}

// sessionFile - формат файла сохраненных учетных данных.
// Исторически файл держит два слота; при чтении приоритет у admin.
type sessionFile struct {
	Admin *Session `json:"admin,omitempty"`
	User  *Session `json:"user,omitempty"`
}

// ErrNoSession возвращается, когда в файле нет ни одной сессии с токеном.
var ErrNoSession = errors.New("сохраненная сессия не найдена")

// LoadSession читает сессию из файла path. Если сохранены обе сессии,
// возвращается административная.
func LoadSession(path string) (Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Session{}, err
	}

	var f sessionFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return Session{}, err
	}

	if f.Admin != nil && f.Admin.Token != "" {
		return *f.Admin, nil
	}
	if f.User != nil && f.User.Token != "" {
		return *f.User, nil
	}
	return Session{}, ErrNoSession
}

// SaveSession записывает сессию в свой слот файла path, не затирая второй.
func SaveSession(path string, s Session) error {
	var f sessionFile
	if raw, err := os.ReadFile(path); err == nil {
		// Существующий файл дополняем, а не перезаписываем целиком.
		json.Unmarshal(raw, &f)
	}

	if s.IsAdmin() {
		f.Admin = &s
	} else {
		f.User = &s
	}

	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0600)
}
