package utils

import (
	"regexp"
	"strings"
)

// localEmailRegex (не экспортируется) используется внутри ValidateEmail.
var localEmailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail проверяет и нормализует email-адрес.
// Возвращает адрес в нижнем регистре и признак корректности.
func ValidateEmail(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > 255 {
		return "", false
	}
	return email, localEmailRegex.MatchString(email)
}

// RequiredString проверяет обязательное строковое поле с ограничением длины.
func RequiredString(value string, maxLen int) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if maxLen > 0 && len(value) > maxLen {
		return "", false
	}
	return value, true
}
