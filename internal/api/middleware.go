// Файл: internal/api/middleware.go
package api

import (
	"context"
	"log"
	"net/http"
	"strings"

	"MedStore/internal/models"
)

// UserContextKey - ключ для сохранения данных пользователя в контексте запроса.
var UserContextKey = &contextKey{"User"}

type contextKey struct {
	name string
}

// AuthMiddleware проверяет bearer-токен из заголовка Authorization.
// Токен разрешается ровно в одного пользователя; иначе запрос отклоняется.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		user, err := h.Users.GetUserByToken(token)
		if err != nil {
			log.Printf("AuthMiddleware: токен не разрешился в пользователя: %v", err)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
			return
		}

		// Сохраняем пользователя в контексте запроса для последующих обработчиков
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleMiddleware проверяет, соответствует ли роль пользователя требуемой.
func RoleMiddleware(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := r.Context().Value(UserContextKey).(models.User)
			if !ok {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "User data not found in context"})
				return
			}
			if user.Role != requiredRole {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "Insufficient permissions"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// userFromContext извлекает аутентифицированного пользователя из контекста.
func userFromContext(r *http.Request) (models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(models.User)
	return user, ok
}
