package api

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"MedStore/internal/constants"
)

// registerRequest - тело запроса регистрации.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest - тело запроса входа.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validateCredentials(email, password string) map[string][]string {
	errs := map[string][]string{}
	if strings.TrimSpace(email) == "" {
		errs["email"] = append(errs["email"], "The email field is required.")
	} else if !strings.Contains(email, "@") {
		errs["email"] = append(errs["email"], "The email must be a valid email address.")
	}
	if password == "" {
		errs["password"] = append(errs["password"], "The password field is required.")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Register регистрирует нового покупателя. Роль всегда "user":
// администраторов через публичную регистрацию создать нельзя.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeValidationErrors(w, map[string][]string{"body": {"Invalid request body."}})
		return
	}

	errs := validateCredentials(req.Email, req.Password)
	if strings.TrimSpace(req.Name) == "" {
		if errs == nil {
			errs = map[string][]string{}
		}
		errs["name"] = append(errs["name"], "The name field is required.")
	}
	if req.Password != "" && len(req.Password) < 6 {
		if errs == nil {
			errs = map[string][]string{}
		}
		errs["password"] = append(errs["password"], "The password must be at least 6 characters.")
	}
	if errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	if _, err := h.Users.GetUserByEmail(req.Email); err == nil {
		writeValidationErrors(w, map[string][]string{"email": {"The email has already been taken."}})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Register: ошибка хэширования пароля: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	user, err := h.Users.CreateUser(strings.TrimSpace(req.Name), strings.ToLower(strings.TrimSpace(req.Email)), string(hash), constants.ROLE_USER)
	if err != nil {
		log.Printf("Register: ошибка создания пользователя %s: %v", req.Email, err)
		writeJSONError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	token, err := h.Users.CreateAPIToken(user.ID, "user-token")
	if err != nil {
		log.Printf("Register: ошибка выпуска токена для %d: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user, "token": token})
}

// login - общая логика входа; adminOnly дополнительно требует роль admin.
func (h *Handlers) login(w http.ResponseWriter, r *http.Request, adminOnly bool) {
	var req loginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeValidationErrors(w, map[string][]string{"body": {"Invalid request body."}})
		return
	}
	if errs := validateCredentials(req.Email, req.Password); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.Users.GetUserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("login: ошибка поиска пользователя %s: %v", req.Email, err)
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	tokenName := "user-token"
	if adminOnly {
		if !user.IsAdmin() {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "Unauthorized"})
			return
		}
		tokenName = "admin-token"
	}

	token, err := h.Users.CreateAPIToken(user.ID, tokenName)
	if err != nil {
		log.Printf("login: ошибка выпуска токена для %d: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user, "token": token})
}

// Logout отзывает все токены пользователя.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "User context not found")
		return
	}
	if err := h.Users.DeleteAPITokensForUser(user.ID); err != nil {
		log.Printf("Logout: ошибка отзыва токенов пользователя %d: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Logout failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// UserLogin - вход покупателя.
func (h *Handlers) UserLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, false)
}

// AdminLogin - вход администратора; для остальных ролей отвечает 403.
func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, true)
}
