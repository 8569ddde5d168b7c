package api

import (
	"net/http"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"MedStore/internal/constants"
	"MedStore/internal/models"
)

func seedUserWithPassword(t *testing.T, store *fakeStore, email, password, role string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("не удалось хэшировать пароль: %v", err)
	}
	u, _ := store.CreateUser("Test User", email, string(hash), role)
	return u
}

func TestRegisterAndAuthenticate(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/register", "", map[string]string{
		"name":     "Новый клиент",
		"email":    "new@example.test",
		"password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("ожидался 201, получен %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decodeBody(t, w, &resp)
	if resp.Token == "" {
		t.Fatal("регистрация должна выдавать токен")
	}
	if resp.User.Role != constants.ROLE_USER {
		t.Fatalf("публичная регистрация должна давать роль user, получена %q", resp.User.Role)
	}

	// Выданный токен сразу работает.
	w = doJSON(t, r, http.MethodGet, "/api/user", resp.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("профиль по свежему токену: ожидался 200, получен %d", w.Code)
	}
	var profile models.User
	decodeBody(t, w, &profile)
	if profile.ID != resp.User.ID {
		t.Fatalf("токен разрешился в другого пользователя: %d != %d", profile.ID, resp.User.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, store := newTestRouter()
	seedUserWithPassword(t, store, "taken@example.test", "secret123", constants.ROLE_USER)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", map[string]string{
		"name":     "Дубль",
		"email":    "taken@example.test",
		"password": "secret123",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("ожидался 422, получен %d", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/register", "", map[string]string{
		"name":     "",
		"email":    "не email",
		"password": "123",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("ожидался 422, получен %d", w.Code)
	}

	var resp struct {
		Success bool                `json:"success"`
		Errors  map[string][]string `json:"errors"`
	}
	decodeBody(t, w, &resp)
	if resp.Success {
		t.Fatal("ожидался success=false")
	}
	for _, field := range []string{"name", "email", "password"} {
		if len(resp.Errors[field]) == 0 {
			t.Errorf("нет ошибки для поля %q", field)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r, store := newTestRouter()
	seedUserWithPassword(t, store, "client@example.test", "correct", constants.ROLE_USER)

	w := doJSON(t, r, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "client@example.test",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("ожидался 401, получен %d", w.Code)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "nobody@example.test",
		"password": "whatever",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("ожидался 401, получен %d", w.Code)
	}
}

func TestAdminLoginRejectsRegularUser(t *testing.T) {
	r, store := newTestRouter()
	seedUserWithPassword(t, store, "client@example.test", "secret123", constants.ROLE_USER)

	w := doJSON(t, r, http.MethodPost, "/api/admin/login", "", map[string]string{
		"email":    "client@example.test",
		"password": "secret123",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("ожидался 403, получен %d", w.Code)
	}
}

func TestAdminLoginSucceeds(t *testing.T) {
	r, store := newTestRouter()
	seedUserWithPassword(t, store, "admin@example.test", "secret123", constants.ROLE_ADMIN)

	w := doJSON(t, r, http.MethodPost, "/api/admin/login", "", map[string]string{
		"email":    "admin@example.test",
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("ожидался 200, получен %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &resp)
	if resp.Token == "" {
		t.Fatal("вход администратора должен выдавать токен")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	r, store := newTestRouter()
	user := seedUserWithPassword(t, store, "client@example.test", "secret123", constants.ROLE_USER)
	token := mustToken(store, user.ID)

	w := doJSON(t, r, http.MethodPost, "/api/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ожидался 200, получен %d", w.Code)
	}

	// Отозванный токен больше не работает.
	w = doJSON(t, r, http.MethodGet, "/api/user", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("после выхода ожидался 401, получен %d", w.Code)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/user", "мусорный-токен", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("ожидался 401, получен %d", w.Code)
	}
}
