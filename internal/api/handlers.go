package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"MedStore/internal/constants"
)

// --- Абсолютный путь к хранилищу медиафайлов ---

var (
	mediaStoragePath string
	once             sync.Once
)

// initStoragePath инициализирует абсолютный путь к папке media_storage.
// Папка будет создана в той же директории, где находится исполняемый файл.
func initStoragePath() {
	once.Do(func() {
		executable, err := os.Executable()
		if err != nil {
			log.Fatalf("FATAL: Cannot get executable path: %v", err)
		}
		executableDir := filepath.Dir(executable)
		mediaStoragePath = filepath.Join(executableDir, "media_storage")

		for _, sub := range []string{constants.MEDIA_DIR_PRODUCTS, constants.MEDIA_DIR_TESTIMONIALS} {
			if err := os.MkdirAll(filepath.Join(mediaStoragePath, sub), os.ModePerm); err != nil {
				log.Fatalf("FATAL: Cannot create media storage directory: %v", err)
			}
		}
		log.Printf("Хранилище медиафайлов: %s", mediaStoragePath)
	})
}

// --- Вспомогательные функции для JSON-ответов ---

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeJSONError пишет ошибку в формате {"error": "..."} - так отвечают
// обработчики чата и каталога.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeValidationErrors пишет 422 с ошибками по полям,
// в формате {"success": false, "errors": {"field": ["сообщение"]}}.
func writeValidationErrors(w http.ResponseWriter, errors map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"success": false,
		"errors":  errors,
	})
}

// decodeJSONBody разбирает JSON-тело запроса в v.
func decodeJSONBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("некорректное тело запроса: %w", err)
	}
	return nil
}

// saveUploadedFiles сохраняет файлы multipart-поля field в подкаталог subdir
// хранилища под уникальными именами и возвращает относительные пути
// (например "products/<uuid>.png"). Форма должна быть уже разобрана.
func saveUploadedFiles(r *http.Request, field, subdir string) ([]string, error) {
	initStoragePath()

	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		// Клиенты на JS часто шлют массивы как "field[]".
		files = r.MultipartForm.File[field+"[]"]
	}
	if len(files) == 0 {
		return nil, nil
	}

	var saved []string
	for _, handler := range files {
		path, err := saveUploadedFile(handler, subdir)
		if err != nil {
			return saved, err
		}
		saved = append(saved, path)
	}
	return saved, nil
}

func saveUploadedFile(handler *multipart.FileHeader, subdir string) (string, error) {
	file, err := handler.Open()
	if err != nil {
		return "", fmt.Errorf("не удалось открыть загруженный файл: %w", err)
	}
	defer file.Close()

	ext := filepath.Ext(handler.Filename)
	uniqueFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	destPath := filepath.Join(mediaStoragePath, subdir, uniqueFilename)

	destFile, err := os.Create(destPath)
	if err != nil {
		log.Printf("saveUploadedFile: не удалось создать файл %s: %v", destPath, err)
		return "", err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, file); err != nil {
		log.Printf("saveUploadedFile: не удалось записать файл %s: %v", destPath, err)
		return "", err
	}
	return subdir + "/" + uniqueFilename, nil
}

// ServeMediaHandler отдает сохраненные медиафайлы по пути /storage/*.
func (h *Handlers) ServeMediaHandler(w http.ResponseWriter, r *http.Request) {
	initStoragePath()

	rel := strings.TrimPrefix(r.URL.Path, "/storage/")
	if rel == "" || strings.Contains(rel, "..") || strings.Contains(rel, "\\") {
		writeJSONError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	filePath := filepath.Join(mediaStoragePath, filepath.FromSlash(rel))
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filePath)
}

// GetUserProfile возвращает профиль пользователя, прошедшего аутентификацию.
func (h *Handlers) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "User context not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
