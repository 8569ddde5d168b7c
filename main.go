package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"MedStore/internal/api"
	"MedStore/internal/config"
	"MedStore/internal/db"
	"MedStore/internal/mailer"
	"MedStore/internal/notify"
)

func main() {
	// --- Блок инициализации ---
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	if err := db.InitDB(); err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать базу данных: %v", err)
	}
	defer db.CloseDB()

	// Первичный аккаунт администратора (и ящик поддержки чата) создается
	// из переменных окружения, если его еще нет.
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			log.Println("Предупреждение: ADMIN_EMAIL задан без ADMIN_PASSWORD, администратор не создан.")
		} else {
			hash, errHash := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if errHash != nil {
				log.Fatalf("Критическая ошибка: не удалось хэшировать пароль администратора: %v", errHash)
			}
			if errSeed := db.EnsureAdminUser("Admin", email, string(hash)); errSeed != nil {
				log.Fatalf("Критическая ошибка: не удалось создать администратора: %v", errSeed)
			}
		}
	}

	notifier, err := notify.InitNotifier(cfg.TelegramToken, cfg.NotifyChatID, cfg.AppEnv == "dev")
	if err != nil {
		// Сервер работает и без Telegram: уведомления не критичны.
		log.Printf("Предупреждение: уведомления в Telegram отключены: %v", err)
		notifier = nil
	}

	var mail api.Mailer
	if m := mailer.New(cfg); m != nil {
		mail = m
	}
	var notifications api.Notifier
	if notifier != nil {
		notifications = notifier
	}

	// --- Настройка роутера и Middleware ---
	apiRouter := chi.NewRouter()

	// ГЛОБАЛЬНЫЕ MIDDLEWARES ДОЛЖНЫ ИДТИ ПЕРЕД api.SetupRoutes
	apiRouter.Use(middleware.Logger)
	apiRouter.Use(middleware.Recoverer)
	apiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	store := db.NewStore()
	handlers := api.NewHandlers(cfg, store, store, mail, notifications)
	api.SetupRoutes(apiRouter, handlers)

	// Обработка запроса иконки, чтобы избежать ошибки 404 в логах
	apiRouter.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	log.Printf("Запуск HTTP-сервера API магазина на порту %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, apiRouter); err != nil {
		log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
	}
}
