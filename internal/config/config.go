// internal/config/config.go
package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string
	AppEnv      string
	Port        string

	// BaseURL - публичный адрес API; используется для сборки ссылок на
	// изображения (/storage/...) и ссылок в QR-кодах товаров.
	BaseURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// SupportAdminID - явный ID аккаунта поддержки. Если 0, используется
	// администратор с наименьшим id (детерминированный выбор вместо
	// "первой попавшейся" записи).
	SupportAdminID int64

	// ChatPageSize - размер страницы выдачи сообщений чата.
	ChatPageSize int

	// Почта для писем контактной формы и обращений по товарам.
	MailTo       string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	// Необязательные уведомления администратору в Telegram.
	TelegramToken string
	NotifyChatID  int64
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AppEnv:      os.Getenv("ENV"),
		Port:        os.Getenv("PORT"),
		BaseURL:     os.Getenv("BASE_URL"),

		MailTo:       os.Getenv("MAIL_TO"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     os.Getenv("SMTP_PORT"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),

		TelegramToken: os.Getenv("TELEGRAM_APITOKEN"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:" + cfg.Port
		log.Printf("Предупреждение: BASE_URL не установлен, используется %s.", cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	var err error
	if v := os.Getenv("SUPPORT_ADMIN_ID"); v != "" {
		cfg.SupportAdminID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("Предупреждение: не удалось прочитать SUPPORT_ADMIN_ID ('%s'): %v. Будет выбран администратор с наименьшим id.", v, err)
			cfg.SupportAdminID = 0
		}
	}

	cfg.ChatPageSize = 20
	if v := os.Getenv("CHAT_PAGE_SIZE"); v != "" {
		size, errParse := strconv.Atoi(v)
		if errParse != nil || size <= 0 || size > 200 {
			log.Printf("Предупреждение: некорректное значение CHAT_PAGE_SIZE ('%s'), используется 20.", v)
		} else {
			cfg.ChatPageSize = size
		}
	}

	if v := os.Getenv("NOTIFY_CHAT_ID"); v != "" {
		cfg.NotifyChatID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("Предупреждение: не удалось прочитать NOTIFY_CHAT_ID: %v. Уведомления в Telegram отключены.", err)
			cfg.NotifyChatID = 0
		}
	}

	if cfg.TelegramToken == "" {
		log.Println("Предупреждение: TELEGRAM_APITOKEN не установлен. Уведомления в Telegram отключены.")
	}
	if cfg.MailTo == "" {
		log.Println("Предупреждение: MAIL_TO не установлен. Письма контактной формы отправляться не будут.")
	}

	if cfg.DatabaseURL == "" {
		log.Println("Критическая ошибка: DATABASE_URL не установлен.")
	} else {
		parsedURL, parseErr := url.Parse(cfg.DatabaseURL)
		if parseErr != nil {
			log.Printf("Критическая ошибка: ошибка парсинга DATABASE_URL: %v", parseErr)
		} else {
			cfg.DBHost = parsedURL.Hostname()
			cfg.DBPort = parsedURL.Port()
			if cfg.DBPort == "" {
				cfg.DBPort = "5432"
			}
			cfg.DBUser = parsedURL.User.Username()
			cfg.DBPassword, _ = parsedURL.User.Password()
			cfg.DBName = strings.TrimPrefix(parsedURL.Path, "/")
		}
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}
