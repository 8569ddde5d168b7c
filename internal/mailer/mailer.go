package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"MedStore/internal/config"
)

// Mailer отправляет простые текстовые письма на ящик магазина.
// Отправка синхронная, в потоке запроса, без повторов - как и в
// исходном поведении контактной формы.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	to       string
}

// New создает Mailer из конфигурации. Если SMTP не настроен, возвращается
// nil - вызывающий код трактует это как "почта отключена".
func New(cfg *config.Config) *Mailer {
	if cfg.SMTPHost == "" || cfg.MailTo == "" {
		log.Println("Почта не настроена (SMTP_HOST/MAIL_TO), письма отправляться не будут.")
		return nil
	}
	from := cfg.MailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	port := cfg.SMTPPort
	if port == "" {
		port = "587"
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     port,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		to:       cfg.MailTo,
	}
}

// Send отправляет письмо с указанной темой и текстом.
func (m *Mailer) Send(subject, body string) error {
	if m == nil {
		return nil
	}

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + m.to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{m.to}, []byte(msg)); err != nil {
		log.Printf("Mailer.Send: ошибка отправки письма '%s': %v", subject, err)
		return fmt.Errorf("не удалось отправить письмо: %w", err)
	}
	log.Printf("Письмо '%s' отправлено на %s.", subject, m.to)
	return nil
}
