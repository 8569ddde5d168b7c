package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// TelegramNotifier - обертка над Telegram Bot API для уведомлений
// администратора магазина: новые обращения, сообщения контактной формы.
// Бот используется только на отправку, обновления не читаются.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// InitNotifier инициализирует Telegram-уведомления.
// token - API токен бота, chatID - чат администратора.
// Если токен или chatID не заданы, возвращается (nil, nil):
// уведомления просто отключены, это не ошибка.
func InitNotifier(token string, chatID int64, debug bool) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Telegram Bot API: %w", err)
	}
	api.Debug = debug

	log.Printf("Уведомления: авторизован как аккаунт %s", api.Self.UserName)
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

// NotifyAdmin отправляет текстовое уведомление в чат администратора.
// Ошибка доставки только логируется: уведомление не должно ронять запрос.
func (n *TelegramNotifier) NotifyAdmin(text string) {
	if n == nil || n.api == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		log.Printf("NotifyAdmin: ошибка отправки уведомления в Telegram: %v", err)
	}
}
