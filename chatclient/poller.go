package chatclient

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"MedStore/internal/constants"
	"MedStore/internal/models"
)

// DefaultPollInterval - период опроса новых сообщений.
const DefaultPollInterval = 3 * time.Second

// ErrSendInFlight возвращается при попытке отправить сообщение,
// пока предыдущая отправка еще не завершилась.
var ErrSendInFlight = errors.New("предыдущая отправка еще выполняется")

// Poller периодически перечитывает первую страницу активной беседы.
//
// Каждый запрос получает монотонно растущий порядковый номер; ответ
// применяется, только если он свежее последнего примененного и относится
// к текущей беседе. Запоздавший ответ (медленная сеть, смена беседы)
// молча отбрасывается и не затирает более новое состояние.
type Poller struct {
	client   *Client
	interval time.Duration

	// onMessages вызывается после каждого изменения списка сообщений,
	// onConversations - после обновления списка бесед администратора.
	onMessages      func([]models.ChatMessage)
	onConversations func([]models.Conversation)

	mu        sync.Mutex
	active    int64                // id клиента активной беседы; 0 - беседа не выбрана
	seq       int64                // номер последнего выданного запроса
	applied   int64                // номер последнего примененного ответа
	latest    []models.ChatMessage // первая (самая новая) страница
	older     []models.ChatMessage // догруженная история, старее latest
	page      int                  // глубина загруженной истории
	exhausted bool                 // страниц старее больше нет
	sending   bool

	conversations []models.Conversation

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewPoller создает опросчик поверх клиента. Обычному пользователю
// беседа назначается сразу (своя), администратор выбирает ее позже
// или получает первую из списка бесед автоматически.
func NewPoller(client *Client, interval time.Duration, onMessages func([]models.ChatMessage), onConversations func([]models.Conversation)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	p := &Poller{
		client:          client,
		interval:        interval,
		onMessages:      onMessages,
		onConversations: onConversations,
		page:            1,
		stopCh:          make(chan struct{}),
	}
	if !client.Session.IsAdmin() {
		p.active = client.Session.UserID
	}
	return p
}

// Start запускает цикл опроса. Блокирует до Stop или отмены контекста.
func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ticker.C:
			p.tick(ctx)
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop останавливает цикл опроса.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

func (p *Poller) tick(ctx context.Context) {
	if p.client.Session.IsAdmin() {
		p.refreshConversations(ctx)
	}
	if p.ActiveConversation() != 0 {
		p.refreshLatest(ctx)
	}
}

// refreshConversations обновляет список бесед администратора и выбирает
// первую, если активная беседа еще не назначена.
func (p *Poller) refreshConversations(ctx context.Context) {
	conversations, err := p.client.Conversations(ctx)
	if err != nil {
		log.Printf("chatclient: ошибка получения списка бесед: %v", err)
		return
	}

	p.mu.Lock()
	p.conversations = conversations
	autoSelect := p.active == 0 && len(conversations) > 0
	if autoSelect {
		p.selectLocked(conversations[0].UserID)
	}
	p.mu.Unlock()

	if p.onConversations != nil {
		p.onConversations(conversations)
	}
	if autoSelect {
		p.refreshLatest(ctx)
	}
}

// refreshLatest перечитывает первую страницу активной беседы.
func (p *Poller) refreshLatest(ctx context.Context) {
	p.mu.Lock()
	p.seq++
	reqSeq, reqConv := p.seq, p.active
	p.mu.Unlock()
	if reqConv == 0 {
		return
	}

	messages, err := p.client.Messages(ctx, reqConv, 1)
	if err != nil {
		log.Printf("chatclient: ошибка опроса беседы %d: %v", reqConv, err)
		return
	}

	p.mu.Lock()
	// Запоздавший или чужой ответ не применяем.
	if reqConv != p.active || reqSeq <= p.applied {
		p.mu.Unlock()
		return
	}
	p.applied = reqSeq
	p.latest = messages
	combined := p.combinedLocked()
	p.mu.Unlock()

	if p.onMessages != nil {
		p.onMessages(combined)
	}
}

// combinedLocked собирает полный список: история + свежая страница.
func (p *Poller) combinedLocked() []models.ChatMessage {
	combined := make([]models.ChatMessage, 0, len(p.older)+len(p.latest))
	combined = append(combined, p.older...)
	combined = append(combined, p.latest...)
	return combined
}

// selectLocked переключает активную беседу и сбрасывает ее состояние.
// Все запросы, выданные до переключения, становятся неактуальными.
func (p *Poller) selectLocked(userID int64) {
	p.active = userID
	p.latest = nil
	p.older = nil
	p.page = 1
	p.exhausted = false
	p.applied = p.seq
}

// SelectConversation переключает администратора на беседу клиента userID
// и сразу загружает ее первую страницу.
func (p *Poller) SelectConversation(ctx context.Context, userID int64) {
	p.mu.Lock()
	if p.active == userID {
		p.mu.Unlock()
		return
	}
	p.selectLocked(userID)
	p.mu.Unlock()

	p.refreshLatest(ctx)
}

// ActiveConversation возвращает id клиента активной беседы.
func (p *Poller) ActiveConversation() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Messages возвращает снимок текущего списка сообщений.
func (p *Poller) Messages() []models.ChatMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.combinedLocked()
}

// Conversations возвращает снимок списка бесед.
func (p *Poller) Conversations() []models.Conversation {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Conversation, len(p.conversations))
	copy(out, p.conversations)
	return out
}

// LoadOlder догружает следующую страницу истории и добавляет ее перед
// уже загруженными сообщениями. Когда приходит неполная страница,
// дальнейшие вызовы не делают запросов.
func (p *Poller) LoadOlder(ctx context.Context) error {
	p.mu.Lock()
	if p.active == 0 || p.exhausted {
		p.mu.Unlock()
		return nil
	}
	nextPage, conv := p.page+1, p.active
	p.mu.Unlock()

	batch, err := p.client.Messages(ctx, conv, nextPage)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if conv != p.active {
		// Пока грузили историю, беседа сменилась.
		p.mu.Unlock()
		return nil
	}
	p.page = nextPage
	if len(batch) < constants.CHAT_PAGE_SIZE {
		p.exhausted = true
	}
	p.older = append(batch, p.older...)
	combined := p.combinedLocked()
	p.mu.Unlock()

	if p.onMessages != nil {
		p.onMessages(combined)
	}
	return nil
}

// Send отправляет сообщение в активную беседу. Пока отправка выполняется,
// повторные вызовы отклоняются; после успеха первая страница перечитывается,
// при ошибке состояние сообщений не меняется.
func (p *Poller) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	p.mu.Lock()
	if p.sending {
		p.mu.Unlock()
		return models.ChatMessage{}, ErrSendInFlight
	}
	p.sending = true
	conv := p.active
	p.mu.Unlock()

	msg, err := p.client.Send(ctx, text, conv)

	p.mu.Lock()
	p.sending = false
	p.mu.Unlock()

	if err != nil {
		return models.ChatMessage{}, err
	}
	p.refreshLatest(ctx)
	return msg, nil
}
