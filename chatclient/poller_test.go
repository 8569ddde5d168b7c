package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"MedStore/internal/constants"
	"MedStore/internal/models"
)

// chatServer - управляемый тестовый сервер чата: отдает заранее
// подготовленные страницы и считает запросы.
type chatServer struct {
	srv      *httptest.Server
	requests int64
	// pages[userID][page] - содержимое страниц беседы.
	pages map[int64]map[int][]models.ChatMessage
	// block, если не nil, задерживает ответы беседы blockUser до закрытия.
	block     chan struct{}
	blockUser int64
}

func newChatServer(t *testing.T) *chatServer {
	cs := &chatServer{pages: make(map[int64]map[int][]models.ChatMessage)}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&cs.requests, 1)

		if r.URL.Path == "/api/conversations" {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"conversations": []models.Conversation{
					{UserID: 1, UserName: "Первый"},
					{UserID: 2, UserName: "Второй"},
				},
			})
			return
		}

		userID, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/chat/"), 10, 64)
		page := 1
		if v := r.URL.Query().Get("page"); v != "" {
			page, _ = strconv.Atoi(v)
		}

		if cs.block != nil && userID == cs.blockUser {
			<-cs.block
		}

		messages := cs.pages[userID][page]
		if messages == nil {
			messages = []models.ChatMessage{}
		}
		json.NewEncoder(w).Encode(messages)
	}))
	t.Cleanup(cs.srv.Close)
	return cs
}

func (cs *chatServer) setPage(userID int64, page int, messages []models.ChatMessage) {
	if cs.pages[userID] == nil {
		cs.pages[userID] = make(map[int][]models.ChatMessage)
	}
	cs.pages[userID][page] = messages
}

func (cs *chatServer) requestCount() int64 {
	return atomic.LoadInt64(&cs.requests)
}

func makeMessages(userID int64, texts ...string) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(texts))
	for i, text := range texts {
		out = append(out, models.ChatMessage{ID: int64(i + 1), UserID: userID, Message: text})
	}
	return out
}

func TestPollerUserRefreshesOwnConversation(t *testing.T) {
	cs := newChatServer(t)
	cs.setPage(7, 1, makeMessages(7, "вопрос", "ответ"))

	c := NewClient(cs.srv.URL, testSession(constants.ROLE_USER))
	p := NewPoller(c, time.Hour, nil, nil)

	p.refreshLatest(context.Background())

	messages := p.Messages()
	if len(messages) != 2 {
		t.Fatalf("ожидалось 2 сообщения, получено %d", len(messages))
	}
	if messages[0].Message != "вопрос" {
		t.Fatalf("неожиданный порядок: %+v", messages)
	}
}

func TestPollerAdminAutoSelectsFirstConversation(t *testing.T) {
	cs := newChatServer(t)
	cs.setPage(1, 1, makeMessages(1, "сообщение первого клиента"))

	admin := testSession(constants.ROLE_ADMIN)
	c := NewClient(cs.srv.URL, admin)
	p := NewPoller(c, time.Hour, nil, nil)

	p.tick(context.Background())

	if got := p.ActiveConversation(); got != 1 {
		t.Fatalf("должна выбраться первая беседа, выбрана %d", got)
	}
	messages := p.Messages()
	if len(messages) != 1 || messages[0].Message != "сообщение первого клиента" {
		t.Fatalf("первая страница выбранной беседы не загрузилась: %+v", messages)
	}
}

func TestPollerLoadOlderPrependsAndStops(t *testing.T) {
	cs := newChatServer(t)
	page1 := make([]models.ChatMessage, constants.CHAT_PAGE_SIZE)
	for i := range page1 {
		page1[i] = models.ChatMessage{ID: int64(100 + i), UserID: 7, Message: fmt.Sprintf("новое %d", i)}
	}
	cs.setPage(7, 1, page1)
	// Вторая страница короткая - истории старее нет.
	cs.setPage(7, 2, makeMessages(7, "старое 1", "старое 2"))

	c := NewClient(cs.srv.URL, testSession(constants.ROLE_USER))
	p := NewPoller(c, time.Hour, nil, nil)
	p.refreshLatest(context.Background())

	if err := p.LoadOlder(context.Background()); err != nil {
		t.Fatalf("LoadOlder: %v", err)
	}
	messages := p.Messages()
	if len(messages) != constants.CHAT_PAGE_SIZE+2 {
		t.Fatalf("ожидалось %d сообщений, получено %d", constants.CHAT_PAGE_SIZE+2, len(messages))
	}
	if messages[0].Message != "старое 1" {
		t.Fatalf("история должна вставать перед свежими сообщениями, первым идет %q", messages[0].Message)
	}

	// Короткая страница исчерпала историю: новых запросов быть не должно.
	before := cs.requestCount()
	if err := p.LoadOlder(context.Background()); err != nil {
		t.Fatalf("повторный LoadOlder: %v", err)
	}
	if cs.requestCount() != before {
		t.Fatal("после короткой страницы LoadOlder не должен ходить в сеть")
	}
}

func TestPollerDiscardsStaleResponseAfterSwitch(t *testing.T) {
	cs := newChatServer(t)
	cs.setPage(1, 1, makeMessages(1, "беседа один"))
	cs.setPage(2, 1, makeMessages(2, "беседа два"))
	cs.block = make(chan struct{})
	cs.blockUser = 1

	admin := testSession(constants.ROLE_ADMIN)
	c := NewClient(cs.srv.URL, admin)
	p := NewPoller(c, time.Hour, nil, nil)

	// Медленный запрос беседы 1 висит, пока не откроем канал.
	p.mu.Lock()
	p.active = 1
	p.mu.Unlock()
	done := make(chan struct{})
	go func() {
		p.refreshLatest(context.Background())
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)

	// Пока ответ в пути, администратор переключается на беседу 2.
	p.SelectConversation(context.Background(), 2)

	// Теперь медленный ответ приходит - и должен быть отброшен.
	close(cs.block)
	<-done

	messages := p.Messages()
	if len(messages) != 1 || messages[0].Message != "беседа два" {
		t.Fatalf("запоздавший ответ затер состояние: %+v", messages)
	}
	if got := p.ActiveConversation(); got != 2 {
		t.Fatalf("активной должна остаться беседа 2, активна %d", got)
	}
}

func TestPollerSendInFlightGuard(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chat/send" {
			<-release
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{"chat": models.ChatMessage{ID: 1, Message: "ок"}})
			return
		}
		json.NewEncoder(w).Encode([]models.ChatMessage{{ID: 1, Message: "ок"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testSession(constants.ROLE_USER))
	p := NewPoller(c, time.Hour, nil, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := p.Send(context.Background(), "первое")
		firstDone <- err
	}()
	time.Sleep(50 * time.Millisecond)

	// Пока первая отправка не завершилась, вторая отклоняется.
	if _, err := p.Send(context.Background(), "второе"); !errors.Is(err, ErrSendInFlight) {
		t.Fatalf("ожидалась ErrSendInFlight, получено %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("первая отправка должна была пройти: %v", err)
	}

	// После успеха первая страница перечитана.
	messages := p.Messages()
	if len(messages) != 1 || messages[0].Message != "ок" {
		t.Fatalf("после отправки первая страница не обновилась: %+v", messages)
	}
}

func TestPollerSendFailureKeepsState(t *testing.T) {
	cs := newChatServer(t)
	cs.setPage(7, 1, makeMessages(7, "существующее"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chat/send" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "No admin available"})
			return
		}
		json.NewEncoder(w).Encode(makeMessages(7, "существующее"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testSession(constants.ROLE_USER))
	p := NewPoller(c, time.Hour, nil, nil)
	p.refreshLatest(context.Background())
	before := p.Messages()

	if _, err := p.Send(context.Background(), "не дойдет"); err == nil {
		t.Fatal("ожидалась ошибка отправки")
	}

	after := p.Messages()
	if len(after) != len(before) {
		t.Fatalf("неудачная отправка изменила состояние: %d -> %d", len(before), len(after))
	}
}
