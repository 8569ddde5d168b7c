package api

import "sync"

// chatWaiters - реестр long-poll ожиданий новых сообщений.
// Ключ - id клиента беседы (беседа однозначно определяется клиентом,
// так как у магазина один ящик поддержки). Каждому ожидающему запросу
// выдается канал; при появлении нового сообщения все каналы беседы
// закрываются, и запросы перечитывают страницу.
type chatWaiters struct {
	mu      sync.Mutex
	waiters map[int64][]chan struct{}
}

func newChatWaiters() *chatWaiters {
	return &chatWaiters{waiters: make(map[int64][]chan struct{})}
}

// wait регистрирует ожидание для беседы клиента userID.
func (cw *chatWaiters) wait(userID int64) chan struct{} {
	ch := make(chan struct{})
	cw.mu.Lock()
	cw.waiters[userID] = append(cw.waiters[userID], ch)
	cw.mu.Unlock()
	return ch
}

// cancel снимает ожидание (таймаут или разрыв соединения).
func (cw *chatWaiters) cancel(userID int64, ch chan struct{}) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	list := cw.waiters[userID]
	for i, c := range list {
		if c == ch {
			cw.waiters[userID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(cw.waiters[userID]) == 0 {
		delete(cw.waiters, userID)
	}
}

// notify будит все ожидания беседы клиента userID.
func (cw *chatWaiters) notify(userID int64) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	for _, ch := range cw.waiters[userID] {
		close(ch)
	}
	delete(cw.waiters, userID)
}
