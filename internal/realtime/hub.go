// Package realtime は注文行の変更イベントを購読者に配る。
//
// Subscribe はイベントのチャネルと解除関数を返す。
// 配信はノンブロッキングで、詰まった購読者の分は捨てる。
package realtime

import (
	"sync"

	"heat/internal/domain/model"

	"github.com/rs/zerolog"
)

const defaultBuffer = 16

// Filter は購読条件。UserID が空なら全注文。
type Filter struct {
	UserID string
}

func (f Filter) match(c model.OrderChange) bool {
	return f.UserID == "" || f.UserID == c.UserID
}

// Subscriber は変更イベントの購読口
type Subscriber interface {
	Subscribe(f Filter) (<-chan model.OrderChange, func())
}

// Publisher は変更イベントの送信口
type Publisher interface {
	Publish(c model.OrderChange)
}

type subscription struct {
	filter Filter
	ch     chan model.OrderChange
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
	buffer int
	closed bool

	log zerolog.Logger
}

func NewHub(buffer int, log zerolog.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   map[int]*subscription{},
		buffer: buffer,
		log:    log,
	}
}

// Subscribe は購読を登録する。返した関数を呼ぶとチャネルが閉じる（複数回呼んでもよい）。
func (h *Hub) Subscribe(f Filter) (<-chan model.OrderChange, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan model.OrderChange, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = &subscription{filter: f, ch: ch}

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(s.ch)
	}
}

// Publish は条件に合う購読者へ送る。バッファが一杯なら捨てる。
func (h *Hub) Publish(c model.OrderChange) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.subs {
		if !s.filter.match(c) {
			continue
		}
		select {
		case s.ch <- c:
		default:
			h.log.Warn().Str("order_id", c.OrderID).Msg("subscriber is slow, dropping order change")
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close は全購読を閉じる。以降の Subscribe は閉じたチャネルを返す。
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.subs {
		delete(h.subs, id)
		close(s.ch)
	}
	h.closed = true
}
