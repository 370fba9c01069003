package lifecycle

import (
	"sync"

	"heat/internal/domain/model"

	"github.com/rs/zerolog"
)

// Registry は注文IDごとに Manager を1つだけ持つ。
// 同じ注文への並行リクエストは同じ busy ガードを通る。
// 借りている人がいなくなった Manager はその場で捨てる（状態は次の Get で DB から取り直す）。
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	writer   StatusWriter
	notifier Notifier
	log      zerolog.Logger
}

type entry struct {
	m    *Manager
	refs int
}

func NewRegistry(writer StatusWriter, notifier Notifier, log zerolog.Logger) *Registry {
	return &Registry{
		entries:  map[string]*entry{},
		writer:   writer,
		notifier: notifier,
		log:      log,
	}
}

// Get は注文の Manager を借りる。使い終わったら必ず Release する。
// 既存なら DB の状態に合わせる。
func (r *Registry) Get(order model.Order) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[order.ID]; ok {
		e.m.sync(order)
		e.refs++
		return e.m
	}
	m := NewManager(order, r.writer, r.notifier, r.log)
	r.entries[order.ID] = &entry{m: m, refs: 1}
	return m
}

// Release は借りた Manager を返す。最後の1人なら状態に関係なく捨てる。
func (r *Registry) Release(m *Manager) {
	if m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[m.orderID]
	if !ok || e.m != m {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(r.entries, m.orderID)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
