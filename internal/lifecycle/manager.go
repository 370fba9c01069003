package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"heat/internal/domain/model"

	"github.com/rs/zerolog"
)

// 同じ注文に対する遷移がすでに実行中
var ErrBusy = errors.New("order transition already in progress")

// StatusWriter は新しいステータスを永続化する
type StatusWriter interface {
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error
}

// 遷移の結果。Changed=false は no-op（終端など）。
type Result struct {
	From    model.OrderStatus
	To      model.OrderStatus
	Changed bool
}

// Manager は1つの注文の遷移を受け持つ。
// 同時に走る遷移は1つだけ（2つ目は ErrBusy）。
type Manager struct {
	orderID   string
	plateCode string

	mu     sync.RWMutex
	status model.OrderStatus

	busy atomic.Bool

	writer   StatusWriter
	notifier Notifier
	log      zerolog.Logger
}

func NewManager(order model.Order, writer StatusWriter, notifier Notifier, log zerolog.Logger) *Manager {
	return &Manager{
		orderID:   order.ID,
		plateCode: order.PlateCode,
		status:    order.Status,
		writer:    writer,
		notifier:  notifier,
		log:       log,
	}
}

func (m *Manager) OrderID() string {
	return m.orderID
}

func (m *Manager) Status() model.OrderStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) IsUpdating() bool {
	return m.busy.Load()
}

// Advance は次のステータスへ進める。次が無ければ何もしない。
func (m *Manager) Advance(ctx context.Context) (Result, error) {
	if !m.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer m.busy.Store(false)

	from := m.Status()
	to, ok := Next(from)
	if !ok {
		return Result{From: from, To: from}, nil
	}
	return m.transition(ctx, from, to)
}

// Cancel は現在のステータスに関係なく cancelled にする
func (m *Manager) Cancel(ctx context.Context) (Result, error) {
	if !m.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer m.busy.Store(false)

	return m.transition(ctx, m.Status(), model.OrderStatusCancelled)
}

func (m *Manager) transition(ctx context.Context, from, to model.OrderStatus) (Result, error) {
	if err := m.writer.UpdateStatus(ctx, m.orderID, to); err != nil {
		// 失敗時はローカルの状態を変えない
		m.log.Error().Err(err).
			Str("order_id", m.orderID).
			Str("to", string(to)).
			Msg("order status update failed")
		return Result{From: from, To: from}, err
	}

	m.mu.Lock()
	m.status = to
	m.mu.Unlock()

	if m.notifier != nil {
		if err := m.notifier.Notify(ctx, newNotification(m.orderID, m.plateCode, to)); err != nil {
			// 通知失敗は遷移の失敗にしない
			m.log.Warn().Err(err).Str("order_id", m.orderID).Msg("notify failed")
		}
	}

	return Result{From: from, To: to, Changed: true}, nil
}

// sync は遷移中でなければ外部（DB）の状態を取り込む
func (m *Manager) sync(order model.Order) {
	if m.busy.Load() {
		return
	}
	m.mu.Lock()
	m.status = order.Status
	if order.PlateCode != "" {
		m.plateCode = order.PlateCode
	}
	m.mu.Unlock()
}
