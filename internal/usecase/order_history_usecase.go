package usecase

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"heat/internal/domain/model"
	"heat/internal/lifecycle"
	"heat/internal/realtime"
	repo "heat/internal/repository"
	"heat/internal/rowschema"

	"github.com/rs/zerolog"
)

const fallbackItemName = "Producto"

type OrderItemView struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
}

// 表示用の注文
type OrderView struct {
	ID          string            `json:"id"`
	PlateCode   string            `json:"plate_code"`
	Status      model.OrderStatus `json:"status"`
	StatusLabel string            `json:"status_label"`
	ActionLabel string            `json:"action_label,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Total       int64             `json:"total"`
	Notes       *string           `json:"notes"`
	Items       []OrderItemView   `json:"items"`
}

// ItemName は「商品名 (具材1, 具材2)」。商品名が無ければ具材だけ、両方無ければ "Producto"。
func ItemName(productName string, opts []model.SelectedOption) string {
	names := make([]string, 0, len(opts))
	for _, o := range opts {
		names = append(names, o.Name)
	}
	joined := strings.Join(names, ", ")

	switch {
	case productName != "" && joined != "":
		return productName + " (" + joined + ")"
	case productName != "":
		return productName
	case joined != "":
		return joined
	default:
		return fallbackItemName
	}
}

// ProjectOrder は注文行を表示用に変換する。
// selected_options が壊れている明細は具材なしとして扱う。
func ProjectOrder(o model.Order, log zerolog.Logger) OrderView {
	v := OrderView{
		ID:          o.ID,
		PlateCode:   o.PlateCode,
		Status:      o.Status,
		StatusLabel: lifecycle.Label(o.Status),
		ActionLabel: lifecycle.ActionLabel(o.Status),
		CreatedAt:   o.CreatedAt,
		Total:       o.Total,
		Notes:       o.Notes,
		Items:       make([]OrderItemView, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		opts, err := rowschema.SelectedOptions(it.SelectedOptions)
		if err != nil {
			log.Warn().Err(err).Str("order_item_id", it.ID).Msg("invalid selected_options")
			opts = nil
		}
		v.Items = append(v.Items, OrderItemView{
			Name:     ItemName(it.ProductName, opts),
			Quantity: it.Quantity,
			Price:    it.Subtotal,
		})
	}
	return v
}

type OrderHistoryUsecase struct {
	orders repo.OrderRepository
	live   realtime.Subscriber
	log    zerolog.Logger
}

func NewOrderHistoryUsecase(orders repo.OrderRepository, live realtime.Subscriber, log zerolog.Logger) *OrderHistoryUsecase {
	return &OrderHistoryUsecase{orders: orders, live: live, log: log}
}

// scope はロールで見える範囲を決める（admin/dev は全件）
func scope(s model.Session) *string {
	if s.Role.IsStaff() {
		return nil
	}
	id := s.UserID
	return &id
}

// List は新しい順の注文一覧
func (u *OrderHistoryUsecase) List(ctx context.Context, s model.Session) ([]OrderView, error) {
	if !s.IsAuthenticated() {
		return []OrderView{}, NewHTTPError(http.StatusUnauthorized, "Usuario no autenticado")
	}

	rows, err := u.orders.List(ctx, repo.OrderListFilter{UserID: scope(s)})
	if err != nil {
		u.log.Error().Err(err).Str("user_id", s.UserID).Msg("order list failed")
		return []OrderView{}, NewHTTPError(http.StatusInternalServerError, "Error al cargar pedidos")
	}

	out := make([]OrderView, 0, len(rows))
	for _, o := range rows {
		if err := rowschema.Order(o); err != nil {
			u.log.Warn().Err(err).Str("order_id", o.ID).Msg("skip invalid order row")
			continue
		}
		out = append(out, ProjectOrder(o, u.log))
	}
	return out, nil
}

// Subscribe はロールに応じた範囲の変更イベントを購読する
func (u *OrderHistoryUsecase) Subscribe(s model.Session) (<-chan model.OrderChange, func(), error) {
	if !s.IsAuthenticated() {
		return nil, nil, NewHTTPError(http.StatusUnauthorized, "Usuario no autenticado")
	}
	ch, cancel := u.live.Subscribe(filterFor(s))
	return ch, cancel, nil
}

// Watch は変更の購読を始めてから一覧を読み込み、HistoryView に反映し続ける。
// 一覧の読み込み中に届いた変更もチャネルに溜まっていて、読み込み後に順に当てる。
// onApply には status を書き換えた後の注文が渡る。
func (u *OrderHistoryUsecase) Watch(ctx context.Context, s model.Session, onApply func(OrderView)) (*HistoryView, func(), error) {
	ch, unsubscribe, err := u.Subscribe(s)
	if err != nil {
		return nil, nil, err
	}

	list, err := u.List(ctx, s)
	if err != nil {
		unsubscribe()
		return nil, nil, err
	}

	view := NewHistoryView(list)
	stop := view.follow(ctx, ch, unsubscribe, func(c model.OrderChange) {
		if onApply == nil {
			return
		}
		if v, ok := view.Find(c.OrderID); ok {
			onApply(v)
		}
	})
	return view, stop, nil
}

func filterFor(s model.Session) realtime.Filter {
	f := realtime.Filter{}
	if uid := scope(s); uid != nil {
		f.UserID = *uid
	}
	return f
}

// HistoryView はメモリ上の注文一覧。変更イベントで status だけ書き換える。
type HistoryView struct {
	mu     sync.RWMutex
	orders []OrderView
}

func NewHistoryView(orders []OrderView) *HistoryView {
	cp := make([]OrderView, len(orders))
	copy(cp, orders)
	return &HistoryView{orders: cp}
}

// Apply は一致する注文の status を更新する。見つからなければ false。
func (h *HistoryView) Apply(c model.OrderChange) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.orders {
		if h.orders[i].ID != c.OrderID {
			continue
		}
		h.orders[i].Status = c.Status
		h.orders[i].StatusLabel = lifecycle.Label(c.Status)
		h.orders[i].ActionLabel = lifecycle.ActionLabel(c.Status)
		return true
	}
	return false
}

// Find は1件返す
func (h *HistoryView) Find(orderID string) (OrderView, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, o := range h.orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return OrderView{}, false
}

func (h *HistoryView) Orders() []OrderView {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cp := make([]OrderView, len(h.orders))
	copy(cp, h.orders)
	return cp
}

// Watch は購読を始め、ctx が終わるか返した関数が呼ばれるまで Apply し続ける。
// onApply は反映できたイベントごとに呼ばれる（nil 可）。
func (h *HistoryView) Watch(ctx context.Context, sub realtime.Subscriber, f realtime.Filter, onApply func(model.OrderChange)) func() {
	ch, unsubscribe := sub.Subscribe(f)
	return h.follow(ctx, ch, unsubscribe, onApply)
}

func (h *HistoryView) follow(ctx context.Context, ch <-chan model.OrderChange, unsubscribe func(), onApply func(model.OrderChange)) func() {
	ctx, cancel := context.WithCancel(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-ch:
				if !ok {
					return
				}
				if h.Apply(c) && onApply != nil {
					onApply(c)
				}
			}
		}
	}()

	return func() {
		cancel()
		unsubscribe()
		<-done
	}
}
