package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"heat/internal/domain/model"

	"github.com/rs/zerolog"
)

// 遷移成功時の通知内容
type Notification struct {
	OrderID     string            `json:"order_id"`
	PlateCode   string            `json:"plate_code"`
	Status      model.OrderStatus `json:"status"`
	Label       string            `json:"label"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
}

func newNotification(orderID, plateCode string, status model.OrderStatus) Notification {
	n := Notification{
		OrderID:   orderID,
		PlateCode: plateCode,
		Status:    status,
		Label:     Label(status),
	}
	if status == model.OrderStatusCancelled {
		n.Title = fmt.Sprintf("Pedido %s cancelado", plateCode)
		return n
	}
	n.Title = fmt.Sprintf("Pedido %s actualizado", plateCode)
	n.Description = "Estado: " + n.Label
	return n
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc は関数を Notifier として使う
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// LogNotifier はログに出すだけ
type LogNotifier struct {
	Log zerolog.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) error {
	l.Log.Info().
		Str("order_id", n.OrderID).
		Str("plate_code", n.PlateCode).
		Str("status", string(n.Status)).
		Msg(n.Title)
	return nil
}

// MultiNotifier は全員に送る。途中で失敗しても残りには送る。
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, nt := range m {
		if nt == nil {
			continue
		}
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
