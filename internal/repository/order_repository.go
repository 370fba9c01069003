package repository

import (
	"context"

	"heat/internal/domain/model"
)

// 注文一覧の絞り込み
type OrderListFilter struct {
	// nil なら全ユーザー（スタッフ用）
	UserID   *string
	Statuses []model.OrderStatus
	// 0 以下なら全件
	Limit int
}

type OrderRepository interface {
	// Create は注文を保存し、DB が採番した id / plate_code / created_at を order に書き戻す
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	// List は新しい順。明細（商品名つき）も読み込む。
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error
}
