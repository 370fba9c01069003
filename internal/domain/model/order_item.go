package model

import (
	"encoding/json"
	"time"
)

// 注文明細に保存するオプションのスナップショット（名前と数量のみ）
type SelectedOption struct {
	Name     string `json:"name" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gte=1"`
}

// 注文明細。subtotal は作成時点の値で再計算しない。
type OrderItem struct {
	ID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderID   string  `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID *string `gorm:"type:uuid;index" json:"product_id"`
	Quantity  int64   `gorm:"not null;default:1" json:"quantity"`
	Subtotal  int64   `gorm:"not null" json:"subtotal"`

	// JSON のまま保存（カタログとは切り離す）
	SelectedOptions json.RawMessage `gorm:"type:jsonb;not null;default:'[]';column:selected_options" json:"selected_options"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`

	// products から join した表示用の商品名
	ProductName string `gorm:"->;-:migration;column:product_name" json:"product_name,omitempty"`
}
