package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCooking   OrderStatus = "cooking"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 注文。plate_code は永続化層（DB）が採番する。
type Order struct {
	ID        string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    *string     `gorm:"type:uuid;index" json:"user_id"`
	PlateCode string      `gorm:"type:varchar(20);not null;index;column:plate_code;default:generate_plate_code()" json:"plate_code"`
	Status    OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Total     int64       `gorm:"not null" json:"total"`
	Notes     *string     `gorm:"type:text" json:"notes"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// IsOwnedBy は注文がそのユーザーのものか
func (o Order) IsOwnedBy(userID string) bool {
	return o.UserID != nil && *o.UserID == userID
}

// 注文行の更新イベント（ライブ更新で流れてくる行）
type OrderChange struct {
	OrderID   string      `json:"id"`
	UserID    string      `json:"user_id,omitempty"`
	PlateCode string      `json:"plate_code"`
	Status    OrderStatus `json:"status"`
	UpdatedAt time.Time   `json:"updated_at"`
}
