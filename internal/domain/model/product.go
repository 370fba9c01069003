package model

import "time"

// 商品カテゴリ
type Category string

const (
	CategoryArepas       Category = "arepas"
	CategoryPerros       Category = "perros"
	CategoryHamburguesas Category = "hamburguesas"
	CategoryChorizos     Category = "chorizos"
	CategoryPinchos      Category = "pinchos"
)

// カタログの商品。セッション中は読み取り専用。
type Product struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Category    Category  `gorm:"type:varchar(50);not null;index" json:"category"`
	BasePrice   int64     `gorm:"not null;column:base_price" json:"base_price"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"type:text;column:image_url" json:"image_url"`
	IsAvailable bool      `gorm:"not null;default:true;index" json:"is_available"`
	Popular     bool      `gorm:"not null;default:false" json:"popular"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 選択可能な具材・オプション（カテゴリ単位の参照データ）
type ProductOption struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Group         string `json:"group"`
	PriceModifier int64  `json:"price_modifier"`
	// 初期選択数（0なら未選択）
	DefaultQty int64 `json:"default_qty"`
	MaxQty     int64 `json:"max_qty"`
}
