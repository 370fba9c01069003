package model

// カート明細に付く選択済みオプション。
// Quantity 0 のものは明細に保存しない。
type CartItemOption struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PriceModifier int64  `json:"price_modifier"`
	Quantity      int64  `json:"quantity"`
}

// カート明細
// 追加時点の商品名・基本価格を必ずスナップショットで持つ。
type CartItem struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"product_id"`
	ProductName     string           `json:"product_name"`
	BasePrice       int64            `json:"base_price"`
	Quantity        int64            `json:"quantity"`
	SelectedOptions []CartItemOption `json:"selected_options"`
	ImageURL        string           `json:"image_url,omitempty"`
	Category        Category         `json:"category,omitempty"`
}
