package menu

import (
	"errors"

	"heat/internal/cart"
	"heat/internal/domain/model"
	"heat/internal/pricing"
)

var ErrUnknownOption = errors.New("unknown option")

// Configurator は1商品ぶんの具材数量を持つ。
// 数量は常に [0, MaxQty] に収まる。
type Configurator struct {
	product model.Product
	options []model.ProductOption
	qty     map[string]int64
}

func NewConfigurator(p model.Product) *Configurator {
	c := &Configurator{
		product: p,
		options: Options(CategoryOf(p)),
	}
	c.Reset()
	return c
}

func (c *Configurator) Product() model.Product {
	return c.product
}

func (c *Configurator) Options() []model.ProductOption {
	return c.options
}

// Reset は各具材を初期数量に戻す
func (c *Configurator) Reset() {
	c.qty = make(map[string]int64, len(c.options))
	for _, o := range c.options {
		c.qty[o.ID] = o.DefaultQty
	}
}

func (c *Configurator) Quantity(optionID string) int64 {
	return c.qty[optionID]
}

// SetQuantity は数量を [0, max] に丸めて設定する
func (c *Configurator) SetQuantity(optionID string, n int64) error {
	o, ok := c.find(optionID)
	if !ok {
		return ErrUnknownOption
	}
	if n < 0 {
		n = 0
	}
	if o.MaxQty > 0 && n > o.MaxQty {
		n = o.MaxQty
	}
	c.qty[optionID] = n
	return nil
}

func (c *Configurator) Increment(optionID string) error {
	return c.SetQuantity(optionID, c.qty[optionID]+1)
}

func (c *Configurator) Decrement(optionID string) error {
	return c.SetQuantity(optionID, c.qty[optionID]-1)
}

// ApplyPreset は全具材を0にしてからおすすめ構成を当てる。
// カテゴリに無い具材IDは無視する。
func (c *Configurator) ApplyPreset(p Preset) {
	for id := range c.qty {
		c.qty[id] = 0
	}
	for id, n := range p.Config {
		_ = c.SetQuantity(id, n)
	}
}

// Selected は数量1以上の具材を定義順で返す
func (c *Configurator) Selected() []model.CartItemOption {
	out := []model.CartItemOption{}
	for _, o := range c.options {
		n := c.qty[o.ID]
		if n <= 0 {
			continue
		}
		out = append(out, model.CartItemOption{
			ID:            o.ID,
			Name:          o.Name,
			PriceModifier: o.PriceModifier,
			Quantity:      n,
		})
	}
	return out
}

// Total はプレビュー用の単価
func (c *Configurator) Total() int64 {
	return pricing.ComputeTotal(c.product.BasePrice, pricing.LinesFromOptions(c.Selected()))
}

func (c *Configurator) FormattedTotal() string {
	return pricing.Format(c.Total())
}

// Candidate はカート追加用の候補を作る
func (c *Configurator) Candidate() cart.Candidate {
	return cart.Candidate{
		ProductID:       c.product.ID,
		ProductName:     c.product.Name,
		BasePrice:       c.product.BasePrice,
		SelectedOptions: c.Selected(),
		ImageURL:        c.product.ImageURL,
		Category:        CategoryOf(c.product),
	}
}

func (c *Configurator) find(id string) (model.ProductOption, bool) {
	for _, o := range c.options {
		if o.ID == id {
			return o, true
		}
	}
	return model.ProductOption{}, false
}
