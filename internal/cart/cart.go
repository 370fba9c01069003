// Package cart はセッション単位のカート（明細の集約と合計）を扱う。
package cart

import (
	"sort"
	"strconv"
	"strings"

	"heat/internal/domain/model"
	"heat/internal/pricing"

	"github.com/google/uuid"
)

// 1明細あたりの数量上限
const MaxQuantity int64 = 99

// 明細IDの採番
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

// カートに追加する設定済み商品（ID・数量はカート側で決める）
type Candidate struct {
	ProductID       string
	ProductName     string
	BasePrice       int64
	SelectedOptions []model.CartItemOption
	ImageURL        string
	Category        model.Category
}

// Cart は明細とドロワー開閉状態を持つ。
// 永続化するのは Items だけで、ドロワー状態は保存しない。
type Cart struct {
	Items []model.CartItem `json:"items"`

	drawerOpen bool
	ids        IDGenerator
}

// New は空のカートを返す。ids が nil なら uuid を使う。
func New(ids IDGenerator) *Cart {
	if ids == nil {
		ids = uuidGenerator{}
	}
	return &Cart{Items: []model.CartItem{}, ids: ids}
}

// Restore は保存済みの明細からカートを作り直す。
// 数量0以下の明細と数量0のオプションはここで落とす。
func Restore(items []model.CartItem, ids IDGenerator) *Cart {
	c := New(ids)
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		it.Quantity = min(it.Quantity, MaxQuantity)
		it.SelectedOptions = NormalizeOptions(it.SelectedOptions)
		c.Items = append(c.Items, it)
	}
	return c
}

// NormalizeOptions は数量0以下のオプションを除いたコピーを返す
func NormalizeOptions(opts []model.CartItemOption) []model.CartItemOption {
	out := make([]model.CartItemOption, 0, len(opts))
	for _, o := range opts {
		if o.Quantity <= 0 {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Signature はオプション集合の重複判定用文字列（"id:qty" をソートして "|" で連結）。
// 並び順には依存しない。
func Signature(opts []model.CartItemOption) string {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		if o.Quantity <= 0 {
			continue
		}
		parts = append(parts, o.ID+":"+strconv.FormatInt(o.Quantity, 10))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// AddItem は同じ商品・同じオプション構成の明細があれば数量+1、なければ数量1で追加する。
// 追加または更新された明細を返す。
func (c *Cart) AddItem(cand Candidate) model.CartItem {
	opts := NormalizeOptions(cand.SelectedOptions)
	sig := Signature(opts)

	for i := range c.Items {
		existing := &c.Items[i]
		if existing.ProductID == cand.ProductID && Signature(existing.SelectedOptions) == sig {
			if existing.Quantity < MaxQuantity {
				existing.Quantity++
			}
			return *existing
		}
	}

	item := model.CartItem{
		ID:              c.ids.NewID(),
		ProductID:       cand.ProductID,
		ProductName:     cand.ProductName,
		BasePrice:       cand.BasePrice,
		Quantity:        1,
		SelectedOptions: opts,
		ImageURL:        cand.ImageURL,
		Category:        cand.Category,
	}
	c.Items = append(c.Items, item)
	return item
}

// RemoveItem は明細を削除する。無ければ false（何もしない）。
func (c *Cart) RemoveItem(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return true
}

// SetQuantity は数量を直接設定する。0以下なら削除、上限を超えたら上限。
func (c *Cart) SetQuantity(id string, n int64) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	if n <= 0 {
		return c.RemoveItem(id)
	}
	c.Items[idx].Quantity = min(n, MaxQuantity)
	return true
}

// Increment は上限では何もしない（明細はあるので true）
func (c *Cart) Increment(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	if c.Items[idx].Quantity < MaxQuantity {
		c.Items[idx].Quantity++
	}
	return true
}

// Decrement は数量1の明細なら削除する（0にはしない）
func (c *Cart) Decrement(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	if c.Items[idx].Quantity <= 1 {
		return c.RemoveItem(id)
	}
	c.Items[idx].Quantity--
	return true
}

// Clear は明細を空にしてドロワーも閉じる
func (c *Cart) Clear() {
	c.Items = []model.CartItem{}
	c.drawerOpen = false
}

func (c *Cart) OpenDrawer()        { c.drawerOpen = true }
func (c *Cart) CloseDrawer()       { c.drawerOpen = false }
func (c *Cart) ToggleDrawer()      { c.drawerOpen = !c.drawerOpen }
func (c *Cart) IsDrawerOpen() bool { return c.drawerOpen }

// Find は明細を1件返す
func (c *Cart) Find(id string) (model.CartItem, bool) {
	idx := c.indexOf(id)
	if idx < 0 {
		return model.CartItem{}, false
	}
	return c.Items[idx], true
}

// ItemCount は数量の合計
func (c *Cart) ItemCount() int64 {
	var n int64
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Subtotal は Σ(明細単価 × 数量)
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, it := range c.Items {
		total += pricing.LineTotal(it)
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) indexOf(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}
