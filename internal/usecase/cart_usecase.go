package usecase

import (
	"context"
	"fmt"
	"net/http"

	"heat/internal/cart"
	"heat/internal/domain/model"
	"heat/internal/pricing"

	"github.com/rs/zerolog"
)

// 商品＋具材指定からカート候補を作る（ProductUsecase が実装）
type CandidateResolver interface {
	Configure(ctx context.Context, in ConfigureInput) (cart.Candidate, error)
}

// CartUsecase は /cart の業務ロジック。
// 同じユーザーのカート操作は直列に実行する。
type CartUsecase struct {
	store    cart.Store
	products CandidateResolver
	ids      cart.IDGenerator
	locks    *keyedMutex
	log      zerolog.Logger
}

func NewCartUsecase(store cart.Store, products CandidateResolver, ids cart.IDGenerator, log zerolog.Logger) *CartUsecase {
	return &CartUsecase{
		store:    store,
		products: products,
		ids:      ids,
		locks:    newKeyedMutex(),
		log:      log,
	}
}

type CartItemOutput struct {
	model.CartItem
	UnitTotal int64 `json:"unit_total"`
	LineTotal int64 `json:"line_total"`
}

type CartOutput struct {
	Items             []CartItemOutput `json:"items"`
	ItemCount         int64            `json:"item_count"`
	Subtotal          int64            `json:"subtotal"`
	FormattedSubtotal string           `json:"formatted_subtotal"`
	IsEmpty           bool             `json:"is_empty"`
}

func toCartOutput(c *cart.Cart) CartOutput {
	items := make([]CartItemOutput, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, CartItemOutput{
			CartItem:  it,
			UnitTotal: pricing.ItemTotal(it),
			LineTotal: pricing.LineTotal(it),
		})
	}
	return CartOutput{
		Items:             items,
		ItemCount:         c.ItemCount(),
		Subtotal:          c.Subtotal(),
		FormattedSubtotal: pricing.Format(c.Subtotal()),
		IsEmpty:           c.IsEmpty(),
	}
}

func (u *CartUsecase) Get(ctx context.Context, s model.Session) (CartOutput, error) {
	if !s.IsAuthenticated() {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "Usuario no autenticado")
	}
	unlock := u.locks.Lock(s.UserID)
	defer unlock()

	c, err := u.load(ctx, s.UserID)
	if err != nil {
		return CartOutput{}, err
	}
	return toCartOutput(c), nil
}

// AddItem は設定済み商品を追加する（同じ商品・同じ具材なら数量+1）
func (u *CartUsecase) AddItem(ctx context.Context, s model.Session, in ConfigureInput) (CartOutput, error) {
	if !s.IsAuthenticated() {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "Usuario no autenticado")
	}
	cand, err := u.products.Configure(ctx, in)
	if err != nil {
		return CartOutput{}, err
	}
	return u.mutate(ctx, s, func(c *cart.Cart) error {
		c.AddItem(cand)
		return nil
	})
}

// SetQuantity は n <= 0 なら削除。上限（99）を超える指定は 400。
func (u *CartUsecase) SetQuantity(ctx context.Context, s model.Session, itemID string, n int64) (CartOutput, error) {
	return u.mutate(ctx, s, func(c *cart.Cart) error {
		if n > cart.MaxQuantity {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Cantidad máxima: %d", cart.MaxQuantity))
		}
		if !c.SetQuantity(itemID, n) {
			return errItemNotFound()
		}
		return nil
	})
}

func (u *CartUsecase) Increment(ctx context.Context, s model.Session, itemID string) (CartOutput, error) {
	return u.mutate(ctx, s, func(c *cart.Cart) error {
		if !c.Increment(itemID) {
			return errItemNotFound()
		}
		return nil
	})
}

// Decrement は数量1なら削除
func (u *CartUsecase) Decrement(ctx context.Context, s model.Session, itemID string) (CartOutput, error) {
	return u.mutate(ctx, s, func(c *cart.Cart) error {
		if !c.Decrement(itemID) {
			return errItemNotFound()
		}
		return nil
	})
}

// Remove は無ければ何もしない
func (u *CartUsecase) Remove(ctx context.Context, s model.Session, itemID string) (CartOutput, error) {
	return u.mutate(ctx, s, func(c *cart.Cart) error {
		c.RemoveItem(itemID)
		return nil
	})
}

func (u *CartUsecase) Clear(ctx context.Context, s model.Session) (CartOutput, error) {
	if !s.IsAuthenticated() {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "Usuario no autenticado")
	}
	unlock := u.locks.Lock(s.UserID)
	defer unlock()

	if err := u.store.Delete(ctx, s.UserID); err != nil {
		u.log.Error().Err(err).Str("user_id", s.UserID).Msg("cart delete failed")
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "Error al vaciar el carrito")
	}
	return toCartOutput(cart.New(u.ids)), nil
}

// consume はロックを持ったままカートを fn に渡し、成功したらカートを消す（注文確定用）
func (u *CartUsecase) consume(ctx context.Context, owner string, fn func(c *cart.Cart) error) error {
	unlock := u.locks.Lock(owner)
	defer unlock()

	c, err := u.load(ctx, owner)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}

	if err := u.store.Delete(ctx, owner); err != nil {
		// 注文は確定済みなので失敗にはしない
		u.log.Error().Err(err).Str("user_id", owner).Msg("cart clear after checkout failed")
	}
	return nil
}

func (u *CartUsecase) mutate(ctx context.Context, s model.Session, fn func(c *cart.Cart) error) (CartOutput, error) {
	if !s.IsAuthenticated() {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "Usuario no autenticado")
	}
	unlock := u.locks.Lock(s.UserID)
	defer unlock()

	c, err := u.load(ctx, s.UserID)
	if err != nil {
		return CartOutput{}, err
	}
	if err := fn(c); err != nil {
		return CartOutput{}, err
	}

	if err := u.store.Save(ctx, s.UserID, c.Items); err != nil {
		u.log.Error().Err(err).Str("user_id", s.UserID).Msg("cart save failed")
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "Error al guardar el carrito")
	}
	return toCartOutput(c), nil
}

func (u *CartUsecase) load(ctx context.Context, owner string) (*cart.Cart, error) {
	items, err := u.store.Load(ctx, owner)
	if err != nil {
		u.log.Error().Err(err).Str("user_id", owner).Msg("cart load failed")
		return nil, NewHTTPError(http.StatusInternalServerError, "Error al cargar el carrito")
	}
	return cart.Restore(items, u.ids), nil
}

func errItemNotFound() error {
	return NewHTTPError(http.StatusNotFound, "Producto no encontrado en el carrito")
}
