package usecase

import (
	"context"
	"errors"
	"net/http"

	"heat/internal/cart"
	"heat/internal/delivery"
	"heat/internal/domain/model"
	"heat/internal/pricing"
	repo "heat/internal/repository"
	"heat/internal/rowschema"

	"github.com/rs/zerolog"
)

// 配達先の初期値（プロフィールの住所）
type AddressSource interface {
	Address(ctx context.Context, userID string) (*string, error)
}

// CheckoutUsecase はカートと受け取り設定から注文を確定する
type CheckoutUsecase struct {
	tx        repo.TransactionManager
	carts     *CartUsecase
	addresses AddressSource
	delivery  delivery.Options
	status    *OpStatus
	log       zerolog.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	carts *CartUsecase,
	addresses AddressSource,
	opts delivery.Options,
	log zerolog.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:        tx,
		carts:     carts,
		addresses: addresses,
		delivery:  opts,
		status:    NewOpStatus(),
		log:       log,
	}
}

type PlaceOrderOutput struct {
	ID             string  `json:"id"`
	PlateCode      string  `json:"plate_code"`
	Total          int64   `json:"total"`
	FormattedTotal string  `json:"formatted_total"`
	DeliveryFee    int64   `json:"delivery_fee"`
	Notes          *string `json:"notes"`
}

// PlaceOrder は注文を作り、成功したらカートを空にする。
// 入力チェックは DB に触る前に行う。入力エラーも LastError に残る。
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, s model.Session, cfg model.DeliveryConfig) (out PlaceOrderOutput, err error) {
	if !s.IsAuthenticated() {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "Usuario no autenticado")
	}

	// 二重送信はまとめて弾く
	if err := u.status.Begin(s.UserID); err != nil {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusConflict, "Pedido en proceso")
	}
	defer func() { u.status.End(s.UserID, err) }()

	sel, err := delivery.FromConfig(cfg, u.delivery)
	if err != nil {
		return PlaceOrderOutput{}, deliveryError(err)
	}
	if sel.Mode() == model.DeliveryModeDelivery && sel.Address() == "" {
		addr, err := u.addresses.Address(ctx, s.UserID)
		if err != nil {
			u.log.Warn().Err(err).Str("user_id", s.UserID).Msg("profile address lookup failed")
		}
		sel.LoadFromProfile(addr)
	}
	if err := sel.Validate(); err != nil {
		return PlaceOrderOutput{}, deliveryError(err)
	}

	err = u.carts.consume(ctx, s.UserID, func(c *cart.Cart) error {
		if c.IsEmpty() {
			return NewHTTPError(http.StatusBadRequest, "El carrito está vacío")
		}

		items, err := toOrderItems(c.Items)
		if err != nil {
			u.log.Error().Err(err).Str("user_id", s.UserID).Msg("cart options invalid")
			return NewHTTPError(http.StatusBadRequest, "Carrito inválido")
		}

		notes := sel.BuildNotes()
		userID := s.UserID
		order := model.Order{
			UserID: &userID,
			Status: model.OrderStatusPending,
			Total:  c.Subtotal() + sel.Fee(),
		}
		if notes != "" {
			order.Notes = &notes
		}

		if err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			if err := r.Orders().Create(ctx, &order); err != nil {
				return err
			}
			return r.OrderItems().CreateBulk(ctx, order.ID, items)
		}); err != nil {
			u.log.Error().Err(err).Str("user_id", s.UserID).Msg("order insert failed")
			return NewHTTPError(http.StatusInternalServerError, "Error al crear orden")
		}

		u.log.Info().
			Str("order_id", order.ID).
			Str("plate_code", order.PlateCode).
			Int64("total", order.Total).
			Msg("order placed")

		out = PlaceOrderOutput{
			ID:             order.ID,
			PlateCode:      order.PlateCode,
			Total:          order.Total,
			FormattedTotal: pricing.Format(order.Total),
			DeliveryFee:    sel.Fee(),
			Notes:          order.Notes,
		}
		return nil
	})
	if err != nil {
		return PlaceOrderOutput{}, err
	}
	return out, nil
}

// IsPlacing は同じユーザーの注文確定が実行中か
func (u *CheckoutUsecase) IsPlacing(userID string) bool {
	return u.status.IsLoading(userID)
}

// LastError は直前の注文確定の失敗文言
func (u *CheckoutUsecase) LastError(userID string) string {
	return u.status.LastError(userID)
}

// カート明細を注文明細に変換する（小計はここで確定し、以後再計算しない）
func toOrderItems(items []model.CartItem) ([]model.OrderItem, error) {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		opts := make([]model.SelectedOption, 0, len(it.SelectedOptions))
		for _, o := range it.SelectedOptions {
			opts = append(opts, model.SelectedOption{Name: o.Name, Quantity: o.Quantity})
		}
		raw, err := rowschema.EncodeSelectedOptions(opts)
		if err != nil {
			return nil, err
		}

		oi := model.OrderItem{
			Quantity:        it.Quantity,
			Subtotal:        pricing.LineTotal(it),
			SelectedOptions: raw,
		}
		if it.ProductID != "" {
			pid := it.ProductID
			oi.ProductID = &pid
		}
		out = append(out, oi)
	}
	return out, nil
}

func deliveryError(err error) error {
	switch {
	case errors.Is(err, delivery.ErrNoTable):
		return NewHTTPError(http.StatusBadRequest, "Selecciona al menos una mesa")
	case errors.Is(err, delivery.ErrTableOutOfRange):
		return NewHTTPError(http.StatusBadRequest, "Mesa inválida")
	case errors.Is(err, delivery.ErrAddressRequired):
		return NewHTTPError(http.StatusBadRequest, "Ingresa la dirección de entrega")
	default:
		return NewHTTPError(http.StatusBadRequest, "Modo de entrega inválido")
	}
}
