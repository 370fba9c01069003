package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"heat/internal/domain/model"
	repo "heat/internal/repository"

	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type QRGenerator interface {
	Generate(content string) ([]byte, error)
}

// PNG を返す
type DefaultQRGenerator struct{}

func (DefaultQRGenerator) Generate(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, qrSize)
}

// OrderQRUsecase は注文の番号札（plate code）を QR にする
type OrderQRUsecase struct {
	orders  repo.OrderRepository
	qr      QRGenerator
	baseURL string
	log     zerolog.Logger
}

func NewOrderQRUsecase(orders repo.OrderRepository, qr QRGenerator, baseURL string, log zerolog.Logger) *OrderQRUsecase {
	return &OrderQRUsecase{
		orders:  orders,
		qr:      qr,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// OrderURL は QR に埋め込む注文ページの URL
func (u *OrderQRUsecase) OrderURL(o model.Order) string {
	return fmt.Sprintf("%s/orders/%s?plate=%s", u.baseURL, url.PathEscape(o.ID), url.QueryEscape(o.PlateCode))
}

// PNG は本人かスタッフだけ取得できる（他人の注文は 404）
func (u *OrderQRUsecase) PNG(ctx context.Context, s model.Session, orderID string) ([]byte, error) {
	if !s.IsAuthenticated() {
		return nil, NewHTTPError(http.StatusUnauthorized, "Usuario no autenticado")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
	}
	if err != nil {
		u.log.Error().Err(err).Str("order_id", orderID).Msg("order fetch failed")
		return nil, NewHTTPError(http.StatusInternalServerError, "Error al cargar pedido")
	}
	if !s.Role.IsStaff() && !o.IsOwnedBy(s.UserID) {
		return nil, NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
	}

	png, err := u.qr.Generate(u.OrderURL(o))
	if err != nil {
		u.log.Error().Err(err).Str("order_id", orderID).Msg("qr generation failed")
		return nil, NewHTTPError(http.StatusInternalServerError, "Error al generar QR")
	}
	return png, nil
}
