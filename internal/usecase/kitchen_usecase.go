package usecase

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"heat/internal/domain/model"
	"heat/internal/pricing"
	repo "heat/internal/repository"
	"heat/internal/rowschema"

	"github.com/rs/zerolog"
)

// キッチンで集計する対象（受付済み〜調理中）
var kitchenStatuses = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusCooking,
}

type SummaryLine struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type SummaryOutput struct {
	Lines []SummaryLine `json:"lines"`
	Text  string        `json:"text"`
}

// KitchenUsecase はスタッフ向けの集計と読み上げ用テキスト
type KitchenUsecase struct {
	orders repo.OrderRepository
	items  repo.OrderItemRepository
	log    zerolog.Logger
}

func NewKitchenUsecase(orders repo.OrderRepository, items repo.OrderItemRepository, log zerolog.Logger) *KitchenUsecase {
	return &KitchenUsecase{orders: orders, items: items, log: log}
}

// Summary は未完了の注文の明細を品目ごとに合計する。
// 数量の多い順、同数なら名前順。
func (u *KitchenUsecase) Summary(ctx context.Context, s model.Session) (SummaryOutput, error) {
	if err := requireStaff(s); err != nil {
		return SummaryOutput{}, err
	}

	orders, err := u.orders.List(ctx, repo.OrderListFilter{Statuses: kitchenStatuses})
	if err != nil {
		u.log.Error().Err(err).Msg("kitchen summary fetch failed")
		return SummaryOutput{}, NewHTTPError(http.StatusInternalServerError, "Error al cargar pedidos")
	}

	lines := Aggregate(orders, u.log)
	return SummaryOutput{Lines: lines, Text: SummaryText(lines)}, nil
}

func Aggregate(orders []model.Order, log zerolog.Logger) []SummaryLine {
	totals := map[string]int64{}
	for _, o := range orders {
		for _, it := range ProjectOrder(o, log).Items {
			totals[it.Name] += it.Quantity
		}
	}

	lines := make([]SummaryLine, 0, len(totals))
	for name, qty := range totals {
		lines = append(lines, SummaryLine{Name: name, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Quantity != lines[j].Quantity {
			return lines[i].Quantity > lines[j].Quantity
		}
		return lines[i].Name < lines[j].Name
	})
	return lines
}

func SummaryText(lines []SummaryLine) string {
	if len(lines) == 0 {
		return "No hay pedidos pendientes"
	}
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, strconv.FormatInt(l.Quantity, 10)+" "+l.Name)
	}
	return "Resumen de pedidos pendientes: " + strings.Join(parts, ". ")
}

// Speech は1件の注文の読み上げ用テキスト
func (u *KitchenUsecase) Speech(ctx context.Context, s model.Session, orderID string) (string, error) {
	if err := requireStaff(s); err != nil {
		return "", err
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
	}
	if err != nil {
		u.log.Error().Err(err).Str("order_id", orderID).Msg("order fetch failed")
		return "", NewHTTPError(http.StatusInternalServerError, "Error al cargar pedido")
	}

	items, err := u.items.ListByOrderID(ctx, orderID)
	if err != nil {
		u.log.Error().Err(err).Str("order_id", orderID).Msg("order items fetch failed")
		return "", NewHTTPError(http.StatusInternalServerError, "Error al cargar pedido")
	}
	o.Items = items

	return OrderSpeech(o), nil
}

// OrderSpeech: "Pedido A-012. 2 Arepa con 2 Queso, Jamón. Total: 10.400 pesos"
func OrderSpeech(o model.Order) string {
	parts := make([]string, 0, len(o.Items)+2)
	if o.PlateCode != "" {
		parts = append(parts, "Pedido "+o.PlateCode)
	}

	for _, it := range o.Items {
		name := it.ProductName
		if name == "" {
			name = fallbackItemName
		}
		text := strconv.FormatInt(it.Quantity, 10) + " " + name

		// 壊れた selected_options は読まない
		opts, err := rowschema.SelectedOptions(it.SelectedOptions)
		if err == nil && len(opts) > 0 {
			names := make([]string, 0, len(opts))
			for _, op := range opts {
				if op.Quantity > 1 {
					names = append(names, strconv.FormatInt(op.Quantity, 10)+" "+op.Name)
					continue
				}
				names = append(names, op.Name)
			}
			text += " con " + strings.Join(names, ", ")
		}
		parts = append(parts, text)
	}

	if o.Total > 0 {
		parts = append(parts, "Total: "+pricing.FormatNumber(o.Total)+" pesos")
	}
	return strings.Join(parts, ". ")
}
