package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"heat/internal/domain/model"
	"heat/internal/lifecycle"
	repo "heat/internal/repository"

	"github.com/rs/zerolog"
)

// OrderStatusUsecase は注文ステータスの前進・キャンセル。
// 遷移そのものは lifecycle.Manager に任せ、ここでは権限と監査ログを扱う。
type OrderStatusUsecase struct {
	orders    repo.OrderRepository
	auditRepo repo.AuditLogRepository
	registry  *lifecycle.Registry
	log       zerolog.Logger
}

func NewOrderStatusUsecase(
	orders repo.OrderRepository,
	auditRepo repo.AuditLogRepository,
	registry *lifecycle.Registry,
	log zerolog.Logger,
) *OrderStatusUsecase {
	return &OrderStatusUsecase{
		orders:    orders,
		auditRepo: auditRepo,
		registry:  registry,
		log:       log,
	}
}

type StatusOutput struct {
	ID          string            `json:"id"`
	PlateCode   string            `json:"plate_code"`
	Status      model.OrderStatus `json:"status"`
	StatusLabel string            `json:"status_label"`
	ActionLabel string            `json:"action_label,omitempty"`
	Changed     bool              `json:"changed"`
}

// Advance は次のステータスへ（スタッフのみ）。終端なら何もしない。
func (u *OrderStatusUsecase) Advance(ctx context.Context, s model.Session, orderID string) (StatusOutput, error) {
	if err := requireStaff(s); err != nil {
		return StatusOutput{}, err
	}
	return u.transition(ctx, s, orderID, model.AuditActionAdvanceOrderStatus, "Error al actualizar",
		func(m *lifecycle.Manager) (lifecycle.Result, error) { return m.Advance(ctx) })
}

// Cancel は現在のステータスに関係なく cancelled にする（スタッフのみ）
func (u *OrderStatusUsecase) Cancel(ctx context.Context, s model.Session, orderID string) (StatusOutput, error) {
	if err := requireStaff(s); err != nil {
		return StatusOutput{}, err
	}
	return u.transition(ctx, s, orderID, model.AuditActionCancelOrder, "Error al cancelar",
		func(m *lifecycle.Manager) (lifecycle.Result, error) { return m.Cancel(ctx) })
}

// CancelOwn は本人の注文だけキャンセルできる（他人の注文は 404）
func (u *OrderStatusUsecase) CancelOwn(ctx context.Context, s model.Session, orderID string) (StatusOutput, error) {
	if !s.IsAuthenticated() {
		return StatusOutput{}, NewHTTPError(http.StatusUnauthorized, "Usuario no autenticado")
	}
	return u.transition(ctx, s, orderID, "", "Error al cancelar orden",
		func(m *lifecycle.Manager) (lifecycle.Result, error) { return m.Cancel(ctx) })
}

func (u *OrderStatusUsecase) transition(
	ctx context.Context,
	s model.Session,
	orderID string,
	action model.AuditAction,
	failMsg string,
	op func(m *lifecycle.Manager) (lifecycle.Result, error),
) (StatusOutput, error) {
	if orderID == "" {
		return StatusOutput{}, NewHTTPError(http.StatusBadRequest, "Pedido inválido")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return StatusOutput{}, NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
	}
	if err != nil {
		u.log.Error().Err(err).Str("order_id", orderID).Msg("order fetch failed")
		return StatusOutput{}, NewHTTPError(http.StatusInternalServerError, failMsg)
	}
	// スタッフ以外は本人の注文だけ
	if !s.Role.IsStaff() && !o.IsOwnedBy(s.UserID) {
		return StatusOutput{}, NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
	}

	m := u.registry.Get(o)
	res, err := op(m)
	u.registry.Release(m)
	if errors.Is(err, lifecycle.ErrBusy) {
		return StatusOutput{}, NewHTTPError(http.StatusConflict, "Actualización en curso")
	}
	if errors.Is(err, repo.ErrNotFound) {
		return StatusOutput{}, NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
	}
	if err != nil {
		return StatusOutput{}, NewHTTPError(http.StatusInternalServerError, failMsg)
	}

	if res.Changed && action != "" {
		u.writeAudit(ctx, s.UserID, action, orderID, res)
	}

	return StatusOutput{
		ID:          o.ID,
		PlateCode:   o.PlateCode,
		Status:      res.To,
		StatusLabel: lifecycle.Label(res.To),
		ActionLabel: lifecycle.ActionLabel(res.To),
		Changed:     res.Changed,
	}, nil
}

// 監査ログの失敗は遷移の失敗にしない（ステータスは保存済み）
func (u *OrderStatusUsecase) writeAudit(ctx context.Context, actor string, action model.AuditAction, orderID string, res lifecycle.Result) {
	before, _ := json.Marshal(map[string]string{"status": string(res.From)})
	after, _ := json.Marshal(map[string]string{"status": string(res.To)})

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actor,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   string(before),
		AfterJSON:    string(after),
		CreatedAt:    time.Now(),
	}); err != nil {
		u.log.Error().Err(err).Str("order_id", orderID).Msg("audit log write failed")
	}
}

func requireStaff(s model.Session) error {
	if !s.IsAuthenticated() {
		return NewHTTPError(http.StatusUnauthorized, "Usuario no autenticado")
	}
	if !s.Role.IsStaff() {
		return NewHTTPError(http.StatusForbidden, "Acceso denegado")
	}
	return nil
}
