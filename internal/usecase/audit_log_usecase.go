package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"heat/internal/domain/model"
	repo "heat/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AuditLogQuery は GET /admin/audit-logs の絞り込み（空文字は条件なし）
type AuditLogQuery struct {
	OrderID string
	ActorID string
	Action  string
	Limit   int
	Offset  int
}

// スタッフの遷移1件
type AuditEntry struct {
	ID        int64             `json:"id"`
	ActorID   string            `json:"actor_user_id"`
	Action    model.AuditAction `json:"action"`
	OrderID   string            `json:"order_id"`
	From      model.OrderStatus `json:"from,omitempty"`
	To        model.OrderStatus `json:"to,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type AuditLogPage struct {
	Entries []AuditEntry `json:"entries"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
}

// AuditLogUsecase はスタッフ操作の履歴を読む
type AuditLogUsecase struct {
	logs repo.AuditLogRepository
	log  zerolog.Logger
}

func NewAuditLogUsecase(logs repo.AuditLogRepository, log zerolog.Logger) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs, log: log}
}

// List は新しい順。limit は 1..200（0 なら 50）。
func (u *AuditLogUsecase) List(ctx context.Context, s model.Session, q AuditLogQuery) (AuditLogPage, error) {
	if err := requireStaff(s); err != nil {
		return AuditLogPage{}, err
	}

	if q.Limit < 0 || q.Limit > maxAuditLimit || q.Offset < 0 {
		return AuditLogPage{}, NewHTTPError(http.StatusBadRequest, "Paginación inválida")
	}
	if q.Limit == 0 {
		q.Limit = defaultAuditLimit
	}

	f := repo.AuditLogFilter{Limit: q.Limit, Offset: q.Offset}
	if v := strings.TrimSpace(q.OrderID); v != "" {
		f.ResourceID = &v
	}
	if v := strings.TrimSpace(q.ActorID); v != "" {
		f.ActorUserID = &v
	}
	if v := strings.TrimSpace(q.Action); v != "" {
		action := model.AuditAction(strings.ToUpper(v))
		if action != model.AuditActionAdvanceOrderStatus && action != model.AuditActionCancelOrder {
			return AuditLogPage{}, NewHTTPError(http.StatusBadRequest, "Acción inválida")
		}
		f.Action = &action
	}

	rows, err := u.logs.List(ctx, f)
	if err != nil {
		u.log.Error().Err(err).Msg("audit log list failed")
		return AuditLogPage{}, NewHTTPError(http.StatusInternalServerError, "Error al cargar historial")
	}

	out := AuditLogPage{Entries: make([]AuditEntry, 0, len(rows)), Limit: q.Limit, Offset: q.Offset}
	for _, l := range rows {
		out.Entries = append(out.Entries, AuditEntry{
			ID:        l.ID,
			ActorID:   l.ActorUserID,
			Action:    l.Action,
			OrderID:   l.ResourceID,
			From:      auditStatus(l.BeforeJSON),
			To:        auditStatus(l.AfterJSON),
			CreatedAt: l.CreatedAt,
		})
	}
	return out, nil
}

// {"status":"x"} から status を取り出す（読めなければ空）
func auditStatus(raw string) model.OrderStatus {
	var v struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return ""
	}
	return v.Status
}
