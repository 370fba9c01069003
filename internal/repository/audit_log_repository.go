package repository

import (
	"context"

	"heat/internal/domain/model"
)

// 監査ログの絞り込み（nil は条件なし）
type AuditLogFilter struct {
	ActorUserID *string
	Action      *model.AuditAction
	ResourceID  *string
	// 0 以下なら全件
	Limit  int
	Offset int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// List は新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
