package repository

import (
	"context"

	"heat/internal/domain/model"
)

// プロフィール更新で書き換える項目
type ProfileUpdate struct {
	Name    *string
	Phone   *string
	Address *string
}

type ProfileRepository interface {
	// 行が無ければ ErrNotFound
	FindByID(ctx context.Context, userID string) (model.Profile, error)
	// Update は更新した行数を返す（0なら行が無い）
	Update(ctx context.Context, userID string, u ProfileUpdate) (int64, error)
	Create(ctx context.Context, p model.Profile) error
}
