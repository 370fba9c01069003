package repository

import (
	"context"
	"errors"

	"heat/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Category      model.Category
	OnlyAvailable bool
	Limit         int
}

// 商品の取得だけを約束（カタログは外部で管理）
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
}
