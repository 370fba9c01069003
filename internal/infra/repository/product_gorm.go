package repository

import (
	"context"
	"errors"

	"heat/internal/domain/model"
	repo "heat/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 人気順→名前順で返す
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	var products []model.Product

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if q.OnlyAvailable {
		tx = tx.Where("is_available = ?", true)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}

	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	err := tx.Order("popular desc").Order("name asc").Limit(limit).Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}
