package repository

import (
	"context"
	"errors"

	"heat/internal/domain/model"
	repo "heat/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// id / plate_code は DB のデフォルト値で入り、RETURNING で order に戻る
func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	items := order.Items
	order.Items = nil
	defer func() { order.Items = items }()

	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	q := listQuery(r.db.WithContext(ctx), f)

	//明細は商品名を join して読む
	q = q.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.
			Select("order_items.*, products.name AS product_name").
			Joins("LEFT JOIN products ON products.id = order_items.product_id").
			Order("order_items.created_at asc")
	})

	var orders []model.Order
	if err := q.Find(&orders).Error; err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

// listQuery は絞り込みと並び順。Limit <= 0 なら件数で切らない。
func listQuery(db *gorm.DB, f repo.OrderListFilter) *gorm.DB {
	q := db.Model(&model.Order{})

	//本人の注文だけ
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}

	q = q.Order("created_at desc")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
