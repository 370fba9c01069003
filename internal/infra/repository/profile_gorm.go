package repository

import (
	"context"
	"errors"

	"heat/internal/domain/model"
	domainrepo "heat/internal/repository"

	"gorm.io/gorm"
)

type profileGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewProfileGormRepository(db *gorm.DB) domainrepo.ProfileRepository {
	return &profileGormRepository{db: db}
}

// IDでプロフィールを1件取得
func (r *profileGormRepository) FindByID(ctx context.Context, userID string) (model.Profile, error) {
	var p model.Profile

	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&p).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Profile{}, domainrepo.ErrNotFound
		}
		return model.Profile{}, err
	}

	return p, nil
}

// 名前・電話・住所を更新。nil の項目は NULL にする。
func (r *profileGormRepository) Update(ctx context.Context, userID string, u domainrepo.ProfileUpdate) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"name":    u.Name,
			"phone":   u.Phone,
			"address": u.Address,
		})

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Create はプロフィールを新規作成
func (r *profileGormRepository) Create(ctx context.Context, p model.Profile) error {
	if p.Role == "" {
		p.Role = model.RoleCustomer
	}
	return r.db.WithContext(ctx).Create(&p).Error
}
