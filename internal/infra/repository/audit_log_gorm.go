package repository

import (
	"context"

	"heat/internal/domain/model"
	repo "heat/internal/repository"

	"gorm.io/gorm"
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *AuditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	if err := auditQuery(r.db.WithContext(ctx), f).Find(&logs).Error; err != nil {
		return []model.AuditLog{}, err
	}
	return logs, nil
}

func auditQuery(db *gorm.DB, f repo.AuditLogFilter) *gorm.DB {
	q := db.Model(&model.AuditLog{})

	if f.ActorUserID != nil {
		q = q.Where("actor_user_id = ?", *f.ActorUserID)
	}
	if f.Action != nil {
		q = q.Where("action = ?", *f.Action)
	}
	if f.ResourceID != nil {
		q = q.Where("resource_type = ? AND resource_id = ?", model.AuditResourceOrder, *f.ResourceID)
	}

	//同時刻は id で決める
	q = q.Order("created_at desc, id desc")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	return q
}
