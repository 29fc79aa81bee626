package repository

import (
	"context"

	"github.com/smallbiznis/caja/internal/ticket/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB) (*domain.TemplateRecord, error) {
	var record domain.TemplateRecord
	err := db.WithContext(ctx).
		Where("id = ?", 1).
		Limit(1).
		Find(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, record *domain.TemplateRecord) error {
	record.ID = 1
	return db.WithContext(ctx).Save(record).Error
}
