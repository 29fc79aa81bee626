package repository

import (
	"context"

	"github.com/smallbiznis/caja/internal/register/domain"
	saledomain "github.com/smallbiznis/caja/internal/sale/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).
		Omit(clause.Associations).
		Create(session).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", session.ID).
		Updates(map[string]any{
			"status":    session.Status,
			"closed_at": session.ClosedAt,
		}).Error
}

func (r *repo) InsertSale(ctx context.Context, db *gorm.DB, sale *saledomain.Sale) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(sale).Error; err != nil {
			return err
		}
		if len(sale.Lines) == 0 {
			return nil
		}
		return tx.Create(&sale.Lines).Error
	})
}

func (r *repo) FindOpen(ctx context.Context, db *gorm.DB) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).
		Where("status = ?", domain.StatusOpen).
		Limit(1).
		Find(&session).Error
	if err != nil {
		return nil, err
	}
	if session.ID == 0 {
		return nil, nil
	}

	err = db.WithContext(ctx).
		Where("session_id = ?", session.ID).
		Order("charged_at asc, id asc").
		Preload("Lines", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position asc")
		}).
		Find(&session.Sales).Error
	if err != nil {
		return nil, err
	}

	return &session, nil
}
