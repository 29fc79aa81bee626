package repository

import (
	"context"

	"github.com/smallbiznis/caja/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// ReplaceAll swaps the stored catalog in one transaction so concurrent
// readers of the table never see a half-replaced import.
func (r *repo) ReplaceAll(ctx context.Context, db *gorm.DB, products []domain.Product) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM products`).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		return tx.Create(&products).Error
	})
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var products []domain.Product
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Order("position asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
