package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	Get(ctx context.Context) (Template, error)
	Update(ctx context.Context, req UpdateRequest) (Template, error)
}

type Repository interface {
	Find(ctx context.Context, db *gorm.DB) (*TemplateRecord, error)
	Upsert(ctx context.Context, db *gorm.DB, record *TemplateRecord) error
}

type UpdateRequest struct {
	Header         *string          `json:"header,omitempty"`
	Footer         *string          `json:"footer,omitempty"`
	DefaultVATRate *decimal.Decimal `json:"default_vat_rate,omitempty"`
}
