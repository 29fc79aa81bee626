package service

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/caja/internal/clock"
	"github.com/smallbiznis/caja/internal/config"
	"github.com/smallbiznis/caja/internal/ticket/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   domain.Repository
	Holder *config.TemplateHolder
	Clock  clock.Clock
}

// Service resolves the effective ticket template: the persisted row when one
// exists, otherwise the file-backed defaults from the config holder.
type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	holder *config.TemplateHolder
	clock  clock.Clock

	mu sync.Mutex
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("ticket.service"),
		repo:   p.Repo,
		holder: p.Holder,
		clock:  p.Clock,
	}
}

func (s *Service) Get(ctx context.Context) (domain.Template, error) {
	record, err := s.repo.Find(ctx, s.db)
	if err != nil {
		return domain.Template{}, err
	}
	if record != nil {
		return record.Template, nil
	}

	cfg := s.holder.Get()
	return domain.Template{
		Header:         cfg.Header,
		Footer:         cfg.Footer,
		DefaultVATRate: decimal.NewFromFloat(cfg.DefaultVATRate),
	}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.Template, error) {
	if req.DefaultVATRate != nil {
		rate := *req.DefaultVATRate
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			return domain.Template{}, domain.ErrInvalidRate
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx)
	if err != nil {
		return domain.Template{}, err
	}

	if req.Header != nil {
		current.Header = strings.TrimSpace(*req.Header)
	}
	if req.Footer != nil {
		current.Footer = strings.TrimSpace(*req.Footer)
	}
	if req.DefaultVATRate != nil {
		current.DefaultVATRate = *req.DefaultVATRate
	}

	record := domain.TemplateRecord{
		Template:  current,
		UpdatedAt: s.clock.Now(),
	}
	if err := s.repo.Upsert(ctx, s.db, &record); err != nil {
		return domain.Template{}, err
	}

	s.log.Info("ticket template updated")
	return current, nil
}
