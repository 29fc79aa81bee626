package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/caja/internal/catalog/domain"
	"github.com/smallbiznis/caja/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Metrics *metrics.Metrics
}

// Service keeps an in-memory snapshot of the catalog guarded by a RWMutex.
// Imports build a full replacement off to the side and swap it in one step,
// so a concurrent Find never observes products from two imports.
type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	metrics *metrics.Metrics

	mu        sync.RWMutex
	products  []domain.Product
	byRef     map[string]int
	byBarcode map[string]int
}

func New(p Params) (domain.Service, error) {
	s := &Service{
		db:      p.DB,
		log:     p.Log.Named("catalog.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
	}

	stored, err := p.Repo.ListAll(context.Background(), p.DB)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	s.swap(stored)

	return s, nil
}

func (s *Service) ImportProducts(ctx context.Context, rows [][]string, mapping domain.ColumnMapping) (domain.ImportResult, error) {
	if err := mapping.Validate(); err != nil {
		return domain.ImportResult{}, err
	}

	var (
		result   domain.ImportResult
		products []domain.Product
		seenRef  = make(map[string]struct{}, len(rows))
		seenBar  = make(map[string]struct{}, len(rows))
	)

	reject := func(i int, reason string) {
		result.Rejected = append(result.Rejected, domain.RejectedRow{Index: i, Reason: reason})
	}

	for i, row := range rows {
		reference := strings.TrimSpace(cell(row, mapping.Reference))
		if reference == "" {
			reject(i, "missing reference")
			continue
		}
		refKey := strings.ToLower(reference)
		if _, dup := seenRef[refKey]; dup {
			reject(i, "duplicate reference")
			continue
		}

		rawPrice := strings.TrimSpace(cell(row, mapping.Price))
		if rawPrice == "" {
			reject(i, "missing price")
			continue
		}
		price, err := decimal.NewFromString(strings.ReplaceAll(rawPrice, ",", "."))
		if err != nil {
			reject(i, fmt.Sprintf("invalid price %q", rawPrice))
			continue
		}
		if price.IsNegative() {
			reject(i, "negative price")
			continue
		}

		barcode := ""
		if mapping.Barcode >= 0 {
			barcode = strings.TrimSpace(cell(row, mapping.Barcode))
			if barcode != "" {
				barKey := strings.ToLower(barcode)
				if _, dup := seenBar[barKey]; dup {
					reject(i, "duplicate barcode")
					continue
				}
				seenBar[barKey] = struct{}{}
			}
		}

		description := ""
		if mapping.Description >= 0 {
			description = strings.TrimSpace(cell(row, mapping.Description))
		}

		seenRef[refKey] = struct{}{}
		products = append(products, domain.Product{
			ID:          s.genID.Generate(),
			Reference:   reference,
			Description: description,
			Barcode:     barcode,
			UnitPrice:   price,
			Position:    len(products),
		})
	}

	if err := s.repo.ReplaceAll(ctx, s.db, products); err != nil {
		return domain.ImportResult{}, fmt.Errorf("replace catalog: %w", err)
	}

	s.swap(products)

	result.Imported = len(products)
	s.metrics.ImportedRows.Add(float64(result.Imported))
	s.metrics.RejectedRows.Add(float64(len(result.Rejected)))
	s.log.Info("catalog imported",
		zap.Int("imported", result.Imported),
		zap.Int("rejected", len(result.Rejected)),
	)

	return result, nil
}

func (s *Service) Find(ctx context.Context, query string) []domain.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		matches []domain.Product
		used    = make(map[string]struct{}, 4)
	)

	if i, ok := s.byRef[query]; ok {
		matches = append(matches, s.products[i])
		used[strings.ToLower(s.products[i].Reference)] = struct{}{}
	}
	if i, ok := s.byBarcode[query]; ok {
		key := strings.ToLower(s.products[i].Reference)
		if _, dup := used[key]; !dup {
			matches = append(matches, s.products[i])
			used[key] = struct{}{}
		}
	}
	for _, p := range s.products {
		key := strings.ToLower(p.Reference)
		if _, dup := used[key]; dup {
			continue
		}
		if strings.Contains(strings.ToLower(p.Description), query) {
			matches = append(matches, p)
			used[key] = struct{}{}
		}
	}

	return matches
}

func (s *Service) All(ctx context.Context) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Service) Lookup(ctx context.Context, reference string) (domain.Product, error) {
	key := strings.ToLower(strings.TrimSpace(reference))

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.byRef[key]; ok {
		return s.products[i], nil
	}
	// Scanned codes come straight from the reader; accept them here so a scan
	// needs no prior Find round-trip.
	if i, ok := s.byBarcode[key]; ok {
		return s.products[i], nil
	}
	return domain.Product{}, domain.ErrProductNotFound
}

// swap atomically replaces the lookup snapshot.
func (s *Service) swap(products []domain.Product) {
	byRef := make(map[string]int, len(products))
	byBarcode := make(map[string]int, len(products))
	for i, p := range products {
		byRef[strings.ToLower(p.Reference)] = i
		if p.Barcode != "" {
			byBarcode[strings.ToLower(p.Barcode)] = i
		}
	}

	s.mu.Lock()
	s.products = products
	s.byRef = byRef
	s.byBarcode = byBarcode
	s.mu.Unlock()
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return row[index]
}
