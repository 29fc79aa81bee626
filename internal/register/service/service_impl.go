package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/caja/internal/catalog/domain"
	"github.com/smallbiznis/caja/internal/clock"
	"github.com/smallbiznis/caja/internal/config"
	"github.com/smallbiznis/caja/internal/export"
	"github.com/smallbiznis/caja/internal/observability/metrics"
	"github.com/smallbiznis/caja/internal/printer"
	"github.com/smallbiznis/caja/internal/register/domain"
	saledomain "github.com/smallbiznis/caja/internal/sale/domain"
	ticketdomain "github.com/smallbiznis/caja/internal/ticket/domain"
	"github.com/smallbiznis/caja/internal/ticket/format"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg       config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Catalog   catalogdomain.Service
	Templates ticketdomain.Service
	Printer   printer.Transport
	Clock     clock.Clock
	Metrics   *metrics.Metrics
}

// Service owns the register state machine. One mutex guards the whole
// open/charge/close sequence so the single-OPEN-session invariant holds even
// under concurrent callers.
type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	catalog   catalogdomain.Service
	templates ticketdomain.Service
	printer   printer.Transport
	clock     clock.Clock
	metrics   *metrics.Metrics
	basis     export.Basis

	mu        sync.Mutex
	session   *domain.Session
	working   *saledomain.Sale
	lastClose *domain.CloseResult
}

// New builds the register service and restores a previously open session
// from the store. Corrupt persisted state blocks startup rather than being
// silently repaired.
func New(p Params) (domain.Service, error) {
	s := &Service{
		db:        p.DB,
		log:       p.Log.Named("register.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		catalog:   p.Catalog,
		templates: p.Templates,
		printer:   p.Printer,
		clock:     p.Clock,
		metrics:   p.Metrics,
		basis:     export.ParseBasis(p.Cfg.ExportBasis),
	}

	stored, err := p.Repo.FindOpen(context.Background(), p.DB)
	if err != nil {
		return nil, fmt.Errorf("load open session: %w", err)
	}
	if stored != nil {
		if err := stored.Validate(); err != nil {
			return nil, err
		}
		s.session = stored
		s.metrics.RegisterOpen.Set(1)
		s.log.Info("open session restored",
			zap.Int64("session_id", int64(stored.ID)),
			zap.Int("sales", len(stored.Sales)),
		)
	}

	return s, nil
}

func (s *Service) Open(ctx context.Context) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return nil, domain.ErrAlreadyOpen
	}

	tpl, err := s.templates.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ticket template: %w", err)
	}

	session := &domain.Session{
		ID:       s.genID.Generate(),
		Status:   domain.StatusOpen,
		OpenedAt: s.clock.Now(),
		Template: tpl,
	}
	if err := s.repo.Insert(ctx, s.db, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.session = session
	if s.working == nil {
		s.working = saledomain.NewSale(s.genID.Generate(), tpl.DefaultVATRate, s.clock.Now())
	}

	s.metrics.RegisterOpen.Set(1)
	s.log.Info("register opened", zap.Int64("session_id", int64(session.ID)))

	snapshot := *session
	return &snapshot, nil
}

func (s *Service) Status(ctx context.Context) domain.StatusInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return domain.StatusInfo{Open: false}
	}
	snapshot := *s.session
	return domain.StatusInfo{Open: true, Session: &snapshot}
}

func (s *Service) Totals(ctx context.Context) (domain.SessionTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return domain.SessionTotals{}, domain.ErrRegisterNotOpen
	}
	return s.session.Totals(), nil
}

func (s *Service) Close(ctx context.Context) (*domain.CloseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, domain.ErrRegisterNotOpen
	}

	now := s.clock.Now()
	totals := s.session.Totals()
	rows := export.BuildRows(s.session.Sales, s.basis)

	summary := ticketdomain.ClosingSummary{
		TaxableBase: totals.Subtotal.Sub(totals.DiscountTotal),
		TaxByRate:   totals.TaxByRate,
		CashTotal:   totals.GrandTotal,
	}
	for _, row := range rows {
		summary.Units = append(summary.Units, ticketdomain.UnitCount{
			Reference: row.Reference,
			Units:     row.UnitsSold,
		})
	}
	closingTicket := format.FormatClosingTicket(summary, s.session.Template, now)

	s.session.Status = domain.StatusClosed
	s.session.ClosedAt = &now
	if err := s.repo.Update(ctx, s.db, s.session); err != nil {
		s.session.Status = domain.StatusOpen
		s.session.ClosedAt = nil
		return nil, fmt.Errorf("persist close: %w", err)
	}

	result := &domain.CloseResult{
		Session:       *s.session,
		Totals:        totals,
		ExportRows:    rows,
		ExportCSV:     export.RenderCSV(rows),
		ClosingTicket: closingTicket,
	}
	result.Printed, result.PrintError = s.submit(ctx, closingTicket)

	s.lastClose = result
	s.session = nil
	s.metrics.RegisterOpen.Set(0)
	s.log.Info("register closed",
		zap.Int64("session_id", int64(result.Session.ID)),
		zap.Int("sales", result.Totals.SaleCount),
		zap.String("total", result.Totals.GrandTotal.StringFixed(2)),
	)

	return result, nil
}

func (s *Service) LastClose(ctx context.Context) (*domain.CloseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastClose == nil {
		return nil, domain.ErrNoClosedSession
	}
	return s.lastClose, nil
}

func (s *Service) CurrentSale(ctx context.Context) (*saledomain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureWorking(ctx); err != nil {
		return nil, err
	}
	return s.workingSnapshot(), nil
}

func (s *Service) AddLine(ctx context.Context, req domain.AddLineRequest) (*saledomain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.catalog.Lookup(ctx, req.Reference)
	if err != nil {
		return nil, err
	}
	if err := s.ensureWorking(ctx); err != nil {
		return nil, err
	}

	_, err = s.working.AddLine(s.genID.Generate(), saledomain.ProductSnapshot{
		Reference:   product.Reference,
		Description: product.Description,
		Barcode:     product.Barcode,
		UnitPrice:   product.UnitPrice,
	}, saledomain.LineInput{
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		DiscountPercent: req.DiscountPercent,
		DiscountAmount:  req.DiscountAmount,
		VATRate:         req.VATRate,
	})
	if err != nil {
		return nil, err
	}

	return s.workingSnapshot(), nil
}

func (s *Service) EditLine(ctx context.Context, index int, patch saledomain.LinePatch) (*saledomain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.working == nil {
		return nil, saledomain.ErrLineNotFound
	}
	if _, err := s.working.EditLine(index, patch); err != nil {
		return nil, err
	}
	return s.workingSnapshot(), nil
}

func (s *Service) RemoveLine(ctx context.Context, index int) (*saledomain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.working == nil {
		return nil, saledomain.ErrLineNotFound
	}
	if err := s.working.RemoveLine(index); err != nil {
		return nil, err
	}
	return s.workingSnapshot(), nil
}

func (s *Service) ChargeCurrent(ctx context.Context) (*domain.ChargeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, domain.ErrRegisterNotOpen
	}
	if s.working == nil || len(s.working.Lines) == 0 {
		return nil, saledomain.ErrEmptySale
	}

	now := s.clock.Now()
	if err := s.working.Charge(now); err != nil {
		return nil, err
	}
	s.working.SessionID = s.session.ID

	if err := s.repo.InsertSale(ctx, s.db, s.working); err != nil {
		return nil, fmt.Errorf("persist sale: %w", err)
	}

	charged := *s.working
	s.session.Sales = append(s.session.Sales, charged)

	totals := charged.Totals()
	ticketText := format.FormatSaleTicket(charged, s.session.Template, now)

	result := &domain.ChargeResult{
		Sale:   charged,
		Totals: totals,
		Ticket: ticketText,
	}
	result.Printed, result.PrintError = s.submit(ctx, ticketText)

	s.metrics.SalesCharged.Inc()
	s.metrics.ChargedAmount.Add(totals.GrandTotal.InexactFloat64())
	s.log.Info("sale charged",
		zap.Int64("sale_id", int64(charged.ID)),
		zap.Int("lines", len(charged.Lines)),
		zap.String("total", totals.GrandTotal.StringFixed(2)),
	)

	s.working = saledomain.NewSale(s.genID.Generate(), s.session.Template.DefaultVATRate, now)

	return result, nil
}

func (s *Service) ChargeSale(ctx context.Context, sale *saledomain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return domain.ErrRegisterNotOpen
	}
	if sale == nil || sale.Status != saledomain.StatusCharged {
		return domain.ErrSaleNotCharged
	}

	sale.SessionID = s.session.ID
	if err := s.repo.InsertSale(ctx, s.db, sale); err != nil {
		return fmt.Errorf("persist sale: %w", err)
	}

	s.session.Sales = append(s.session.Sales, *sale)
	s.metrics.SalesCharged.Inc()
	return nil
}

// submit sends a ticket through the transport and reports the outcome.
// Failures are recorded, never retried here.
func (s *Service) submit(ctx context.Context, ticketText string) (bool, string) {
	if err := s.printer.Submit(ctx, ticketText, ""); err != nil {
		s.metrics.PrintFailures.Inc()
		s.log.Warn("ticket submission failed", zap.Error(err))
		return false, err.Error()
	}
	s.metrics.TicketsPrinted.Inc()
	return true, ""
}

func (s *Service) ensureWorking(ctx context.Context) error {
	if s.working != nil {
		return nil
	}

	var rate decimal.Decimal
	if s.session != nil {
		rate = s.session.Template.DefaultVATRate
	} else {
		tpl, err := s.templates.Get(ctx)
		if err != nil {
			return fmt.Errorf("load ticket template: %w", err)
		}
		rate = tpl.DefaultVATRate
	}

	s.working = saledomain.NewSale(s.genID.Generate(), rate, s.clock.Now())
	return nil
}

func (s *Service) workingSnapshot() *saledomain.Sale {
	snapshot := *s.working
	snapshot.Lines = make([]saledomain.Line, len(s.working.Lines))
	copy(snapshot.Lines, s.working.Lines)
	return &snapshot
}
