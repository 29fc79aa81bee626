package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	saledomain "github.com/smallbiznis/caja/internal/sale/domain"
	ticketdomain "github.com/smallbiznis/caja/internal/ticket/domain"
)

// SessionStatus is the register lifecycle state. Closing is terminal for a
// session instance; a new open creates a new session id.
type SessionStatus string

const (
	StatusOpen   SessionStatus = "open"
	StatusClosed SessionStatus = "closed"
)

// Session is one bounded register period. It owns the charged sales recorded
// between open and close, plus the ticket template snapshotted at open time.
type Session struct {
	ID       snowflake.ID          `gorm:"primaryKey" json:"id"`
	Status   SessionStatus         `gorm:"type:text;not null;index" json:"status"`
	OpenedAt time.Time             `json:"opened_at"`
	ClosedAt *time.Time            `json:"closed_at,omitempty"`
	Template ticketdomain.Template `gorm:"embedded;embeddedPrefix:template_" json:"template"`
	Sales    []saledomain.Sale     `gorm:"foreignKey:SessionID" json:"sales"`
}

func (Session) TableName() string { return "register_sessions" }

// SessionTotals are the session-wide aggregates, summed across every charged
// sale with the same sum-then-aggregate-then-round discipline as sale totals.
type SessionTotals struct {
	SaleCount     int                  `json:"sale_count"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	DiscountTotal decimal.Decimal      `json:"discount_total"`
	TaxByRate     []saledomain.RateTax `json:"tax_by_rate"`
	GrandTotal    decimal.Decimal      `json:"grand_total"`
}

// Totals folds every charged sale's lines into one aggregate.
func (s *Session) Totals() SessionTotals {
	var lines []saledomain.Line
	for _, sale := range s.Sales {
		lines = append(lines, sale.Lines...)
	}
	t := saledomain.SumLines(lines)
	return SessionTotals{
		SaleCount:     len(s.Sales),
		Subtotal:      t.Subtotal,
		DiscountTotal: t.DiscountTotal,
		TaxByRate:     t.TaxByRate,
		GrandTotal:    t.GrandTotal,
	}
}

// Validate checks the invariants a loaded session must satisfy. A violation
// means the persisted state is corrupt and the session must not be used.
func (s *Session) Validate() error {
	if s.Status == StatusOpen && s.ClosedAt != nil {
		return fmt.Errorf("%w: open session %d has a close timestamp", ErrCorruptState, s.ID)
	}
	if s.Status == StatusClosed && s.ClosedAt == nil {
		return fmt.Errorf("%w: closed session %d has no close timestamp", ErrCorruptState, s.ID)
	}
	for _, sale := range s.Sales {
		if sale.Status != saledomain.StatusCharged {
			return fmt.Errorf("%w: session %d holds uncharged sale %d", ErrCorruptState, s.ID, sale.ID)
		}
		if len(sale.Lines) == 0 {
			return fmt.Errorf("%w: charged sale %d has no lines", ErrCorruptState, sale.ID)
		}
		for _, line := range sale.Lines {
			if !line.Quantity.IsPositive() {
				return fmt.Errorf("%w: sale %d line %d has non-positive quantity", ErrCorruptState, sale.ID, line.ID)
			}
			if line.UnitPrice.IsNegative() {
				return fmt.Errorf("%w: sale %d line %d has negative price", ErrCorruptState, sale.ID, line.ID)
			}
		}
	}
	return nil
}
