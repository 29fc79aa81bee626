package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/caja/internal/export"
	saledomain "github.com/smallbiznis/caja/internal/sale/domain"
	"gorm.io/gorm"
)

// StatusInfo is the queryable register state.
type StatusInfo struct {
	Open    bool     `json:"open"`
	Session *Session `json:"session,omitempty"`
}

// AddLineRequest adds one product to the working sale. Optional fields fall
// back to the catalog price, zero discount and the template's VAT rate.
type AddLineRequest struct {
	Reference       string           `json:"reference"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount,omitempty"`
	VATRate         *decimal.Decimal `json:"vat_rate,omitempty"`
}

// ChargeResult reports a finalized sale: its ticket and the print outcome.
// A print failure does not undo the charge.
type ChargeResult struct {
	Sale       saledomain.Sale   `json:"sale"`
	Totals     saledomain.Totals `json:"totals"`
	Ticket     string            `json:"ticket"`
	Printed    bool              `json:"printed"`
	PrintError string            `json:"print_error,omitempty"`
}

// CloseResult carries everything the close reconciliation derives from the
// session: export rows, the logical CSV cells and the closing ticket.
type CloseResult struct {
	Session       Session       `json:"session"`
	Totals        SessionTotals `json:"totals"`
	ExportRows    []export.Row  `json:"export_rows"`
	ExportCSV     [][]string    `json:"export_csv"`
	ClosingTicket string        `json:"closing_ticket"`
	Printed       bool          `json:"printed"`
	PrintError    string        `json:"print_error,omitempty"`
}

type Service interface {
	// Open transitions CLOSED -> OPEN, snapshotting the ticket template.
	Open(ctx context.Context) (*Session, error)
	Status(ctx context.Context) StatusInfo
	// Totals returns the running session aggregates while open.
	Totals(ctx context.Context) (SessionTotals, error)
	// Close transitions OPEN -> CLOSED and runs the reconciliation.
	Close(ctx context.Context) (*CloseResult, error)
	// LastClose returns the most recent close result of this process.
	LastClose(ctx context.Context) (*CloseResult, error)

	// Working-sale ledger operations. Lines may be edited regardless of the
	// register state; charging requires an open session.
	CurrentSale(ctx context.Context) (*saledomain.Sale, error)
	AddLine(ctx context.Context, req AddLineRequest) (*saledomain.Sale, error)
	EditLine(ctx context.Context, index int, patch saledomain.LinePatch) (*saledomain.Sale, error)
	RemoveLine(ctx context.Context, index int) (*saledomain.Sale, error)
	ChargeCurrent(ctx context.Context) (*ChargeResult, error)
	// ChargeSale appends an already-charged sale to the open session.
	ChargeSale(ctx context.Context, sale *saledomain.Sale) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, session *Session) error
	Update(ctx context.Context, db *gorm.DB, session *Session) error
	InsertSale(ctx context.Context, db *gorm.DB, sale *saledomain.Sale) error
	FindOpen(ctx context.Context, db *gorm.DB) (*Session, error)
}
