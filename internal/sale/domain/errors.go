package domain

import "errors"

var (
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidDiscount = errors.New("invalid_discount")
	ErrInvalidVATRate  = errors.New("invalid_vat_rate")
	ErrLineNotFound    = errors.New("line_not_found")
	ErrEmptySale       = errors.New("empty_sale")
	ErrSaleFinalized   = errors.New("sale_finalized")
)
