package domain

import "errors"

var (
	ErrInvalidMapping  = errors.New("invalid_mapping")
	ErrProductNotFound = errors.New("product_not_found")
)
