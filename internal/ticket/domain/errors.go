package domain

import "errors"

var ErrInvalidRate = errors.New("invalid_rate")
