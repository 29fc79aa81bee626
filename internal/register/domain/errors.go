package domain

import "errors"

var (
	ErrAlreadyOpen     = errors.New("already_open")
	ErrRegisterNotOpen = errors.New("register_not_open")
	ErrSaleNotCharged  = errors.New("sale_not_charged")
	ErrNoClosedSession = errors.New("no_closed_session")
	ErrCorruptState    = errors.New("corrupt_state")
)
