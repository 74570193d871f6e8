package domain

import "errors"

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventTitleRequired  = errors.New("event title required")
	ErrInvalidCapacity     = errors.New("invalid capacity")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTicketNotActive     = errors.New("ticket not active")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrInvalidBalance      = errors.New("invalid balance")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrConflict            = errors.New("concurrent balance modification")
	ErrLoggingFailure      = errors.New("logging failure")
	ErrTokenExists         = errors.New("qr token already exists")
	ErrInvalidID           = errors.New("invalid id")
)
