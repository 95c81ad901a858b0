package domain

import "errors"

var (
	ErrStepNotFound        = errors.New("transaction step not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTokenNotFound       = errors.New("token not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAmountBelowQuote    = errors.New("sent amount below executable quote")
	ErrKeyMismatch         = errors.New("recovered key does not match account address")
	ErrCompensationFailed  = errors.New("failed to compensate settled step")
)
