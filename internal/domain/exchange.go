package domain

import "time"

type ExchangeStatus string

const (
	ExchangeOpened ExchangeStatus = "OPENED"
	ExchangeSold   ExchangeStatus = "SOLD"
	ExchangeFailed ExchangeStatus = "FAILED"
)

// Exchange tracks one liquidity sell order placed on the venue. Polled by
// the reconciler until terminal.
type Exchange struct {
	ID        string
	OrderID   string
	Status    ExchangeStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
