package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// The settlement rails are external collaborators. Each adapter submits
// and returns the rail's own identifier; confirmation arrives later
// through the reconciler or an inbound callback, never through Submit.

type ChainReceiptStatus string

const (
	ReceiptPending ChainReceiptStatus = "pending"
	ReceiptSuccess ChainReceiptStatus = "success"
	ReceiptFailed  ChainReceiptStatus = "failed"
)

type ChainReceipt struct {
	Status         ChainReceiptStatus
	SettlementHash string
}

type ChainTransfer struct {
	Sender       string
	Receiver     string
	TokenAddress string // empty for the native asset
	Amount       string // smallest units
	SigningKey   string // empty when the custody key signs
}

type ChainClient interface {
	Submit(ctx context.Context, transfer ChainTransfer) (string, error)
	Confirm(ctx context.Context, userOperationHash string) (ChainReceipt, error)
	Balance(ctx context.Context, address, tokenAddress string) (string, error)
}

type FiatLedgerClient interface {
	// Push moves fiat between wallet ids. The wallet rail reports the
	// result in the same call, so the executor treats it as final.
	Push(ctx context.Context, fromWallet, toWallet string, amount decimal.Decimal) (string, error)
	Balance(ctx context.Context, wallet string) (decimal.Decimal, error)
}

type ExchangeQuote struct {
	TokenAmount decimal.Decimal
	Price       decimal.Decimal
}

type OrderState string

const (
	OrderOpen   OrderState = "open"
	OrderFilled OrderState = "filled"
	OrderFailed OrderState = "failed"
)

type ExchangeClient interface {
	Quote(ctx context.Context, fiatAmount decimal.Decimal) (ExchangeQuote, error)
	Sell(ctx context.Context, tokenAmount, price decimal.Decimal) (string, error)
	OrderStatus(ctx context.Context, orderID string) (OrderState, error)
}

type BillPaymentClient interface {
	TopUp(ctx context.Context, productCode, customerID, referenceID string) (string, error)
	Price(ctx context.Context, productCode string) (decimal.Decimal, error)
}

type RecoveredKey struct {
	PrivateKey string
	Address    string
}

// KeyCustody recombines the stored shard with the caller-supplied shard.
// The planner verifies the derived address against the account before
// the key touches any rail.
type KeyCustody interface {
	Recover(ctx context.Context, storedShardRef, callerShard string) (RecoveredKey, error)
}
