package transactiondto

// TransferInput carries a validated transfer intent. Amounts are
// human-readable decimal strings; the planner converts them to smallest
// units using the token's decimals.
type TransferInput struct {
	SenderAccountID string
	CallerShard     string
	Receiver        string // account-abstraction address, or email for fiat settlement
	SentAmount      string
	ReceivedAmount  string // fiat amount, required for fiat-settling transfers
	SentToken       string // token address, empty for the native asset
}

type BuyTokenInput struct {
	ReceiverEmail  string
	ReceivedAmount string
	FiatAmount     string
	Token          string
}

type BuyProductInput struct {
	SenderAccountID string
	CallerShard     string
	ProductCode     string
	CustomerID      string
}
