package domain

import "time"

type TransactionType string

const (
	TypeTransfer   TransactionType = "TRANSFER"
	TypeBuyToken   TransactionType = "BUY_TOKEN"
	TypeBuyProduct TransactionType = "BUY_PRODUCT"
)

type TransferType string

const (
	TransferCryptoToCrypto TransferType = "CRYPTO_TO_CRYPTO"
	TransferNativeToNative TransferType = "NATIVE_TO_NATIVE"
	TransferCryptoToFiat   TransferType = "CRYPTO_TO_FIAT"
	TransferNativeToFiat   TransferType = "NATIVE_TO_FIAT"
)

// IsFiatSettling reports whether the transfer ends on the fiat ledger,
// meaning the crypto leg lands on the platform custody address first.
func (t TransferType) IsFiatSettling() bool {
	return t == TransferCryptoToFiat || t == TransferNativeToFiat
}

type TransactionStatus string

const (
	TransactionInit    TransactionStatus = "INIT"
	TransactionSending TransactionStatus = "SENDING"
	TransactionSent    TransactionStatus = "SENT"
	TransactionFailed  TransactionStatus = "FAILED"
)

func (s TransactionStatus) Terminal() bool {
	return s == TransactionSent || s == TransactionFailed
}

// Transaction is one settlement saga. Its terminal status is a function of
// its steps and is only ever set by the finalizer.
type Transaction struct {
	ID             string
	Type           TransactionType
	TransferType   TransferType
	Sender         string
	Receiver       string
	SentAmount     string // smallest units, decimal string
	ReceivedAmount string // smallest units, decimal string
	SentToken      string
	ReceivedToken  string
	SettlementHash string
	PaymentCode    string
	Status         TransactionStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type StepType string

const (
	StepAAChainTransaction  StepType = "AA_CHAIN_TRANSACTION"
	StepEOAChainTransaction StepType = "EOA_CHAIN_TRANSACTION"
	StepWalletTransfer      StepType = "WALLET_TRANSFER"
	StepWalletPayment       StepType = "WALLET_PAYMENT"
	StepProductTopup        StepType = "PRODUCT_TOPUP"
)

type StepStatus string

const (
	StepInit       StepStatus = "INIT"
	StepProcessing StepStatus = "PROCESSING"
	StepSuccess    StepStatus = "SUCCESS"
	StepFailed     StepStatus = "FAILED"
	StepReverted   StepStatus = "REVERTED"
)

func (s StepStatus) Terminal() bool {
	return s == StepSuccess || s == StepFailed || s == StepReverted
}

// TransactionStep is one leg of a saga. Steps run one at a time in
// ascending priority order; ExternalID is the rail's own identifier and
// the only correlation key the finalizer accepts.
//
// Which settlement parameters apply depends on Type: chain steps use
// Sender/Receiver/TokenAddress/TokenAmount, wallet steps use
// Sender/Receiver wallet ids with FiatAmount, and PRODUCT_TOPUP carries
// the bill-payment product code in TokenAddress with the customer number
// in Receiver.
type TransactionStep struct {
	ID            string
	TransactionID string
	Type          StepType
	Priority      int
	ExternalID    string
	Sender        string
	Receiver      string
	TokenAddress  string
	TokenAmount   string // smallest units, decimal string
	FiatAmount    string
	Status        StepStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
