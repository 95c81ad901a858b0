package usecase

import (
	"context"

	"github.com/langitpay/settlement-service/internal/config"
	"github.com/langitpay/settlement-service/internal/domain"
	"github.com/langitpay/settlement-service/internal/infrastructure/kafka"
	"github.com/langitpay/settlement-service/internal/infrastructure/metrics"
	transactiondto "github.com/langitpay/settlement-service/internal/usecase/dto/transaction"
	"github.com/shopspring/decimal"
)

type TransactionUsecase interface {
	Transfer(ctx context.Context, input *transactiondto.TransferInput) (*domain.Transaction, error)
	BuyToken(ctx context.Context, input *transactiondto.BuyTokenInput) (*domain.Transaction, error)
	BuyProduct(ctx context.Context, input *transactiondto.BuyProductInput) (*domain.Transaction, error)

	FinalizeStep(ctx context.Context, externalID string, outcome domain.StepStatus, settlementHash string) error
	FinalizeChainTransaction(ctx context.Context, chainTx *domain.ChainTransaction, receipt domain.ChainReceipt) error
	FinalizeExchangeOrder(ctx context.Context, exchange *domain.Exchange, state domain.OrderState) error

	GetTransactionByID(transactionID string) (*domain.Transaction, error)
	ListTokens() ([]*domain.Token, error)
	ProductPrice(ctx context.Context, productCode string) (decimal.Decimal, decimal.Decimal, error)
}

type DefaultTransactionUsecase struct {
	TransactionRepo domain.TransactionRepository
	ChainTxRepo     domain.ChainTransactionRepository
	ExchangeRepo    domain.ExchangeRepository
	AccountRepo     domain.AccountRepository
	TokenRepo       domain.TokenRepository

	ChainClient    domain.ChainClient
	FiatClient     domain.FiatLedgerClient
	ExchangeClient domain.ExchangeClient
	BillpayClient  domain.BillPaymentClient
	KeyCustody     domain.KeyCustody

	Custody   config.Custody
	Publisher *kafka.KafkaPublisher
	Metrics   *metrics.SettlementMetrics
}

func NewDefaultTransactionUsecase(
	transactionRepo domain.TransactionRepository,
	chainTxRepo domain.ChainTransactionRepository,
	exchangeRepo domain.ExchangeRepository,
	accountRepo domain.AccountRepository,
	tokenRepo domain.TokenRepository,
	chainClient domain.ChainClient,
	fiatClient domain.FiatLedgerClient,
	exchangeClient domain.ExchangeClient,
	billpayClient domain.BillPaymentClient,
	keyCustody domain.KeyCustody,
	custody config.Custody,
	kafkaPublisher *kafka.KafkaPublisher,
	settlementMetrics *metrics.SettlementMetrics) *DefaultTransactionUsecase {

	return &DefaultTransactionUsecase{
		TransactionRepo: transactionRepo,
		ChainTxRepo:     chainTxRepo,
		ExchangeRepo:    exchangeRepo,
		AccountRepo:     accountRepo,
		TokenRepo:       tokenRepo,
		ChainClient:     chainClient,
		FiatClient:      fiatClient,
		ExchangeClient:  exchangeClient,
		BillpayClient:   billpayClient,
		KeyCustody:      keyCustody,
		Custody:         custody,
		Publisher:       kafkaPublisher,
		Metrics:         settlementMetrics,
	}
}
