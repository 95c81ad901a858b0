package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/langitpay/settlement-service/internal/domain"
	"github.com/langitpay/settlement-service/internal/infrastructure/metrics"
	usecase "github.com/langitpay/settlement-service/internal/usecase/transaction"
)

// Reconciler polls pending chain submissions and open exchange orders
// and feeds terminal outcomes into the finalizer. Ticks never overlap;
// a tick that fires while the previous pass is still running is skipped.
type Reconciler struct {
	TransactionUsecase usecase.TransactionUsecase
	ChainTxRepo        domain.ChainTransactionRepository
	ExchangeRepo       domain.ExchangeRepository
	AccountRepo        domain.AccountRepository
	ChainClient        domain.ChainClient
	ExchangeClient     domain.ExchangeClient
	Metrics            *metrics.SettlementMetrics

	Interval      time.Duration
	BatchSize     int
	PendingWindow time.Duration

	running atomic.Bool
}

func NewReconciler(
	transactionUsecase usecase.TransactionUsecase,
	chainTxRepo domain.ChainTransactionRepository,
	exchangeRepo domain.ExchangeRepository,
	accountRepo domain.AccountRepository,
	chainClient domain.ChainClient,
	exchangeClient domain.ExchangeClient,
	settlementMetrics *metrics.SettlementMetrics,
	interval time.Duration,
	batchSize int,
	pendingWindow time.Duration) *Reconciler {

	return &Reconciler{
		TransactionUsecase: transactionUsecase,
		ChainTxRepo:        chainTxRepo,
		ExchangeRepo:       exchangeRepo,
		AccountRepo:        accountRepo,
		ChainClient:        chainClient,
		ExchangeClient:     exchangeClient,
		Metrics:            settlementMetrics,
		Interval:           interval,
		BatchSize:          batchSize,
		PendingWindow:      pendingWindow,
	}
}

// Run blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.running.CompareAndSwap(false, true) {
				continue
			}
			r.pass(ctx)
			r.running.Store(false)
		}
	}
}

func (r *Reconciler) pass(ctx context.Context) {
	start := time.Now()
	r.reconcileChainTransactions(ctx)
	if r.Metrics != nil {
		r.Metrics.RecordReconcilerPass("chain", time.Since(start).Seconds())
	}

	start = time.Now()
	r.reconcileExchanges(ctx)
	if r.Metrics != nil {
		r.Metrics.RecordReconcilerPass("exchange", time.Since(start).Seconds())
	}
}

func (r *Reconciler) reconcileChainTransactions(ctx context.Context) {
	batch, err := r.ChainTxRepo.FindOldestSubmitted(r.BatchSize)
	if err != nil {
		slog.Error("failed to load submitted chain transactions", "error", err.Error())
		return
	}

	for _, chainTx := range batch {
		if err := r.reconcileChainTransaction(ctx, chainTx); err != nil {
			slog.Error("failed to reconcile chain transaction",
				"chain_transaction_id", chainTx.ID,
				"user_operation_hash", chainTx.UserOperationHash,
				"error", err.Error())
		}
	}
}

func (r *Reconciler) reconcileChainTransaction(ctx context.Context, chainTx *domain.ChainTransaction) error {
	receipt, err := r.ChainClient.Confirm(ctx, chainTx.UserOperationHash)
	if err != nil {
		return err
	}

	if receipt.Status == domain.ReceiptPending {
		// Never forced to a conclusion; old submissions just get noisier
		if time.Since(chainTx.CreatedAt) > r.PendingWindow {
			slog.Warn("chain transaction still pending past window",
				"chain_transaction_id", chainTx.ID,
				"age", time.Since(chainTx.CreatedAt).String())
		}
		return nil
	}

	if chainTx.ActionType == domain.ActionDeployAA {
		return r.resolveAccountDeploy(chainTx, receipt)
	}

	// The tracking row and the step transition commit together; a
	// failure here leaves the row SUBMITTED and the next pass retries
	return r.TransactionUsecase.FinalizeChainTransaction(ctx, chainTx, receipt)
}

func (r *Reconciler) resolveAccountDeploy(chainTx *domain.ChainTransaction, receipt domain.ChainReceipt) error {
	account, err := r.AccountRepo.GetByChainTransactionID(chainTx.ID)
	if err != nil {
		return err
	}

	chainStatus := domain.ChainFailed
	accountStatus := domain.AccountFailed
	if receipt.Status == domain.ReceiptSuccess {
		chainStatus = domain.ChainConfirmed
		accountStatus = domain.AccountCreated
	}

	// The account resolves before the tracking row goes terminal, so a
	// failed account write is retried on the next pass
	if err := r.AccountRepo.UpdateStatus(account.ID, accountStatus); err != nil {
		return err
	}
	return r.ChainTxRepo.UpdateStatus(chainTx.ID, chainStatus)
}

func (r *Reconciler) reconcileExchanges(ctx context.Context) {
	batch, err := r.ExchangeRepo.FindOldestOpened(r.BatchSize)
	if err != nil {
		slog.Error("failed to load opened exchange orders", "error", err.Error())
		return
	}

	for _, exchange := range batch {
		if err := r.reconcileExchange(ctx, exchange); err != nil {
			slog.Error("failed to reconcile exchange order",
				"exchange_id", exchange.ID,
				"order_id", exchange.OrderID,
				"error", err.Error())
		}
	}
}

func (r *Reconciler) reconcileExchange(ctx context.Context, exchange *domain.Exchange) error {
	state, err := r.ExchangeClient.OrderStatus(ctx, exchange.OrderID)
	if err != nil {
		return err
	}
	return r.TransactionUsecase.FinalizeExchangeOrder(ctx, exchange, state)
}
