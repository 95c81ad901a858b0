package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/langitpay/settlement-service/internal/domain"
	transactiondto "github.com/langitpay/settlement-service/internal/usecase/dto/transaction"
)

type chainFinalizeCall struct {
	chainTx *domain.ChainTransaction
	receipt domain.ChainReceipt
}

type exchangeFinalizeCall struct {
	exchange *domain.Exchange
	state    domain.OrderState
}

type stubUsecase struct {
	chainCalls    []chainFinalizeCall
	exchangeCalls []exchangeFinalizeCall

	// failures fails that many finalize calls before succeeding
	failures int
}

func (s *stubUsecase) Transfer(ctx context.Context, input *transactiondto.TransferInput) (*domain.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUsecase) BuyToken(ctx context.Context, input *transactiondto.BuyTokenInput) (*domain.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUsecase) BuyProduct(ctx context.Context, input *transactiondto.BuyProductInput) (*domain.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUsecase) FinalizeStep(ctx context.Context, externalID string, outcome domain.StepStatus, settlementHash string) error {
	return errors.New("not implemented")
}

func (s *stubUsecase) FinalizeChainTransaction(ctx context.Context, chainTx *domain.ChainTransaction, receipt domain.ChainReceipt) error {
	s.chainCalls = append(s.chainCalls, chainFinalizeCall{chainTx, receipt})
	if s.failures > 0 {
		s.failures--
		return errors.New("transient db failure")
	}
	return nil
}

func (s *stubUsecase) FinalizeExchangeOrder(ctx context.Context, exchange *domain.Exchange, state domain.OrderState) error {
	s.exchangeCalls = append(s.exchangeCalls, exchangeFinalizeCall{exchange, state})
	if s.failures > 0 {
		s.failures--
		return errors.New("transient db failure")
	}
	return nil
}

func (s *stubUsecase) GetTransactionByID(transactionID string) (*domain.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUsecase) ListTokens() ([]*domain.Token, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUsecase) ProductPrice(ctx context.Context, productCode string) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.Zero, decimal.Zero, errors.New("not implemented")
}

type stubChainTxRepo struct {
	records []*domain.ChainTransaction
}

func (s *stubChainTxRepo) Create(chainTransaction *domain.ChainTransaction) error {
	s.records = append(s.records, chainTransaction)
	return nil
}

func (s *stubChainTxRepo) UpdateStatus(chainTransactionID string, newStatus domain.ChainTransactionStatus) error {
	for _, record := range s.records {
		if record.ID == chainTransactionID {
			record.Status = newStatus
			return nil
		}
	}
	return errors.New("chain transaction not found")
}

func (s *stubChainTxRepo) FindOldestSubmitted(limit int) ([]*domain.ChainTransaction, error) {
	var out []*domain.ChainTransaction
	for _, record := range s.records {
		if record.Status == domain.ChainSubmitted && len(out) < limit {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *stubChainTxRepo) WithTx(tx domain.TransactionTxRepository) domain.ChainTransactionRepository {
	return s
}

type stubExchangeRepo struct {
	records []*domain.Exchange
}

func (s *stubExchangeRepo) Create(exchange *domain.Exchange) error {
	s.records = append(s.records, exchange)
	return nil
}

func (s *stubExchangeRepo) UpdateStatus(exchangeID string, newStatus domain.ExchangeStatus) error {
	for _, record := range s.records {
		if record.ID == exchangeID {
			record.Status = newStatus
			return nil
		}
	}
	return errors.New("exchange not found")
}

func (s *stubExchangeRepo) FindOldestOpened(limit int) ([]*domain.Exchange, error) {
	var out []*domain.Exchange
	for _, record := range s.records {
		if record.Status == domain.ExchangeOpened && len(out) < limit {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *stubExchangeRepo) WithTx(tx domain.TransactionTxRepository) domain.ExchangeRepository {
	return s
}

type stubAccountRepo struct {
	accounts []*domain.Account
}

func (s *stubAccountRepo) GetByID(accountID string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccountRepo) GetByEmail(email string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccountRepo) GetByAbstractionAddress(address string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccountRepo) GetByChainTransactionID(chainTransactionID string) (*domain.Account, error) {
	for _, account := range s.accounts {
		if account.ChainTransactionID == chainTransactionID {
			return account, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccountRepo) UpdateStatus(accountID string, newStatus domain.AccountStatus) error {
	for _, account := range s.accounts {
		if account.ID == accountID {
			account.Status = newStatus
			return nil
		}
	}
	return domain.ErrAccountNotFound
}

type stubChainClient struct {
	receipts map[string]domain.ChainReceipt
}

func (s *stubChainClient) Submit(ctx context.Context, transfer domain.ChainTransfer) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubChainClient) Confirm(ctx context.Context, userOperationHash string) (domain.ChainReceipt, error) {
	receipt, ok := s.receipts[userOperationHash]
	if !ok {
		return domain.ChainReceipt{Status: domain.ReceiptPending}, nil
	}
	return receipt, nil
}

func (s *stubChainClient) Balance(ctx context.Context, address, tokenAddress string) (string, error) {
	return "0", nil
}

type stubExchangeClient struct {
	statuses map[string]domain.OrderState
}

func (s *stubExchangeClient) Quote(ctx context.Context, fiatAmount decimal.Decimal) (domain.ExchangeQuote, error) {
	return domain.ExchangeQuote{}, errors.New("not implemented")
}

func (s *stubExchangeClient) Sell(ctx context.Context, tokenAmount, price decimal.Decimal) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubExchangeClient) OrderStatus(ctx context.Context, orderID string) (domain.OrderState, error) {
	state, ok := s.statuses[orderID]
	if !ok {
		return domain.OrderOpen, nil
	}
	return state, nil
}

func newTestReconciler(uc *stubUsecase, chainTxRepo *stubChainTxRepo, exchangeRepo *stubExchangeRepo, accountRepo *stubAccountRepo, chainClient *stubChainClient, exchangeClient *stubExchangeClient) *Reconciler {
	return NewReconciler(
		uc,
		chainTxRepo,
		exchangeRepo,
		accountRepo,
		chainClient,
		exchangeClient,
		nil,
		time.Second,
		10,
		30*time.Minute,
	)
}

func TestReconcileConfirmedTransfer(t *testing.T) {
	uc := &stubUsecase{}
	chainTxRepo := &stubChainTxRepo{records: []*domain.ChainTransaction{{
		ID:                "ct-1",
		UserOperationHash: "userop-1",
		ActionType:        domain.ActionAATransfer,
		Status:            domain.ChainSubmitted,
		CreatedAt:         time.Now(),
	}}}
	chainClient := &stubChainClient{receipts: map[string]domain.ChainReceipt{
		"userop-1": {Status: domain.ReceiptSuccess, SettlementHash: "0xhash1"},
	}}

	r := newTestReconciler(uc, chainTxRepo, &stubExchangeRepo{}, &stubAccountRepo{}, chainClient, &stubExchangeClient{})
	r.pass(context.Background())

	if len(uc.chainCalls) != 1 {
		t.Fatalf("expected 1 finalize call, got %d", len(uc.chainCalls))
	}
	call := uc.chainCalls[0]
	if call.chainTx.ID != "ct-1" || call.receipt.Status != domain.ReceiptSuccess || call.receipt.SettlementHash != "0xhash1" {
		t.Fatalf("unexpected finalize call: %+v", call)
	}
	// The status write belongs to the finalize transaction, not the worker
	if chainTxRepo.records[0].Status != domain.ChainSubmitted {
		t.Fatalf("worker must not write the tracking row, got %s", chainTxRepo.records[0].Status)
	}
}

func TestReconcileFailedTransfer(t *testing.T) {
	uc := &stubUsecase{}
	chainTxRepo := &stubChainTxRepo{records: []*domain.ChainTransaction{{
		ID:                "ct-1",
		UserOperationHash: "userop-1",
		ActionType:        domain.ActionEOATransfer,
		Status:            domain.ChainSubmitted,
		CreatedAt:         time.Now(),
	}}}
	chainClient := &stubChainClient{receipts: map[string]domain.ChainReceipt{
		"userop-1": {Status: domain.ReceiptFailed},
	}}

	r := newTestReconciler(uc, chainTxRepo, &stubExchangeRepo{}, &stubAccountRepo{}, chainClient, &stubExchangeClient{})
	r.pass(context.Background())

	if len(uc.chainCalls) != 1 || uc.chainCalls[0].receipt.Status != domain.ReceiptFailed {
		t.Fatalf("unexpected finalize calls: %+v", uc.chainCalls)
	}
}

func TestReconcilePendingLeftAlone(t *testing.T) {
	uc := &stubUsecase{}
	chainTxRepo := &stubChainTxRepo{records: []*domain.ChainTransaction{{
		ID:                "ct-1",
		UserOperationHash: "userop-1",
		ActionType:        domain.ActionAATransfer,
		Status:            domain.ChainSubmitted,
		CreatedAt:         time.Now().Add(-time.Hour),
	}}}

	r := newTestReconciler(uc, chainTxRepo, &stubExchangeRepo{}, &stubAccountRepo{}, &stubChainClient{}, &stubExchangeClient{})
	r.pass(context.Background())

	// Pending past the window is never forced to a conclusion
	if chainTxRepo.records[0].Status != domain.ChainSubmitted {
		t.Fatalf("expected still SUBMITTED, got %s", chainTxRepo.records[0].Status)
	}
	if len(uc.chainCalls) != 0 {
		t.Fatalf("expected no finalize calls, got %d", len(uc.chainCalls))
	}
}

func TestReconcileRetriesAfterFinalizeFailure(t *testing.T) {
	uc := &stubUsecase{failures: 1}
	chainTxRepo := &stubChainTxRepo{records: []*domain.ChainTransaction{{
		ID:                "ct-1",
		UserOperationHash: "userop-1",
		ActionType:        domain.ActionAATransfer,
		Status:            domain.ChainSubmitted,
		CreatedAt:         time.Now(),
	}}}
	chainClient := &stubChainClient{receipts: map[string]domain.ChainReceipt{
		"userop-1": {Status: domain.ReceiptSuccess, SettlementHash: "0xhash1"},
	}}

	r := newTestReconciler(uc, chainTxRepo, &stubExchangeRepo{}, &stubAccountRepo{}, chainClient, &stubExchangeClient{})

	r.pass(context.Background())
	if len(uc.chainCalls) != 1 {
		t.Fatalf("expected 1 finalize call, got %d", len(uc.chainCalls))
	}
	// The failed finalize left the row SUBMITTED, so it is polled again
	if chainTxRepo.records[0].Status != domain.ChainSubmitted {
		t.Fatalf("expected still SUBMITTED after failure, got %s", chainTxRepo.records[0].Status)
	}

	r.pass(context.Background())
	if len(uc.chainCalls) != 2 {
		t.Fatalf("expected the outcome to be retried, got %d calls", len(uc.chainCalls))
	}
}

func TestReconcileDeployUpdatesAccount(t *testing.T) {
	uc := &stubUsecase{}
	chainTxRepo := &stubChainTxRepo{records: []*domain.ChainTransaction{{
		ID:                "ct-deploy",
		UserOperationHash: "userop-1",
		ActionType:        domain.ActionDeployAA,
		Status:            domain.ChainSubmitted,
		CreatedAt:         time.Now(),
	}}}
	accountRepo := &stubAccountRepo{accounts: []*domain.Account{{
		ID:                 "acc-1",
		ChainTransactionID: "ct-deploy",
		Status:             domain.AccountCreating,
	}}}
	chainClient := &stubChainClient{receipts: map[string]domain.ChainReceipt{
		"userop-1": {Status: domain.ReceiptSuccess, SettlementHash: "0xhash1"},
	}}

	r := newTestReconciler(uc, chainTxRepo, &stubExchangeRepo{}, accountRepo, chainClient, &stubExchangeClient{})
	r.pass(context.Background())

	if accountRepo.accounts[0].Status != domain.AccountCreated {
		t.Fatalf("expected account CREATED, got %s", accountRepo.accounts[0].Status)
	}
	if chainTxRepo.records[0].Status != domain.ChainConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", chainTxRepo.records[0].Status)
	}
	if len(uc.chainCalls) != 0 {
		t.Fatalf("deploy resolution must not finalize steps, got %d calls", len(uc.chainCalls))
	}
}

func TestReconcileExchangeOrder(t *testing.T) {
	uc := &stubUsecase{}
	exchangeRepo := &stubExchangeRepo{records: []*domain.Exchange{{
		ID:      "ex-1",
		OrderID: "order-1",
		Status:  domain.ExchangeOpened,
	}}}
	exchangeClient := &stubExchangeClient{statuses: map[string]domain.OrderState{
		"order-1": domain.OrderFilled,
	}}

	r := newTestReconciler(uc, &stubChainTxRepo{}, exchangeRepo, &stubAccountRepo{}, &stubChainClient{}, exchangeClient)
	r.pass(context.Background())

	if len(uc.exchangeCalls) != 1 {
		t.Fatalf("expected 1 finalize call, got %d", len(uc.exchangeCalls))
	}
	call := uc.exchangeCalls[0]
	if call.exchange.ID != "ex-1" || call.state != domain.OrderFilled {
		t.Fatalf("unexpected finalize call: %+v", call)
	}
}

func TestRunGuardSkipsOverlappingTicks(t *testing.T) {
	r := &Reconciler{}
	if !r.running.CompareAndSwap(false, true) {
		t.Fatal("first acquire must succeed")
	}
	if r.running.CompareAndSwap(false, true) {
		t.Fatal("second acquire must fail while a pass is running")
	}
	r.running.Store(false)
	if !r.running.CompareAndSwap(false, true) {
		t.Fatal("acquire must succeed after the pass finishes")
	}
}
