package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/langitpay/settlement-service/internal/config"
	"github.com/langitpay/settlement-service/internal/domain"
	"github.com/langitpay/settlement-service/internal/infrastructure/metrics"
)

// Prometheus collectors register globally, so the test binary builds
// the metrics set once and shares it.
var testMetrics = metrics.NewSettlementMetrics()

var testCustody = config.Custody{
	Address:         "0xcustody",
	SigningKey:      "custody-key",
	FiatWalletID:    "fw-custody",
	SettlementToken: "0xusdt",
}

// memRepo is an in-memory TransactionRepository. Writes apply
// immediately; Commit and Rollback only count calls. stepUpdateErr
// fails the next UpdateStepStatus once.
type memRepo struct {
	mu            sync.Mutex
	transactions  map[string]*domain.Transaction
	steps         map[string]*domain.TransactionStep
	commits       int
	rollbacks     int
	stepUpdateErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		transactions: make(map[string]*domain.Transaction),
		steps:        make(map[string]*domain.TransactionStep),
	}
}

func (m *memRepo) BeginTx() (domain.TransactionTxRepository, error) {
	return &memTx{m}, nil
}

func (m *memRepo) CreateTransactionWithSteps(transaction *domain.Transaction, steps []*domain.TransactionStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *transaction
	m.transactions[transaction.ID] = &stored
	for _, step := range steps {
		storedStep := *step
		m.steps[step.ID] = &storedStep
	}
	return nil
}

func (m *memRepo) GetTransactionByID(transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	transaction, ok := m.transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction %s not found", transactionID)
	}
	copied := *transaction
	return &copied, nil
}

func (m *memRepo) UpdateTransactionStatus(transactionID string, newStatus domain.TransactionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	transaction, ok := m.transactions[transactionID]
	if !ok {
		return fmt.Errorf("transaction %s not found", transactionID)
	}
	transaction.Status = newStatus
	return nil
}

func (m *memRepo) SetSettlementHash(transactionID, settlementHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	transaction, ok := m.transactions[transactionID]
	if !ok {
		return fmt.Errorf("transaction %s not found", transactionID)
	}
	transaction.SettlementHash = settlementHash
	return nil
}

func (m *memRepo) GetStepByExternalID(externalID string) (*domain.TransactionStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, step := range m.steps {
		if step.ExternalID == externalID && externalID != "" {
			copied := *step
			return &copied, nil
		}
	}
	return nil, domain.ErrStepNotFound
}

func (m *memRepo) MarkStepSubmitted(stepID, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	step, ok := m.steps[stepID]
	if !ok {
		return domain.ErrStepNotFound
	}
	step.ExternalID = externalID
	step.Status = domain.StepProcessing
	return nil
}

func (m *memRepo) UpdateStepStatus(stepID string, newStatus domain.StepStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stepUpdateErr != nil {
		err := m.stepUpdateErr
		m.stepUpdateErr = nil
		return err
	}
	step, ok := m.steps[stepID]
	if !ok {
		return domain.ErrStepNotFound
	}
	step.Status = newStatus
	return nil
}

func (m *memRepo) PendingSteps(transactionID string) ([]*domain.TransactionStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*domain.TransactionStep
	for _, step := range m.steps {
		if step.TransactionID == transactionID && step.Status == domain.StepInit {
			copied := *step
			pending = append(pending, &copied)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Priority < pending[j].Priority })
	return pending, nil
}

func (m *memRepo) ProcessingStepCount(transactionID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, step := range m.steps {
		if step.TransactionID == transactionID && step.Status == domain.StepProcessing {
			count++
		}
	}
	return count, nil
}

func (m *memRepo) stepsOf(transactionID string) []*domain.TransactionStep {
	m.mu.Lock()
	defer m.mu.Unlock()
	var steps []*domain.TransactionStep
	for _, step := range m.steps {
		if step.TransactionID == transactionID {
			copied := *step
			steps = append(steps, &copied)
		}
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Priority < steps[j].Priority })
	return steps
}

type memTx struct {
	*memRepo
}

func (t *memTx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commits++
	return nil
}

func (t *memTx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollbacks++
	return nil
}

type stubChainTxRepo struct {
	mu      sync.Mutex
	records []*domain.ChainTransaction
}

func (s *stubChainTxRepo) Create(chainTransaction *domain.ChainTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *chainTransaction
	s.records = append(s.records, &copied)
	return nil
}

func (s *stubChainTxRepo) UpdateStatus(chainTransactionID string, newStatus domain.ChainTransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.ID == chainTransactionID {
			record.Status = newStatus
			return nil
		}
	}
	return errors.New("chain transaction not found")
}

func (s *stubChainTxRepo) FindOldestSubmitted(limit int) ([]*domain.ChainTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.ChainTransaction
	for _, record := range s.records {
		if record.Status == domain.ChainSubmitted && len(out) < limit {
			copied := *record
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *stubChainTxRepo) WithTx(tx domain.TransactionTxRepository) domain.ChainTransactionRepository {
	return s
}

type stubExchangeRepo struct {
	mu      sync.Mutex
	records []*domain.Exchange
	created chan struct{}
}

func newStubExchangeRepo() *stubExchangeRepo {
	return &stubExchangeRepo{created: make(chan struct{}, 8)}
}

func (s *stubExchangeRepo) Create(exchange *domain.Exchange) error {
	s.mu.Lock()
	copied := *exchange
	s.records = append(s.records, &copied)
	s.mu.Unlock()
	s.created <- struct{}{}
	return nil
}

func (s *stubExchangeRepo) UpdateStatus(exchangeID string, newStatus domain.ExchangeStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.ID == exchangeID {
			record.Status = newStatus
			return nil
		}
	}
	return errors.New("exchange not found")
}

func (s *stubExchangeRepo) FindOldestOpened(limit int) ([]*domain.Exchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Exchange
	for _, record := range s.records {
		if record.Status == domain.ExchangeOpened && len(out) < limit {
			copied := *record
			out = append(out, &copied)
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

func (s *stubAccountRepo) find(match func(*domain.Account) bool) (*domain.Account, error) {
	for _, account := range s.accounts {
		if match(account) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccountRepo) GetByID(accountID string) (*domain.Account, error) {
	return s.find(func(a *domain.Account) bool { return a.ID == accountID })
}

func (s *stubAccountRepo) GetByEmail(email string) (*domain.Account, error) {
	return s.find(func(a *domain.Account) bool { return a.Email == email })
}

func (s *stubAccountRepo) GetByAbstractionAddress(address string) (*domain.Account, error) {
	return s.find(func(a *domain.Account) bool { return a.AccountAbstractionAddress == address })
}

func (s *stubAccountRepo) GetByChainTransactionID(chainTransactionID string) (*domain.Account, error) {
	return s.find(func(a *domain.Account) bool { return a.ChainTransactionID == chainTransactionID })
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

type stubTokenRepo struct {
	tokens []*domain.Token
}

func (s *stubTokenRepo) GetByAddress(address string) (*domain.Token, error) {
	for _, token := range s.tokens {
		if token.Address == address {
			copied := *token
			return &copied, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (s *stubTokenRepo) List() ([]*domain.Token, error) {
	return s.tokens, nil
}

type stubChainClient struct {
	mu          sync.Mutex
	balances    map[string]string // address|token -> smallest units
	submissions []domain.ChainTransfer
	submitErr   error
}

func (s *stubChainClient) Submit(ctx context.Context, transfer domain.ChainTransfer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitErr != nil {
		return "", s.submitErr
	}
	s.submissions = append(s.submissions, transfer)
	return fmt.Sprintf("userop-%d", len(s.submissions)), nil
}

func (s *stubChainClient) Confirm(ctx context.Context, userOperationHash string) (domain.ChainReceipt, error) {
	return domain.ChainReceipt{Status: domain.ReceiptPending}, nil
}

func (s *stubChainClient) Balance(ctx context.Context, address, tokenAddress string) (string, error) {
	balance, ok := s.balances[address+"|"+tokenAddress]
	if !ok {
		return "0", nil
	}
	return balance, nil
}

type stubFiatClient struct {
	mu      sync.Mutex
	pushes  int
	pushErr error
}

func (s *stubFiatClient) Push(ctx context.Context, fromWallet, toWallet string, amount decimal.Decimal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pushErr != nil {
		return "", s.pushErr
	}
	s.pushes++
	return fmt.Sprintf("fiat-%d", s.pushes), nil
}

func (s *stubFiatClient) Balance(ctx context.Context, wallet string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubExchangeClient struct {
	mu       sync.Mutex
	quote    domain.ExchangeQuote
	quoteErr error
	sells    int
	statuses map[string]domain.OrderState
}

func (s *stubExchangeClient) Quote(ctx context.Context, fiatAmount decimal.Decimal) (domain.ExchangeQuote, error) {
	if s.quoteErr != nil {
		return domain.ExchangeQuote{}, s.quoteErr
	}
	return s.quote, nil
}

func (s *stubExchangeClient) Sell(ctx context.Context, tokenAmount, price decimal.Decimal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sells++
	return fmt.Sprintf("order-%d", s.sells), nil
}

func (s *stubExchangeClient) OrderStatus(ctx context.Context, orderID string) (domain.OrderState, error) {
	state, ok := s.statuses[orderID]
	if !ok {
		return domain.OrderOpen, nil
	}
	return state, nil
}

type stubBillpayClient struct {
	price  decimal.Decimal
	topups []string // "productCode|customerID|referenceID"
}

func (s *stubBillpayClient) TopUp(ctx context.Context, productCode, customerID, referenceID string) (string, error) {
	s.topups = append(s.topups, productCode+"|"+customerID+"|"+referenceID)
	return fmt.Sprintf("ppob-%d", len(s.topups)), nil
}

func (s *stubBillpayClient) Price(ctx context.Context, productCode string) (decimal.Decimal, error) {
	return s.price, nil
}

type stubKeyCustody struct {
	address string
}

func (s *stubKeyCustody) Recover(ctx context.Context, storedShardRef, callerShard string) (domain.RecoveredKey, error) {
	return domain.RecoveredKey{PrivateKey: "recovered-key", Address: s.address}, nil
}

type fixture struct {
	uc           *DefaultTransactionUsecase
	repo         *memRepo
	chainTxRepo  *stubChainTxRepo
	exchangeRepo *stubExchangeRepo
	chain        *stubChainClient
	fiatClient   *stubFiatClient
	venue        *stubExchangeClient
	billpay      *stubBillpayClient
	keyCustody   *stubKeyCustody
}

var (
	alice = &domain.Account{
		ID:                        "acc-alice",
		Email:                     "alice@example.com",
		Address:                   "0xaliceKey",
		AccountAbstractionAddress: "0xaliceAA",
		EncryptedShard:            "shard-ref-alice",
		FiatWalletID:              "fw-alice",
		Status:                    domain.AccountCreated,
	}
	bob = &domain.Account{
		ID:                        "acc-bob",
		Email:                     "bob@example.com",
		Address:                   "0xbobKey",
		AccountAbstractionAddress: "0xbobAA",
		FiatWalletID:              "fw-bob",
		Status:                    domain.AccountCreated,
	}
	usdt = &domain.Token{ID: "tok-usdt", Name: "Tether", Symbol: "USDT", Address: "0xusdt", Decimals: 6}
)

func newFixture() *fixture {
	f := &fixture{
		repo:         newMemRepo(),
		chainTxRepo:  &stubChainTxRepo{},
		exchangeRepo: newStubExchangeRepo(),
		chain: &stubChainClient{balances: map[string]string{
			"0xaliceAA|0xusdt":  "100000000",          // 100 USDT
			"0xaliceAA|":        "5000000000000000000", // 5 native
			"0xcustody|0xusdt":  "500000000",
		}},
		fiatClient: &stubFiatClient{},
		venue:      &stubExchangeClient{quote: domain.ExchangeQuote{TokenAmount: decimal.RequireFromString("10"), Price: decimal.RequireFromString("15000")}},
		billpay:    &stubBillpayClient{price: decimal.RequireFromString("55000")},
		keyCustody: &stubKeyCustody{address: alice.Address},
	}

	f.uc = NewDefaultTransactionUsecase(
		f.repo,
		f.chainTxRepo,
		f.exchangeRepo,
		&stubAccountRepo{accounts: []*domain.Account{alice, bob}},
		&stubTokenRepo{tokens: []*domain.Token{usdt}},
		f.chain,
		f.fiatClient,
		f.venue,
		f.billpay,
		f.keyCustody,
		testCustody,
		nil,
		testMetrics,
	)
	return f
}
