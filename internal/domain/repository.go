package domain

// TransactionOps is the read/write surface shared by the plain repository
// and its transaction-scoped variant. All writes for one step transition
// go through a single TransactionTxRepository so a crash mid-transition
// leaves the prior consistent state.
type TransactionOps interface {
	CreateTransactionWithSteps(transaction *Transaction, steps []*TransactionStep) error
	GetTransactionByID(transactionID string) (*Transaction, error)
	UpdateTransactionStatus(transactionID string, newStatus TransactionStatus) error
	SetSettlementHash(transactionID, settlementHash string) error

	GetStepByExternalID(externalID string) (*TransactionStep, error)
	MarkStepSubmitted(stepID, externalID string) error
	UpdateStepStatus(stepID string, newStatus StepStatus) error
	PendingSteps(transactionID string) ([]*TransactionStep, error)
	ProcessingStepCount(transactionID string) (int64, error)
}

type TransactionRepository interface {
	TransactionOps
	BeginTx() (TransactionTxRepository, error)
}

type TransactionTxRepository interface {
	TransactionOps
	Commit() error
	Rollback() error
}

type ChainTransactionRepository interface {
	Create(chainTransaction *ChainTransaction) error
	UpdateStatus(chainTransactionID string, newStatus ChainTransactionStatus) error
	FindOldestSubmitted(limit int) ([]*ChainTransaction, error)
	// WithTx scopes writes to an open settlement transaction so a chain
	// submission record commits or rolls back with the step it belongs to.
	WithTx(tx TransactionTxRepository) ChainTransactionRepository
}

type ExchangeRepository interface {
	Create(exchange *Exchange) error
	UpdateStatus(exchangeID string, newStatus ExchangeStatus) error
	FindOldestOpened(limit int) ([]*Exchange, error)
	WithTx(tx TransactionTxRepository) ExchangeRepository
}

type AccountRepository interface {
	GetByID(accountID string) (*Account, error)
	GetByEmail(email string) (*Account, error)
	GetByAbstractionAddress(address string) (*Account, error)
	GetByChainTransactionID(chainTransactionID string) (*Account, error)
	UpdateStatus(accountID string, newStatus AccountStatus) error
}

type TokenRepository interface {
	GetByAddress(address string) (*Token, error)
	List() ([]*Token, error)
}
