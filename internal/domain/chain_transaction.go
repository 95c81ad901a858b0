package domain

import "time"

type ChainActionType string

const (
	ActionDeployAA    ChainActionType = "DEPLOY_AA"
	ActionAATransfer  ChainActionType = "AA_TRANSFER"
	ActionEOATransfer ChainActionType = "EOA_TRANSFER"
)

type ChainTransactionStatus string

const (
	ChainSubmitted ChainTransactionStatus = "SUBMITTED"
	ChainConfirmed ChainTransactionStatus = "CONFIRMED"
	ChainFailed    ChainTransactionStatus = "FAILED"
)

// ChainTransaction tracks one on-chain submission. The user operation
// hash doubles as the correlation key for the step or account it settles.
type ChainTransaction struct {
	ID                string
	UserOperationHash string
	ActionType        ChainActionType
	Status            ChainTransactionStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
