package models

import (
	"time"

	"github.com/langitpay/settlement-service/internal/domain"
)

type ChainTransactionModel struct {
	ID                string                        `gorm:"primaryKey;type:uuid"`
	UserOperationHash string                        `gorm:"uniqueIndex;not null"`
	ActionType        domain.ChainActionType        `gorm:"not null"`
	Status            domain.ChainTransactionStatus `gorm:"index:idx_chain_status"`
	CreatedAt         time.Time                     `gorm:"index:idx_chain_created_at"`
	UpdatedAt         time.Time
}

func (ChainTransactionModel) TableName() string {
	return "chain_transactions"
}

type ExchangeModel struct {
	ID        string                `gorm:"primaryKey;type:uuid"`
	OrderID   string                `gorm:"uniqueIndex;not null"`
	Status    domain.ExchangeStatus `gorm:"index:idx_exchange_status"`
	CreatedAt time.Time             `gorm:"index:idx_exchange_created_at"`
	UpdatedAt time.Time
}

func (ExchangeModel) TableName() string {
	return "exchanges"
}
