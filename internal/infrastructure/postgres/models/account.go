package models

import (
	"time"

	"github.com/langitpay/settlement-service/internal/domain"
)

type AccountModel struct {
	ID                        string               `gorm:"primaryKey;type:uuid"`
	Email                     string               `gorm:"uniqueIndex;not null"`
	Address                   string               `gorm:"uniqueIndex"`
	AccountAbstractionAddress string               `gorm:"index"`
	EncryptedShard            string
	FiatWalletID              string
	ChainTransactionID        string               `gorm:"type:uuid"`
	Status                    domain.AccountStatus
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

func (AccountModel) TableName() string {
	return "accounts"
}

type TokenModel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	Name      string
	Symbol    string
	Address   string `gorm:"uniqueIndex"`
	Decimals  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TokenModel) TableName() string {
	return "tokens"
}
