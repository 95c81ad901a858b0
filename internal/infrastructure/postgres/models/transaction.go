package models

import (
	"time"

	"github.com/langitpay/settlement-service/internal/domain"
)

type TransactionModel struct {
	ID             string                   `gorm:"primaryKey;type:uuid"`
	Type           domain.TransactionType   `gorm:"index:idx_type"`
	TransferType   domain.TransferType
	Sender         string                   `gorm:"type:uuid;index:idx_sender"`
	Receiver       string                   `gorm:"type:uuid"`
	SentAmount     string
	ReceivedAmount string
	SentToken      string                   `gorm:"type:uuid"`
	ReceivedToken  string                   `gorm:"type:uuid"`
	SettlementHash string                   `gorm:"uniqueIndex;default:null"`
	PaymentCode    string                   `gorm:"uniqueIndex;default:null"`
	Status         domain.TransactionStatus `gorm:"index:idx_status"`
	CreatedAt      time.Time                `gorm:"index:idx_created_at"`
	UpdatedAt      time.Time
}

func (TransactionModel) TableName() string {
	return "transactions"
}

type TransactionStepModel struct {
	ID            string            `gorm:"primaryKey;type:uuid"`
	TransactionID string            `gorm:"type:uuid;index;not null"`
	Transaction   TransactionModel  `gorm:"foreignKey:TransactionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Type          domain.StepType
	Priority      int               `gorm:"not null"`
	ExternalID    string            `gorm:"uniqueIndex;default:null"`
	Sender        string
	Receiver      string
	TokenAddress  string
	TokenAmount   string
	FiatAmount    string
	Status        domain.StepStatus `gorm:"index:idx_step_status"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (TransactionStepModel) TableName() string {
	return "transaction_steps"
}
