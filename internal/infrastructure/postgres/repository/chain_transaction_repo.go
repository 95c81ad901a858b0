package repository

import (
	"fmt"

	"github.com/langitpay/settlement-service/internal/domain"
	"github.com/langitpay/settlement-service/internal/infrastructure/postgres/mappers"
	"github.com/langitpay/settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultChainTransactionRepository struct {
	DB *gorm.DB
}

func NewDefaultChainTransactionRepository(db *gorm.DB) *DefaultChainTransactionRepository {
	return &DefaultChainTransactionRepository{DB: db}
}

func (r *DefaultChainTransactionRepository) Create(chainTransaction *domain.ChainTransaction) error {
	if err := r.DB.Create(mappers.ToGORMChainTransaction(chainTransaction)).Error; err != nil {
		return fmt.Errorf("failed to create chain transaction: %w", err)
	}
	return nil
}

func (r *DefaultChainTransactionRepository) UpdateStatus(chainTransactionID string, newStatus domain.ChainTransactionStatus) error {
	return r.DB.Model(&models.ChainTransactionModel{}).
		Where("id = ?", chainTransactionID).
		Update("status", newStatus).Error
}

func (r *DefaultChainTransactionRepository) FindOldestSubmitted(limit int) ([]*domain.ChainTransaction, error) {
	var chainModels []models.ChainTransactionModel
	if err := r.DB.
		Where("status = ?", domain.ChainSubmitted).
		Order("created_at ASC").
		Limit(limit).
		Find(&chainModels).Error; err != nil {
		return nil, err
	}

	chainTransactions := make([]*domain.ChainTransaction, len(chainModels))
	for i, chainModel := range chainModels {
		chainTransactions[i] = mappers.ToDomainChainTransaction(&chainModel)
	}
	return chainTransactions, nil
}

func (r *DefaultChainTransactionRepository) WithTx(tx domain.TransactionTxRepository) domain.ChainTransactionRepository {
	if txRepo, ok := tx.(*TxTransactionRepository); ok {
		return &DefaultChainTransactionRepository{DB: txRepo.DB}
	}
	return r
}
