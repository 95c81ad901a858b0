package repository

import (
	"fmt"

	"github.com/langitpay/settlement-service/internal/domain"
	"github.com/langitpay/settlement-service/internal/infrastructure/postgres/mappers"
	"github.com/langitpay/settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultExchangeRepository struct {
	DB *gorm.DB
}

func NewDefaultExchangeRepository(db *gorm.DB) *DefaultExchangeRepository {
	return &DefaultExchangeRepository{DB: db}
}

func (r *DefaultExchangeRepository) Create(exchange *domain.Exchange) error {
	if err := r.DB.Create(mappers.ToGORMExchange(exchange)).Error; err != nil {
		return fmt.Errorf("failed to create exchange: %w", err)
	}
	return nil
}

func (r *DefaultExchangeRepository) UpdateStatus(exchangeID string, newStatus domain.ExchangeStatus) error {
	return r.DB.Model(&models.ExchangeModel{}).
		Where("id = ?", exchangeID).
		Update("status", newStatus).Error
}

func (r *DefaultExchangeRepository) FindOldestOpened(limit int) ([]*domain.Exchange, error) {
	var exchangeModels []models.ExchangeModel
	if err := r.DB.
		Where("status = ?", domain.ExchangeOpened).
		Order("created_at ASC").
		Limit(limit).
		Find(&exchangeModels).Error; err != nil {
		return nil, err
	}

	exchanges := make([]*domain.Exchange, len(exchangeModels))
	for i, exchangeModel := range exchangeModels {
		exchanges[i] = mappers.ToDomainExchange(&exchangeModel)
	}
	return exchanges, nil
}

func (r *DefaultExchangeRepository) WithTx(tx domain.TransactionTxRepository) domain.ExchangeRepository {
	if txRepo, ok := tx.(*TxTransactionRepository); ok {
		return &DefaultExchangeRepository{DB: txRepo.DB}
	}
	return r
}
