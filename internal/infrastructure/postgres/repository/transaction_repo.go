package repository

import (
	"errors"
	"fmt"

	"github.com/langitpay/settlement-service/internal/domain"
	"github.com/langitpay/settlement-service/internal/infrastructure/postgres/mappers"
	"github.com/langitpay/settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultTransactionRepository struct {
	DB *gorm.DB
}

func NewDefaultTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{DB: db}
}

// BeginTx opens a database transaction and returns a repository scoped to
// it. The caller owns Commit/Rollback.
func (r *DefaultTransactionRepository) BeginTx() (domain.TransactionTxRepository, error) {
	tx := r.DB.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return &TxTransactionRepository{DefaultTransactionRepository{DB: tx}}, nil
}

func (r *DefaultTransactionRepository) CreateTransactionWithSteps(transaction *domain.Transaction, steps []*domain.TransactionStep) error {
	if err := r.DB.Create(mappers.ToGORMTransaction(transaction)).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	for _, step := range steps {
		if err := r.DB.Create(mappers.ToGORMStep(step)).Error; err != nil {
			return fmt.Errorf("failed to create transaction step: %w", err)
		}
	}
	return nil
}

func (r *DefaultTransactionRepository) GetTransactionByID(transactionID string) (*domain.Transaction, error) {
	var model models.TransactionModel
	if err := r.DB.First(&model, "id = ?", transactionID).Error; err != nil {
		return nil, err
	}
	return mappers.ToDomainTransaction(&model), nil
}

func (r *DefaultTransactionRepository) UpdateTransactionStatus(transactionID string, newStatus domain.TransactionStatus) error {
	return r.DB.Model(&models.TransactionModel{}).
		Where("id = ?", transactionID).
		Update("status", newStatus).Error
}

func (r *DefaultTransactionRepository) SetSettlementHash(transactionID, settlementHash string) error {
	return r.DB.Model(&models.TransactionModel{}).
		Where("id = ?", transactionID).
		Update("settlement_hash", settlementHash).Error
}

// GetStepByExternalID locks the row until the surrounding transaction
// ends, so concurrent callbacks carrying the same external id serialize
// and the second one sees the terminal status.
func (r *DefaultTransactionRepository) GetStepByExternalID(externalID string) (*domain.TransactionStep, error) {
	var model models.TransactionStepModel
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "external_id = ?", externalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStepNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainStep(&model), nil
}

// MarkStepSubmitted records the rail identifier and moves the step to
// PROCESSING in one update. The external id must land before control
// returns to the caller, it is the only handle left after a restart.
func (r *DefaultTransactionRepository) MarkStepSubmitted(stepID, externalID string) error {
	return r.DB.Model(&models.TransactionStepModel{}).
		Where("id = ?", stepID).
		Updates(map[string]interface{}{
			"external_id": externalID,
			"status":      domain.StepProcessing,
		}).Error
}

func (r *DefaultTransactionRepository) UpdateStepStatus(stepID string, newStatus domain.StepStatus) error {
	return r.DB.Model(&models.TransactionStepModel{}).
		Where("id = ?", stepID).
		Update("status", newStatus).Error
}

func (r *DefaultTransactionRepository) PendingSteps(transactionID string) ([]*domain.TransactionStep, error) {
	var stepModels []models.TransactionStepModel
	if err := r.DB.
		Where("transaction_id = ? AND status = ?", transactionID, domain.StepInit).
		Order("priority ASC").
		Find(&stepModels).Error; err != nil {
		return nil, err
	}

	steps := make([]*domain.TransactionStep, len(stepModels))
	for i, stepModel := range stepModels {
		steps[i] = mappers.ToDomainStep(&stepModel)
	}
	return steps, nil
}

func (r *DefaultTransactionRepository) ProcessingStepCount(transactionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.TransactionStepModel{}).
		Where("transaction_id = ? AND status = ?", transactionID, domain.StepProcessing).
		Count(&count).Error
	return count, err
}

// TxTransactionRepository is a DefaultTransactionRepository bound to an
// open database transaction.
type TxTransactionRepository struct {
	DefaultTransactionRepository
}

func (r *TxTransactionRepository) Commit() error {
	return r.DB.Commit().Error
}

func (r *TxTransactionRepository) Rollback() error {
	return r.DB.Rollback().Error
}
