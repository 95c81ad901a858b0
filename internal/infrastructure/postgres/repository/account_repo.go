package repository

import (
	"errors"

	"github.com/langitpay/settlement-service/internal/domain"
	"github.com/langitpay/settlement-service/internal/infrastructure/postgres/mappers"
	"github.com/langitpay/settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultAccountRepository struct {
	DB *gorm.DB
}

func NewDefaultAccountRepository(db *gorm.DB) *DefaultAccountRepository {
	return &DefaultAccountRepository{DB: db}
}

func (r *DefaultAccountRepository) getAccount(query string, args ...interface{}) (*domain.Account, error) {
	var model models.AccountModel
	err := r.DB.First(&model, append([]interface{}{query}, args...)...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainAccount(&model), nil
}

func (r *DefaultAccountRepository) GetByID(accountID string) (*domain.Account, error) {
	return r.getAccount("id = ?", accountID)
}

func (r *DefaultAccountRepository) GetByEmail(email string) (*domain.Account, error) {
	return r.getAccount("email = ?", email)
}

func (r *DefaultAccountRepository) GetByAbstractionAddress(address string) (*domain.Account, error) {
	return r.getAccount("account_abstraction_address = ?", address)
}

func (r *DefaultAccountRepository) GetByChainTransactionID(chainTransactionID string) (*domain.Account, error) {
	return r.getAccount("chain_transaction_id = ?", chainTransactionID)
}

func (r *DefaultAccountRepository) UpdateStatus(accountID string, newStatus domain.AccountStatus) error {
	return r.DB.Model(&models.AccountModel{}).
		Where("id = ?", accountID).
		Update("status", newStatus).Error
}

type DefaultTokenRepository struct {
	DB *gorm.DB
}

func NewDefaultTokenRepository(db *gorm.DB) *DefaultTokenRepository {
	return &DefaultTokenRepository{DB: db}
}

func (r *DefaultTokenRepository) GetByAddress(address string) (*domain.Token, error) {
	var model models.TokenModel
	err := r.DB.First(&model, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainToken(&model), nil
}

func (r *DefaultTokenRepository) List() ([]*domain.Token, error) {
	var tokenModels []models.TokenModel
	if err := r.DB.Order("symbol ASC").Find(&tokenModels).Error; err != nil {
		return nil, err
	}

	tokens := make([]*domain.Token, len(tokenModels))
	for i, tokenModel := range tokenModels {
		tokens[i] = mappers.ToDomainToken(&tokenModel)
	}
	return tokens, nil
}
