package mappers

import (
	"github.com/langitpay/settlement-service/internal/domain"
	"github.com/langitpay/settlement-service/internal/infrastructure/postgres/models"
)

func ToDomainChainTransaction(model *models.ChainTransactionModel) *domain.ChainTransaction {
	return &domain.ChainTransaction{
		ID:                model.ID,
		UserOperationHash: model.UserOperationHash,
		ActionType:        model.ActionType,
		Status:            model.Status,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

func ToGORMChainTransaction(chainTransaction *domain.ChainTransaction) *models.ChainTransactionModel {
	return &models.ChainTransactionModel{
		ID:                chainTransaction.ID,
		UserOperationHash: chainTransaction.UserOperationHash,
		ActionType:        chainTransaction.ActionType,
		Status:            chainTransaction.Status,
		CreatedAt:         chainTransaction.CreatedAt,
		UpdatedAt:         chainTransaction.UpdatedAt,
	}
}

func ToDomainExchange(model *models.ExchangeModel) *domain.Exchange {
	return &domain.Exchange{
		ID:        model.ID,
		OrderID:   model.OrderID,
		Status:    model.Status,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func ToGORMExchange(exchange *domain.Exchange) *models.ExchangeModel {
	return &models.ExchangeModel{
		ID:        exchange.ID,
		OrderID:   exchange.OrderID,
		Status:    exchange.Status,
		CreatedAt: exchange.CreatedAt,
		UpdatedAt: exchange.UpdatedAt,
	}
}

func ToDomainAccount(model *models.AccountModel) *domain.Account {
	return &domain.Account{
		ID:                        model.ID,
		Email:                     model.Email,
		Address:                   model.Address,
		AccountAbstractionAddress: model.AccountAbstractionAddress,
		EncryptedShard:            model.EncryptedShard,
		FiatWalletID:              model.FiatWalletID,
		ChainTransactionID:        model.ChainTransactionID,
		Status:                    model.Status,
		CreatedAt:                 model.CreatedAt,
		UpdatedAt:                 model.UpdatedAt,
	}
}

func ToDomainToken(model *models.TokenModel) *domain.Token {
	return &domain.Token{
		ID:        model.ID,
		Name:      model.Name,
		Symbol:    model.Symbol,
		Address:   model.Address,
		Decimals:  model.Decimals,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
