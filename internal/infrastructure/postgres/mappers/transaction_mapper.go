package mappers

import (
	"github.com/langitpay/settlement-service/internal/domain"
	"github.com/langitpay/settlement-service/internal/infrastructure/postgres/models"
)

func ToDomainTransaction(model *models.TransactionModel) *domain.Transaction {
	return &domain.Transaction{
		ID:             model.ID,
		Type:           model.Type,
		TransferType:   model.TransferType,
		Sender:         model.Sender,
		Receiver:       model.Receiver,
		SentAmount:     model.SentAmount,
		ReceivedAmount: model.ReceivedAmount,
		SentToken:      model.SentToken,
		ReceivedToken:  model.ReceivedToken,
		SettlementHash: model.SettlementHash,
		PaymentCode:    model.PaymentCode,
		Status:         model.Status,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func ToGORMTransaction(transaction *domain.Transaction) *models.TransactionModel {
	return &models.TransactionModel{
		ID:             transaction.ID,
		Type:           transaction.Type,
		TransferType:   transaction.TransferType,
		Sender:         transaction.Sender,
		Receiver:       transaction.Receiver,
		SentAmount:     transaction.SentAmount,
		ReceivedAmount: transaction.ReceivedAmount,
		SentToken:      transaction.SentToken,
		ReceivedToken:  transaction.ReceivedToken,
		SettlementHash: transaction.SettlementHash,
		PaymentCode:    transaction.PaymentCode,
		Status:         transaction.Status,
		CreatedAt:      transaction.CreatedAt,
		UpdatedAt:      transaction.UpdatedAt,
	}
}

func ToDomainStep(model *models.TransactionStepModel) *domain.TransactionStep {
	return &domain.TransactionStep{
		ID:            model.ID,
		TransactionID: model.TransactionID,
		Type:          model.Type,
		Priority:      model.Priority,
		ExternalID:    model.ExternalID,
		Sender:        model.Sender,
		Receiver:      model.Receiver,
		TokenAddress:  model.TokenAddress,
		TokenAmount:   model.TokenAmount,
		FiatAmount:    model.FiatAmount,
		Status:        model.Status,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func ToGORMStep(step *domain.TransactionStep) *models.TransactionStepModel {
	return &models.TransactionStepModel{
		ID:            step.ID,
		TransactionID: step.TransactionID,
		Type:          step.Type,
		Priority:      step.Priority,
		ExternalID:    step.ExternalID,
		Sender:        step.Sender,
		Receiver:      step.Receiver,
		TokenAddress:  step.TokenAddress,
		TokenAmount:   step.TokenAmount,
		FiatAmount:    step.FiatAmount,
		Status:        step.Status,
		CreatedAt:     step.CreatedAt,
		UpdatedAt:     step.UpdatedAt,
	}
}
