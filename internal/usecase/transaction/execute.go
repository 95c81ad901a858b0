package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/langitpay/settlement-service/internal/domain"
)

// executeStep submits one step to its settlement rail and records the
// external identifier inside the caller's open database transaction.
// Exactly one rail call happens per invocation. The returned syncFinal
// flag marks rails with no asynchronous confirmation channel; the
// caller must finalize the step itself once the transaction commits.
func (uc *DefaultTransactionUsecase) executeStep(ctx context.Context, txRepo domain.TransactionTxRepository, transaction *domain.Transaction, step *domain.TransactionStep, signingKey string) (string, bool, error) {
	var externalID string
	var syncFinal bool

	switch step.Type {
	case domain.StepAAChainTransaction:
		if signingKey == "" {
			return "", false, status.Errorf(codes.Internal, "step %s requires a caller signing key", step.ID)
		}
		id, err := uc.submitChainTransfer(ctx, txRepo, step, signingKey, domain.ActionAATransfer)
		if err != nil {
			return "", false, err
		}
		externalID = id

	case domain.StepEOAChainTransaction:
		id, err := uc.submitChainTransfer(ctx, txRepo, step, uc.Custody.SigningKey, domain.ActionEOATransfer)
		if err != nil {
			return "", false, err
		}
		externalID = id

	case domain.StepWalletTransfer, domain.StepWalletPayment:
		amount, err := decimal.NewFromString(step.FiatAmount)
		if err != nil {
			return "", false, status.Errorf(codes.Internal, "malformed fiat amount on step %s: %v", step.ID, err)
		}
		id, err := uc.FiatClient.Push(ctx, step.Sender, step.Receiver, amount)
		if err != nil {
			uc.Metrics.RecordError("fiat_push")
			return "", false, err
		}
		externalID = id
		// The wallet rail has no confirmation channel for outbound
		// transfers; the push is final the moment it returns.
		syncFinal = step.Type == domain.StepWalletTransfer

	case domain.StepProductTopup:
		id, err := uc.BillpayClient.TopUp(ctx, step.TokenAddress, step.Receiver, transaction.PaymentCode)
		if err != nil {
			uc.Metrics.RecordError("billpay_topup")
			return "", false, err
		}
		externalID = id

	default:
		return "", false, status.Errorf(codes.Internal, "unknown step type %s", step.Type)
	}

	if err := txRepo.MarkStepSubmitted(step.ID, externalID); err != nil {
		return "", false, err
	}
	step.ExternalID = externalID
	step.Status = domain.StepProcessing

	uc.Metrics.RecordStepSubmitted(string(step.Type))
	return externalID, syncFinal, nil
}

func (uc *DefaultTransactionUsecase) submitChainTransfer(ctx context.Context, txRepo domain.TransactionTxRepository, step *domain.TransactionStep, signingKey string, actionType domain.ChainActionType) (string, error) {
	hash, err := uc.ChainClient.Submit(ctx, domain.ChainTransfer{
		Sender:       step.Sender,
		Receiver:     step.Receiver,
		TokenAddress: step.TokenAddress,
		Amount:       step.TokenAmount,
		SigningKey:   signingKey,
	})
	if err != nil {
		uc.Metrics.RecordError("chain_submit")
		return "", err
	}

	// The tracking record commits or rolls back with the step
	err = uc.ChainTxRepo.WithTx(txRepo).Create(&domain.ChainTransaction{
		ID:                uuid.New().String(),
		UserOperationHash: hash,
		ActionType:        actionType,
		Status:            domain.ChainSubmitted,
	})
	if err != nil {
		return "", err
	}
	return hash, nil
}
