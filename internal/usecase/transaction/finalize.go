package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/langitpay/settlement-service/internal/domain"
	"github.com/langitpay/settlement-service/internal/infrastructure/kafka"
)

// errStepSettled marks a repeated delivery for an already-terminal
// step. Nothing has been written when it is returned.
var errStepSettled = errors.New("step already settled")

// FinalizeStep consumes one terminal rail outcome, correlated by the
// rail's own external identifier. Exactly one outward action follows:
// either the next step is submitted or the transaction closes. The
// transaction's terminal status is set nowhere else.
func (uc *DefaultTransactionUsecase) FinalizeStep(ctx context.Context, externalID string, outcome domain.StepStatus, settlementHash string) error {
	if outcome != domain.StepSuccess && outcome != domain.StepFailed {
		return status.Errorf(codes.InvalidArgument, "outcome must be terminal, got %s", outcome)
	}

	txRepo, err := uc.TransactionRepo.BeginTx()
	if err != nil {
		return status.Errorf(codes.Internal, "failed to begin tx: %v", err)
	}
	var committed bool
	defer func() {
		if !committed {
			txRepo.Rollback()
		}
	}()

	err = uc.finalizeInTx(ctx, txRepo, externalID, outcome, settlementHash, &committed)
	if errors.Is(err, errStepSettled) {
		return nil
	}
	return err
}

// finalizeInTx runs the step transition inside the caller's open
// transaction and commits it. The caller keeps ownership of rollback.
func (uc *DefaultTransactionUsecase) finalizeInTx(ctx context.Context, txRepo domain.TransactionTxRepository, externalID string, outcome domain.StepStatus, settlementHash string, committed *bool) error {
	step, err := txRepo.GetStepByExternalID(externalID)
	if err != nil {
		return err
	}

	if step.Status.Terminal() {
		return errStepSettled
	}

	if err := txRepo.UpdateStepStatus(step.ID, outcome); err != nil {
		return err
	}

	transaction, err := txRepo.GetTransactionByID(step.TransactionID)
	if err != nil {
		return err
	}

	if settlementHash != "" {
		if err := txRepo.SetSettlementHash(transaction.ID, settlementHash); err != nil {
			return err
		}
		transaction.SettlementHash = settlementHash
	}

	pending, err := txRepo.PendingSteps(transaction.ID)
	if err != nil {
		return err
	}

	if outcome == domain.StepFailed || len(pending) == 0 {
		return uc.closeTransaction(txRepo, transaction, step, outcome, committed)
	}

	next := pending[0]
	nextExternalID, syncFinal, execErr := uc.executeStep(ctx, txRepo, transaction, next, "")
	if execErr != nil {
		return uc.compensate(ctx, txRepo, transaction, step, next, execErr, committed)
	}

	if err := txRepo.Commit(); err != nil {
		return status.Errorf(codes.Internal, "failed to commit tx: %v", err)
	}
	*committed = true

	uc.recordStepOutcome(step, outcome)

	if syncFinal {
		return uc.FinalizeStep(ctx, nextExternalID, domain.StepSuccess, "")
	}
	return nil
}

func (uc *DefaultTransactionUsecase) closeTransaction(txRepo domain.TransactionTxRepository, transaction *domain.Transaction, step *domain.TransactionStep, outcome domain.StepStatus, committed *bool) error {
	final := domain.TransactionFailed
	if outcome == domain.StepSuccess {
		final = domain.TransactionSent
	}

	if err := txRepo.UpdateTransactionStatus(transaction.ID, final); err != nil {
		return err
	}
	transaction.Status = final

	if err := txRepo.Commit(); err != nil {
		return status.Errorf(codes.Internal, "failed to commit tx: %v", err)
	}
	*committed = true

	uc.recordStepOutcome(step, outcome)
	if final == domain.TransactionSent {
		uc.Metrics.RecordTransactionSettled(string(transaction.Type), string(transaction.TransferType))
	} else {
		uc.Metrics.RecordTransactionFailed(string(transaction.Type), string(transaction.TransferType))
	}
	uc.publishTransactionEvent(transaction)

	// The transfer already settled; a rebalancing failure only dents the
	// platform's own liquidity and must not surface to the caller
	if final == domain.TransactionSent && transaction.Type == domain.TypeTransfer && transaction.TransferType.IsFiatSettling() {
		go uc.rebalanceLiquidity(context.Background(), transaction)
	}
	return nil
}

// compensate unwinds an already-settled crypto leg after the next step
// could not be submitted. Best-effort: the reversal is submitted once
// and never retried.
func (uc *DefaultTransactionUsecase) compensate(ctx context.Context, txRepo domain.TransactionTxRepository, transaction *domain.Transaction, step *domain.TransactionStep, next *domain.TransactionStep, execErr error, committed *bool) error {
	slog.Error("step submission failed, compensating",
		"transaction_id", transaction.ID,
		"step_id", next.ID,
		"error", execErr.Error())

	if err := txRepo.UpdateStepStatus(next.ID, domain.StepFailed); err != nil {
		return err
	}

	reverted := false
	if transaction.Type == domain.TypeTransfer && isChainStep(step.Type) {
		sender, err := uc.AccountRepo.GetByID(transaction.Sender)
		if err != nil {
			slog.Error("failed to resolve sender for reversal",
				"transaction_id", transaction.ID, "error", err.Error())
		} else {
			hash, err := uc.ChainClient.Submit(ctx, domain.ChainTransfer{
				Sender:       uc.Custody.Address,
				Receiver:     sender.AccountAbstractionAddress,
				TokenAddress: step.TokenAddress,
				Amount:       step.TokenAmount,
				SigningKey:   uc.Custody.SigningKey,
			})
			if err != nil {
				slog.Error("failed to submit compensating transfer",
					"transaction_id", transaction.ID, "error", err.Error())
				uc.Metrics.RecordError("compensation")
			} else {
				reverted = true
				if err := uc.ChainTxRepo.WithTx(txRepo).Create(&domain.ChainTransaction{
					ID:                uuid.New().String(),
					UserOperationHash: hash,
					ActionType:        domain.ActionEOATransfer,
					Status:            domain.ChainSubmitted,
				}); err != nil {
					return err
				}
			}
		}
	}

	if reverted {
		if err := txRepo.UpdateStepStatus(step.ID, domain.StepReverted); err != nil {
			return err
		}
		uc.Metrics.RecordStepReverted(string(step.Type))
	}

	if err := txRepo.UpdateTransactionStatus(transaction.ID, domain.TransactionFailed); err != nil {
		return err
	}
	transaction.Status = domain.TransactionFailed

	if err := txRepo.Commit(); err != nil {
		return status.Errorf(codes.Internal, "failed to commit tx: %v", err)
	}
	*committed = true

	uc.Metrics.RecordStepFailed(string(next.Type))
	uc.Metrics.RecordTransactionFailed(string(transaction.Type), string(transaction.TransferType))
	uc.publishTransactionEvent(transaction)
	return nil
}

// rebalanceLiquidity sells the crypto a fiat-settling transfer parked on
// the custody address, restoring the fiat float spent by the wallet leg.
func (uc *DefaultTransactionUsecase) rebalanceLiquidity(ctx context.Context, transaction *domain.Transaction) {
	fiatAmount, err := decimal.NewFromString(transaction.ReceivedAmount)
	if err != nil {
		slog.Error("malformed received amount, skipping rebalancing",
			"transaction_id", transaction.ID, "error", err.Error())
		return
	}

	quote, err := uc.ExchangeClient.Quote(ctx, fiatAmount)
	if err != nil {
		slog.Error("failed to quote rebalancing sale",
			"transaction_id", transaction.ID, "error", err.Error())
		uc.Metrics.RecordError("rebalancing")
		return
	}

	orderID, err := uc.ExchangeClient.Sell(ctx, quote.TokenAmount, quote.Price)
	if err != nil {
		slog.Error("failed to place rebalancing sale",
			"transaction_id", transaction.ID, "error", err.Error())
		uc.Metrics.RecordError("rebalancing")
		return
	}

	if err := uc.ExchangeRepo.Create(&domain.Exchange{
		ID:      uuid.New().String(),
		OrderID: orderID,
		Status:  domain.ExchangeOpened,
	}); err != nil {
		slog.Error("failed to record rebalancing order",
			"transaction_id", transaction.ID, "order_id", orderID, "error", err.Error())
		uc.Metrics.RecordError("rebalancing")
	}
}

func (uc *DefaultTransactionUsecase) recordStepOutcome(step *domain.TransactionStep, outcome domain.StepStatus) {
	if outcome == domain.StepSuccess {
		uc.Metrics.RecordStepSucceeded(string(step.Type))
	} else {
		uc.Metrics.RecordStepFailed(string(step.Type))
	}
}

func (uc *DefaultTransactionUsecase) publishTransactionEvent(transaction *domain.Transaction) {
	if uc.Publisher == nil {
		return
	}
	go func(event kafka.TransactionEvent) {
		if err := uc.Publisher.Publish(event); err != nil {
			slog.Error("failed to publish kafka TransactionEvent", "stage", "finalizing", "error", err.Error())
		}
	}(kafka.TransactionEvent{
		TransactionID:  transaction.ID,
		Type:           string(transaction.Type),
		TransferType:   string(transaction.TransferType),
		Sender:         transaction.Sender,
		Receiver:       transaction.Receiver,
		SentAmount:     transaction.SentAmount,
		SentToken:      transaction.SentToken,
		SettlementHash: transaction.SettlementHash,
		Status:         string(transaction.Status),
	})
}

func isChainStep(stepType domain.StepType) bool {
	return stepType == domain.StepAAChainTransaction || stepType == domain.StepEOAChainTransaction
}
