package usecase

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/langitpay/settlement-service/internal/domain"
)

// FinalizeChainTransaction records a chain receipt on the tracking row
// and finalizes the owning step, all inside one database transaction.
// A tracking row that went terminal without its step would never be
// polled again, so the two writes must not commit separately.
func (uc *DefaultTransactionUsecase) FinalizeChainTransaction(ctx context.Context, chainTx *domain.ChainTransaction, receipt domain.ChainReceipt) error {
	chainStatus := domain.ChainFailed
	outcome := domain.StepFailed
	if receipt.Status == domain.ReceiptSuccess {
		chainStatus = domain.ChainConfirmed
		outcome = domain.StepSuccess
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

	if err := uc.ChainTxRepo.WithTx(txRepo).UpdateStatus(chainTx.ID, chainStatus); err != nil {
		return err
	}

	err = uc.finalizeInTx(ctx, txRepo, chainTx.UserOperationHash, outcome, receipt.SettlementHash, &committed)
	// Compensating reversals have no owning step; their tracking row
	// still closes so they drop out of the poll set
	if errors.Is(err, domain.ErrStepNotFound) || errors.Is(err, errStepSettled) {
		return uc.commitStatusOnly(txRepo, &committed)
	}
	return err
}

// FinalizeExchangeOrder records a terminal order state and finalizes
// the owning step in the same database transaction. Open orders are
// left untouched.
func (uc *DefaultTransactionUsecase) FinalizeExchangeOrder(ctx context.Context, exchange *domain.Exchange, state domain.OrderState) error {
	if state == domain.OrderOpen {
		return nil
	}

	exchangeStatus := domain.ExchangeFailed
	outcome := domain.StepFailed
	if state == domain.OrderFilled {
		exchangeStatus = domain.ExchangeSold
		outcome = domain.StepSuccess
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

	if err := uc.ExchangeRepo.WithTx(txRepo).UpdateStatus(exchange.ID, exchangeStatus); err != nil {
		return err
	}

	err = uc.finalizeInTx(ctx, txRepo, exchange.OrderID, outcome, "", &committed)
	// Rebalancing sales are not saga steps
	if errors.Is(err, domain.ErrStepNotFound) || errors.Is(err, errStepSettled) {
		err = uc.commitStatusOnly(txRepo, &committed)
	}
	if err != nil {
		return err
	}

	uc.Metrics.RecordExchangeOrder(string(exchangeStatus))
	return nil
}

func (uc *DefaultTransactionUsecase) commitStatusOnly(txRepo domain.TransactionTxRepository, committed *bool) error {
	if err := txRepo.Commit(); err != nil {
		return status.Errorf(codes.Internal, "failed to commit tx: %v", err)
	}
	*committed = true
	return nil
}
