package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/langitpay/settlement-service/internal/domain"
)

func (uc *DefaultTransactionUsecase) GetTransactionByID(transactionID string) (*domain.Transaction, error) {
	return uc.TransactionRepo.GetTransactionByID(transactionID)
}

func (uc *DefaultTransactionUsecase) ListTokens() ([]*domain.Token, error) {
	return uc.TokenRepo.List()
}

// ProductPrice returns the product's fiat price and the crypto amount
// the buyer would pay for it at the current venue quote.
func (uc *DefaultTransactionUsecase) ProductPrice(ctx context.Context, productCode string) (decimal.Decimal, decimal.Decimal, error) {
	price, err := uc.BillpayClient.Price(ctx, productCode)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	quote, err := uc.ExchangeClient.Quote(ctx, price)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return price, quote.TokenAmount, nil
}
