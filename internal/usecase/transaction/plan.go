package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/langitpay/settlement-service/internal/domain"
	"github.com/langitpay/settlement-service/internal/money"
	transactiondto "github.com/langitpay/settlement-service/internal/usecase/dto/transaction"
)

const nativeDecimals = 18

// Transfer plans and starts a TRANSFER saga. All balance and quote
// checks run before the first write; the transaction, its steps and the
// first step's submission commit as one unit.
func (uc *DefaultTransactionUsecase) Transfer(ctx context.Context, input *transactiondto.TransferInput) (*domain.Transaction, error) {
	sender, err := uc.AccountRepo.GetByID(input.SenderAccountID)
	if err != nil {
		return nil, err
	}

	key, err := uc.KeyCustody.Recover(ctx, sender.EncryptedShard, input.CallerShard)
	if err != nil {
		return nil, err
	}
	if key.Address != sender.Address {
		return nil, domain.ErrKeyMismatch
	}

	receiver, fiatSettling, err := uc.resolveReceiver(input.Receiver)
	if err != nil {
		return nil, err
	}

	tokenAddress, decimals, err := uc.resolveToken(input.SentToken)
	if err != nil {
		return nil, err
	}

	native := input.SentToken == ""
	transferType := pickTransferType(native, fiatSettling)

	if input.SentAmount == "" {
		return nil, status.Errorf(codes.InvalidArgument, "sentAmount must be set")
	}
	sentAmount, err := decimal.NewFromString(input.SentAmount)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed sentAmount: %v", err)
	}

	var receivedFiat decimal.Decimal
	if fiatSettling {
		if input.ReceivedAmount == "" {
			return nil, status.Errorf(codes.InvalidArgument, "receivedAmount must be set for fiat settlement")
		}
		receivedFiat, err = decimal.NewFromString(input.ReceivedAmount)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "malformed receivedAmount: %v", err)
		}

		// The venue's quote is the canonical sent amount. The caller's
		// figure only gates the request; it never reaches a rail.
		quote, err := uc.ExchangeClient.Quote(ctx, receivedFiat)
		if err != nil {
			return nil, err
		}
		if sentAmount.LessThan(quote.TokenAmount) {
			return nil, domain.ErrAmountBelowQuote
		}
		sentAmount = quote.TokenAmount
	}

	sentUnits, err := money.ToSmallestUnit(sentAmount, decimals)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed sentAmount: %v", err)
	}

	if err := uc.checkChainBalance(ctx, sender.AccountAbstractionAddress, tokenAddress, sentUnits); err != nil {
		return nil, err
	}

	transaction := &domain.Transaction{
		ID:           uuid.New().String(),
		Type:         domain.TypeTransfer,
		TransferType: transferType,
		Sender:       sender.ID,
		Receiver:     receiver.ID,
		SentAmount:   sentUnits,
		SentToken:    tokenAddress,
		Status:       domain.TransactionInit,
	}

	var steps []*domain.TransactionStep
	if fiatSettling {
		transaction.ReceivedAmount = receivedFiat.String()
		steps = []*domain.TransactionStep{
			newStep(transaction.ID, domain.StepAAChainTransaction, 0, &domain.TransactionStep{
				Sender:       sender.AccountAbstractionAddress,
				Receiver:     uc.Custody.Address,
				TokenAddress: tokenAddress,
				TokenAmount:  sentUnits,
			}),
			newStep(transaction.ID, domain.StepWalletTransfer, 1, &domain.TransactionStep{
				Sender:     uc.Custody.FiatWalletID,
				Receiver:   receiver.FiatWalletID,
				FiatAmount: receivedFiat.String(),
			}),
		}
	} else {
		transaction.ReceivedAmount = sentUnits
		transaction.ReceivedToken = tokenAddress
		steps = []*domain.TransactionStep{
			newStep(transaction.ID, domain.StepAAChainTransaction, 0, &domain.TransactionStep{
				Sender:       sender.AccountAbstractionAddress,
				Receiver:     receiver.AccountAbstractionAddress,
				TokenAddress: tokenAddress,
				TokenAmount:  sentUnits,
			}),
		}
	}

	if err := uc.createAndSubmit(ctx, transaction, steps, key.PrivateKey); err != nil {
		return nil, err
	}
	return transaction, nil
}

// BuyToken plans a fiat-to-crypto purchase: the buyer's fiat wallet pays
// the platform, then the custody key ships tokens on-chain.
func (uc *DefaultTransactionUsecase) BuyToken(ctx context.Context, input *transactiondto.BuyTokenInput) (*domain.Transaction, error) {
	receiver, err := uc.AccountRepo.GetByEmail(input.ReceiverEmail)
	if err != nil {
		return nil, err
	}
	if receiver.FiatWalletID == "" {
		return nil, status.Errorf(codes.FailedPrecondition, "account %s has no fiat wallet", receiver.ID)
	}

	token, err := uc.TokenRepo.GetByAddress(input.Token)
	if err != nil {
		return nil, err
	}

	if input.ReceivedAmount == "" || input.FiatAmount == "" {
		return nil, status.Errorf(codes.InvalidArgument, "receivedAmount and fiatAmount must be set")
	}
	receivedAmount, err := decimal.NewFromString(input.ReceivedAmount)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed receivedAmount: %v", err)
	}
	fiatAmount, err := decimal.NewFromString(input.FiatAmount)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed fiatAmount: %v", err)
	}

	// The fiat paid must cover the tokens shipped at the current quote
	quote, err := uc.ExchangeClient.Quote(ctx, fiatAmount)
	if err != nil {
		return nil, err
	}
	if receivedAmount.GreaterThan(quote.TokenAmount) {
		return nil, domain.ErrAmountBelowQuote
	}

	receivedUnits, err := money.ToSmallestUnit(receivedAmount, token.Decimals)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed receivedAmount: %v", err)
	}

	if err := uc.checkChainBalance(ctx, uc.Custody.Address, token.Address, receivedUnits); err != nil {
		return nil, err
	}

	paymentCode, err := newPaymentCode()
	if err != nil {
		return nil, err
	}

	transaction := &domain.Transaction{
		ID:             uuid.New().String(),
		Type:           domain.TypeBuyToken,
		Sender:         receiver.ID,
		Receiver:       receiver.ID,
		SentAmount:     fiatAmount.String(),
		ReceivedAmount: receivedUnits,
		ReceivedToken:  token.Address,
		PaymentCode:    paymentCode,
		Status:         domain.TransactionInit,
	}

	steps := []*domain.TransactionStep{
		newStep(transaction.ID, domain.StepWalletPayment, 0, &domain.TransactionStep{
			Sender:     receiver.FiatWalletID,
			Receiver:   uc.Custody.FiatWalletID,
			FiatAmount: fiatAmount.String(),
		}),
		newStep(transaction.ID, domain.StepEOAChainTransaction, 1, &domain.TransactionStep{
			Sender:       uc.Custody.Address,
			Receiver:     receiver.AccountAbstractionAddress,
			TokenAddress: token.Address,
			TokenAmount:  receivedUnits,
		}),
	}

	if err := uc.createAndSubmit(ctx, transaction, steps, ""); err != nil {
		return nil, err
	}
	return transaction, nil
}

// BuyProduct plans a crypto-funded bill payment: the buyer's smart
// wallet pays the custody address in the settlement token, then the
// provider tops up the product.
func (uc *DefaultTransactionUsecase) BuyProduct(ctx context.Context, input *transactiondto.BuyProductInput) (*domain.Transaction, error) {
	sender, err := uc.AccountRepo.GetByID(input.SenderAccountID)
	if err != nil {
		return nil, err
	}

	key, err := uc.KeyCustody.Recover(ctx, sender.EncryptedShard, input.CallerShard)
	if err != nil {
		return nil, err
	}
	if key.Address != sender.Address {
		return nil, domain.ErrKeyMismatch
	}

	price, err := uc.BillpayClient.Price(ctx, input.ProductCode)
	if err != nil {
		return nil, err
	}

	token, err := uc.TokenRepo.GetByAddress(uc.Custody.SettlementToken)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "settlement token not configured: %v", err)
	}

	quote, err := uc.ExchangeClient.Quote(ctx, price)
	if err != nil {
		return nil, err
	}

	sentUnits, err := money.ToSmallestUnit(quote.TokenAmount, token.Decimals)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "malformed quote amount: %v", err)
	}

	if err := uc.checkChainBalance(ctx, sender.AccountAbstractionAddress, token.Address, sentUnits); err != nil {
		return nil, err
	}

	paymentCode, err := newPaymentCode()
	if err != nil {
		return nil, err
	}

	transaction := &domain.Transaction{
		ID:             uuid.New().String(),
		Type:           domain.TypeBuyProduct,
		Sender:         sender.ID,
		Receiver:       sender.ID,
		SentAmount:     sentUnits,
		SentToken:      token.Address,
		ReceivedAmount: price.String(),
		PaymentCode:    paymentCode,
		Status:         domain.TransactionInit,
	}

	steps := []*domain.TransactionStep{
		newStep(transaction.ID, domain.StepAAChainTransaction, 0, &domain.TransactionStep{
			Sender:       sender.AccountAbstractionAddress,
			Receiver:     uc.Custody.Address,
			TokenAddress: token.Address,
			TokenAmount:  sentUnits,
		}),
		newStep(transaction.ID, domain.StepProductTopup, 1, &domain.TransactionStep{
			Sender:       sender.ID,
			Receiver:     input.CustomerID,
			TokenAddress: input.ProductCode,
			FiatAmount:   price.String(),
		}),
	}

	if err := uc.createAndSubmit(ctx, transaction, steps, key.PrivateKey); err != nil {
		return nil, err
	}
	return transaction, nil
}

// createAndSubmit persists the transaction with its steps and submits
// the first step, all inside one database transaction.
func (uc *DefaultTransactionUsecase) createAndSubmit(ctx context.Context, transaction *domain.Transaction, steps []*domain.TransactionStep, signingKey string) error {
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

	if err := txRepo.CreateTransactionWithSteps(transaction, steps); err != nil {
		return err
	}

	externalID, syncFinal, err := uc.executeStep(ctx, txRepo, transaction, steps[0], signingKey)
	if err != nil {
		return err
	}

	if err := txRepo.UpdateTransactionStatus(transaction.ID, domain.TransactionSending); err != nil {
		return err
	}
	transaction.Status = domain.TransactionSending

	if err := txRepo.Commit(); err != nil {
		return status.Errorf(codes.Internal, "failed to commit tx: %v", err)
	}
	committed = true

	uc.Metrics.RecordTransactionCreated(string(transaction.Type), string(transaction.TransferType))

	if syncFinal {
		return uc.FinalizeStep(ctx, externalID, domain.StepSuccess, "")
	}
	return nil
}

func (uc *DefaultTransactionUsecase) resolveReceiver(receiver string) (*domain.Account, bool, error) {
	account, err := uc.AccountRepo.GetByAbstractionAddress(receiver)
	if err == nil {
		return account, false, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, false, err
	}

	account, err = uc.AccountRepo.GetByEmail(receiver)
	if err != nil {
		return nil, false, err
	}
	if account.FiatWalletID == "" {
		return nil, false, status.Errorf(codes.FailedPrecondition, "account %s has no fiat wallet", account.ID)
	}
	return account, true, nil
}

func (uc *DefaultTransactionUsecase) resolveToken(address string) (string, int, error) {
	if address == "" {
		return "", nativeDecimals, nil
	}
	token, err := uc.TokenRepo.GetByAddress(address)
	if err != nil {
		return "", 0, err
	}
	return token.Address, token.Decimals, nil
}

func (uc *DefaultTransactionUsecase) checkChainBalance(ctx context.Context, address, tokenAddress, requiredUnits string) error {
	balance, err := uc.ChainClient.Balance(ctx, address, tokenAddress)
	if err != nil {
		return err
	}
	cmp, err := money.Cmp(requiredUnits, balance)
	if err != nil {
		return status.Errorf(codes.Internal, "malformed balance for %s: %v", address, err)
	}
	if cmp > 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func pickTransferType(native, fiatSettling bool) domain.TransferType {
	switch {
	case native && fiatSettling:
		return domain.TransferNativeToFiat
	case native:
		return domain.TransferNativeToNative
	case fiatSettling:
		return domain.TransferCryptoToFiat
	default:
		return domain.TransferCryptoToCrypto
	}
}

func newStep(transactionID string, stepType domain.StepType, priority int, params *domain.TransactionStep) *domain.TransactionStep {
	return &domain.TransactionStep{
		ID:            uuid.New().String(),
		TransactionID: transactionID,
		Type:          stepType,
		Priority:      priority,
		Sender:        params.Sender,
		Receiver:      params.Receiver,
		TokenAddress:  params.TokenAddress,
		TokenAmount:   params.TokenAmount,
		FiatAmount:    params.FiatAmount,
		Status:        domain.StepInit,
		CreatedAt:     time.Now(),
	}
}

func newPaymentCode() (string, error) {
	generate, err := nanoid.Standard(15)
	if err != nil {
		return "", status.Errorf(codes.Internal, "failed to create payment code generator: %v", err)
	}
	return generate(), nil
}
