package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/langitpay/settlement-service/internal/delivery/http/dto"
	"github.com/langitpay/settlement-service/internal/domain"
	transactiondto "github.com/langitpay/settlement-service/internal/usecase/dto/transaction"
	usecase "github.com/langitpay/settlement-service/internal/usecase/transaction"
)

type TransactionHandler struct {
	uc usecase.TransactionUsecase
}

func NewTransactionHandler(uc usecase.TransactionUsecase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	transaction, err := h.uc.Transfer(c.Request.Context(), &transactiondto.TransferInput{
		SenderAccountID: req.SenderAccountID,
		CallerShard:     req.CallerShard,
		Receiver:        req.Receiver,
		SentAmount:      req.SentAmount,
		ReceivedAmount:  req.ReceivedAmount,
		SentToken:       req.SentToken,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

func (h *TransactionHandler) BuyToken(c *gin.Context) {
	var req dto.BuyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	transaction, err := h.uc.BuyToken(c.Request.Context(), &transactiondto.BuyTokenInput{
		ReceiverEmail:  req.ReceiverEmail,
		ReceivedAmount: req.ReceivedAmount,
		FiatAmount:     req.FiatAmount,
		Token:          req.Token,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

func (h *TransactionHandler) BuyProduct(c *gin.Context) {
	var req dto.BuyProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	transaction, err := h.uc.BuyProduct(c.Request.Context(), &transactiondto.BuyProductInput{
		SenderAccountID: req.SenderAccountID,
		CallerShard:     req.CallerShard,
		ProductCode:     req.ProductCode,
		CustomerID:      req.CustomerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	transaction, err := h.uc.GetTransactionByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// PaymentCallback is the fiat rail's webhook. Status code 0 means the
// payment is still pending and carries no state change.
func (h *TransactionHandler) PaymentCallback(c *gin.Context) {
	var req dto.PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if req.StatusCode == 0 {
		c.Status(http.StatusOK)
		return
	}

	outcome := domain.StepFailed
	if req.StatusCode == 1 {
		outcome = domain.StepSuccess
	}

	if err := h.uc.FinalizeStep(c.Request.Context(), req.ReferenceID, outcome, ""); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *TransactionHandler) ProductPrice(c *gin.Context) {
	productCode := c.Query("product_code")
	if productCode == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "product_code is required"})
		return
	}

	price, tokenAmount, err := h.uc.ProductPrice(c.Request.Context(), productCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProductPriceResponse{
		ProductCode: productCode,
		FiatPrice:   price.String(),
		TokenAmount: tokenAmount.String(),
	})
}

func (h *TransactionHandler) ListTokens(c *gin.Context) {
	tokens, err := h.uc.ListTokens()
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.TokenResponse, 0, len(tokens))
	for _, token := range tokens {
		resp = append(resp, dto.TokenResponse{
			Name:     token.Name,
			Symbol:   token.Symbol,
			Address:  token.Address,
			Decimals: token.Decimals,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func toTransactionResponse(transaction *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		TransactionID:  transaction.ID,
		Type:           string(transaction.Type),
		TransferType:   string(transaction.TransferType),
		Status:         string(transaction.Status),
		SentAmount:     transaction.SentAmount,
		ReceivedAmount: transaction.ReceivedAmount,
		SettlementHash: transaction.SettlementHash,
		PaymentCode:    transaction.PaymentCode,
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTokenNotFound),
		errors.Is(err, domain.ErrStepNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrAmountBelowQuote),
		errors.Is(err, domain.ErrKeyMismatch):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.InvalidArgument:
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: st.Message()})
			return
		case codes.NotFound:
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: st.Message()})
			return
		case codes.FailedPrecondition:
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: st.Message()})
			return
		}
	}

	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
}
