package dto

type TransferRequest struct {
	SenderAccountID string `json:"sender_account_id" binding:"required"`
	CallerShard     string `json:"caller_shard" binding:"required"`
	Receiver        string `json:"receiver" binding:"required"`
	SentAmount      string `json:"sent_amount" binding:"required"`
	ReceivedAmount  string `json:"received_amount"`
	SentToken       string `json:"sent_token"`
}

type BuyTokenRequest struct {
	ReceiverEmail  string `json:"receiver_email" binding:"required"`
	ReceivedAmount string `json:"received_amount" binding:"required"`
	FiatAmount     string `json:"fiat_amount" binding:"required"`
	Token          string `json:"token" binding:"required"`
}

type BuyProductRequest struct {
	SenderAccountID string `json:"sender_account_id" binding:"required"`
	CallerShard     string `json:"caller_shard" binding:"required"`
	ProductCode     string `json:"product_code" binding:"required"`
	CustomerID      string `json:"customer_id" binding:"required"`
}

type PaymentCallbackRequest struct {
	TransactionID string `json:"transaction_id"`
	StatusCode    int    `json:"status_code"`
	ReferenceID   string `json:"reference_id" binding:"required"`
}

type TransactionResponse struct {
	TransactionID  string `json:"transaction_id"`
	Type           string `json:"type"`
	TransferType   string `json:"transfer_type,omitempty"`
	Status         string `json:"status"`
	SentAmount     string `json:"sent_amount,omitempty"`
	ReceivedAmount string `json:"received_amount,omitempty"`
	SettlementHash string `json:"settlement_hash,omitempty"`
	PaymentCode    string `json:"payment_code,omitempty"`
}

type ProductPriceResponse struct {
	ProductCode string `json:"product_code"`
	FiatPrice   string `json:"fiat_price"`
	TokenAmount string `json:"token_amount"`
}

type TokenResponse struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
