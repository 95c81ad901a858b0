package fiat

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// WalletClient pushes fiat between virtual accounts on the external
// wallet rail. Every request carries an HMAC-SHA256 signature of
// method, account id, body hash and api key.
type WalletClient struct {
	baseURL        string
	apiKey         string
	pullingAccount string
	client         *http.Client
}

type walletResponse struct {
	Status  int             `json:"Status"`
	Message string          `json:"Message"`
	Data    json.RawMessage `json:"Data"`
}

type transferData struct {
	TransactionID string `json:"TransactionId"`
}

type balanceData struct {
	MerchantBalance decimal.Decimal `json:"MerchantBalance"`
}

func NewWalletClient(baseURL, apiKey, pullingAccount string) *WalletClient {
	return &WalletClient{
		baseURL:        baseURL,
		apiKey:         apiKey,
		pullingAccount: pullingAccount,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *WalletClient) Push(ctx context.Context, fromWallet, toWallet string, amount decimal.Decimal) (string, error) {
	body := map[string]any{
		"sender":   fromWallet,
		"receiver": toWallet,
		"amount":   amount,
	}

	raw, err := w.fetch(ctx, "transferva", body)
	if err != nil {
		return "", err
	}

	var data transferData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("failed to parse transfer response: %w", err)
	}
	return data.TransactionID, nil
}

func (w *WalletClient) Balance(ctx context.Context, wallet string) (decimal.Decimal, error) {
	raw, err := w.fetch(ctx, "balance", map[string]any{"account": wallet})
	if err != nil {
		return decimal.Zero, err
	}

	var data balanceData
	if err := json.Unmarshal(raw, &data); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance response: %w", err)
	}
	return data.MerchantBalance, nil
}

func (w *WalletClient) fetch(ctx context.Context, path string, body map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("signature", w.sign("POST", payload))
	req.Header.Set("va", w.pullingAccount)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call wallet rail: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var wr walletResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return nil, fmt.Errorf("failed to parse wallet response: %w", err)
	}
	if wr.Status != 200 {
		return nil, fmt.Errorf("wallet rail rejected %s: %s", path, wr.Message)
	}
	return wr.Data, nil
}

func (w *WalletClient) sign(method string, payload []byte) string {
	bodyHash := sha256.Sum256(payload)
	stringToSign := fmt.Sprintf("%s:%s:%s:%s",
		method, w.pullingAccount, hex.EncodeToString(bodyHash[:]), w.apiKey)

	mac := hmac.New(sha256.New, []byte(w.apiKey))
	mac.Write([]byte(stringToSign))
	return hex.EncodeToString(mac.Sum(nil))
}
