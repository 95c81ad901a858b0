package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/langitpay/settlement-service/internal/domain"
)

// BundlerClient talks to an account-abstraction bundler gateway over
// JSON-RPC. The gateway builds and signs the user operation itself, so
// transfer parameters travel as the single RPC param object.
type BundlerClient struct {
	url    string
	client *http.Client
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type sendResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

type receiptResponse struct {
	Result *struct {
		UserOpHash string `json:"userOpHash"`
		Success    bool   `json:"success"`
		Logs       []struct {
			TransactionHash string `json:"transactionHash"`
		} `json:"logs"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

type balanceResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

func NewBundlerClient(url string) *BundlerClient {
	return &BundlerClient{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (b *BundlerClient) Submit(ctx context.Context, transfer domain.ChainTransfer) (string, error) {
	var resp sendResponse
	err := b.call(ctx, "eth_sendUserOperation", []any{map[string]string{
		"sender":       transfer.Sender,
		"receiver":     transfer.Receiver,
		"tokenAddress": transfer.TokenAddress,
		"amount":       transfer.Amount,
		"signingKey":   transfer.SigningKey,
	}}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("bundler rejected user operation: %s", resp.Error.Message)
	}
	return resp.Result, nil
}

func (b *BundlerClient) Confirm(ctx context.Context, userOperationHash string) (domain.ChainReceipt, error) {
	var resp receiptResponse
	err := b.call(ctx, "eth_getUserOperationReceipt", []any{userOperationHash}, &resp)
	if err != nil {
		return domain.ChainReceipt{}, err
	}
	if resp.Error != nil {
		return domain.ChainReceipt{}, fmt.Errorf("bundler receipt lookup failed: %s", resp.Error.Message)
	}

	// A null result means the operation is not yet included in a block
	if resp.Result == nil {
		return domain.ChainReceipt{Status: domain.ReceiptPending}, nil
	}

	receipt := domain.ChainReceipt{Status: domain.ReceiptFailed}
	if resp.Result.Success {
		receipt.Status = domain.ReceiptSuccess
	}
	if len(resp.Result.Logs) > 0 {
		receipt.SettlementHash = resp.Result.Logs[0].TransactionHash
	}
	return receipt, nil
}

func (b *BundlerClient) Balance(ctx context.Context, address, tokenAddress string) (string, error) {
	var resp balanceResponse
	err := b.call(ctx, "eth_getTokenBalance", []any{address, tokenAddress}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("bundler balance lookup failed: %s", resp.Error.Message)
	}
	return resp.Result, nil
}

func (b *BundlerClient) call(ctx context.Context, method string, params []any, out any) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call bundler: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bundler returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse bundler response: %w", err)
	}
	return nil
}
