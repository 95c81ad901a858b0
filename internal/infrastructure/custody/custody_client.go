package custody

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

// CustodyClient recombines key shards through the custody service. The
// recombined key never persists anywhere; it lives only for the single
// signing call that needs it.
type CustodyClient struct {
	baseURL string
	client  *http.Client
}

type recoverRequest struct {
	StoredShardRef string `json:"stored_shard_ref"`
	CallerShard    string `json:"caller_shard"`
}

type recoverResponse struct {
	PrivateKey string `json:"private_key"`
	Address    string `json:"address"`
	Error      string `json:"error"`
}

func NewCustodyClient(baseURL string) *CustodyClient {
	return &CustodyClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *CustodyClient) Recover(ctx context.Context, storedShardRef, callerShard string) (domain.RecoveredKey, error) {
	payload, err := json.Marshal(recoverRequest{
		StoredShardRef: storedShardRef,
		CallerShard:    callerShard,
	})
	if err != nil {
		return domain.RecoveredKey{}, fmt.Errorf("failed to marshal recover request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"recover", bytes.NewReader(payload))
	if err != nil {
		return domain.RecoveredKey{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.RecoveredKey{}, fmt.Errorf("failed to call custody service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.RecoveredKey{}, fmt.Errorf("custody service returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.RecoveredKey{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var out recoverResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.RecoveredKey{}, fmt.Errorf("failed to parse custody response: %w", err)
	}
	if out.Error != "" {
		return domain.RecoveredKey{}, fmt.Errorf("custody recovery failed: %s", out.Error)
	}

	return domain.RecoveredKey{PrivateKey: out.PrivateKey, Address: out.Address}, nil
}
