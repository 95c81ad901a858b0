package billpay

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// PPOBClient tops up prepaid products through the PPOB aggregator.
// Requests are authenticated with md5(username + apiKey + suffix)
// where the suffix identifies the endpoint.
type PPOBClient struct {
	baseURL  string
	username string
	apiKey   string
	client   *http.Client
}

type topUpRequest struct {
	Username    string `json:"username"`
	ProductCode string `json:"buyer_sku_code"`
	CustomerNo  string `json:"customer_no"`
	RefID       string `json:"ref_id"`
	Sign        string `json:"sign"`
}

type topUpResponse struct {
	Data struct {
		RefID   string `json:"ref_id"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

type priceListResponse struct {
	Data struct {
		PriceList []struct {
			ProductCode string          `json:"buyer_sku_code"`
			Price       decimal.Decimal `json:"price"`
		} `json:"pricelist"`
	} `json:"data"`
}

func NewPPOBClient(baseURL, username, apiKey string) *PPOBClient {
	return &PPOBClient{
		baseURL:  baseURL,
		username: username,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (p *PPOBClient) TopUp(ctx context.Context, productCode, customerID, referenceID string) (string, error) {
	body := topUpRequest{
		Username:    p.username,
		ProductCode: productCode,
		CustomerNo:  customerID,
		RefID:       referenceID,
		Sign:        p.sign(referenceID),
	}

	var out topUpResponse
	if err := p.post(ctx, "transaction", body, &out); err != nil {
		return "", err
	}
	if out.Data.Status == "Gagal" {
		return "", fmt.Errorf("ppob rejected top-up: %s", out.Data.Message)
	}
	return out.Data.RefID, nil
}

func (p *PPOBClient) Price(ctx context.Context, productCode string) (decimal.Decimal, error) {
	body := map[string]string{
		"username": p.username,
		"status":   "active",
		"sign":     p.sign("pl"),
	}

	var out priceListResponse
	if err := p.post(ctx, "pricelist", body, &out); err != nil {
		return decimal.Zero, err
	}

	for _, item := range out.Data.PriceList {
		if item.ProductCode == productCode {
			return item.Price, nil
		}
	}
	return decimal.Zero, fmt.Errorf("product %s not found in price list", productCode)
}

func (p *PPOBClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call ppob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ppob returned status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse ppob response: %w", err)
	}
	return nil
}

func (p *PPOBClient) sign(suffix string) string {
	sum := md5.Sum([]byte(p.username + p.apiKey + suffix))
	return hex.EncodeToString(sum[:])
}
