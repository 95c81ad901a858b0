package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/langitpay/settlement-service/internal/domain"
)

// quoteMargin is added to the fiat amount before deriving the token
// amount so rounding never leaves the sell order short.
var quoteMargin = decimal.NewFromFloat(0.02)

// VenueClient trades against the exchange venue's REST API. Quote walks
// the best bids until their cumulative fiat value covers the requested
// amount and prices the sale at the deepest bid touched.
type VenueClient struct {
	baseURL   string
	apiKey    string
	apiSecret string
	market    string
	client    *http.Client
}

type orderBookResponse struct {
	Bids [][]string `json:"bids"`
}

type createOrderResponse struct {
	OrderID string `json:"orderId"`
}

type orderDetailResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func NewVenueClient(baseURL, apiKey, apiSecret, market string) *VenueClient {
	return &VenueClient{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		market:    market,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (v *VenueClient) Quote(ctx context.Context, fiatAmount decimal.Decimal) (domain.ExchangeQuote, error) {
	book, err := v.orderBook(ctx)
	if err != nil {
		return domain.ExchangeQuote{}, err
	}
	if len(book.Bids) == 0 {
		return domain.ExchangeQuote{}, fmt.Errorf("empty order book for %s", v.market)
	}

	var price decimal.Decimal
	covered := decimal.Zero
	for _, bid := range book.Bids {
		if len(bid) < 2 {
			continue
		}
		p, err := decimal.NewFromString(bid[0])
		if err != nil {
			return domain.ExchangeQuote{}, fmt.Errorf("failed to parse bid price %q: %w", bid[0], err)
		}
		size, err := decimal.NewFromString(bid[1])
		if err != nil {
			return domain.ExchangeQuote{}, fmt.Errorf("failed to parse bid size %q: %w", bid[1], err)
		}
		price = p
		covered = covered.Add(p.Mul(size))
		if covered.GreaterThanOrEqual(fiatAmount) {
			break
		}
	}
	if covered.LessThan(fiatAmount) {
		return domain.ExchangeQuote{}, fmt.Errorf("order book too shallow for %s %s", fiatAmount, v.market)
	}

	tokenAmount := fiatAmount.Add(quoteMargin).Div(price).RoundUp(2)
	return domain.ExchangeQuote{TokenAmount: tokenAmount, Price: price}, nil
}

func (v *VenueClient) Sell(ctx context.Context, tokenAmount, price decimal.Decimal) (string, error) {
	form := url.Values{}
	form.Set("symbol", v.market)
	form.Set("side", "sell")
	form.Set("type", "limit")
	form.Set("quantity", tokenAmount.String())
	form.Set("price", price.String())

	req, err := http.NewRequestWithContext(ctx, "POST", v.baseURL+"/v1/orders", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	v.authorize(req)

	var created createOrderResponse
	if err := v.do(req, &created); err != nil {
		return "", err
	}
	return created.OrderID, nil
}

func (v *VenueClient) OrderStatus(ctx context.Context, orderID string) (domain.OrderState, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/v1/orders/%s?symbol=%s", v.baseURL, orderID, url.QueryEscape(v.market)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	v.authorize(req)

	var detail orderDetailResponse
	if err := v.do(req, &detail); err != nil {
		return "", err
	}

	// Venue status codes: "0" open, "2" fully filled, anything else dead
	switch detail.Status {
	case "0":
		return domain.OrderOpen, nil
	case "2":
		return domain.OrderFilled, nil
	default:
		return domain.OrderFailed, nil
	}
}

func (v *VenueClient) orderBook(ctx context.Context) (*orderBookResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/v1/depth?symbol=%s&limit=20", v.baseURL, url.QueryEscape(v.market)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	v.authorize(req)

	var book orderBookResponse
	if err := v.do(req, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (v *VenueClient) authorize(req *http.Request) {
	req.Header.Set("X-API-KEY", v.apiKey)
	req.Header.Set("X-API-SECRET", v.apiSecret)
}

func (v *VenueClient) do(req *http.Request, out any) error {
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call exchange venue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("exchange venue returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse venue response: %w", err)
	}
	return nil
}
