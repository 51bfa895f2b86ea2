package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"researchequals-backend/internal/config"
)

// Client calls the payment provider's REST API. Only checkout-session
// creation is needed server-side; everything after redirect happens on
// the provider's hosted pages and comes back through the webhook.
type Client struct {
	apiURL     string
	secretKey  string
	httpClient *http.Client
}

func NewClient(cfg *config.StripeConfig) *Client {
	return &Client{
		apiURL:    cfg.APIURL,
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CheckoutParams describes one module-license purchase. Either PriceID
// (a catalog license with a provider price) or Amount (a pay-what-you-
// want price in euros) must be set; PriceID wins when both are present.
type CheckoutParams struct {
	PriceID     string
	Amount      decimal.Decimal
	ProductName string

	ModuleID    int64
	Suffix      string
	DOI         string
	Description string
	LicenseName string

	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the provider's created session; the caller
// redirects the browser to URL.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession opens a hosted payment session. The metadata
// placed on the payment intent is what the webhook later dispatches on.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	// Step 1: build the form body
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("line_items[0][quantity]", "1")

	if params.PriceID != "" {
		form.Set("line_items[0][price]", params.PriceID)
	} else {
		// Pay-what-you-want: euros to cents, tax included in the price.
		cents := params.Amount.Mul(decimal.NewFromInt(100)).IntPart()
		form.Set("line_items[0][price_data][currency]", "eur")
		form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(cents, 10))
		form.Set("line_items[0][price_data][tax_behavior]", "inclusive")
		form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	}

	form.Set("payment_intent_data[metadata][product]", ProductModuleLicense)
	form.Set("payment_intent_data[metadata][module_id]", strconv.FormatInt(params.ModuleID, 10))
	form.Set("payment_intent_data[metadata][suffix]", params.Suffix)
	form.Set("payment_intent_data[metadata][doi]", params.DOI)
	form.Set("payment_intent_data[metadata][description]", params.Description)
	form.Set("payment_intent_data[metadata][id]", params.LicenseName)

	// Step 2: send the request
	endpoint := c.apiURL + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read checkout response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("checkout session rejected: status %d: %s", resp.StatusCode, body)
	}

	// Step 3: decode the session
	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, nil
}
