// internal/domain/payment/client.go
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
)

// SignatureHeader carries the HMAC of the webhook payload
const SignatureHeader = "X-Provider-Signature"

// Client talks to the hosted-checkout payment provider
type Client struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	currency      string
	successURL    string
	cancelURL     string
	httpClient    *http.Client
}

// NewClient creates a payment provider client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:       cfg.Payment.BaseURL,
		secretKey:     cfg.Payment.SecretKey,
		webhookSecret: cfg.Payment.WebhookSecret,
		currency:      cfg.Payment.Currency,
		successURL:    cfg.Payment.SuccessURL,
		cancelURL:     cfg.Payment.CancelURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LineItem is one priced line of a checkout session
type LineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"` // Cents
	Quantity   int    `json:"quantity"`
}

// CreateSessionRequest is the session creation payload
type CreateSessionRequest struct {
	LineItems  []LineItem        `json:"line_items"`
	Currency   string            `json:"currency"`
	DiscountID string            `json:"discount_id,omitempty"` // Provider coupon object id
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// CheckoutSession is the provider's session representation
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession creates a hosted checkout session and returns its
// redirect URL. The session id later arrives back on the completion webhook
// and becomes the order number.
func (c *Client) CreateCheckoutSession(ctx context.Context, req *CreateSessionRequest) (*CheckoutSession, error) {
	if len(req.LineItems) == 0 {
		return nil, fmt.Errorf("checkout session requires at least one line item")
	}
	if req.Currency == "" {
		req.Currency = c.currency
	}
	if req.SuccessURL == "" {
		req.SuccessURL = c.successURL
	}
	if req.CancelURL == "" {
		req.CancelURL = c.cancelURL
	}

	response, err := c.makeAPICall(ctx, http.MethodPost, "/checkout/sessions", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	var session CheckoutSession
	if err := json.Unmarshal(response, &session); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session response: %w", err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("provider returned incomplete checkout session")
	}
	return &session, nil
}

// createCouponRequest is the provider coupon payload. Exactly one of
// PercentOff or AmountOff is set.
type createCouponRequest struct {
	Code       string `json:"code"`
	PercentOff int64  `json:"percent_off,omitempty"`
	AmountOff  int64  `json:"amount_off,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

type providerCoupon struct {
	ID string `json:"id"`
}

// CreateCoupon mints a discount object at the provider and returns its id
func (c *Client) CreateCoupon(ctx context.Context, code string, percentOff, amountOff int64) (string, error) {
	req := createCouponRequest{Code: code}
	switch {
	case percentOff > 0:
		req.PercentOff = percentOff
	case amountOff > 0:
		req.AmountOff = amountOff
		req.Currency = c.currency
	default:
		return "", fmt.Errorf("coupon requires a percent or amount discount")
	}

	response, err := c.makeAPICall(ctx, http.MethodPost, "/coupons", req)
	if err != nil {
		return "", fmt.Errorf("failed to create provider coupon: %w", err)
	}

	var coup providerCoupon
	if err := json.Unmarshal(response, &coup); err != nil {
		return "", fmt.Errorf("failed to parse provider coupon response: %w", err)
	}
	if coup.ID == "" {
		return "", fmt.Errorf("provider returned empty coupon id")
	}
	return coup.ID, nil
}

// WebhookEvent is the parsed completion callback
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		SessionID      string            `json:"session_id"`
		AmountCaptured int64             `json:"amount_captured"` // Cents
		Metadata       map[string]string `json:"metadata"`
	} `json:"data"`
}

// EventTypeSessionCompleted is the only event type fulfillment acts on
const EventTypeSessionCompleted = "checkout.session.completed"

// VerifyWebhookSignature checks the payload HMAC. Comparison is constant
// time.
func (c *Client) VerifyWebhookSignature(payload []byte, signature string) error {
	if c.webhookSecret == "" {
		return fmt.Errorf("webhook secret not configured")
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("invalid webhook signature")
	}
	return nil
}

// ParseWebhookEvent decodes a verified payload
func (c *Client) ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("webhook payload missing event type")
	}
	return &event, nil
}

// makeAPICall makes an authenticated HTTP call to the provider API
func (c *Client) makeAPICall(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	var reqBody []byte
	var err error

	if data != nil {
		reqBody, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.secretKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API call: %w", err)
	}
	defer resp.Body.Close()

	var respBody bytes.Buffer
	if _, err := respBody.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API call failed with status %d: %s", resp.StatusCode, respBody.String())
	}

	return respBody.Bytes(), nil
}
