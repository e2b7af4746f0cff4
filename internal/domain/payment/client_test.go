// internal/domain/payment/client_test.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

func testClient(baseURL string) *Client {
	cfg := &config.Config{}
	cfg.Payment.BaseURL = baseURL
	cfg.Payment.SecretKey = "sk_test_123"
	cfg.Payment.WebhookSecret = "whsec_test"
	cfg.Payment.Currency = "usd"
	cfg.Payment.SuccessURL = "https://shop.example.com/success"
	cfg.Payment.CancelURL = "https://shop.example.com/cancel"
	return NewClient(cfg)
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/sessions", r.URL.Path)
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "sk_test_123", user)

		var req CreateSessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "usd", req.Currency)
		assert.Equal(t, "https://shop.example.com/success", req.SuccessURL)

		json.NewEncoder(w).Encode(CheckoutSession{
			ID:  "cs_test_abc123",
			URL: "https://pay.example.com/cs_test_abc123",
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	session, err := client.CreateCheckoutSession(context.Background(), &CreateSessionRequest{
		LineItems: []LineItem{{Name: "Widget", UnitAmount: 2500, Quantity: 2}},
		Metadata:  map[string]string{"user_id": "42"},
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_test_abc123", session.ID)
	assert.Equal(t, "https://pay.example.com/cs_test_abc123", session.URL)
}

func TestCreateCheckoutSessionEmptyCart(t *testing.T) {
	client := testClient("http://unused")
	_, err := client.CreateCheckoutSession(context.Background(), &CreateSessionRequest{})
	assert.Error(t, err)
}

func TestCreateCheckoutSessionProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.CreateCheckoutSession(context.Background(), &CreateSessionRequest{
		LineItems: []LineItem{{Name: "Widget", UnitAmount: 2500, Quantity: 1}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestCreateCoupon(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coupons", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SAVE10", req["code"])
		assert.Equal(t, float64(10), req["percent_off"])

		json.NewEncoder(w).Encode(map[string]string{"id": "coup_xyz"})
	}))
	defer server.Close()

	client := testClient(server.URL)
	id, err := client.CreateCoupon(context.Background(), "SAVE10", 10, 0)

	require.NoError(t, err)
	assert.Equal(t, "coup_xyz", id)
}

func TestCreateCouponRequiresDiscount(t *testing.T) {
	client := testClient("http://unused")
	_, err := client.CreateCoupon(context.Background(), "SAVE10", 0, 0)
	assert.Error(t, err)
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := testClient("http://unused")
	payload := []byte(`{"type":"checkout.session.completed"}`)

	assert.NoError(t, client.VerifyWebhookSignature(payload, sign("whsec_test", payload)))
	assert.Error(t, client.VerifyWebhookSignature(payload, sign("wrong_secret", payload)))
	assert.Error(t, client.VerifyWebhookSignature(payload, "garbage"))
}

func TestParseWebhookEvent(t *testing.T) {
	client := testClient("http://unused")

	payload := []byte(`{
		"type": "checkout.session.completed",
		"data": {
			"session_id": "cs_test_abc123",
			"amount_captured": 6400,
			"metadata": {"user_id": "42", "digital_only": "false"}
		}
	}`)

	event, err := client.ParseWebhookEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, EventTypeSessionCompleted, event.Type)
	assert.Equal(t, "cs_test_abc123", event.Data.SessionID)
	assert.Equal(t, int64(6400), event.Data.AmountCaptured)
	assert.Equal(t, "42", event.Data.Metadata["user_id"])

	_, err = client.ParseWebhookEvent([]byte(`{}`))
	assert.Error(t, err)

	_, err = client.ParseWebhookEvent([]byte(`not json`))
	assert.Error(t, err)
}
