package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchequals-backend/internal/domains/payment/service"
)

const testWebhookSecret = "whsec_test"

type noopCache struct {
	keys map[string]bool
}

func (c *noopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (c *noopCache) Get(context.Context, string, interface{}) (bool, error)        { return false, nil }
func (c *noopCache) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) (bool, error) {
	if c.keys == nil {
		c.keys = map[string]bool{}
	}
	if c.keys[key] {
		return false, nil
	}
	c.keys[key] = true
	return true, nil
}
func (c *noopCache) Delete(_ context.Context, key string) error {
	delete(c.keys, key)
	return nil
}
func (c *noopCache) Ping(context.Context) error { return nil }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	// Publication and collection services stay nil: the cases below never
	// reach dispatch for a handled product.
	svc := service.NewWebhookService(testWebhookSecret, &noopCache{}, nil, nil)
	h := NewWebhookHandler(svc)

	router := gin.New()
	router.POST("/webhooks/stripe", h.HandleStripeWebhook)
	return router
}

func sign(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(router *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleStripeWebhook(t *testing.T) {
	router := newTestRouter()

	t.Run("missing signature is rejected", func(t *testing.T) {
		w := postWebhook(router, []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`), "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Webhook signature verification failed", body["error"])
	})

	t.Run("tampered payload is rejected", func(t *testing.T) {
		payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
		signature := sign(payload)

		tampered := bytes.Replace(payload, []byte("evt_1"), []byte("evt_2"), 1)
		w := postWebhook(router, tampered, signature)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Webhook signature verification failed", body["error"])
	})

	t.Run("unrecognized event type still succeeds", func(t *testing.T) {
		payload := []byte(`{"id":"evt_3","type":"customer.created"}`)
		w := postWebhook(router, payload, sign(payload))
		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "customer.created", body["event"])
	})

	t.Run("unknown product is acknowledged without side effects", func(t *testing.T) {
		payload := []byte(`{
			"id": "evt_4",
			"type": "payment_intent.succeeded",
			"data": {"object": {"metadata": {"product": "module-sticker"}}}
		}`)
		w := postWebhook(router, payload, sign(payload))
		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "payment_intent.succeeded", body["event"])
	})
}
