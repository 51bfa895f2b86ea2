package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"researchequals-backend/internal/domains/payment/service"
	"researchequals-backend/pkg/logger"
)

// WebhookHandler receives payment-provider notifications.
type WebhookHandler struct {
	service *service.WebhookService
}

func NewWebhookHandler(service *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// HandleStripeWebhook processes POST /webhooks/stripe. The body is read
// raw and passed to verification untouched: the signature covers the
// exact bytes the provider sent, so no middleware may parse or rewrite
// it first.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Error("Failed to read webhook body", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook signature verification failed"})
		return
	}

	event, err := h.service.VerifyAndParse(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		logger.Warn("Webhook signature verification failed", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook signature verification failed"})
		return
	}

	if err := h.service.ProcessEvent(c.Request.Context(), event); err != nil {
		logger.Error("Webhook processing failed", err)
		// A non-2xx status is what triggers the provider's redelivery.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event.Type})
}
