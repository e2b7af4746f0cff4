// internal/interfaces/http/handlers/webhook.go
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
)

// WebhookHandler receives payment provider callbacks
type WebhookHandler struct {
	paymentClient      *payment.Client
	fulfillmentService *order.FulfillmentService
	logger             *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(paymentClient *payment.Client, fulfillmentService *order.FulfillmentService, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		paymentClient:      paymentClient,
		fulfillmentService: fulfillmentService,
		logger:             logger,
	}
}

// HandlePaymentEvent handles POST /webhooks/payment. Delivery is
// at-least-once and unordered; duplicates answer 200 so the provider stops
// retrying.
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	signature := c.GetHeader(payment.SignatureHeader)
	if err := h.paymentClient.VerifyWebhookSignature(payload, signature); err != nil {
		h.logger.WithError(err).Warn("rejected webhook with bad signature")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid signature",
		})
		return
	}

	event, err := h.paymentClient.ParseWebhookEvent(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	// Other event types are acknowledged and ignored
	if event.Type != payment.EventTypeSessionCompleted {
		c.JSON(http.StatusOK, gin.H{
			"message": "Event ignored",
		})
		return
	}

	ord, replay, err := h.fulfillmentService.FulfillSession(
		c.Request.Context(),
		event.Data.SessionID,
		event.Data.AmountCaptured,
		event.Data.Metadata,
	)
	if err != nil {
		h.logger.WithError(err).WithField("session_id", event.Data.SessionID).Error("fulfillment failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Fulfillment failed",
		})
		return
	}

	if replay {
		c.JSON(http.StatusOK, gin.H{
			"message": "Order already fulfilled",
			"data":    gin.H{"order_number": ord.OrderNumber},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order created successfully",
		"data": gin.H{
			"order_id":     ord.ID,
			"order_number": ord.OrderNumber,
			"status":       ord.Status,
		},
	})
}
