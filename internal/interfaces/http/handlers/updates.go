// internal/interfaces/http/handlers/updates.go
package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/pkg/cache"
)

// UpdatesHandler streams record invalidations to connected clients so they
// can refresh stale reads without polling
type UpdatesHandler struct {
	invalidator *cache.Invalidator
	logger      *logrus.Logger
}

// NewUpdatesHandler creates a new updates handler
func NewUpdatesHandler(invalidator *cache.Invalidator, logger *logrus.Logger) *UpdatesHandler {
	return &UpdatesHandler{
		invalidator: invalidator,
		logger:      logger,
	}
}

// StreamUpdates relays the invalidation channel as server-sent events.
// Each event carries a "<table>:<id>" record key. The request timeout
// eventually closes the stream; clients are expected to reconnect, and a
// missed key only delays their next refresh.
func (h *UpdatesHandler) StreamUpdates(c *gin.Context) {
	ctx := c.Request.Context()

	pubsub := h.invalidator.Subscribe(ctx)
	defer pubsub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	messages := pubsub.Channel()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	h.logger.WithField("remote_addr", c.ClientIP()).Debug("update stream opened")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			c.SSEvent("invalidate", msg.Payload)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().Unix())
			return true
		case <-ctx.Done():
			return false
		}
	})
}
