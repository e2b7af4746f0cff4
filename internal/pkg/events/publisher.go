// internal/pkg/events/publisher.go
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
)

// Event subjects published on the order lifecycle
const (
	SubjectOrderCreated       = "orders.created"
	SubjectOrderStatusChanged = "orders.status_changed"
	SubjectUserRoleChanged    = "users.role_changed"
)

// Event is the envelope for all published events
type Event struct {
	ID         string                 `json:"id"`
	Subject    string                 `json:"subject"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// Publisher publishes order lifecycle events to NATS. Publishing is
// best-effort and never fails the originating mutation; when no NATS URL is
// configured the publisher is disabled and all calls are no-ops.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS if configured
func NewPublisher(cfg *config.Config, logger *logrus.Logger) (*Publisher, error) {
	entry := logger.WithField("component", "events.publisher")

	if cfg.Events.NATSURL == "" {
		entry.Warn("NATS_URL not set, event publishing disabled")
		return &Publisher{logger: entry}, nil
	}

	conn, err := nats.Connect(cfg.Events.NATSURL,
		nats.Name(cfg.App.Name),
		nats.Timeout(10*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				entry.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			entry.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	entry.Info("NATS events publisher initialized")
	return &Publisher{conn: conn, logger: entry}, nil
}

// Publish sends an event; failures are logged, not returned
func (p *Publisher) Publish(subject string, data map[string]interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	event := Event{
		ID:         uuid.NewString(),
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Error("failed to marshal event")
		return
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("failed to publish event")
	}
}

// Close drains the NATS connection
func (p *Publisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Close()
	}
}
