// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the checkout/fulfillment pipeline. The webhook is delivered
// at-least-once, so replays are tracked separately from created orders.
var (
	CheckoutSessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_checkout_sessions_created_total",
		Help: "Number of payment provider checkout sessions created",
	})

	FulfillmentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_fulfillment_events_total",
		Help: "Payment completion webhook events by outcome",
	}, []string{"outcome"}) // created, replay, error

	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Orders created by initial status",
	}, []string{"status"})

	CouponSelfHeals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_coupon_self_heals_total",
		Help: "Provider coupon objects recreated after drift was detected",
	})
)
