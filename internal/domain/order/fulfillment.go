// internal/domain/order/fulfillment.go
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/ledger"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/cache"
	"github.com/your-org/storefront-backend/internal/pkg/events"
	"github.com/your-org/storefront-backend/internal/pkg/metrics"
	"gorm.io/gorm"
)

// Metadata keys attached at session creation. Fulfillment is self-contained:
// everything it needs besides the cart lines travels in the session metadata.
const (
	MetaUserID         = "user_id"
	MetaAddress        = "address"
	MetaDigitalOnly    = "digital_only"
	MetaCouponCode     = "coupon_code"
	MetaShippingAmount = "shipping_amount"
	MetaTaxAmount      = "tax_amount"
	MetaDiscountAmount = "discount_amount"
)

// FulfillmentService turns payment completion events into orders
type FulfillmentService struct {
	db            *gorm.DB
	cartService   *cart.Service
	couponService *coupon.Service
	ledgerService *ledger.Service
	publisher     *events.Publisher
	invalidator   *cache.Invalidator
	logger        *logrus.Logger
}

// NewFulfillmentService creates a new fulfillment service
func NewFulfillmentService(db *gorm.DB, cartService *cart.Service, couponService *coupon.Service, ledgerService *ledger.Service, publisher *events.Publisher, invalidator *cache.Invalidator, logger *logrus.Logger) *FulfillmentService {
	return &FulfillmentService{
		db:            db,
		cartService:   cartService,
		couponService: couponService,
		ledgerService: ledgerService,
		publisher:     publisher,
		invalidator:   invalidator,
		logger:        logger,
	}
}

// FulfillSession creates the order for a completed checkout session. The
// session id is the idempotency key: a session that already has an order is
// reported as a replay and nothing changes. The webhook may arrive late,
// duplicated or out of order, so everything from the order row to the cart
// clear happens in one transaction.
func (s *FulfillmentService) FulfillSession(ctx context.Context, sessionID string, capturedAmount int64, metadata map[string]string) (*Order, bool, error) {
	log := s.logger.WithField("session_id", sessionID)

	if sessionID == "" {
		metrics.FulfillmentEvents.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("session id is required")
	}

	var existing Order
	err := s.db.Where("order_number = ?", sessionID).First(&existing).Error
	if err == nil {
		log.Info("duplicate fulfillment event, order already exists")
		metrics.FulfillmentEvents.WithLabelValues("replay").Inc()
		return &existing, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.FulfillmentEvents.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("failed to check for existing order: %w", err)
	}

	userID, err := parseUserID(metadata[MetaUserID])
	if err != nil {
		metrics.FulfillmentEvents.WithLabelValues("error").Inc()
		return nil, false, err
	}
	log = log.WithField("user_id", userID)

	userCart, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		metrics.FulfillmentEvents.WithLabelValues("error").Inc()
		return nil, false, err
	}
	if userCart.IsEmpty() {
		log.Warn("fulfillment aborted, cart is empty")
		metrics.FulfillmentEvents.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("cart is empty for session %s", sessionID)
	}

	items, grossSubtotal, digitalOnly, err := s.snapshotItems(userCart.Items)
	if err != nil {
		metrics.FulfillmentEvents.WithLabelValues("error").Inc()
		return nil, false, err
	}

	subtotal, shipping, tax, discount := resolveAmounts(metadata, capturedAmount, grossSubtotal)

	initialStatus := StatusPending
	if digitalOnly {
		initialStatus = StatusDelivered
	}

	couponCode := metadata[MetaCouponCode]
	var redeemCoupon *coupon.Coupon
	if couponCode != "" {
		redeemCoupon, err = s.couponService.GetByCode(couponCode)
		if err != nil {
			// The coupon was validated at session creation; a vanished record
			// is drift, not a reason to drop the paid order
			log.WithError(err).WithField("coupon_code", couponCode).Warn("coupon not found at fulfillment, skipping redemption")
			redeemCoupon = nil
		}
	}

	ord := Order{
		OrderNumber:    sessionID,
		UserID:         userID,
		Status:         initialStatus,
		Subtotal:       subtotal,
		ShippingAmount: shipping,
		TaxAmount:      tax,
		DiscountAmount: discount,
		TotalAmount:    capturedAmount,
		CouponCode:     couponCode,
		IsDigitalOnly:  digitalOnly,
		Items:          items,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if !digitalOnly {
			addressID, err := s.materializeAddress(tx, userID, metadata[MetaAddress])
			if err != nil {
				return err
			}
			ord.ShippingAddressID = addressID
		}

		if err := tx.Create(&ord).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		history := OrderStatusHistory{
			OrderID: ord.ID,
			Status:  initialStatus,
			Comment: "order created from payment completion",
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		if redeemCoupon != nil {
			if err := s.couponService.Redeem(tx, redeemCoupon, userID, sessionID); err != nil {
				return err
			}
		}

		if err := s.ledgerService.Insert(tx, ledger.ScopeOrdersByStatus,
			string(initialStatus), ledger.OrderKey(ord.ID), ord.TotalAmount); err != nil {
			return err
		}

		// Cart lines go last: a crash before this point rolls everything back
		// and the replayed webhook starts over cleanly
		return s.cartService.Clear(ctx, tx, userID)
	})
	if err != nil {
		// Two concurrent deliveries can both pass the entry check; the loser
		// hits the order_number unique index and is a replay, not a failure
		if isDuplicateOrderError(err) {
			var winner Order
			if lookupErr := s.db.Where("order_number = ?", sessionID).First(&winner).Error; lookupErr == nil {
				log.Info("lost the insert race to a concurrent fulfillment, order already exists")
				metrics.FulfillmentEvents.WithLabelValues("replay").Inc()
				return &winner, true, nil
			}
		}
		metrics.FulfillmentEvents.WithLabelValues("error").Inc()
		return nil, false, err
	}

	log.WithFields(logrus.Fields{
		"order_id":     ord.ID,
		"order_number": ord.OrderNumber,
		"status":       ord.Status,
		"total_amount": ord.TotalAmount,
	}).Info("order created from checkout session")

	metrics.FulfillmentEvents.WithLabelValues("created").Inc()
	metrics.OrdersCreated.WithLabelValues(string(ord.Status)).Inc()
	s.invalidator.Invalidate(cache.RecordKey("orders", ord.ID))

	s.publisher.Publish(events.SubjectOrderCreated, map[string]interface{}{
		"order_id":     ord.ID,
		"order_number": ord.OrderNumber,
		"user_id":      ord.UserID,
		"status":       ord.Status,
		"total_amount": ord.TotalAmount,
	})

	return &ord, false, nil
}

// snapshotItems freezes cart lines into order items
func (s *FulfillmentService) snapshotItems(cartItems []cart.CartItem) ([]OrderItem, int64, bool, error) {
	items := make([]OrderItem, 0, len(cartItems))
	var subtotal int64
	digitalOnly := true

	for _, line := range cartItems {
		if line.Product == nil {
			return nil, 0, false, fmt.Errorf("cart line %d references a missing product", line.ID)
		}
		prod := line.Product

		item := OrderItem{
			ProductID:   line.ProductID,
			VariantID:   line.VariantID,
			ProductName: prod.Name,
			SKU:         prod.SKU,
			ImageURL:    prod.ImageURL,
			ProductType: string(prod.ProductType),
			UnitPrice:   line.Price,
			Quantity:    line.Quantity,
			TotalPrice:  line.LineTotal(),
		}

		if line.Variant != nil {
			item.VariantName = line.Variant.Name
			if line.Variant.SKU != "" {
				item.SKU = line.Variant.SKU
			}
		}

		if prod.IsDigitalDelivery() {
			item.DownloadLimit = prod.DownloadLimit
		} else {
			digitalOnly = false
		}

		if prod.ProductType == "gift_card" && prod.GiftCardMode == "auto" {
			code, err := GenerateGiftCardCode()
			if err != nil {
				return nil, 0, false, err
			}
			item.GiftCardCode = code
		}

		subtotal += item.TotalPrice
		items = append(items, item)
	}

	return items, subtotal, digitalOnly, nil
}

// materializeAddress turns the serialized metadata address into a new
// address record owned by the user
func (s *FulfillmentService) materializeAddress(tx *gorm.DB, userID uint, serialized string) (*uint, error) {
	if serialized == "" {
		return nil, fmt.Errorf("physical order is missing a shipping address")
	}

	var addr user.Address
	if err := json.Unmarshal([]byte(serialized), &addr); err != nil {
		return nil, fmt.Errorf("failed to parse shipping address metadata: %w", err)
	}

	addr.ID = 0
	addr.UserID = userID
	addr.IsDefault = false
	if err := tx.Create(&addr).Error; err != nil {
		return nil, fmt.Errorf("failed to create shipping address: %w", err)
	}
	return &addr.ID, nil
}

// resolveAmounts extracts the shipping/tax/discount split from metadata and
// nets the discount out of the stored subtotal, keeping
// subtotal + shipping + tax equal to the captured total. Sessions created by
// older builds lack the split; the whole gap between captured amount and
// subtotal is then attributed to shipping, never negative.
func resolveAmounts(metadata map[string]string, capturedAmount, grossSubtotal int64) (subtotal, shipping, tax, discount int64) {
	shipping, shippingOK := parseAmount(metadata[MetaShippingAmount])
	tax, _ = parseAmount(metadata[MetaTaxAmount])
	discount, _ = parseAmount(metadata[MetaDiscountAmount])

	if !shippingOK {
		shipping = capturedAmount - grossSubtotal
		if shipping < 0 {
			shipping = 0
		}
		tax = 0
		discount = 0
	}

	subtotal = grossSubtotal - discount
	if subtotal < 0 {
		subtotal = 0
	}
	return subtotal, shipping, tax, discount
}

// isDuplicateOrderError reports whether a failed insert hit a unique index,
// covering both gorm's translated sentinel and the raw Postgres message
func isDuplicateOrderError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

func parseAmount(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

func parseUserID(raw string) (uint, error) {
	if raw == "" {
		return 0, fmt.Errorf("session metadata is missing the user id")
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("session metadata has an invalid user id: %q", raw)
	}
	return uint(value), nil
}
