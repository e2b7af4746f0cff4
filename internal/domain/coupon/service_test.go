// internal/domain/coupon/service_test.go
package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func save10() *Coupon {
	return &Coupon{
		ID:                1,
		Code:              "SAVE10",
		Type:              TypePercentage,
		Value:             10,
		MinPurchaseAmount: 2000,
		IsActive:          true,
	}
}

func TestValidateRulesMinPurchaseShortfall(t *testing.T) {
	now := time.Now().UTC()

	result := validateRules(save10(), 1500, 0, now)
	assert.False(t, result.Valid)
	assert.Equal(t, "minimum purchase not met, add 500 more", result.Reason)

	result = validateRules(save10(), 2500, 0, now)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Reason)
	require.NotNil(t, result.Coupon)
	assert.Equal(t, int64(250), result.Coupon.DiscountAmount(2500))
}

func TestValidateRulesInactive(t *testing.T) {
	coup := save10()
	coup.IsActive = false

	result := validateRules(coup, 2500, 0, time.Now().UTC())
	assert.False(t, result.Valid)
	assert.Equal(t, "coupon is not active", result.Reason)
}

func TestValidateRulesValidityWindow(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	tomorrow := now.Add(24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	coup := save10()
	coup.ValidFrom = &tomorrow
	result := validateRules(coup, 2500, 0, now)
	assert.False(t, result.Valid)
	assert.Equal(t, "coupon is not yet active", result.Reason)

	coup = save10()
	coup.ValidUntil = &yesterday
	result = validateRules(coup, 2500, 0, now)
	assert.False(t, result.Valid)
	assert.Equal(t, "coupon has expired", result.Reason)

	coup = save10()
	coup.ValidFrom = &yesterday
	coup.ValidUntil = &tomorrow
	assert.True(t, validateRules(coup, 2500, 0, now).Valid)
}

func TestValidateRulesUsageLimit(t *testing.T) {
	coup := save10()
	coup.UsageLimit = 100
	coup.UsageCount = 100

	result := validateRules(coup, 2500, 0, time.Now().UTC())
	assert.False(t, result.Valid)
	assert.Equal(t, "coupon usage limit reached", result.Reason)

	coup.UsageCount = 99
	assert.True(t, validateRules(coup, 2500, 0, time.Now().UTC()).Valid)
}

func TestValidateRulesPerCustomerLimit(t *testing.T) {
	coup := save10()
	coup.LimitPerCustomer = 1

	assert.True(t, validateRules(coup, 2500, 0, time.Now().UTC()).Valid)

	result := validateRules(coup, 2500, 1, time.Now().UTC())
	assert.False(t, result.Valid)
	assert.Equal(t, "coupon already used", result.Reason)
}

func TestValidateRulesZeroLimitsMeanUnlimited(t *testing.T) {
	coup := save10()
	coup.UsageLimit = 0
	coup.UsageCount = 100000
	coup.LimitPerCustomer = 0

	assert.True(t, validateRules(coup, 2500, 50, time.Now().UTC()).Valid)
}

// A coupon failing several rules at once reports the earliest one, so the
// user always sees the most fundamental problem first.
func TestValidateRulesOrdering(t *testing.T) {
	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)

	coup := save10()
	coup.IsActive = false
	coup.ValidUntil = &yesterday
	coup.UsageLimit = 1
	coup.UsageCount = 1
	coup.LimitPerCustomer = 1

	result := validateRules(coup, 1500, 5, now)
	assert.Equal(t, "coupon is not active", result.Reason)

	coup.IsActive = true
	result = validateRules(coup, 1500, 5, now)
	assert.Equal(t, "coupon has expired", result.Reason)

	coup.ValidUntil = nil
	result = validateRules(coup, 1500, 5, now)
	assert.Equal(t, "minimum purchase not met, add 500 more", result.Reason)

	result = validateRules(coup, 2500, 5, now)
	assert.Equal(t, "coupon usage limit reached", result.Reason)

	coup.UsageCount = 0
	result = validateRules(coup, 2500, 5, now)
	assert.Equal(t, "coupon already used", result.Reason)
}
