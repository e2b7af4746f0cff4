// internal/domain/tax/calculator_test.go
package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDefaultRate(t *testing.T) {
	calc := NewCalculator(1800, false, false)

	result := calc.Calculate([]Item{
		{LineTotal: 10000, Taxable: true},
	}, 1400)

	assert.Equal(t, int64(1800), result.Amount)
	assert.Equal(t, int64(1800), result.RateBps)
	assert.False(t, result.Inclusive)
}

func TestCalculateUntaxableExcluded(t *testing.T) {
	calc := NewCalculator(1800, false, false)

	result := calc.Calculate([]Item{
		{LineTotal: 10000, Taxable: true},
		{LineTotal: 5000, Taxable: false},
	}, 0)

	assert.Equal(t, int64(1800), result.Amount)
}

func TestCalculatePerItemOverride(t *testing.T) {
	calc := NewCalculator(1800, false, false)
	reduced := int64(500)

	result := calc.Calculate([]Item{
		{LineTotal: 10000, Taxable: true, OverrideBps: &reduced},
		{LineTotal: 10000, Taxable: true},
	}, 0)

	// 5% of the first line plus 18% of the second
	assert.Equal(t, int64(500+1800), result.Amount)
}

func TestCalculateShippingTaxable(t *testing.T) {
	calc := NewCalculator(1000, true, false)

	result := calc.Calculate([]Item{
		{LineTotal: 10000, Taxable: true},
	}, 2000)

	assert.Equal(t, int64(1000+200), result.Amount)
}

func TestCalculateInclusiveFlagPassesThrough(t *testing.T) {
	calc := NewCalculator(1800, false, true)

	result := calc.Calculate([]Item{{LineTotal: 10000, Taxable: true}}, 0)

	assert.True(t, result.Inclusive)
	assert.Equal(t, int64(1800), result.Amount)
}

func TestCalculateEmptyCart(t *testing.T) {
	calc := NewCalculator(1800, true, false)

	result := calc.Calculate(nil, 0)

	assert.Equal(t, int64(0), result.Amount)
}
