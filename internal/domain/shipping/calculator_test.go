// internal/domain/shipping/calculator_test.go
package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateWeightBasedRate(t *testing.T) {
	calc := NewCalculator(0, 5000)

	// Domestic: base 1000, per-kg 200, 2kg billable
	quote := calc.Calculate("US", []Item{
		{WeightGrams: 2000, Quantity: 1},
	}, 5000, false)

	assert.Equal(t, int64(1400), quote.Rate)
	assert.Equal(t, "domestic", quote.ZoneName)
}

func TestCalculateBaseRateFloor(t *testing.T) {
	calc := NewCalculator(0, 5000)

	// A weightless physical item still pays the flat base rate
	quote := calc.Calculate("US", []Item{
		{WeightGrams: 0, Quantity: 1},
	}, 5000, false)

	assert.Equal(t, int64(1000), quote.Rate)
}

func TestCalculateDimensionalWeight(t *testing.T) {
	calc := NewCalculator(0, 5000)

	// 50x40x30cm = 60000cm3 / 5000 = 12kg dimensional, actual 1kg
	quote := calc.Calculate("US", []Item{
		{WeightGrams: 1000, LengthCm: 50, WidthCm: 40, HeightCm: 30, Quantity: 1},
	}, 5000, false)

	assert.Equal(t, int64(1000+12*200), quote.Rate)
}

func TestCalculatePartialKgRoundsUp(t *testing.T) {
	calc := NewCalculator(0, 5000)

	quote := calc.Calculate("US", []Item{
		{WeightGrams: 1001, Quantity: 1},
	}, 5000, false)

	assert.Equal(t, int64(1400), quote.Rate)
}

func TestCalculatePerItemOverride(t *testing.T) {
	calc := NewCalculator(0, 5000)
	override := int64(300)

	quote := calc.Calculate("US", []Item{
		{WeightGrams: 2000, Quantity: 1},
		{RateOverride: &override, Quantity: 2},
	}, 5000, false)

	// Zone math on the first item plus 2x the override
	assert.Equal(t, int64(1400+600), quote.Rate)
}

func TestCalculateOnlyOverridesSkipsBaseRate(t *testing.T) {
	calc := NewCalculator(0, 5000)
	override := int64(300)

	quote := calc.Calculate("US", []Item{
		{RateOverride: &override, Quantity: 1},
	}, 5000, false)

	assert.Equal(t, int64(300), quote.Rate)
}

func TestCalculateFreeShippingItemsExcluded(t *testing.T) {
	calc := NewCalculator(0, 5000)

	quote := calc.Calculate("US", []Item{
		{WeightGrams: 5000, FreeShipping: true, Quantity: 1},
		{WeightGrams: 1000, Quantity: 1},
	}, 5000, false)

	assert.Equal(t, int64(1200), quote.Rate)
}

func TestCalculateDigitalItemsExcluded(t *testing.T) {
	calc := NewCalculator(0, 5000)

	quote := calc.Calculate("US", []Item{
		{Digital: true, Quantity: 3},
	}, 5000, false)

	assert.Equal(t, int64(0), quote.Rate)
}

func TestCalculateFreeShippingThreshold(t *testing.T) {
	calc := NewCalculator(10000, 5000)

	quote := calc.Calculate("US", []Item{
		{WeightGrams: 2000, Quantity: 1},
	}, 10000, false)

	assert.Equal(t, int64(0), quote.Rate)
	assert.Equal(t, "domestic", quote.ZoneName)

	quote = calc.Calculate("US", []Item{
		{WeightGrams: 2000, Quantity: 1},
	}, 9999, false)
	assert.Equal(t, int64(1400), quote.Rate)
}

func TestCalculateFreeShippingCouponAppliesLast(t *testing.T) {
	calc := NewCalculator(0, 5000)
	override := int64(300)

	quote := calc.Calculate("DE", []Item{
		{WeightGrams: 2000, Quantity: 1},
		{RateOverride: &override, Quantity: 1},
	}, 5000, true)

	assert.Equal(t, int64(0), quote.Rate)
	assert.Equal(t, "europe", quote.ZoneName)
}

func TestZoneLookup(t *testing.T) {
	calc := NewCalculator(0, 5000)

	tests := []struct {
		country string
		zone    string
	}{
		{"US", "domestic"},
		{"us", "domestic"},
		{"CA", "north-america"},
		{"FR", "europe"},
		{"JP", "rest-of-world"},
		{"", "rest-of-world"},
	}

	for _, tt := range tests {
		quote := calc.Calculate(tt.country, []Item{{WeightGrams: 500, Quantity: 1}}, 1000, false)
		assert.Equal(t, tt.zone, quote.ZoneName, "country %q", tt.country)
	}
}
