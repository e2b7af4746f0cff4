// internal/domain/tax/calculator.go
package tax

// Item is one cart line's tax-relevant attributes
type Item struct {
	LineTotal   int64 // Cents
	Taxable     bool
	OverrideBps *int64 // Basis points, replaces the regional rate for this item
}

// Result is the tax answer for a cart. When Inclusive is true the amount is
// informational and must not be added to the payable total.
type Result struct {
	Amount    int64 `json:"amount"`
	RateBps   int64 `json:"rate_bps"`
	Inclusive bool  `json:"inclusive"`
}

// Calculator computes tax amounts. Rates are basis points (1800 = 18%) so
// all arithmetic stays in integers.
type Calculator struct {
	defaultRateBps  int64
	shippingTaxable bool
	inclusive       bool
}

// NewCalculator creates a tax calculator
func NewCalculator(defaultRateBps int64, shippingTaxable, inclusive bool) *Calculator {
	return &Calculator{
		defaultRateBps:  defaultRateBps,
		shippingTaxable: shippingTaxable,
		inclusive:       inclusive,
	}
}

// Calculate produces the tax for a set of lines plus shipping. Untaxable
// lines contribute nothing; a per-item override replaces the default rate
// for that line only; shipping is taxed at the default rate when configured.
func (c *Calculator) Calculate(items []Item, shipping int64) Result {
	var amount int64
	for _, item := range items {
		if !item.Taxable {
			continue
		}
		rate := c.defaultRateBps
		if item.OverrideBps != nil {
			rate = *item.OverrideBps
		}
		amount += item.LineTotal * rate / 10000
	}

	if c.shippingTaxable && shipping > 0 {
		amount += shipping * c.defaultRateBps / 10000
	}

	return Result{
		Amount:    amount,
		RateBps:   c.defaultRateBps,
		Inclusive: c.inclusive,
	}
}
