// internal/domain/shipping/calculator.go
package shipping

import "strings"

// Zone groups destination countries under one rate table
type Zone struct {
	Name         string   `json:"name"`
	Countries    []string `json:"countries"` // ISO 2-letter codes, empty = fallback zone
	BaseRate     int64    `json:"base_rate"` // Cents
	PerKgRate    int64    `json:"per_kg_rate"`
	DeliveryTime string   `json:"delivery_time"`
}

// DefaultZones is the built-in zone table. The last zone has no country list
// and catches everything else.
var DefaultZones = []Zone{
	{
		Name:         "domestic",
		Countries:    []string{"US"},
		BaseRate:     1000,
		PerKgRate:    200,
		DeliveryTime: "3-5 business days",
	},
	{
		Name:         "north-america",
		Countries:    []string{"CA", "MX"},
		BaseRate:     2000,
		PerKgRate:    400,
		DeliveryTime: "5-10 business days",
	},
	{
		Name:         "europe",
		Countries:    []string{"GB", "DE", "FR", "IT", "ES", "NL", "BE", "AT", "IE", "PT", "SE", "DK", "FI", "NO", "CH", "PL"},
		BaseRate:     2500,
		PerKgRate:    500,
		DeliveryTime: "7-14 business days",
	},
	{
		Name:         "rest-of-world",
		BaseRate:     3500,
		PerKgRate:    700,
		DeliveryTime: "10-21 business days",
	},
}

// Item is one cart line's shipping-relevant attributes
type Item struct {
	WeightGrams  int64
	LengthCm     int64
	WidthCm      int64
	HeightCm     int64
	Quantity     int
	RateOverride *int64 // Cents per unit, replaces zone math for this item
	FreeShipping bool
	Digital      bool // Digital items contribute nothing
}

// Quote is the shipping answer for a destination and cart
type Quote struct {
	Rate         int64  `json:"rate"`
	ZoneName     string `json:"zone_name"`
	DeliveryTime string `json:"delivery_time"`
}

// Calculator computes shipping rates from the zone table
type Calculator struct {
	zones              []Zone
	freeThreshold      int64 // Cents, 0 disables subtotal-based free shipping
	dimensionalDivisor int64
}

// NewCalculator creates a calculator over the default zones
func NewCalculator(freeThreshold, dimensionalDivisor int64) *Calculator {
	if dimensionalDivisor <= 0 {
		dimensionalDivisor = 5000
	}
	return &Calculator{
		zones:              DefaultZones,
		freeThreshold:      freeThreshold,
		dimensionalDivisor: dimensionalDivisor,
	}
}

// Calculate produces a quote. Precedence, lowest to highest: zone math over
// billable weight, per-item overrides and free flags, subtotal threshold,
// free-shipping coupon. The coupon applies last and unconditionally.
func (c *Calculator) Calculate(country string, items []Item, subtotal int64, freeShippingCoupon bool) Quote {
	zone := c.zoneFor(country)
	quote := Quote{ZoneName: zone.Name, DeliveryTime: zone.DeliveryTime}

	var billableGrams int64
	var overrideTotal int64
	zonePriced := false

	for _, item := range items {
		if item.Digital || item.FreeShipping {
			continue
		}
		if item.RateOverride != nil {
			overrideTotal += *item.RateOverride * int64(item.Quantity)
			continue
		}
		zonePriced = true
		billableGrams += c.billableWeight(item) * int64(item.Quantity)
	}

	var rate int64
	if zonePriced {
		weightRate := zone.BaseRate + zone.PerKgRate*gramsToKg(billableGrams)
		rate = zone.BaseRate
		if weightRate > rate {
			rate = weightRate
		}
	}
	rate += overrideTotal

	if c.freeThreshold > 0 && subtotal >= c.freeThreshold {
		rate = 0
	}
	if freeShippingCoupon {
		rate = 0
	}

	quote.Rate = rate
	return quote
}

// billableWeight is the greater of actual and dimensional weight, in grams
func (c *Calculator) billableWeight(item Item) int64 {
	dimensionalGrams := item.LengthCm * item.WidthCm * item.HeightCm * 1000 / c.dimensionalDivisor
	if dimensionalGrams > item.WeightGrams {
		return dimensionalGrams
	}
	return item.WeightGrams
}

func (c *Calculator) zoneFor(country string) Zone {
	country = strings.ToUpper(strings.TrimSpace(country))
	for _, zone := range c.zones {
		for _, code := range zone.Countries {
			if code == country {
				return zone
			}
		}
	}
	// Fallback zone is the one with no country list
	for _, zone := range c.zones {
		if len(zone.Countries) == 0 {
			return zone
		}
	}
	return c.zones[len(c.zones)-1]
}

// gramsToKg rounds up so partial kilograms are billed as whole ones
func gramsToKg(grams int64) int64 {
	return (grams + 999) / 1000
}
