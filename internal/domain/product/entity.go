// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// ProductType classifies how a product is delivered
type ProductType string

const (
	ProductTypePhysical ProductType = "physical"
	ProductTypeDigital  ProductType = "digital"
	ProductTypeGiftCard ProductType = "gift_card"
)

// GiftCardMode controls whether redemption codes are generated at
// fulfillment ("auto") or entered later by an admin ("manual")
type GiftCardMode string

const (
	GiftCardModeAuto   GiftCardMode = "auto"
	GiftCardModeManual GiftCardMode = "manual"
)

// Product represents the product entity
type Product struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	SKU         string      `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name        string      `gorm:"not null;size:255" json:"name"`
	Slug        string      `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string      `gorm:"type:text" json:"description"`
	Price       int64       `gorm:"not null" json:"price"` // In cents
	ImageURL    string      `gorm:"size:500" json:"image_url"`
	Category    string      `gorm:"size:100;index" json:"category"`
	ProductType ProductType `gorm:"not null;default:'physical';size:20" json:"product_type"`
	IsActive    bool        `gorm:"default:true" json:"is_active"`

	// Physical attributes used by the shipping calculator
	Weight   int64 `gorm:"default:0" json:"weight"` // Grams
	LengthCm int64 `gorm:"default:0" json:"length_cm"`
	WidthCm  int64 `gorm:"default:0" json:"width_cm"`
	HeightCm int64 `gorm:"default:0" json:"height_cm"`

	// Per-item shipping overrides
	IsFreeShipping       bool   `gorm:"default:false" json:"is_free_shipping"`
	ShippingRateOverride *int64 `json:"shipping_rate_override"` // Cents, replaces zone math for this item

	// Per-item tax overrides. Rates are basis points.
	IsTaxable          bool   `gorm:"default:true" json:"is_taxable"`
	TaxRateOverrideBps *int64 `json:"tax_rate_override_bps"`

	// Digital delivery
	DownloadLimit int `gorm:"default:0" json:"download_limit"` // 0 = unlimited

	// Gift cards
	GiftCardMode GiftCardMode `gorm:"size:10;default:'auto'" json:"gift_card_mode"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// ProductVariant represents a purchasable variation of a product
type ProductVariant struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ProductID       uint      `gorm:"not null;index" json:"product_id"`
	Name            string    `gorm:"not null;size:255" json:"name"`
	SKU             string    `gorm:"size:100" json:"sku"`
	PriceAdjustment int64     `gorm:"default:0" json:"price_adjustment"` // Cents, added to base price
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string        { return "products" }
func (ProductVariant) TableName() string { return "product_variants" }

// IsDigitalDelivery reports whether the product needs no physical shipping
func (p *Product) IsDigitalDelivery() bool {
	return p.ProductType == ProductTypeDigital || p.ProductType == ProductTypeGiftCard
}

// UnitPrice returns the effective unit price with an optional variant applied
func (p *Product) UnitPrice(variant *ProductVariant) int64 {
	if variant != nil {
		return p.Price + variant.PriceAdjustment
	}
	return p.Price
}
