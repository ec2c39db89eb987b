// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-checkout/internal/domain/pricing"
)

// Product represents a sellable product with its pricing histories
type Product struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"not null;size:255" json:"title"`
	Slug            string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	AvailableToShow int            `gorm:"not null;default:0" json:"available_to_show"` // Soft stock ceiling, distinct from raw inventory
	Weight          float64        `json:"weight"`                                      // Weight in grams
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	PriceHistory    []PriceEntry    `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"price_history,omitempty"`
	DiscountHistory []DiscountEntry `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"discount_history,omitempty"`
}

// PriceEntry is one row of a product's append-only price history
type PriceEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	PriceMinor  int64     `gorm:"not null" json:"price_minor"` // Price in the minor currency unit
	EffectiveAt time.Time `gorm:"not null;index" json:"effective_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// DiscountEntry is one row of a product's append-only discount history
type DiscountEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Percent   int       `gorm:"not null" json:"percent"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Product) TableName() string       { return "products" }
func (PriceEntry) TableName() string    { return "product_prices" }
func (DiscountEntry) TableName() string { return "product_discounts" }

// PricePoints converts the stored price history for resolution
func (p *Product) PricePoints() []pricing.PricePoint {
	points := make([]pricing.PricePoint, len(p.PriceHistory))
	for i, e := range p.PriceHistory {
		points[i] = pricing.PricePoint{
			PriceMinor:  e.PriceMinor,
			EffectiveAt: e.EffectiveAt,
		}
	}
	return points
}

// DiscountPoints converts the stored discount history for resolution
func (p *Product) DiscountPoints() []pricing.DiscountPoint {
	points := make([]pricing.DiscountPoint, len(p.DiscountHistory))
	for i, e := range p.DiscountHistory {
		points[i] = pricing.DiscountPoint{
			Percent:   e.Percent,
			ExpiresAt: e.ExpiresAt,
		}
	}
	return points
}

// CurrentQuote resolves the product's effective unit price and discount at now
func (p *Product) CurrentQuote(now time.Time) (pricing.Quote, error) {
	return pricing.Resolve(p.PricePoints(), p.DiscountPoints(), now)
}

// IsAvailable reports whether the product can be shown in a basket at all
func (p *Product) IsAvailable() bool {
	return p.IsActive && p.AvailableToShow > 0
}
