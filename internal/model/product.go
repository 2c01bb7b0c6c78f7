package model

import "time"

// Product mirrors the `products` table.  Prices are in euros with two
// decimals; TaxRate is a percentage (20 means 20% TVA).  PromoPrice is
// only honoured when set and strictly lower than Price; EffectivePrice
// implements that rule in one place.
type Product struct {
	ID                uint64    `json:"id"`                 // products.id
	Reference         string    `json:"reference"`          // products.reference (unique)
	Name              string    `json:"name"`               // products.name
	Slug              string    `json:"slug"`               // products.slug (unique)
	Description       string    `json:"description"`        // products.description
	Price             float64   `json:"price"`              // products.price
	PromoPrice        *float64  `json:"promoPrice"`         // products.promo_price (nullable)
	TaxRate           float64   `json:"taxRate"`            // products.tax_rate
	StockQuantity     int       `json:"stockQuantity"`      // products.stock_quantity
	LowStockThreshold int       `json:"lowStockThreshold"`  // products.low_stock_threshold
	IsActive          bool      `json:"isActive"`           // products.is_active
	IsFeatured        bool      `json:"isFeatured"`         // products.is_featured
	Labels            []string  `json:"labels"`             // products.labels (jsonb array)
	CategoryID        *uint64   `json:"categoryId"`         // products.category_id (nullable)
	CategoryName      *string   `json:"categoryName,omitempty"` // joined from categories.name
	IsOnSale          bool      `json:"isOnSale"`           // derived, not stored
	CreatedAt         time.Time `json:"createdAt"`          // products.created_at
	UpdatedAt         time.Time `json:"updatedAt"`          // products.updated_at
}

// EffectivePrice returns the promotional price when it is set and lower
// than the normal price, otherwise the normal price.
func (p Product) EffectivePrice() float64 {
	if p.PromoPrice != nil && *p.PromoPrice > 0 && *p.PromoPrice < p.Price {
		return *p.PromoPrice
	}
	return p.Price
}

// OnSale reports whether EffectivePrice differs from Price.
func (p Product) OnSale() bool {
	return p.PromoPrice != nil && *p.PromoPrice > 0 && *p.PromoPrice < p.Price
}

// IsLowStock reports whether the live stock sits at or below the
// configured alert threshold.
func (p Product) IsLowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}
