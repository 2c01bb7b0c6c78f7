package model

import "time"

// CartItem is a (cart, product) pairing joined with live product data.
// Quantity and UnitPrice come from the cart_items row; the product
// fields are live catalog values so the pricing and stock columns can
// diverge from what was captured at add time.  The computed fields
// (EffectivePrice, Subtotal, TVAAmount, Total) are derived per request,
// never stored.
type CartItem struct {
	ID            uint64    `json:"id"`            // cart_items.id
	CartID        uint64    `json:"cartId"`        // cart_items.cart_id
	ProductID     uint64    `json:"productId"`     // cart_items.product_id
	Quantity      int       `json:"quantity"`      // cart_items.quantity
	UnitPrice     float64   `json:"unitPrice"`     // cart_items.unit_price (captured at add time)
	AddedAt       time.Time `json:"addedAt"`       // cart_items.added_at
	ProductName   string    `json:"productName"`   // products.name
	ProductSlug   string    `json:"productSlug"`   // products.slug
	Reference     string    `json:"reference"`     // products.reference
	Price         float64   `json:"price"`         // products.price (live)
	PromoPrice    *float64  `json:"promoPrice"`    // products.promo_price (live)
	TaxRate       float64   `json:"taxRate"`       // products.tax_rate
	StockQuantity int       `json:"stockQuantity"` // products.stock_quantity (live)
	IsActive      bool      `json:"isActive"`      // products.is_active
	EffectivePrice float64  `json:"effectivePrice"` // promo if valid, else price
	Subtotal      float64   `json:"subtotal"`      // quantity x effectivePrice (HT)
	TVAAmount     float64   `json:"tvaAmount"`     // subtotal x taxRate / 100
	Total         float64   `json:"total"`         // subtotal + tvaAmount (TTC)
}

// CartSummary aggregates a cart's items.  All amounts are rounded to two
// decimals.
type CartSummary struct {
	ItemCount     int     `json:"itemCount"`     // number of distinct lines
	TotalQuantity int     `json:"totalQuantity"` // sum of line quantities
	SubtotalHT    float64 `json:"subtotalHT"`
	TotalTVA      float64 `json:"totalTVA"`
	TotalTTC      float64 `json:"totalTTC"`
}

// Cart is the per-user staging area.  At most one row per user exists in
// the carts table; the cart service enforces that invariant.
type Cart struct {
	ID        uint64      `json:"id"`        // carts.id
	UserID    uint64      `json:"userId"`    // carts.user_id
	Items     []CartItem  `json:"items"`
	Summary   CartSummary `json:"summary"`
	CreatedAt time.Time   `json:"createdAt"` // carts.created_at
	UpdatedAt time.Time   `json:"updatedAt"` // carts.updated_at
}

// CartIssue flags one problem found while validating a cart line.
type CartIssue struct {
	ProductID   uint64  `json:"productId"`
	ProductName string  `json:"productName"`
	Reason      string  `json:"reason"`
	Requested   int     `json:"requested,omitempty"`
	Available   int     `json:"available,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
}

// CartValidation is the result of validateCart: errors block checkout,
// warnings do not.
type CartValidation struct {
	IsValid  bool        `json:"isValid"`
	Errors   []CartIssue `json:"errors"`
	Warnings []CartIssue `json:"warnings"`
	Cart     *Cart       `json:"cart"`
}

// CartFix records one automatic adjustment applied by the cart auto-fix:
// a removed line or a clamped quantity.
type CartFix struct {
	Type        string `json:"type"` // "removed" | "adjusted"
	ProductName string `json:"productName"`
	Reason      string `json:"reason"`
	OldQuantity int    `json:"oldQuantity,omitempty"`
	NewQuantity int    `json:"newQuantity,omitempty"`
}
