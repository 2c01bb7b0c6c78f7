package model

import "time"

// Order statuses.  The naming follows the commercial workflow used by the
// shop (French).  LIVREE and ANNULEE are terminal.
const (
	StatusPending   = "EN_ATTENTE"
	StatusPaid      = "PAYEE"
	StatusPreparing = "EN_PREPARATION"
	StatusShipped   = "EXPEDIEE"
	StatusDelivered = "LIVREE"
	StatusCancelled = "ANNULEE"
)

// Payment modes accepted at checkout.
const (
	PaymentTransfer = "VIREMENT"
	PaymentCard     = "CARTE"
	PaymentCheque   = "CHEQUE"
)

// Address is the structured shipping/billing address stored as JSONB on
// the order row.  PostalCode must be five digits; the order service
// validates that before accepting an order.
type Address struct {
	Name       string `json:"name" validate:"required"`
	Surname    string `json:"surname" validate:"required"`
	Street     string `json:"street" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	City       string `json:"city" validate:"required"`
	Phone      string `json:"phone,omitempty"`
}

// OrderLine is a frozen copy of a cart item at order-placement time.
// Unit price and tax rate are captured values: later catalog changes
// never affect a placed order.
type OrderLine struct {
	ID           uint64  `json:"id"`           // order_lines.id
	OrderID      uint64  `json:"orderId"`      // order_lines.order_id
	ProductID    *uint64 `json:"productId"`    // order_lines.product_id (null after product hard-delete)
	ProductName  string  `json:"productName"`  // order_lines.product_name (captured)
	Quantity     int     `json:"quantity"`     // order_lines.quantity
	UnitPriceHT  float64 `json:"unitPriceHT"`  // order_lines.unit_price_ht (captured)
	TaxRate      float64 `json:"taxRate"`      // order_lines.tax_rate (captured)
	LineTotalHT  float64 `json:"lineTotalHT"`  // order_lines.line_total_ht
	LineTVA      float64 `json:"lineTVA"`      // order_lines.line_tva
	LineTotalTTC float64 `json:"lineTotalTTC"` // order_lines.line_total_ttc
}

// Order is immutable once placed, except for its status and notes.
type Order struct {
	ID              uint64      `json:"id"`          // orders.id
	OrderNumber     string      `json:"orderNumber"` // orders.order_number (CMD-YYYYMMDD-NNNN)
	UserID          *uint64     `json:"userId"`      // orders.user_id (null after user hard-delete)
	Status          string      `json:"status"`
	ShippingAddress Address     `json:"shippingAddress"` // orders.shipping_address (jsonb)
	BillingAddress  *Address    `json:"billingAddress"`  // orders.billing_address (jsonb, nullable)
	PaymentMode     string      `json:"paymentMode"`
	SubtotalHT      float64     `json:"subtotalHT"`
	TotalTVA        float64     `json:"totalTVA"`
	ShippingFee     float64     `json:"shippingFee"`
	TotalTTC        float64     `json:"totalTTC"`
	Notes           string      `json:"notes"`
	Lines           []OrderLine `json:"lines"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
