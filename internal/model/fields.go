package model

// Declarative API-field to storage-column maps, one per sortable/filterable
// entity.  Repositories consult these instead of translating names inline,
// so the camelCase/snake_case mapping lives in exactly one place and
// unknown fields are rejected before reaching SQL.

// ProductFields maps product API field names to products columns.
var ProductFields = map[string]string{
	"id":            "p.id",
	"reference":     "p.reference",
	"name":          "p.name",
	"slug":          "p.slug",
	"price":         "p.price",
	"promoPrice":    "p.promo_price",
	"taxRate":       "p.tax_rate",
	"stockQuantity": "p.stock_quantity",
	"isActive":      "p.is_active",
	"isFeatured":    "p.is_featured",
	"categoryId":    "p.category_id",
	"createdAt":     "p.created_at",
	"updatedAt":     "p.updated_at",
}

// OrderFields maps order API field names to orders columns.
var OrderFields = map[string]string{
	"id":          "o.id",
	"orderNumber": "o.order_number",
	"userId":      "o.user_id",
	"status":      "o.status",
	"totalTTC":    "o.total_ttc",
	"createdAt":   "o.created_at",
	"updatedAt":   "o.updated_at",
}

// UserFields maps user API field names to users columns.
var UserFields = map[string]string{
	"id":         "u.id",
	"email":      "u.email",
	"name":       "u.name",
	"surname":    "u.surname",
	"role":       "u.role",
	"typeClient": "u.client_type",
	"isActive":   "u.is_active",
	"createdAt":  "u.created_at",
}

// Column resolves an API field name against a field map, returning the
// storage column and whether the field is known.
func Column(fields map[string]string, apiField string) (string, bool) {
	col, ok := fields[apiField]
	return col, ok
}
