package model

import "time"

// Value types accepted in settings.value_type.
const (
	SettingString = "string"
	SettingNumber = "number"
	SettingBool   = "boolean"
	SettingJSON   = "json"
)

// Well-known setting keys consumed by the cart and order services.
const (
	SettingMinOrderAmount    = "commande.montant_minimum"
	SettingFreeShippingAbove = "livraison.seuil_franco"
	SettingShippingFee       = "livraison.frais"
	SettingAllowBackorder    = "stock.autoriser_rupture"
)

// Setting is a typed, categorized configuration row.  Value is stored as
// JSONB so a single column carries strings, numbers, booleans and
// structured values; ValueType records how to interpret it.
type Setting struct {
	ID        uint64      `json:"id"`        // settings.id
	Key       string      `json:"key"`       // settings.key (unique)
	Category  string      `json:"category"`  // settings.category
	Value     interface{} `json:"value"`     // settings.value (jsonb)
	ValueType string      `json:"valueType"` // settings.value_type
	UpdatedAt time.Time   `json:"updatedAt"` // settings.updated_at
}
