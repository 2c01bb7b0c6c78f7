package model

import "time"

// Category mirrors the `categories` table.
type Category struct {
	ID          uint64    `json:"id"`          // categories.id
	Name        string    `json:"name"`        // categories.name
	Slug        string    `json:"slug"`        // categories.slug (unique)
	Description string    `json:"description"` // categories.description
	IsActive    bool      `json:"isActive"`    // categories.is_active
	ProductCount int64    `json:"productCount"` // joined aggregate, not stored
	CreatedAt   time.Time `json:"createdAt"`   // categories.created_at
	UpdatedAt   time.Time `json:"updatedAt"`   // categories.updated_at
}
