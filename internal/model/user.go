package model

import "time"

// Role values stored in users.role.
const (
	RoleClient = "CLIENT"
	RoleAdmin  = "ADMIN"
)

// Client types stored in users.client_type.  BUSINESS accounts must carry
// a SIRET and a company name; INDIVIDUAL accounts leave both empty.
const (
	ClientIndividual = "INDIVIDUAL"
	ClientBusiness   = "BUSINESS"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The
// password hash and reset-token columns are never serialized; handlers
// expose users through Profile instead.
type User struct {
	ID              uint64     // users.id
	Email           string     // users.email (stored lower-cased, unique)
	PasswordHash    string     // users.password_hash
	Name            string     // users.name
	Surname         string     // users.surname
	Role            string     // users.role (CLIENT | ADMIN)
	ClientType      string     // users.client_type (INDIVIDUAL | BUSINESS)
	Siret           *string    // users.siret (BUSINESS only)
	CompanyName     *string    // users.company_name (BUSINESS only)
	IsActive        bool       // users.is_active
	ResetTokenHash  *string    // users.reset_token_hash (nullable)
	ResetTokenExp   *time.Time // users.reset_token_expires (nullable)
	CreatedAt       time.Time  // users.created_at
	UpdatedAt       time.Time  // users.updated_at
}

// Profile is the JSON shape of a user returned by the API.
type Profile struct {
	ID          uint64    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Role        string    `json:"role"`
	ClientType  string    `json:"typeClient"`
	Siret       *string   `json:"siret,omitempty"`
	CompanyName *string   `json:"companyName,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToProfile converts a storage row into its API representation.
func (u User) ToProfile() Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Surname:     u.Surname,
		Role:        u.Role,
		ClientType:  u.ClientType,
		Siret:       u.Siret,
		CompanyName: u.CompanyName,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}
