package types

import "time"

// Role identifies the authorization level of a user within the marketplace.
// The set of roles is closed; every authorization decision matches
// exhaustively against these values.
type Role string

const (
	// RoleAdmin may manage users, products, and orders platform-wide.
	RoleAdmin Role = "admin"

	// RoleFarmer owns products and sees orders placed against them.
	RoleFarmer Role = "farmer"

	// RoleBuyer places orders against the catalog.
	RoleBuyer Role = "buyer"

	// RoleTransporter fulfils deliveries for orders assigned to them.
	RoleTransporter Role = "transporter"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFarmer, RoleBuyer, RoleTransporter:
		return true
	}
	return false
}

// User represents an account in the marketplace.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Email is the user's unique email address, used as the login name.
	Email string `json:"email" db:"email"`

	// Role indicates which side of the marketplace the user acts on.
	// A user can never change their own role; only an admin may change
	// the role of a non-admin account.
	Role Role `json:"role" db:"role"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
