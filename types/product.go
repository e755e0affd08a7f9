package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is the measurement unit a product is sold in.
type Unit string

const (
	UnitKg     Unit = "Kg"
	UnitLiter  Unit = "Liter"
	UnitPcs    Unit = "Pcs"
	UnitPacket Unit = "Packet"
	UnitPound  Unit = "Pound"
)

// Valid reports whether the unit is one of the known values.
func (u Unit) Valid() bool {
	switch u {
	case UnitKg, UnitLiter, UnitPcs, UnitPacket, UnitPound:
		return true
	}
	return false
}

// Product represents a catalog listing owned by a farmer or an admin.
type Product struct {
	// ID is the unique identifier of the product.
	ID int `json:"id" db:"id"`

	// UserID is the identifier of the owning farmer or admin. Only the
	// owner or an admin may update or delete the product.
	UserID int `json:"user_id" db:"user_id"`

	// Name is the human-readable name of the product.
	Name string `json:"name" db:"name"`

	// Category is a free-form grouping label (e.g. "Vegetables").
	Category string `json:"category" db:"category"`

	// Price is the unit price. Orders snapshot this value at creation
	// time; later price changes never affect existing orders.
	Price decimal.Decimal `json:"price" db:"price"`

	// Quantity is the remaining stock counter. It is decremented by
	// accepted orders and must never go negative.
	Quantity int `json:"quantity" db:"quantity"`

	// Unit is the measurement unit the price and quantity refer to.
	Unit Unit `json:"unit" db:"unit"`

	// Location is free-form text describing where the product is held.
	Location string `json:"location" db:"location"`

	// Description is an optional longer text, at most 1000 characters.
	Description string `json:"description,omitempty" db:"description"`

	// Image is the object-storage key of the product image, empty if
	// none was uploaded. Deleting the product also deletes the object.
	Image string `json:"image,omitempty" db:"image"`

	// CreatedAt is the timestamp when the product was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
