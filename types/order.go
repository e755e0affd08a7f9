package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the commercial state of an order.
//
// The machine is linear: pending -> approved -> delivered, with
// pending -> cancelled as the alternate terminal branch. No transition
// is defined away from a terminal state.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderApproved  OrderStatus = "approved"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderApproved, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal
// commercial-status transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderApproved || next == OrderCancelled
	case OrderApproved:
		return next == OrderDelivered
	case OrderDelivered, OrderCancelled:
		return false
	}
	return false
}

// DeliveryStatus is the physical-fulfilment state of an order, owned by
// the assigned transporter.
//
// Progression is strictly sequential:
// pending -> picked -> in_transit -> delivered.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryPicked    DeliveryStatus = "picked"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// Valid reports whether the delivery status is one of the known values.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryPending, DeliveryPicked, DeliveryInTransit, DeliveryDelivered:
		return true
	}
	return false
}

// Next returns the only legal successor state, or the empty string when
// s is terminal.
func (s DeliveryStatus) Next() DeliveryStatus {
	switch s {
	case DeliveryPending:
		return DeliveryPicked
	case DeliveryPicked:
		return DeliveryInTransit
	case DeliveryInTransit:
		return DeliveryDelivered
	}
	return ""
}

// OrderSummary is the joined row shown in admin and farmer order
// listings.
type OrderSummary struct {
	ID          int             `json:"id"`
	ProductName string          `json:"product_name"`
	BuyerName   string          `json:"buyer_name"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   string          `json:"created_at"`
}

// Order binds a buyer, a product, and optionally a transporter together
// with the two lifecycle state machines.
type Order struct {
	// ID is the unique identifier of the order.
	ID int `json:"id" db:"id"`

	// BuyerID is the identifier of the user who placed the order.
	BuyerID int `json:"buyer_id" db:"buyer_id"`

	// ProductID is the identifier of the ordered product.
	ProductID int `json:"product_id" db:"product_id"`

	// TransporterID is the identifier of the transporter assigned at
	// approval time. Nil until the order is approved.
	TransporterID *int `json:"transporter_id" db:"transporter_id"`

	// Quantity is the ordered amount. It can never exceed the product
	// stock available at the moment the order was placed.
	Quantity int `json:"quantity" db:"quantity"`

	// TotalPrice is quantity times the product's unit price as it was
	// at creation time. It is computed once and never recalculated.
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`

	// Status is the commercial state of the order.
	Status OrderStatus `json:"status" db:"status"`

	// DeliveryStatus is the fulfilment state of the order.
	DeliveryStatus DeliveryStatus `json:"delivery_status" db:"delivery_status"`

	// DeliveryLat and DeliveryLng are the last reported delivery
	// coordinates, nil until a location update is submitted.
	DeliveryLat *decimal.Decimal `json:"delivery_lat" db:"delivery_lat"`
	DeliveryLng *decimal.Decimal `json:"delivery_lng" db:"delivery_lng"`

	// CreatedAt is the timestamp when the order was placed.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
