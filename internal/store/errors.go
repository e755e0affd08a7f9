package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInsufficientStock is returned when an order requests more than the
// product's remaining stock. The check and the decrement happen inside
// one transaction, so no stock is mutated on this error.
var ErrInsufficientStock = errors.New("insufficient stock")
