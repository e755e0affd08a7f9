package services

import "errors"

// ErrInvalidTransition is returned when a requested status change is
// not a legal step of the order lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrTransporterRequired is returned when an order is approved without
// a transporter assignment. Approval and assignment are a single
// atomic update; there is no approve-without-transporter path.
var ErrTransporterRequired = errors.New("transporter assignment required for approval")

// ErrNotTransporter is returned when the user named as transporter for
// an order does not hold the transporter role.
var ErrNotTransporter = errors.New("assigned user is not a transporter")
