// Package authz is the authorization gate for the marketplace. Every
// decision is a pure function of the authenticated principal and, where
// ownership matters, the target resource. Roles form a closed set and
// are matched exhaustively; there is no hierarchy beyond what each rule
// enumerates.
package authz

import (
	"errors"

	"github.com/agrolink/apiserver/types"
)

// ErrForbidden signals that the principal lacks the capability for the
// attempted operation.
var ErrForbidden = errors.New("forbidden")

// Principal is the authenticated actor making a request.
type Principal struct {
	ID   int
	Role types.Role
}

// CanCreateProduct allows farmers and admins to add catalog listings.
func CanCreateProduct(p Principal) error {
	switch p.Role {
	case types.RoleFarmer, types.RoleAdmin:
		return nil
	case types.RoleBuyer, types.RoleTransporter:
		return ErrForbidden
	}
	return ErrForbidden
}

// CanMutateProduct allows the owner or an admin to update or delete a
// product.
func CanMutateProduct(p Principal, product types.Product) error {
	if p.Role == types.RoleAdmin {
		return nil
	}
	if p.ID == product.UserID {
		return nil
	}
	return ErrForbidden
}

// CanPlaceOrder allows any authenticated principal to place an order.
func CanPlaceOrder(p Principal) error {
	if !p.Role.Valid() {
		return ErrForbidden
	}
	return nil
}

// CanAdministrate covers the admin-only surface: user management,
// global order management, and the revenue report.
func CanAdministrate(p Principal) error {
	switch p.Role {
	case types.RoleAdmin:
		return nil
	case types.RoleFarmer, types.RoleBuyer, types.RoleTransporter:
		return ErrForbidden
	}
	return ErrForbidden
}

// CanManageUser additionally applies the admin self-protection rule: no
// account whose role is admin may be edited or deleted by anyone.
func CanManageUser(p Principal, target types.User) error {
	if err := CanAdministrate(p); err != nil {
		return err
	}
	if target.Role == types.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// CanUpdateDelivery allows only the assigned transporter to advance an
// order's delivery status.
func CanUpdateDelivery(p Principal, order types.Order) error {
	if p.Role != types.RoleTransporter {
		return ErrForbidden
	}
	if order.TransporterID == nil || *order.TransporterID != p.ID {
		return ErrForbidden
	}
	return nil
}

// CanUpdateLocation allows the assigned transporter or an admin to
// submit delivery coordinates for an order.
func CanUpdateLocation(p Principal, order types.Order) error {
	if p.Role == types.RoleAdmin {
		return nil
	}
	return CanUpdateDelivery(p, order)
}

// CanMarkDelivered allows an admin, or the farmer owning the ordered
// product, to mark the commercial status delivered.
func CanMarkDelivered(p Principal, product types.Product) error {
	switch p.Role {
	case types.RoleAdmin:
		return nil
	case types.RoleFarmer:
		if p.ID == product.UserID {
			return nil
		}
		return ErrForbidden
	case types.RoleBuyer, types.RoleTransporter:
		return ErrForbidden
	}
	return ErrForbidden
}

// ProductScope returns the owner filter for catalog listings: farmers
// see only their own products, everyone else (including anonymous
// visitors) sees the full catalog. This is a visibility filter, not a
// capability gate.
func ProductScope(p *Principal) *int {
	if p == nil {
		return nil
	}
	switch p.Role {
	case types.RoleFarmer:
		id := p.ID
		return &id
	case types.RoleAdmin, types.RoleBuyer, types.RoleTransporter:
		return nil
	}
	return nil
}

// OrderListScope decides what the order listing endpoint shows: admins
// see every order, farmers see orders against their own products, and
// all other roles are refused.
func OrderListScope(p Principal) (farmerID *int, err error) {
	switch p.Role {
	case types.RoleAdmin:
		return nil, nil
	case types.RoleFarmer:
		id := p.ID
		return &id, nil
	case types.RoleBuyer, types.RoleTransporter:
		return nil, ErrForbidden
	}
	return nil, ErrForbidden
}
