package services

import (
	"context"

	"github.com/agrolink/apiserver/internal/authz"
	"github.com/agrolink/apiserver/types"
	"github.com/shopspring/decimal"
)

// OrderRepository defines persistence operations for orders. Create is
// atomic at the store level: the stock check, the price snapshot, and
// the decrement happen in one transaction against a locked product row.
type OrderRepository interface {
	Create(ctx context.Context, buyerID, productID, quantity int) (types.Order, error)
	Get(ctx context.Context, id int) (types.Order, error)
	ListAll(ctx context.Context) ([]types.Order, error)
	ListByBuyer(ctx context.Context, buyerID int) ([]types.Order, error)
	ListByTransporter(ctx context.Context, transporterID int) ([]types.Order, error)
	ListSummaries(ctx context.Context, farmerID *int) ([]types.OrderSummary, error)
	Update(ctx context.Context, order types.Order) (types.Order, error)
}

// OrderService owns the two order state machines: the commercial
// status driven by admins and farmers, and the delivery status driven
// by the assigned transporter.
type OrderService struct {
	orders   OrderRepository
	products ProductRepository
	users    UserRepository
}

func NewOrderService(orders OrderRepository, products ProductRepository, users UserRepository) *OrderService {
	return &OrderService{orders: orders, products: products, users: users}
}

// Create places an order for the calling buyer. The ordered quantity
// can never exceed the product stock; the total price is a snapshot of
// the unit price at this moment and is never recalculated.
func (s *OrderService) Create(ctx context.Context, principal authz.Principal, productID, quantity int) (types.Order, error) {
	if err := authz.CanPlaceOrder(principal); err != nil {
		return types.Order{}, err
	}
	return s.orders.Create(ctx, principal.ID, productID, quantity)
}

// MyOrders lists the caller's own orders, newest first.
func (s *OrderService) MyOrders(ctx context.Context, principal authz.Principal) ([]types.Order, error) {
	return s.orders.ListByBuyer(ctx, principal.ID)
}

// ListSummaries shows the joined order rows: all orders for admins,
// own-product orders for farmers. Other roles are refused.
func (s *OrderService) ListSummaries(ctx context.Context, principal authz.Principal) ([]types.OrderSummary, error) {
	farmerID, err := authz.OrderListScope(principal)
	if err != nil {
		return nil, err
	}
	return s.orders.ListSummaries(ctx, farmerID)
}

// TransporterOrders lists the orders assigned to the calling
// transporter.
func (s *OrderService) TransporterOrders(ctx context.Context, principal authz.Principal) ([]types.Order, error) {
	if principal.Role != types.RoleTransporter {
		return nil, authz.ErrForbidden
	}
	return s.orders.ListByTransporter(ctx, principal.ID)
}

// ListAll returns every order. Admin only.
func (s *OrderService) ListAll(ctx context.Context, principal authz.Principal) ([]types.Order, error) {
	if err := authz.CanAdministrate(principal); err != nil {
		return nil, err
	}
	return s.orders.ListAll(ctx)
}

// AdvanceDelivery moves an order's delivery status one step forward.
// Only the assigned transporter may do so, and only along the strict
// sequence pending -> picked -> in_transit -> delivered. When the
// delivery reaches delivered the commercial status auto-advances to
// delivered as well.
func (s *OrderService) AdvanceDelivery(ctx context.Context, principal authz.Principal, orderID int, next types.DeliveryStatus) (types.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return types.Order{}, err
	}
	if err := authz.CanUpdateDelivery(principal, order); err != nil {
		return types.Order{}, err
	}
	if !next.Valid() || order.DeliveryStatus.Next() != next {
		return types.Order{}, ErrInvalidTransition
	}
	if order.Status == types.OrderCancelled {
		return types.Order{}, ErrInvalidTransition
	}

	order.DeliveryStatus = next
	if next == types.DeliveryDelivered && !order.Status.Terminal() {
		order.Status = types.OrderDelivered
	}
	return s.orders.Update(ctx, order)
}

// UpdateLocation records delivery coordinates for an order. The
// assigned transporter or an admin may submit them at any point before
// the delivery reaches its terminal state.
func (s *OrderService) UpdateLocation(ctx context.Context, principal authz.Principal, orderID int, lat, lng decimal.Decimal) (types.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return types.Order{}, err
	}
	if err := authz.CanUpdateLocation(principal, order); err != nil {
		return types.Order{}, err
	}
	if order.DeliveryStatus == types.DeliveryDelivered {
		return types.Order{}, ErrInvalidTransition
	}

	order.DeliveryLat = &lat
	order.DeliveryLng = &lng
	return s.orders.Update(ctx, order)
}

// TransporterUpdateLocation records coordinates on behalf of the
// assigned transporter and forces the delivery status to in_transit as
// a side effect.
func (s *OrderService) TransporterUpdateLocation(ctx context.Context, principal authz.Principal, orderID int, lat, lng decimal.Decimal) (types.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return types.Order{}, err
	}
	if err := authz.CanUpdateDelivery(principal, order); err != nil {
		return types.Order{}, err
	}
	if order.DeliveryStatus == types.DeliveryDelivered || order.Status == types.OrderCancelled {
		return types.Order{}, ErrInvalidTransition
	}

	order.DeliveryLat = &lat
	order.DeliveryLng = &lng
	order.DeliveryStatus = types.DeliveryInTransit
	return s.orders.Update(ctx, order)
}

// MarkDelivered is the explicit admin/farmer action setting both the
// commercial status and the delivery status to delivered. An already
// delivered order is returned unchanged; a cancelled or still pending
// order cannot be marked delivered.
func (s *OrderService) MarkDelivered(ctx context.Context, principal authz.Principal, orderID int) (types.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return types.Order{}, err
	}
	product, err := s.products.Get(ctx, order.ProductID)
	if err != nil {
		return types.Order{}, err
	}
	if err := authz.CanMarkDelivered(principal, product); err != nil {
		return types.Order{}, err
	}

	if order.Status == types.OrderDelivered {
		return order, nil
	}
	if !order.Status.CanTransitionTo(types.OrderDelivered) {
		return types.Order{}, ErrInvalidTransition
	}

	order.Status = types.OrderDelivered
	order.DeliveryStatus = types.DeliveryDelivered
	return s.orders.Update(ctx, order)
}

// AdminUpdate is the admin order maintenance action. It validates the
// commercial state machine: approval assigns a transporter in the same
// update, cancellation is only possible while pending, and terminal
// states admit no further changes.
func (s *OrderService) AdminUpdate(ctx context.Context, principal authz.Principal, orderID int, status *types.OrderStatus, transporterID *int) (types.Order, error) {
	if err := authz.CanAdministrate(principal); err != nil {
		return types.Order{}, err
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return types.Order{}, err
	}

	if transporterID != nil {
		if order.Status.Terminal() {
			return types.Order{}, ErrInvalidTransition
		}
		transporter, err := s.users.GetByID(ctx, *transporterID)
		if err != nil {
			return types.Order{}, err
		}
		if transporter.Role != types.RoleTransporter {
			return types.Order{}, ErrNotTransporter
		}
		order.TransporterID = transporterID
	}

	if status != nil && *status != order.Status {
		if !order.Status.CanTransitionTo(*status) {
			return types.Order{}, ErrInvalidTransition
		}
		if *status == types.OrderApproved && order.TransporterID == nil {
			return types.Order{}, ErrTransporterRequired
		}
		order.Status = *status
		if *status == types.OrderDelivered {
			order.DeliveryStatus = types.DeliveryDelivered
		}
	}

	return s.orders.Update(ctx, order)
}
