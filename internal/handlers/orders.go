package handlers

import (
	"net/http"

	"github.com/agrolink/apiserver/internal/services"
	"github.com/agrolink/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// OrderHandler provides HTTP handlers for buyer-facing and shared
// order endpoints.
type OrderHandler struct {
	orderService *services.OrderService
	userService  *services.UserService
}

func NewOrderHandler(orderService *services.OrderService, userService *services.UserService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		userService:  userService,
	}
}

// OrderRouter registers the authenticated order routes.
func OrderRouter(r chi.Router, orderService *services.OrderService, userService *services.UserService) {
	handler := NewOrderHandler(orderService, userService)

	r.Post("/orders", handler.CreateOrder)
	r.Get("/my-orders", handler.MyOrders)
	r.Get("/orders", handler.ListOrders)
	r.Post("/orders/{orderID}/location", handler.UpdateLocation)
	r.Post("/orders/{orderID}/delivered", handler.MarkDelivered)
}

// CreateOrder places an order for the caller, snapshotting the product
// price and decrementing stock atomically.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	order, err := h.orderService.Create(r.Context(), principal, req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(w, err, "failed to place order")
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// MyOrders lists the caller's own orders, newest first.
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.MyOrders(r.Context(), principal)
	if err != nil {
		writeServiceError(w, err, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []types.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// ListOrders shows joined order rows: every order for admins, orders
// against own products for farmers.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summaries, err := h.orderService.ListSummaries(r.Context(), principal)
	if err != nil {
		writeServiceError(w, err, "failed to list orders")
		return
	}
	if summaries == nil {
		summaries = []types.OrderSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// UpdateLocation records delivery coordinates. Assigned transporter or
// admin only.
func (h *OrderHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req LocationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	order, err := h.orderService.UpdateLocation(
		r.Context(),
		principal,
		id,
		decimal.NewFromFloat(*req.DeliveryLat),
		decimal.NewFromFloat(*req.DeliveryLng),
	)
	if err != nil {
		writeServiceError(w, err, "failed to update location")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// MarkDelivered sets both the commercial and the delivery status to
// delivered. Admin or the farmer owning the product only.
func (h *OrderHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.MarkDelivered(r.Context(), principal, id)
	if err != nil {
		writeServiceError(w, err, "failed to mark delivered")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type CreateOrderRequest struct {
	ProductID int `json:"product_id" validate:"required,gte=1"`
	Quantity  int `json:"quantity" validate:"required,gte=1"`
}

// LocationRequest carries delivery coordinates. Pointers distinguish a
// missing field from a zero coordinate.
type LocationRequest struct {
	DeliveryLat *float64 `json:"delivery_lat" validate:"required"`
	DeliveryLng *float64 `json:"delivery_lng" validate:"required"`
}
