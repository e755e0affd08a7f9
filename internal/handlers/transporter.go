package handlers

import (
	"net/http"

	"github.com/agrolink/apiserver/internal/services"
	"github.com/agrolink/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// TransporterHandler provides the delivery-side order endpoints.
type TransporterHandler struct {
	orderService *services.OrderService
	userService  *services.UserService
}

func NewTransporterHandler(orderService *services.OrderService, userService *services.UserService) *TransporterHandler {
	return &TransporterHandler{
		orderService: orderService,
		userService:  userService,
	}
}

// TransporterRouter registers the transporter routes. The route group
// is gated to the transporter role; assignment checks happen per order
// in the service.
func TransporterRouter(r chi.Router, orderService *services.OrderService, userService *services.UserService) {
	handler := NewTransporterHandler(orderService, userService)

	r.Get("/orders", handler.MyOrders)
	r.Put("/orders/{orderID}", handler.UpdateDeliveryStatus)
	r.Put("/orders/{orderID}/location", handler.UpdateDeliveryLocation)
}

// MyOrders lists the orders assigned to the calling transporter.
func (h *TransporterHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.TransporterOrders(r.Context(), principal)
	if err != nil {
		writeServiceError(w, err, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []types.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// UpdateDeliveryStatus advances the delivery one step along
// pending -> picked -> in_transit -> delivered.
func (h *TransporterHandler) UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
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

	var req DeliveryStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	order, err := h.orderService.AdvanceDelivery(r.Context(), principal, id, types.DeliveryStatus(req.DeliveryStatus))
	if err != nil {
		writeServiceError(w, err, "failed to update delivery status")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateDeliveryLocation records coordinates and forces the delivery
// status to in_transit.
func (h *TransporterHandler) UpdateDeliveryLocation(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.orderService.TransporterUpdateLocation(
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

type DeliveryStatusRequest struct {
	DeliveryStatus string `json:"delivery_status" validate:"required"`
}
