package handlers

import (
	"net/http"

	"github.com/agrolink/apiserver/internal/services"
	"github.com/agrolink/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// AdminHandler provides the admin-only management endpoints.
type AdminHandler struct {
	userService    *services.UserService
	productService *services.ProductService
	orderService   *services.OrderService
	revenueService *services.RevenueService
}

func NewAdminHandler(
	userService *services.UserService,
	productService *services.ProductService,
	orderService *services.OrderService,
	revenueService *services.RevenueService,
) *AdminHandler {
	return &AdminHandler{
		userService:    userService,
		productService: productService,
		orderService:   orderService,
		revenueService: revenueService,
	}
}

// AdminRouter registers the admin routes. The surrounding route group
// is gated to the admin role; ownership rules (such as admin
// self-protection) are enforced per target in the services.
func AdminRouter(
	r chi.Router,
	userService *services.UserService,
	productService *services.ProductService,
	orderService *services.OrderService,
	revenueService *services.RevenueService,
) {
	handler := NewAdminHandler(userService, productService, orderService, revenueService)

	r.Get("/users", handler.ListUsers)
	r.Put("/users/{userID}", handler.UpdateUser)
	r.Delete("/users/{userID}", handler.DeleteUser)

	r.Put("/products/{productID}", handler.UpdateProduct)
	r.Post("/products/{productID}/image", handler.UpdateProductImage)

	r.Get("/revenue-report", handler.RevenueReport)

	r.Get("/orders", handler.ListOrders)
	r.Put("/orders/{orderID}", handler.UpdateOrder)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.userService.List(r.Context(), principal)
	if err != nil {
		writeServiceError(w, err, "failed to list users")
		return
	}
	if users == nil {
		users = []types.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateUser edits a non-admin account. Accounts with the admin role
// are protected from edits by anyone.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req AdminUserUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.AdminUpdate(r.Context(), principal, id, req.Name, req.Email, types.Role(req.Role))
	if err != nil {
		writeServiceError(w, err, "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.AdminDelete(r.Context(), principal, id); err != nil {
		writeServiceError(w, err, "failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// UpdateProduct is the admin maintenance edit. The price bound on this
// path is >= 0, unlike the >= 1 bound on the owner path.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req AdminProductUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	product, err := h.productService.AdminUpdate(r.Context(), principal, id, services.AdminProductUpdate{
		Name:     req.Name,
		Category: req.Category,
		Location: req.Location,
		Price:    decimal.NewFromFloat(*req.Price),
		Quantity: req.Quantity,
	})
	if err != nil {
		writeServiceError(w, err, "failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// UpdateProductImage replaces a product's image object.
func (h *AdminHandler) UpdateProductImage(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	image, err := parseImageFile(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if image == nil {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	product, err := h.productService.ReplaceImage(r.Context(), principal, id, *image)
	if err != nil {
		writeServiceError(w, err, "failed to update image")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// RevenueReport returns the commission report over delivered orders.
func (h *AdminHandler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	report, err := h.revenueService.Report(r.Context(), principal)
	if err != nil {
		writeServiceError(w, err, "failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.ListAll(r.Context(), principal)
	if err != nil {
		writeServiceError(w, err, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []types.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// UpdateOrder approves, cancels, or delivers an order and assigns the
// transporter. Approval and transporter assignment happen in one
// update.
func (h *AdminHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
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

	var req AdminOrderUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	var status *types.OrderStatus
	if req.Status != nil {
		parsed := types.OrderStatus(*req.Status)
		if !parsed.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		status = &parsed
	}

	order, err := h.orderService.AdminUpdate(r.Context(), principal, id, status, req.TransporterID)
	if err != nil {
		writeServiceError(w, err, "failed to update order")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type AdminUserUpdateRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=farmer buyer transporter"`
}

// AdminProductUpdateRequest uses a pointer price so a zero price is
// distinguishable from a missing field; the admin bound is >= 0.
type AdminProductUpdateRequest struct {
	Name     string   `json:"name" validate:"required,max=255"`
	Category string   `json:"category" validate:"max=255"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Quantity int      `json:"quantity" validate:"required,gte=1"`
	Location string   `json:"location" validate:"required,max=255"`
}

type AdminOrderUpdateRequest struct {
	Status        *string `json:"status"`
	TransporterID *int    `json:"transporter_id"`
}
