package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/agrolink/apiserver/internal/authz"
	"github.com/agrolink/apiserver/internal/services"
	"github.com/agrolink/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	maxMultipartMemory = 8 << 20
	maxImageBytes      = 2 << 20
	formFieldImage     = "image"
)

// ProductHandler provides HTTP handlers for the catalog.
type ProductHandler struct {
	productService *services.ProductService
	userService    *services.UserService
}

func NewProductHandler(productService *services.ProductService, userService *services.UserService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		userService:    userService,
	}
}

// ProductRouter registers the catalog routes. Listing is public with an
// optional token; mutations require authentication.
func ProductRouter(
	r chi.Router,
	productService *services.ProductService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
	optionalAuthMiddleware func(http.Handler) http.Handler,
) {
	handler := NewProductHandler(productService, userService)

	r.With(optionalAuthMiddleware).Get("/", handler.ListProducts)
	r.With(authMiddleware).Post("/", handler.CreateProduct)
	r.Route("/{productID}", func(r chi.Router) {
		r.With(optionalAuthMiddleware).Get("/", handler.GetProduct)
		r.With(authMiddleware).Put("/", handler.UpdateProduct)
		r.With(authMiddleware).Delete("/", handler.DeleteProduct)
	})
}

// ListProducts returns the catalog filtered by role visibility: admins
// and buyers see everything, farmers only their own listings, and
// anonymous visitors the full catalog.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var principal *authz.Principal
	if _, err := userIDFromContext(r.Context()); err == nil {
		p, err := principalFromRequest(r, h.userService)
		if err == nil {
			principal = &p
		}
	}

	products, err := h.productService.List(r.Context(), principal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []types.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateProduct adds a listing. Farmers and admins only; the price
// bound on this path is >= 1.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	form, image, err := parseProductForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.productService.Create(r.Context(), principal, form.toProduct(), image)
	if err != nil {
		writeServiceError(w, err, "failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
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

	form, image, err := parseProductForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.productService.Update(r.Context(), principal, id, form.toProduct(), image)
	if err != nil {
		writeServiceError(w, err, "failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
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

	if err := h.productService.Delete(r.Context(), principal, id); err != nil {
		writeServiceError(w, err, "failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// ProductForm is the parsed multipart payload for product create and
// update.
type ProductForm struct {
	Name        string  `validate:"required,max=255"`
	Category    string  `validate:"required,max=255"`
	Price       float64 `validate:"gte=1"`
	Quantity    int     `validate:"gte=1"`
	Unit        string  `validate:"required"`
	Location    string  `validate:"required,max=255"`
	Description string  `validate:"max=1000"`
}

func (f ProductForm) toProduct() types.Product {
	return types.Product{
		Name:        f.Name,
		Category:    f.Category,
		Price:       decimal.NewFromFloat(f.Price),
		Quantity:    f.Quantity,
		Unit:        types.Unit(f.Unit),
		Location:    f.Location,
		Description: f.Description,
	}
}

func parseProductForm(r *http.Request) (ProductForm, *services.ImageUpload, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return ProductForm{}, nil, errors.New("invalid multipart form")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil {
		return ProductForm{}, nil, errors.New("invalid price")
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(r.FormValue("quantity")))
	if err != nil {
		return ProductForm{}, nil, errors.New("invalid quantity")
	}

	form := ProductForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		Price:       price,
		Quantity:    quantity,
		Unit:        strings.TrimSpace(r.FormValue("unit")),
		Location:    strings.TrimSpace(r.FormValue("location")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if err := validate.Struct(form); err != nil {
		return ProductForm{}, nil, errors.New("invalid product fields")
	}
	if !types.Unit(form.Unit).Valid() {
		return ProductForm{}, nil, errors.New("invalid unit")
	}

	image, err := parseImageFile(r.MultipartForm)
	if err != nil {
		return ProductForm{}, nil, err
	}
	return form, image, nil
}

// parseImageFile reads the optional product image. jpg, jpeg, and png
// only, at most 2 MiB.
func parseImageFile(form *multipart.Form) (*services.ImageUpload, error) {
	if form == nil {
		return nil, nil
	}
	files := form.File[formFieldImage]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		return nil, errors.New("only one image is allowed")
	}

	fileHeader := files[0]
	ext := strings.ToLower(path.Ext(fileHeader.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return nil, errors.New("image must be jpg, jpeg, or png")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("failed to read image")
	}
	data, err := readFileLimited(file, maxImageBytes)
	_ = file.Close()
	if err != nil {
		return nil, err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &services.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
