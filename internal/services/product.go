package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"

	"github.com/agrolink/apiserver/internal/authz"
	"github.com/agrolink/apiserver/types"
	"github.com/shopspring/decimal"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	List(ctx context.Context, ownerID *int) ([]types.Product, error)
	Get(ctx context.Context, id int) (types.Product, error)
	Create(ctx context.Context, product types.Product) (types.Product, error)
	Update(ctx context.Context, product types.Product) (types.Product, error)
	UpdateImage(ctx context.Context, id int, image string) error
	Delete(ctx context.Context, id int) error
}

// ImageStore holds product image objects.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// ImageUpload carries an uploaded product image through the service.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProductService encapsulates catalog use-cases.
type ProductService struct {
	repo   ProductRepository
	images ImageStore
}

func NewProductService(repo ProductRepository, images ImageStore) *ProductService {
	return &ProductService{repo: repo, images: images}
}

// List applies the role visibility filter: farmers see only their own
// products, everyone else sees the full catalog. principal may be nil
// for anonymous visitors.
func (s *ProductService) List(ctx context.Context, principal *authz.Principal) ([]types.Product, error) {
	return s.repo.List(ctx, authz.ProductScope(principal))
}

func (s *ProductService) Get(ctx context.Context, id int) (types.Product, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a catalog listing owned by the caller. Farmers and
// admins only.
func (s *ProductService) Create(ctx context.Context, principal authz.Principal, product types.Product, image *ImageUpload) (types.Product, error) {
	if err := authz.CanCreateProduct(principal); err != nil {
		return types.Product{}, err
	}

	product.UserID = principal.ID
	if image != nil {
		key, err := s.storeImage(ctx, image)
		if err != nil {
			return types.Product{}, err
		}
		product.Image = key
	}
	return s.repo.Create(ctx, product)
}

// Update replaces the mutable fields of a product. Owner or admin
// only. A newly uploaded image replaces and deletes the old object.
func (s *ProductService) Update(ctx context.Context, principal authz.Principal, id int, updated types.Product, image *ImageUpload) (types.Product, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Product{}, err
	}
	if err := authz.CanMutateProduct(principal, current); err != nil {
		return types.Product{}, err
	}

	current.Name = updated.Name
	current.Category = updated.Category
	current.Price = updated.Price
	current.Quantity = updated.Quantity
	current.Unit = updated.Unit
	current.Location = updated.Location
	if updated.Description != "" {
		current.Description = updated.Description
	}

	if image != nil {
		key, err := s.storeImage(ctx, image)
		if err != nil {
			return types.Product{}, err
		}
		if current.Image != "" {
			_ = s.images.Delete(ctx, current.Image)
		}
		current.Image = key
	}

	return s.repo.Update(ctx, current)
}

// AdminProductUpdate carries the fields of the admin maintenance edit.
// It touches name, category, price, quantity, and location only; the
// admin price bound (>= 0) is validated at the request boundary.
type AdminProductUpdate struct {
	Name     string
	Category string
	Location string
	Price    decimal.Decimal
	Quantity int
}

// AdminUpdate is the admin maintenance edit of a product.
func (s *ProductService) AdminUpdate(ctx context.Context, principal authz.Principal, id int, update AdminProductUpdate) (types.Product, error) {
	if err := authz.CanAdministrate(principal); err != nil {
		return types.Product{}, err
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Product{}, err
	}

	current.Name = update.Name
	if update.Category != "" {
		current.Category = update.Category
	}
	current.Price = update.Price
	current.Quantity = update.Quantity
	current.Location = update.Location
	return s.repo.Update(ctx, current)
}

// ReplaceImage uploads a new image for a product and deletes the old
// object. Admin only.
func (s *ProductService) ReplaceImage(ctx context.Context, principal authz.Principal, id int, image ImageUpload) (types.Product, error) {
	if err := authz.CanAdministrate(principal); err != nil {
		return types.Product{}, err
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Product{}, err
	}

	key, err := s.storeImage(ctx, &image)
	if err != nil {
		return types.Product{}, err
	}
	if current.Image != "" {
		_ = s.images.Delete(ctx, current.Image)
	}
	if err := s.repo.UpdateImage(ctx, id, key); err != nil {
		return types.Product{}, err
	}
	current.Image = key
	return current, nil
}

// Delete removes a product, its stored image object, and (via the
// cascading foreign key) its orders. Owner or admin only.
func (s *ProductService) Delete(ctx context.Context, principal authz.Principal, id int) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.CanMutateProduct(principal, current); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if current.Image != "" {
		_ = s.images.Delete(ctx, current.Image)
	}
	return nil
}

func (s *ProductService) storeImage(ctx context.Context, image *ImageUpload) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	key := fmt.Sprintf("products/%s%s", hex.EncodeToString(buf), path.Ext(image.Filename))
	if err := s.images.Put(ctx, key, image.Data, image.ContentType); err != nil {
		return "", err
	}
	return key, nil
}
