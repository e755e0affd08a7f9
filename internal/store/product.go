package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/agrolink/apiserver/types"
)

// ProductRepository handles persistence for products.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, user_id, name, category, price, quantity, unit, location, description, image, created_at, updated_at`

// List returns products newest first. When ownerID is non-nil only that
// owner's products are returned (the farmer visibility filter).
func (r *ProductRepository) List(ctx context.Context, ownerID *int) ([]types.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC, id DESC`
	args := []any{}
	if ownerID != nil {
		query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
		args = append(args, *ownerID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []types.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Get(ctx context.Context, id int) (types.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrNotFound
		}
		return types.Product{}, err
	}
	return product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product types.Product) (types.Product, error) {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	const query = `
		INSERT INTO products (user_id, name, category, price, quantity, unit, location, description, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		product.UserID,
		product.Name,
		product.Category,
		product.Price,
		product.Quantity,
		product.Unit,
		product.Location,
		product.Description,
		product.Image,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID); err != nil {
		return types.Product{}, err
	}
	return product, nil
}

func (r *ProductRepository) Update(ctx context.Context, product types.Product) (types.Product, error) {
	product.UpdatedAt = time.Now()

	const query = `
		UPDATE products
		SET name = $1,
			category = $2,
			price = $3,
			quantity = $4,
			unit = $5,
			location = $6,
			description = $7,
			image = $8,
			updated_at = $9
		WHERE id = $10`
	result, err := r.db.ExecContext(
		ctx,
		query,
		product.Name,
		product.Category,
		product.Price,
		product.Quantity,
		product.Unit,
		product.Location,
		product.Description,
		product.Image,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return types.Product{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Product{}, err
	}
	if affected == 0 {
		return types.Product{}, ErrNotFound
	}
	return product, nil
}

// UpdateImage replaces the stored image key only.
func (r *ProductRepository) UpdateImage(ctx context.Context, id int, image string) error {
	const query = `
		UPDATE products
		SET image = $1, updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, image, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product. Orders referencing it are removed by the
// ON DELETE CASCADE foreign key.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM products WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (types.Product, error) {
	var product types.Product
	err := row.Scan(
		&product.ID,
		&product.UserID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Quantity,
		&product.Unit,
		&product.Location,
		&product.Description,
		&product.Image,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return types.Product{}, err
	}
	return product, nil
}
