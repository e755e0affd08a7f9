package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/agrolink/apiserver/types"
	"github.com/shopspring/decimal"
)

// OrderRepository handles persistence for orders.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, buyer_id, product_id, transporter_id, quantity, total_price, status, delivery_status, delivery_lat, delivery_lng, created_at, updated_at`

// Create places an order inside a single transaction. The product row
// is locked with SELECT ... FOR UPDATE so the stock check, the price
// snapshot, and the decrement are atomic: two concurrent orders cannot
// both pass the check and oversell the product.
func (r *OrderRepository) Create(ctx context.Context, buyerID, productID, quantity int) (types.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Order{}, err
	}
	defer tx.Rollback()

	const lockQuery = `
		SELECT price, quantity
		FROM products
		WHERE id = $1
		FOR UPDATE`
	var price decimal.Decimal
	var stock int
	if err := tx.QueryRowContext(ctx, lockQuery, productID).Scan(&price, &stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Order{}, ErrNotFound
		}
		return types.Order{}, err
	}

	if quantity > stock {
		return types.Order{}, ErrInsufficientStock
	}

	now := time.Now()
	order := types.Order{
		BuyerID:        buyerID,
		ProductID:      productID,
		Quantity:       quantity,
		TotalPrice:     price.Mul(decimal.NewFromInt(int64(quantity))),
		Status:         types.OrderPending,
		DeliveryStatus: types.DeliveryPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	const insertQuery = `
		INSERT INTO orders (buyer_id, product_id, quantity, total_price, status, delivery_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		insertQuery,
		order.BuyerID,
		order.ProductID,
		order.Quantity,
		order.TotalPrice,
		order.Status,
		order.DeliveryStatus,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.ID); err != nil {
		return types.Order{}, err
	}

	const decrementQuery = `
		UPDATE products
		SET quantity = quantity - $1, updated_at = $2
		WHERE id = $3`
	if _, err := tx.ExecContext(ctx, decrementQuery, quantity, now, productID); err != nil {
		return types.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) Get(ctx context.Context, id int) (types.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Order{}, ErrNotFound
		}
		return types.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]types.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query)
}

func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID int) ([]types.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, buyerID)
}

func (r *OrderRepository) ListByTransporter(ctx context.Context, transporterID int) ([]types.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE transporter_id = $1
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, transporterID)
}

// ListSummaries returns the joined order rows shown to admins and
// farmers. When farmerID is non-nil only orders against that farmer's
// products are included.
func (r *OrderRepository) ListSummaries(ctx context.Context, farmerID *int) ([]types.OrderSummary, error) {
	query := `
		SELECT o.id, p.name, u.name, o.quantity, o.total_price, o.status, o.created_at
		FROM orders o
		JOIN products p ON p.id = o.product_id
		JOIN users u ON u.id = o.buyer_id
		ORDER BY o.created_at DESC, o.id DESC`
	args := []any{}
	if farmerID != nil {
		query = `
		SELECT o.id, p.name, u.name, o.quantity, o.total_price, o.status, o.created_at
		FROM orders o
		JOIN products p ON p.id = o.product_id
		JOIN users u ON u.id = o.buyer_id
		WHERE p.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC`
		args = append(args, *farmerID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []types.OrderSummary
	for rows.Next() {
		var summary types.OrderSummary
		var createdAt time.Time
		if err := rows.Scan(
			&summary.ID,
			&summary.ProductName,
			&summary.BuyerName,
			&summary.Quantity,
			&summary.TotalPrice,
			&summary.Status,
			&createdAt,
		); err != nil {
			return nil, err
		}
		summary.CreatedAt = createdAt.Format("2006-01-02")
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// Update persists the mutable lifecycle fields of an order. Status
// transition rules are enforced by the service layer before calling.
func (r *OrderRepository) Update(ctx context.Context, order types.Order) (types.Order, error) {
	order.UpdatedAt = time.Now()

	const query = `
		UPDATE orders
		SET transporter_id = $1,
			status = $2,
			delivery_status = $3,
			delivery_lat = $4,
			delivery_lng = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		order.TransporterID,
		order.Status,
		order.DeliveryStatus,
		order.DeliveryLat,
		order.DeliveryLng,
		order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		return types.Order{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Order{}, err
	}
	if affected == 0 {
		return types.Order{}, ErrNotFound
	}
	return order, nil
}

// DeliveredSalesByFarmer aggregates delivered order totals per product
// owner. Farmers with no delivered sales are excluded by the join.
func (r *OrderRepository) DeliveredSalesByFarmer(ctx context.Context) ([]types.FarmerRevenue, error) {
	const query = `
		SELECT u.id, u.name, u.email, SUM(o.total_price)
		FROM orders o
		JOIN products p ON p.id = o.product_id
		JOIN users u ON u.id = p.user_id
		WHERE o.status = 'delivered' AND u.role = 'farmer'
		GROUP BY u.id, u.name, u.email
		ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []types.FarmerRevenue
	for rows.Next() {
		var entry types.FarmerRevenue
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Email, &entry.TotalSales); err != nil {
			return nil, err
		}
		sales = append(sales, entry)
	}
	return sales, rows.Err()
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]types.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []types.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row rowScanner) (types.Order, error) {
	var order types.Order
	err := row.Scan(
		&order.ID,
		&order.BuyerID,
		&order.ProductID,
		&order.TransporterID,
		&order.Quantity,
		&order.TotalPrice,
		&order.Status,
		&order.DeliveryStatus,
		&order.DeliveryLat,
		&order.DeliveryLng,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return types.Order{}, err
	}
	return order, nil
}
