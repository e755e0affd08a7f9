package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agrolink/apiserver/internal/store"
	"github.com/agrolink/apiserver/types"
	"github.com/shopspring/decimal"
)

// In-memory repositories mirroring the store contracts, including the
// atomic stock check on order creation.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int]types.User{}}
}

func (r *fakeUserRepo) seed(user types.User) types.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	users := make([]types.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, r.users[id])
	}
	return users, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	return r.seed(user), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   int
	products map[int]types.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{nextID: 1, products: map[int]types.Product{}}
}

func (r *fakeProductRepo) seed(product types.Product) types.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = product
	return product
}

func (r *fakeProductRepo) List(_ context.Context, ownerID *int) ([]types.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var products []types.Product
	for _, id := range ids {
		product := r.products[id]
		if ownerID != nil && product.UserID != *ownerID {
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

func (r *fakeProductRepo) Get(_ context.Context, id int) (types.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return types.Product{}, store.ErrNotFound
	}
	return product, nil
}

func (r *fakeProductRepo) Create(_ context.Context, product types.Product) (types.Product, error) {
	return r.seed(product), nil
}

func (r *fakeProductRepo) Update(_ context.Context, product types.Product) (types.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return types.Product{}, store.ErrNotFound
	}
	r.products[product.ID] = product
	return product, nil
}

func (r *fakeProductRepo) UpdateImage(_ context.Context, id int, image string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return store.ErrNotFound
	}
	product.Image = image
	r.products[id] = product
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

type fakeOrderRepo struct {
	mu       sync.Mutex
	nextID   int
	orders   map[int]types.Order
	products *fakeProductRepo
	users    *fakeUserRepo
}

func newFakeOrderRepo(products *fakeProductRepo, users *fakeUserRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		nextID:   1,
		orders:   map[int]types.Order{},
		products: products,
		users:    users,
	}
}

func (r *fakeOrderRepo) Create(_ context.Context, buyerID, productID, quantity int) (types.Order, error) {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	product, ok := r.products.products[productID]
	if !ok {
		return types.Order{}, store.ErrNotFound
	}
	if quantity > product.Quantity {
		return types.Order{}, store.ErrInsufficientStock
	}

	now := time.Now()
	order := types.Order{
		BuyerID:        buyerID,
		ProductID:      productID,
		Quantity:       quantity,
		TotalPrice:     product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Status:         types.OrderPending,
		DeliveryStatus: types.DeliveryPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	r.mu.Lock()
	order.ID = r.nextID
	r.nextID++
	r.orders[order.ID] = order
	r.mu.Unlock()

	product.Quantity -= quantity
	r.products.products[productID] = product
	return order, nil
}

func (r *fakeOrderRepo) Get(_ context.Context, id int) (types.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return types.Order{}, store.ErrNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) sorted() []types.Order {
	ids := make([]int, 0, len(r.orders))
	for id := range r.orders {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	orders := make([]types.Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, r.orders[id])
	}
	return orders
}

func (r *fakeOrderRepo) ListAll(_ context.Context) ([]types.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(), nil
}

func (r *fakeOrderRepo) ListByBuyer(_ context.Context, buyerID int) ([]types.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []types.Order
	for _, order := range r.sorted() {
		if order.BuyerID == buyerID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) ListByTransporter(_ context.Context, transporterID int) ([]types.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []types.Order
	for _, order := range r.sorted() {
		if order.TransporterID != nil && *order.TransporterID == transporterID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) ListSummaries(ctx context.Context, farmerID *int) ([]types.OrderSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var summaries []types.OrderSummary
	for _, order := range r.sorted() {
		product, err := r.products.Get(ctx, order.ProductID)
		if err != nil {
			continue
		}
		if farmerID != nil && product.UserID != *farmerID {
			continue
		}
		buyer, _ := r.users.GetByID(ctx, order.BuyerID)
		summaries = append(summaries, types.OrderSummary{
			ID:          order.ID,
			ProductName: product.Name,
			BuyerName:   buyer.Name,
			Quantity:    order.Quantity,
			TotalPrice:  order.TotalPrice,
			Status:      order.Status,
			CreatedAt:   order.CreatedAt.Format("2006-01-02"),
		})
	}
	return summaries, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order types.Order) (types.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return types.Order{}, store.ErrNotFound
	}
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = order
	return order, nil
}

func (r *fakeOrderRepo) DeliveredSalesByFarmer(ctx context.Context) ([]types.FarmerRevenue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := map[int]decimal.Decimal{}
	for _, order := range r.orders {
		if order.Status != types.OrderDelivered {
			continue
		}
		product, err := r.products.Get(ctx, order.ProductID)
		if err != nil {
			continue
		}
		owner, err := r.users.GetByID(ctx, product.UserID)
		if err != nil || owner.Role != types.RoleFarmer {
			continue
		}
		current, ok := totals[owner.ID]
		if !ok {
			current = decimal.Zero
		}
		totals[owner.ID] = current.Add(order.TotalPrice)
	}

	ids := make([]int, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var sales []types.FarmerRevenue
	for _, id := range ids {
		owner, _ := r.users.GetByID(ctx, id)
		sales = append(sales, types.FarmerRevenue{
			ID:         owner.ID,
			Name:       owner.Name,
			Email:      owner.Email,
			TotalSales: totals[id],
		})
	}
	return sales, nil
}

type fakeImageStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: map[string][]byte{}}
}

func (s *fakeImageStore) Put(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeImageStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}
