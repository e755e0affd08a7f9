package services

import (
	"context"
	"testing"

	"github.com/agrolink/apiserver/internal/authz"
	"github.com/agrolink/apiserver/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevenueReportCountsOnlyDeliveredOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	revenue := NewRevenueService(f.orders)

	delivered := f.placeOrder(t, 4) // 400
	f.approve(t, delivered.ID)
	_, err := f.service.MarkDelivered(ctx, f.farmer, delivered.ID)
	require.NoError(t, err)

	// A pending order contributes nothing.
	f.placeOrder(t, 2)

	report, err := revenue.Report(ctx, f.admin)
	require.NoError(t, err)
	assert.True(t, report.CommissionRate.Equal(decimal.RequireFromString("0.10")))
	require.Len(t, report.Farmers, 1)

	farmer := report.Farmers[0]
	assert.Equal(t, "Fatema", farmer.Name)
	assert.True(t, farmer.TotalSales.Equal(decimal.NewFromInt(400)), "total_sales = %s", farmer.TotalSales)
	assert.True(t, farmer.Commission.Equal(decimal.NewFromInt(40)), "commission = %s", farmer.Commission)
	assert.True(t, report.TotalRevenue.Equal(decimal.NewFromInt(400)))
	assert.True(t, report.TotalCommission.Equal(decimal.NewFromInt(40)))
}

func TestRevenueReportExcludesFarmersWithoutSales(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	revenue := NewRevenueService(f.orders)

	// A second farmer who never sells anything.
	f.users.seed(types.User{Name: "Nadia", Email: "nadia@agrolink.test", Role: types.RoleFarmer})

	order := f.placeOrder(t, 1)
	f.approve(t, order.ID)
	_, err := f.service.MarkDelivered(ctx, f.admin, order.ID)
	require.NoError(t, err)

	report, err := revenue.Report(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, report.Farmers, 1)
	assert.Equal(t, "Fatema", report.Farmers[0].Name)
}

func TestRevenueReportRounding(t *testing.T) {
	repo := &staticRevenueRepo{sales: []types.FarmerRevenue{
		{ID: 1, Name: "Fatema", Email: "fatema@agrolink.test", TotalSales: decimal.RequireFromString("123.456")},
		{ID: 2, Name: "Nadia", Email: "nadia@agrolink.test", TotalSales: decimal.RequireFromString("0.004")},
	}}
	revenue := NewRevenueService(repo)

	report, err := revenue.Report(context.Background(), authz.Principal{ID: 99, Role: types.RoleAdmin})
	require.NoError(t, err)

	// 0.004 rounds to zero and drops out of the report entirely.
	require.Len(t, report.Farmers, 1)
	assert.True(t, report.Farmers[0].TotalSales.Equal(decimal.RequireFromString("123.46")))
	assert.True(t, report.Farmers[0].Commission.Equal(decimal.RequireFromString("12.35")))
	assert.True(t, report.TotalRevenue.Equal(decimal.RequireFromString("123.46")))
	assert.True(t, report.TotalCommission.Equal(decimal.RequireFromString("12.35")))
}

func TestRevenueReportIsAdminOnly(t *testing.T) {
	f := newOrderFixture(t)
	revenue := NewRevenueService(f.orders)

	for _, p := range []authz.Principal{f.farmer, f.buyer, f.transporter} {
		_, err := revenue.Report(context.Background(), p)
		require.ErrorIs(t, err, authz.ErrForbidden, "role %s", p.Role)
	}
}

func TestRevenueReportIsRepeatable(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	revenue := NewRevenueService(f.orders)

	order := f.placeOrder(t, 3)
	f.approve(t, order.ID)
	_, err := f.service.MarkDelivered(ctx, f.admin, order.ID)
	require.NoError(t, err)

	first, err := revenue.Report(ctx, f.admin)
	require.NoError(t, err)
	second, err := revenue.Report(ctx, f.admin)
	require.NoError(t, err)

	assert.True(t, first.TotalRevenue.Equal(second.TotalRevenue))
	assert.True(t, first.TotalCommission.Equal(second.TotalCommission))
	assert.Equal(t, len(first.Farmers), len(second.Farmers))
}

type staticRevenueRepo struct {
	sales []types.FarmerRevenue
}

func (r *staticRevenueRepo) DeliveredSalesByFarmer(_ context.Context) ([]types.FarmerRevenue, error) {
	return r.sales, nil
}
