package services

import (
	"context"

	"github.com/agrolink/apiserver/internal/authz"
	"github.com/agrolink/apiserver/types"
	"github.com/shopspring/decimal"
)

// CommissionRate is the fixed fraction of delivered sales retained as
// platform revenue.
var CommissionRate = decimal.RequireFromString("0.10")

// RevenueRepository exposes the aggregation query the report is built
// from.
type RevenueRepository interface {
	DeliveredSalesByFarmer(ctx context.Context) ([]types.FarmerRevenue, error)
}

// RevenueService produces the admin commission report. It is purely
// derived from delivered orders and mutates nothing; absent new
// delivered orders repeated calls yield identical figures.
type RevenueService struct {
	repo RevenueRepository
}

func NewRevenueService(repo RevenueRepository) *RevenueService {
	return &RevenueService{repo: repo}
}

// Report groups delivered order totals by product owner, applies the
// commission rate, and sums the report-level totals. Farmers with zero
// sales are excluded and every figure is rounded to 2 decimal places.
func (s *RevenueService) Report(ctx context.Context, principal authz.Principal) (types.RevenueReport, error) {
	if err := authz.CanAdministrate(principal); err != nil {
		return types.RevenueReport{}, err
	}

	sales, err := s.repo.DeliveredSalesByFarmer(ctx)
	if err != nil {
		return types.RevenueReport{}, err
	}

	report := types.RevenueReport{
		CommissionRate:  CommissionRate,
		TotalRevenue:    decimal.Zero,
		TotalCommission: decimal.Zero,
		Farmers:         make([]types.FarmerRevenue, 0, len(sales)),
	}

	for _, entry := range sales {
		totalSales := entry.TotalSales.Round(2)
		if totalSales.IsZero() {
			continue
		}
		entry.TotalSales = totalSales
		entry.Commission = totalSales.Mul(CommissionRate).Round(2)
		report.Farmers = append(report.Farmers, entry)

		report.TotalRevenue = report.TotalRevenue.Add(entry.TotalSales)
		report.TotalCommission = report.TotalCommission.Add(entry.Commission)
	}

	return report, nil
}
