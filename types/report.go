package types

import "github.com/shopspring/decimal"

// FarmerRevenue is one farmer's line in the revenue report.
type FarmerRevenue struct {
	// ID is the farmer's user identifier.
	ID int `json:"id"`

	// Name is the farmer's display name.
	Name string `json:"name"`

	// Email is the farmer's email address.
	Email string `json:"email"`

	// TotalSales is the sum of total_price over the farmer's delivered
	// orders, rounded to 2 decimal places.
	TotalSales decimal.Decimal `json:"total_sales"`

	// Commission is TotalSales times the platform commission rate,
	// rounded to 2 decimal places.
	Commission decimal.Decimal `json:"commission"`
}

// RevenueReport is the admin-facing commission report. It is purely
// derived from delivered orders; farmers with zero sales are excluded.
type RevenueReport struct {
	// CommissionRate is the fixed fraction of sales retained as
	// platform revenue.
	CommissionRate decimal.Decimal `json:"commission_rate"`

	// TotalRevenue is the sum of all included farmers' TotalSales.
	TotalRevenue decimal.Decimal `json:"total_revenue"`

	// TotalCommission is the sum of all included farmers' Commission.
	TotalCommission decimal.Decimal `json:"total_commission"`

	// Farmers lists the per-farmer figures.
	Farmers []FarmerRevenue `json:"farmers"`
}
