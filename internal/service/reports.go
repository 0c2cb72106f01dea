package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/store"
)

// Summary aggregates sales and expenses over a period.
type Summary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	SaleCount     int             `json:"sale_count"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalDue      decimal.Decimal `json:"total_due"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`

	// NetProfit is GrossProfit minus TotalExpenses.
	NetProfit decimal.Decimal `json:"net_profit"`
}

// DayTotal is one point of the daily sales trend.
type DayTotal struct {
	Date   string          `json:"date"`
	Sales  decimal.Decimal `json:"sales"`
	Profit decimal.Decimal `json:"profit"`
}

// Dashboard is the all-time overview.
type Dashboard struct {
	Summary
	LowStockCount int                 `json:"low_stock_count"`
	LowStock      []model.CatalogItem `json:"low_stock"`

	// Trend holds the last TrendDays days that had sales, oldest first.
	Trend []DayTotal `json:"trend"`
}

// TrendDays caps Dashboard.Trend.
const TrendDays = 7

// Dashboard computes the all-time overview.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	sum, sales, err := s.summarize(ctx, time.Time{}, time.Time{})
	if err != nil {
		return Dashboard{}, err
	}
	low, err := s.LowStock(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Summary:       sum,
		LowStockCount: len(low),
		LowStock:      low,
		Trend:         trend(sales, TrendDays),
	}, nil
}

// Monthly summarizes one calendar month in UTC.
func (s *Service) Monthly(ctx context.Context, year int, month time.Month) (Summary, error) {
	if month < time.January || month > time.December {
		return Summary{}, model.Validation("report.monthly", "month must be 1-12",
			map[string]string{"month": month.String()})
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	sum, _, err := s.summarize(ctx, from, from.AddDate(0, 1, 0))
	return sum, err
}

// CurrentMonth summarizes the month the clock is in.
func (s *Service) CurrentMonth(ctx context.Context) (Summary, error) {
	now := s.clock.Now().UTC()
	return s.Monthly(ctx, now.Year(), now.Month())
}

func (s *Service) summarize(ctx context.Context, from, to time.Time) (Summary, []model.SaleRecord, error) {
	window := store.Filter{From: from, To: to}
	sales, err := store.List[model.SaleRecord](ctx, s.store, window)
	if err != nil {
		return Summary{}, nil, err
	}
	expenses, err := store.List[model.ExpenseRecord](ctx, s.store, window)
	if err != nil {
		return Summary{}, nil, err
	}

	sum := Summary{From: from, To: to, SaleCount: len(sales)}
	for _, sale := range sales {
		sum.TotalSales = sum.TotalSales.Add(sale.Total)
		sum.TotalDue = sum.TotalDue.Add(sale.Due)
		sum.GrossProfit = sum.GrossProfit.Add(sale.Profit)
	}
	for _, e := range expenses {
		sum.TotalExpenses = sum.TotalExpenses.Add(e.Amount)
	}
	sum.NetProfit = sum.GrossProfit.Sub(sum.TotalExpenses)
	return sum, sales, nil
}

// trend groups sales (sorted oldest first) by UTC day and keeps the last n
// days.
func trend(sales []model.SaleRecord, n int) []DayTotal {
	days := []DayTotal{}
	for _, sale := range sales {
		date := sale.SoldAt.UTC().Format(time.DateOnly)
		if len(days) == 0 || days[len(days)-1].Date != date {
			days = append(days, DayTotal{Date: date})
		}
		last := &days[len(days)-1]
		last.Sales = last.Sales.Add(sale.Total)
		last.Profit = last.Profit.Add(sale.Profit)
	}
	if len(days) > n {
		days = days[len(days)-n:]
	}
	return days
}
