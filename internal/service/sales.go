package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/store"
)

// GetSale returns one sale.
func (s *Service) GetSale(ctx context.Context, id string) (model.SaleRecord, error) {
	return store.Get[model.SaleRecord](ctx, s.store, id)
}

// SaleQuery narrows ListSales. Zero fields are ignored.
type SaleQuery struct {
	From, To time.Time

	// CustomerPhone matches the phone recorded at checkout exactly.
	CustomerPhone string

	Limit int
}

// ListSales returns sales in [From, To), newest first, at most Limit.
func (s *Service) ListSales(ctx context.Context, q SaleQuery) ([]model.SaleRecord, error) {
	return store.List[model.SaleRecord](ctx, s.store, store.Filter{
		From:          q.From,
		To:            q.To,
		CustomerPhone: model.NormalizeText(q.CustomerPhone),
		Descending:    true,
		Limit:         q.Limit,
	})
}

// DueSummary lists sales with an outstanding balance.
type DueSummary struct {
	Sales    []model.SaleRecord `json:"sales"`
	TotalDue decimal.Decimal    `json:"total_due"`
}

// DueList returns unpaid sales newest first with the total owed. A non-empty
// phone restricts it to that customer.
func (s *Service) DueList(ctx context.Context, phone string) (DueSummary, error) {
	sales, err := store.List[model.SaleRecord](ctx, s.store, store.Filter{
		DueOnly:       true,
		CustomerPhone: model.NormalizeText(phone),
		Descending:    true,
	})
	if err != nil {
		return DueSummary{}, err
	}
	summary := DueSummary{Sales: sales}
	for _, sale := range sales {
		summary.TotalDue = summary.TotalDue.Add(sale.Due)
	}
	return summary, nil
}
