package service

import (
	"context"
	"time"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/store"
)

// AddExpense records an expense. A zero SpentAt means now.
func (s *Service) AddExpense(ctx context.Context, e model.ExpenseRecord) (model.ExpenseRecord, error) {
	e.Description = model.NormalizeText(e.Description)
	e.Category = model.NormalizeText(e.Category)
	if e.ID == "" {
		e.ID = s.ids.Generate()
	}
	if e.SpentAt.IsZero() {
		e.SpentAt = s.clock.Now()
	}
	if err := model.ValidateStruct("expense.add", e); err != nil {
		return model.ExpenseRecord{}, err
	}
	if !e.Amount.IsPositive() {
		return model.ExpenseRecord{}, model.Validation("expense.add", "amount must be positive",
			map[string]string{"amount": e.Amount.String()})
	}

	m, err := model.NewMutation(s.ids, model.CollectionExpenses, model.OpCreate, e)
	if err != nil {
		return model.ExpenseRecord{}, err
	}
	if _, err := s.exec.Execute(ctx, m, func(ctx context.Context) error {
		return store.Put(ctx, s.store, e)
	}); err != nil {
		return model.ExpenseRecord{}, err
	}
	return e, nil
}

// DeleteExpense removes an expense.
func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	return s.delete(ctx, model.CollectionExpenses, id)
}

// ListExpenses returns expenses in [from, to), newest first. Zero bounds are
// open.
func (s *Service) ListExpenses(ctx context.Context, from, to time.Time) ([]model.ExpenseRecord, error) {
	return store.List[model.ExpenseRecord](ctx, s.store, store.Filter{From: from, To: to, Descending: true})
}
