package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseRecord is a shop expense, independent of sales.
type ExpenseRecord struct {
	ID          string          `json:"id" validate:"required,max=64"`
	Description string          `json:"description" validate:"required,max=256"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" validate:"required,max=64"`
	SpentAt     time.Time       `json:"spent_at"`
}

func (ExpenseRecord) Collection() Collection { return CollectionExpenses }

func (e ExpenseRecord) Key() string { return e.ID }
