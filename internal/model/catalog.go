package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUnit is used when a catalog item has no unit of measure.
const DefaultUnit = "pcs"

// CatalogItem is a sellable product with price, cost and stock.
type CatalogItem struct {
	ID        string          `json:"id" validate:"required,max=64"`
	Name      string          `json:"name" validate:"required,max=120"`
	NameBn    string          `json:"name_bn,omitempty" validate:"max=120"`
	Category  string          `json:"category" validate:"required,max=64"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
	Stock     decimal.Decimal `json:"stock"`
	Unit      string          `json:"unit" validate:"required,max=16"`
	Image     string          `json:"image,omitempty" validate:"omitempty,max=2048"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (CatalogItem) Collection() Collection { return CollectionCatalog }

func (c CatalogItem) Key() string { return c.ID }

// DecrementStock returns a copy with stock reduced by qty, clamped at zero.
func (c CatalogItem) DecrementStock(qty decimal.Decimal) CatalogItem {
	c.Stock = ClampZero(c.Stock.Sub(qty))
	return c
}

// ClampZero returns d, or zero when d is negative.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
