package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod records how a sale was settled.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentDigital PaymentMethod = "digital"
)

// LineItem is an immutable snapshot of a catalog item at the moment of sale.
type LineItem struct {
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	NameBn   string          `json:"name_bn,omitempty"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
}

// Amount is price × quantity.
func (l LineItem) Amount() decimal.Decimal {
	return l.Price.Mul(l.Quantity)
}

// Profit is (price − cost) × quantity.
func (l LineItem) Profit() decimal.Decimal {
	return l.Price.Sub(l.Cost).Mul(l.Quantity)
}

// SaleRecord is a completed checkout. It is written once and never updated.
type SaleRecord struct {
	ID            string          `json:"id"`
	SoldAt        time.Time       `json:"sold_at"`
	Items         []LineItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Profit        decimal.Decimal `json:"profit"`
	Paid          decimal.Decimal `json:"paid"`
	Due           decimal.Decimal `json:"due"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
}

func (SaleRecord) Collection() Collection { return CollectionSales }

func (s SaleRecord) Key() string { return s.ID }

// Change is the amount returned to the customer: max(0, paid − total).
func (s SaleRecord) Change() decimal.Decimal {
	return ClampZero(s.Paid.Sub(s.Total))
}

// HasDue reports whether part of the total is unpaid.
func (s SaleRecord) HasDue() bool {
	return s.Due.IsPositive()
}
