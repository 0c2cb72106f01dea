// Package checkout turns a cart into a sale and decrements catalog stock.
//
// The sale insert and every stock decrement run inside one store transaction,
// so a crash can never leave a sale recorded without its stock change. The
// resulting mutations (one sale create, one update per item) are then handed
// to the mutation executor for delivery or queuing.
//
// Stock is clamped at zero. Checkout does not re-check availability: a cart
// that asks for more than is on hand still sells, and the item ends at zero.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/mutation"
	"github.com/iir20/amar-dokan-pos-system/internal/store"
)

// CartLine is one requested item.
type CartLine struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`

	// Price overrides the catalog price when set.
	Price *decimal.Decimal `json:"price,omitempty"`
}

// Request is a checkout request.
type Request struct {
	Lines         []CartLine          `json:"lines"`
	CustomerName  string              `json:"customer_name,omitempty"`
	CustomerPhone string              `json:"customer_phone,omitempty"`
	PaymentMethod model.PaymentMethod `json:"payment_method,omitempty"`

	// Paid is the amount tendered. Nil means the sale is paid in full.
	Paid *decimal.Decimal `json:"paid,omitempty"`
}

// Totals is the arithmetic of a sale.
type Totals struct {
	Total  decimal.Decimal `json:"total"`
	Profit decimal.Decimal `json:"profit"`
	Paid   decimal.Decimal `json:"paid"`
	Due    decimal.Decimal `json:"due"`
	Change decimal.Decimal `json:"change"`
}

// Compute derives totals from line items. A nil paid means paid in full; a
// negative paid counts as zero. Due and Change are never both positive.
func Compute(lines []model.LineItem, paid *decimal.Decimal) Totals {
	var t Totals
	for _, l := range lines {
		t.Total = t.Total.Add(l.Amount())
		t.Profit = t.Profit.Add(l.Profit())
	}
	if paid == nil {
		t.Paid = t.Total
	} else {
		t.Paid = model.ClampZero(*paid)
	}
	t.Due = model.ClampZero(t.Total.Sub(t.Paid))
	t.Change = model.ClampZero(t.Paid.Sub(t.Total))
	return t
}

// Receipt is the result of a successful checkout.
type Receipt struct {
	Sale     model.SaleRecord   `json:"sale"`
	Change   decimal.Decimal    `json:"change"`
	Outcomes []mutation.Outcome `json:"outcomes"`
}

// Service performs checkouts.
type Service struct {
	store  *store.Store
	exec   *mutation.Executor
	locker *mutation.Locker
	ids    model.IDGenerator
	clock  model.Clock
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator sets the generator for sale ids and idempotency keys.
func WithIDGenerator(g model.IDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

// WithClock sets the clock for sale timestamps.
func WithClock(c model.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a checkout service. locker must be shared with every
// other writer of catalog items.
func NewService(st *store.Store, exec *mutation.Executor, locker *mutation.Locker, opts ...Option) *Service {
	s := &Service{
		store:  st,
		exec:   exec,
		locker: locker,
		ids:    model.UUIDv7Generator{},
		clock:  model.SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout validates req, records the sale, decrements stock, and syncs the
// changes. On any error nothing is persisted.
func (s *Service) Checkout(ctx context.Context, req Request) (Receipt, error) {
	if err := validate(&req); err != nil {
		return Receipt{}, err
	}

	keys := make([]string, 0, len(req.Lines))
	for _, l := range req.Lines {
		keys = append(keys, mutation.Key(string(model.CollectionCatalog), l.ItemID))
	}
	unlock := s.locker.Lock(keys...)
	defer unlock()

	var receipt Receipt
	outcomes, err := s.exec.ExecuteAll(ctx, func(ctx context.Context) ([]model.Mutation, error) {
		var mutations []model.Mutation
		err := s.store.Update(ctx, func(tx *store.Tx) error {
			sale, items, err := s.build(ctx, tx, req)
			if err != nil {
				return err
			}
			if err := store.Put(ctx, tx, sale); err != nil {
				return err
			}
			for _, item := range items {
				if err := store.Put(ctx, tx, item); err != nil {
					return err
				}
			}

			mutations, err = s.mutations(sale, items)
			if err != nil {
				return err
			}
			receipt.Sale = sale
			receipt.Change = model.ClampZero(sale.Paid.Sub(sale.Total))
			return nil
		})
		return mutations, err
	})
	if err != nil {
		return Receipt{}, err
	}

	receipt.Outcomes = outcomes
	s.logger.Info("checkout completed",
		"sale_id", receipt.Sale.ID,
		"lines", len(receipt.Sale.Items),
		"total", receipt.Sale.Total.String(),
		"due", receipt.Sale.Due.String())
	return receipt, nil
}

// build reads the cart's items inside tx and returns the sale plus the
// decremented items, in first-appearance order.
func (s *Service) build(ctx context.Context, tx *store.Tx, req Request) (model.SaleRecord, []model.CatalogItem, error) {
	now := s.clock.Now()
	items := make(map[string]model.CatalogItem, len(req.Lines))
	var order []string
	lines := make([]model.LineItem, 0, len(req.Lines))

	for _, l := range req.Lines {
		item, ok := items[l.ItemID]
		if !ok {
			var err error
			item, err = store.Get[model.CatalogItem](ctx, tx, l.ItemID)
			if err != nil {
				return model.SaleRecord{}, nil, err
			}
			order = append(order, l.ItemID)
		}

		price := item.Price
		if l.Price != nil {
			price = *l.Price
		}
		unit := item.Unit
		if unit == "" {
			unit = model.DefaultUnit
		}
		lines = append(lines, model.LineItem{
			ItemID:   item.ID,
			Name:     item.Name,
			NameBn:   item.NameBn,
			Unit:     unit,
			Quantity: l.Quantity,
			Price:    price,
			Cost:     item.Cost,
		})

		item = item.DecrementStock(l.Quantity)
		item.UpdatedAt = now
		items[l.ItemID] = item
	}

	totals := Compute(lines, req.Paid)
	if totals.Due.IsPositive() && req.CustomerName == "" {
		return model.SaleRecord{}, nil, model.Validation("checkout",
			"customer name is required when part of the total is due",
			map[string]string{"customer_name": "required", "due": totals.Due.String()})
	}

	sale := model.SaleRecord{
		ID:            s.ids.Generate(),
		SoldAt:        now,
		Items:         lines,
		Total:         totals.Total,
		Profit:        totals.Profit,
		Paid:          totals.Paid,
		Due:           totals.Due,
		PaymentMethod: req.PaymentMethod,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	}

	updated := make([]model.CatalogItem, 0, len(order))
	for _, id := range order {
		updated = append(updated, items[id])
	}
	return sale, updated, nil
}

// mutations describes a sale as one create plus a full-record update per
// item, so replaying any of them is idempotent.
func (s *Service) mutations(sale model.SaleRecord, items []model.CatalogItem) ([]model.Mutation, error) {
	out := make([]model.Mutation, 0, len(items)+1)
	m, err := model.NewMutation(s.ids, model.CollectionSales, model.OpCreate, sale)
	if err != nil {
		return nil, err
	}
	out = append(out, m)
	for _, item := range items {
		m, err := model.NewMutation(s.ids, model.CollectionCatalog, model.OpUpdate, item)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// validate normalizes req in place and rejects malformed input.
func validate(req *Request) error {
	if len(req.Lines) == 0 {
		return model.Validation("checkout", "cart is empty", nil)
	}

	fields := map[string]string{}
	for i, l := range req.Lines {
		if strings.TrimSpace(l.ItemID) == "" {
			fields[fmt.Sprintf("lines[%d].item_id", i)] = "required"
		}
		if !l.Quantity.IsPositive() {
			fields[fmt.Sprintf("lines[%d].quantity", i)] = "must be positive"
		}
		if l.Price != nil && l.Price.IsNegative() {
			fields[fmt.Sprintf("lines[%d].price", i)] = "must not be negative"
		}
	}
	if len(fields) > 0 {
		return model.Validation("checkout", "invalid cart", fields)
	}

	switch req.PaymentMethod {
	case "":
		req.PaymentMethod = model.PaymentCash
	case model.PaymentCash, model.PaymentDigital:
	default:
		return model.Validation("checkout", "unknown payment method",
			map[string]string{"payment_method": string(req.PaymentMethod)})
	}

	req.CustomerName = model.NormalizeText(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	return nil
}
