package service

import (
	"context"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/mutation"
	"github.com/iir20/amar-dokan-pos-system/internal/store"
)

// SaveItem creates an item (empty ID) or replaces an existing one. Names are
// NFC-normalized and UpdatedAt is stamped.
func (s *Service) SaveItem(ctx context.Context, item model.CatalogItem) (model.CatalogItem, error) {
	item.Name = model.NormalizeText(item.Name)
	item.NameBn = model.NormalizeText(item.NameBn)
	item.Category = model.NormalizeText(item.Category)
	if item.Unit = model.NormalizeText(item.Unit); item.Unit == "" {
		item.Unit = model.DefaultUnit
	}

	op := model.OpUpdate
	if item.ID == "" {
		item.ID = s.ids.Generate()
		op = model.OpCreate
	}
	if err := model.ValidateStruct("item.save", item); err != nil {
		return model.CatalogItem{}, err
	}
	if err := checkAmounts("item.save", map[string]bool{
		"price": item.Price.IsNegative(),
		"cost":  item.Cost.IsNegative(),
		"stock": item.Stock.IsNegative(),
	}); err != nil {
		return model.CatalogItem{}, err
	}

	unlock := s.locker.Lock(mutation.Key(string(model.CollectionCatalog), item.ID))
	defer unlock()

	if op == model.OpUpdate {
		_, err := store.Get[model.CatalogItem](ctx, s.store, item.ID)
		switch {
		case model.IsNotFound(err):
			op = model.OpCreate
		case err != nil:
			return model.CatalogItem{}, err
		}
	}
	item.UpdatedAt = s.clock.Now()

	m, err := model.NewMutation(s.ids, model.CollectionCatalog, op, item)
	if err != nil {
		return model.CatalogItem{}, err
	}
	if _, err := s.exec.Execute(ctx, m, func(ctx context.Context) error {
		return store.Put(ctx, s.store, item)
	}); err != nil {
		return model.CatalogItem{}, err
	}
	return item, nil
}

// DeleteItem removes an item. Past sales keep their snapshots.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	unlock := s.locker.Lock(mutation.Key(string(model.CollectionCatalog), id))
	defer unlock()
	return s.delete(ctx, model.CollectionCatalog, id)
}

// GetItem returns one item.
func (s *Service) GetItem(ctx context.Context, id string) (model.CatalogItem, error) {
	return store.Get[model.CatalogItem](ctx, s.store, id)
}

// ListItems returns items sorted by name, optionally restricted to category.
func (s *Service) ListItems(ctx context.Context, category string) ([]model.CatalogItem, error) {
	return store.List[model.CatalogItem](ctx, s.store, store.Filter{Category: category})
}

// SearchItems returns items whose English name, Bangla name or category
// contains query, ignoring case and Unicode normalization form.
func (s *Service) SearchItems(ctx context.Context, query string) ([]model.CatalogItem, error) {
	all, err := store.List[model.CatalogItem](ctx, s.store, store.Filter{})
	if err != nil {
		return nil, err
	}
	matches := []model.CatalogItem{}
	for _, item := range all {
		if model.MatchesQuery(query, item.Name, item.NameBn, item.Category) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

// LowStock returns items with stock below the threshold, lowest first.
func (s *Service) LowStock(ctx context.Context) ([]model.CatalogItem, error) {
	return store.List[model.CatalogItem](ctx, s.store, store.Filter{StockBelow: &s.threshold, Sort: "stock"})
}

func (s *Service) delete(ctx context.Context, c model.Collection, id string) error {
	m, err := model.NewMutation(s.ids, c, model.OpDelete, model.DeletePayload{ID: id})
	if err != nil {
		return err
	}
	_, err = s.exec.Execute(ctx, m, func(ctx context.Context) error {
		return store.Delete(ctx, s.store, c, id)
	})
	return err
}

// checkAmounts reports every field flagged true as a VALIDATION error.
func checkAmounts(op string, negative map[string]bool) error {
	fields := map[string]string{}
	for name, bad := range negative {
		if bad {
			fields[name] = "must not be negative"
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return model.Validation(op, "amounts must not be negative", fields)
}
