// Package seed populates a newly created store with a starter catalog.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/store"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the YAML document shape.
type Catalog struct {
	Items []Item `yaml:"items"`
}

// Item is one catalog entry. Amounts are strings so they parse exactly.
type Item struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	NameBn   string `yaml:"name_bn"`
	Category string `yaml:"category"`
	Price    string `yaml:"price"`
	Cost     string `yaml:"cost"`
	Stock    string `yaml:"stock"`
	Unit     string `yaml:"unit"`
	Image    string `yaml:"image"`
}

// Parse decodes a catalog document. Unknown keys are rejected.
func Parse(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, model.Validation("seed.parse", fmt.Sprintf("decode catalog: %v", err), nil)
	}
	return c, nil
}

// Default returns the embedded starter catalog.
func Default() (Catalog, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// FromFile reads a catalog from path, or the embedded one when path is empty.
func FromFile(path string) (Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open seed catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Records converts the catalog into validated items stamped with now.
func (c Catalog) Records(now time.Time) ([]model.CatalogItem, error) {
	items := make([]model.CatalogItem, 0, len(c.Items))
	seen := make(map[string]bool, len(c.Items))
	for i, it := range c.Items {
		rec, err := it.record(now)
		if err != nil {
			return nil, fmt.Errorf("seed item %d: %w", i, err)
		}
		if seen[rec.ID] {
			return nil, model.Validation("seed", fmt.Sprintf("duplicate id %q", rec.ID), nil)
		}
		seen[rec.ID] = true
		items = append(items, rec)
	}
	return items, nil
}

func (it Item) record(now time.Time) (model.CatalogItem, error) {
	amounts := map[string]decimal.Decimal{}
	for name, raw := range map[string]string{"price": it.Price, "cost": it.Cost, "stock": it.Stock} {
		if raw == "" {
			amounts[name] = decimal.Zero
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil || v.IsNegative() {
			return model.CatalogItem{}, model.Validation("seed", "invalid amount",
				map[string]string{name: raw})
		}
		amounts[name] = v
	}

	rec := model.CatalogItem{
		ID:        it.ID,
		Name:      model.NormalizeText(it.Name),
		NameBn:    model.NormalizeText(it.NameBn),
		Category:  model.NormalizeText(it.Category),
		Price:     amounts["price"],
		Cost:      amounts["cost"],
		Stock:     amounts["stock"],
		Unit:      model.NormalizeText(it.Unit),
		Image:     it.Image,
		UpdatedAt: now,
	}
	if rec.Unit == "" {
		rec.Unit = model.DefaultUnit
	}
	if err := model.ValidateStruct("seed", rec); err != nil {
		return model.CatalogItem{}, err
	}
	return rec, nil
}

// Load writes the catalog into s in one transaction and returns the number of
// items written. Seed items are local starting data and are not queued for
// sync.
func Load(ctx context.Context, s *store.Store, c Catalog, now time.Time) (int, error) {
	items, err := c.Records(now)
	if err != nil {
		return 0, err
	}
	err = s.Update(ctx, func(tx *store.Tx) error {
		for _, item := range items {
			if err := store.Put(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// IfFresh loads the catalog at path (or the embedded one) only when s was
// created by this Open. It returns the number of items written.
func IfFresh(ctx context.Context, s *store.Store, path string, now time.Time) (int, error) {
	if !s.Fresh() {
		return 0, nil
	}
	c, err := FromFile(path)
	if err != nil {
		return 0, err
	}
	return Load(ctx, s, c, now)
}
