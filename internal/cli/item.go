package cli

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

// NewItemCommand creates the item command group.
func NewItemCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage the product catalog",
	}
	cmd.AddCommand(newItemSaveCommand(rootOpts))
	cmd.AddCommand(newItemListCommand(rootOpts))
	cmd.AddCommand(newItemSearchCommand(rootOpts))
	cmd.AddCommand(newItemDeleteCommand(rootOpts))
	cmd.AddCommand(newItemLowStockCommand(rootOpts))
	return cmd
}

// ItemSaveOptions holds flags for item save.
type ItemSaveOptions struct {
	*RootOptions
	ID       string
	Name     string
	NameBn   string
	Category string
	Price    string
	Cost     string
	Stock    string
	Unit     string
	Image    string
}

func newItemSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ItemSaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create an item, or update the one named by --id",
		Long: `Create a catalog item, or update an existing one.

Without --id a new item is created. With --id only the flags given are
changed; an unknown id creates the item under that id.

Example:
  dokan item save --name "Miniket Rice" --name-bn "মিনিকেট চাল" --category grocery --price 75 --cost 68 --stock 50 --unit kg
  dokan item save --id seed-sugar --price 135`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				if err := app.RequireSession(ctx, "item.save"); err != nil {
					return err
				}
				item, err := opts.build(ctx, cmd, app)
				if err != nil {
					return err
				}
				saved, err := app.Shop.SaveItem(ctx, item)
				if err != nil {
					return err
				}
				return out.Success(itemView(saved))
			})
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "item id (update)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "English name")
	cmd.Flags().StringVar(&opts.NameBn, "name-bn", "", "Bangla name")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category")
	cmd.Flags().StringVar(&opts.Price, "price", "", "selling price")
	cmd.Flags().StringVar(&opts.Cost, "cost", "", "purchase cost")
	cmd.Flags().StringVar(&opts.Stock, "stock", "", "units on hand")
	cmd.Flags().StringVar(&opts.Unit, "unit", "", "unit of measure (default pcs)")
	cmd.Flags().StringVar(&opts.Image, "image", "", "image URL")

	return cmd
}

// build starts from the stored item when --id names one and applies the flags
// that were set.
func (o *ItemSaveOptions) build(ctx context.Context, cmd *cobra.Command, app *App) (model.CatalogItem, error) {
	item := model.CatalogItem{ID: o.ID}
	if o.ID != "" {
		existing, err := app.Shop.GetItem(ctx, o.ID)
		switch {
		case err == nil:
			item = existing
		case !model.IsNotFound(err):
			return model.CatalogItem{}, err
		}
	}

	changed := cmd.Flags().Changed
	text := map[string]struct {
		dst *string
		val string
	}{
		"name":     {&item.Name, o.Name},
		"name-bn":  {&item.NameBn, o.NameBn},
		"category": {&item.Category, o.Category},
		"unit":     {&item.Unit, o.Unit},
		"image":    {&item.Image, o.Image},
	}
	for flag, f := range text {
		if changed(flag) {
			*f.dst = f.val
		}
	}

	amounts := map[string]struct {
		dst *decimal.Decimal
		raw string
	}{
		"price": {&item.Price, o.Price},
		"cost":  {&item.Cost, o.Cost},
		"stock": {&item.Stock, o.Stock},
	}
	for flag, a := range amounts {
		if !changed(flag) {
			continue
		}
		v, err := parseDecimal(flag, a.raw)
		if err != nil {
			return model.CatalogItem{}, err
		}
		*a.dst = v
	}
	return item, nil
}

func newItemListCommand(rootOpts *RootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog items by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				items, err := app.Shop.ListItems(ctx, model.NormalizeText(category))
				if err != nil {
					return err
				}
				return out.Success(itemsView(items))
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	return cmd
}

func newItemSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find items by English or Bangla name or category",
		Example: `  dokan item search rice
  dokan item search চাল`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				items, err := app.Shop.SearchItems(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(itemsView(items))
			})
		},
	}
}

func newItemDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item; past sales keep their copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				if err := app.RequireSession(ctx, "item.delete"); err != nil {
					return err
				}
				if err := app.Shop.DeleteItem(ctx, args[0]); err != nil {
					return err
				}
				return out.Success(fmt.Sprintf("Deleted item %s", args[0]))
			})
		},
	}
}

func newItemLowStockCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "low-stock",
		Short: "List items below the low-stock threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				items, err := app.Shop.LowStock(ctx)
				if err != nil {
					return err
				}
				return out.Success(itemsView(items))
			})
		},
	}
}
