package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/store"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the local database and seed the catalog",
		Long: `Create the local database if it does not exist yet.

A new database is seeded with the starter catalog, or with the YAML file
named by DOKAN_SEED_CATALOG. Running init again is harmless.

Example:
  dokan init --db ./shop.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				items, err := store.Count(ctx, app.Store, model.CollectionCatalog, store.Filter{})
				if err != nil {
					return err
				}
				pending, err := app.Queue.Len(ctx)
				if err != nil {
					return err
				}
				return out.Success(initView{
					Database: app.Config.DBPath,
					Seeded:   app.Seeded,
					Items:    items,
					Pending:  pending,
				})
			})
		},
	}
}
