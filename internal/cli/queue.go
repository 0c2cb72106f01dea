package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewQueueCommand creates the queue command group.
func NewQueueCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect changes waiting to sync",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List queued changes, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				pending, err := app.Queue.ListPending(ctx)
				if err != nil {
					return err
				}
				return out.Success(queueView(pending))
			})
		},
	})
	return cmd
}
