package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send queued changes to the remote service once",
		Long: `Replay the sync queue against the remote service, oldest first.

Confirmed changes leave the queue; failed ones stay for the next attempt.
Nothing is sent while the remote is unreachable or not configured.

Example:
  DOKAN_REMOTE_URL=http://localhost:8088 dokan sync`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				report, err := app.Reconciler.Drain(ctx)
				if err != nil {
					return err
				}
				return out.Success(syncView(report))
			})
		},
	}
}
