package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iir20/amar-dokan-pos-system/internal/remote"
)

// RemoteStubOptions holds flags for the remote-stub command.
type RemoteStubOptions struct {
	*RootOptions
	Addr    string
	NATSURL string
	Subject string
	Failing bool
}

// NewRemoteStubCommand creates the remote-stub command.
func NewRemoteStubCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemoteStubOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remote-stub",
		Short: "Serve an in-memory remote service for development",
		Long: `Serve an in-memory stand-in for the remote service.

It accepts POST /v1/mutations, answers GET /healthz, and applies each
idempotency key once. With --nats-url it also answers delivery requests on
<subject>.<collection>. --failing rejects everything, which looks like an
outage to clients.

Example:
  dokan remote-stub --addr :8088
  dokan remote-stub --addr :8088 --nats-url nats://127.0.0.1:4222`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemoteStub(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8088", "HTTP listen address")
	cmd.Flags().StringVar(&opts.NATSURL, "nats-url", "", "also serve over this NATS server")
	cmd.Flags().StringVar(&opts.Subject, "subject", "dokan.mutations", "NATS subject prefix")
	cmd.Flags().BoolVar(&opts.Failing, "failing", false, "reject every request")

	return cmd
}

func runRemoteStub(cmd *cobra.Command, opts *RemoteStubOptions) error {
	logger := newLogger(cmd, opts.Verbose)
	stub := remote.NewStub(logger)
	stub.SetFailing(opts.Failing)

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	if opts.NATSURL != "" {
		nc, err := remote.DialNATS(opts.NATSURL)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to connect to NATS", err)
		}
		defer nc.Close()
		if _, err := stub.ServeNATS(nc, opts.Subject); err != nil {
			return WrapExitError(ExitCommandError, "failed to subscribe", err)
		}
		logger.Info("serving NATS", "subject", opts.Subject+".>")
	}

	g, gctx := errgroup.WithContext(ctx)
	serveHTTP(gctx, g, &http.Server{
		Addr:              opts.Addr,
		Handler:           stub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}, logger)

	fmt.Fprintf(cmd.OutOrStdout(), "Remote stub listening on %s. Press Ctrl-C to stop.\n", opts.Addr)
	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "remote stub error", err)
	}
	logger.Info("remote stub stopped", "received", stub.Received(), "applied", len(stub.Applied()))
	return nil
}
