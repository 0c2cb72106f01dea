package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the sync daemon",
		Long: `Run the background sync daemon until interrupted.

The daemon probes the remote service every DOKAN_PROBE_INTERVAL. Each time
the device comes back online it replays the sync queue. With
DOKAN_METRICS_ADDR set it also serves Prometheus metrics on /metrics and a
store health check on /healthz.

Example:
  DOKAN_REMOTE_URL=http://localhost:8088 DOKAN_METRICS_ADDR=:9464 dokan run --db ./shop.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd, rootOpts)
		},
	}
}

func runDaemon(cmd *cobra.Command, opts *RootOptions) error {
	app, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			app.Logger.Error("error closing database", "error", closeErr)
		}
	}()

	ctx, cancel := signalContext(cmd, app.Logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if app.Deliverer != nil {
		g.Go(func() error {
			return app.Monitor.Watch(gctx, app.Deliverer, app.Config.ProbeInterval)
		})
	} else {
		app.Logger.Warn("no remote configured; queued changes will wait")
	}
	g.Go(func() error {
		return app.Reconciler.Run(gctx, app.Monitor.BecameOnline())
	})
	if addr := app.Config.MetricsAddr; addr != "" {
		serveHTTP(gctx, g, &http.Server{
			Addr:              addr,
			Handler:           app.daemonRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		}, app.Logger)
	}

	app.Logger.Info("sync daemon started", "db", app.Config.DBPath, "remote", app.Deliverer != nil)
	fmt.Fprintln(cmd.OutOrStdout(), "Sync daemon started. Press Ctrl-C to stop.")

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return WrapExitError(ExitFailure, "sync daemon error", err)
	}

	app.Logger.Info("sync daemon stopped gracefully")
	return nil
}

// daemonRouter serves /metrics and /healthz.
func (a *App) daemonRouter() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	router.Get("/healthz", a.health)
	return router
}

type healthStatus struct {
	Store   string `json:"store"`
	Online  bool   `json:"online"`
	Pending int    `json:"pending"`
}

// health reports 503 when the store cannot be reached.
func (a *App) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := healthStatus{Store: "ok", Online: a.Monitor.Online()}
	code := http.StatusOK
	if err := a.Store.Ping(ctx); err != nil {
		a.Logger.Error("health check failed", "error", err)
		status.Store = "unavailable"
		code = http.StatusServiceUnavailable
	} else if n, err := a.Queue.Len(ctx); err == nil {
		status.Pending = n
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		a.Logger.Error("failed to encode health status", "error", err)
	}
}

// signalContext derives a context from the command's that is also canceled
// by SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan) // Prevent signal handler leak
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()
	return ctx, cancel
}

// serveHTTP runs srv in g and shuts it down when ctx ends.
func serveHTTP(ctx context.Context, g *errgroup.Group, srv *http.Server, logger *slog.Logger) {
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "addr", srv.Addr, "error", err)
		}
		return nil
	})
}
