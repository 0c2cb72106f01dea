package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iir20/amar-dokan-pos-system/internal/checkout"
	"github.com/iir20/amar-dokan-pos-system/internal/config"
	"github.com/iir20/amar-dokan-pos-system/internal/connectivity"
	"github.com/iir20/amar-dokan-pos-system/internal/metrics"
	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/mutation"
	"github.com/iir20/amar-dokan-pos-system/internal/queue"
	"github.com/iir20/amar-dokan-pos-system/internal/reconcile"
	"github.com/iir20/amar-dokan-pos-system/internal/remote"
	"github.com/iir20/amar-dokan-pos-system/internal/seed"
	"github.com/iir20/amar-dokan-pos-system/internal/service"
	"github.com/iir20/amar-dokan-pos-system/internal/session"
	"github.com/iir20/amar-dokan-pos-system/internal/store"
)

// App is the wired data layer one command runs against.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Clock   model.Clock
	Metrics *metrics.Metrics

	Store   *store.Store
	Seeded  int
	Queue   *queue.Queue
	Monitor *connectivity.Monitor

	// Deliverer is nil when no remote is configured.
	Deliverer remote.Deliverer

	Exec       *mutation.Executor
	Shop       *service.Service
	Checkout   *checkout.Service
	Session    *session.Manager
	Reconciler *reconcile.Reconciler

	closers []func() error
}

// newLogger configures the process logger the way every command expects:
// text on stderr, debug under --verbose.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}

// openApp loads configuration, opens (and on first use seeds) the store, and
// wires every component. The caller must Close the App.
func openApp(cmd *cobra.Command, opts *RootOptions) (*App, error) {
	ctx := cmd.Context()
	logger := newLogger(cmd, opts.Verbose)

	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}

	clock := opts.Clock
	if clock == nil {
		clock = model.SystemClock{}
	}
	ids := opts.IDs
	if ids == nil {
		ids = model.UUIDv7Generator{}
	}

	logger.Debug("opening database", "path", cfg.DBPath)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger, Clock: clock, Store: st}
	app.closers = append(app.closers, st.Close)

	app.Seeded, err = seed.IfFresh(ctx, st, cfg.SeedCatalog, clock.Now())
	if err != nil {
		app.Close()
		return nil, WrapExitError(ExitCommandError, "failed to seed catalog", err)
	}
	if app.Seeded > 0 {
		logger.Info("seeded catalog", "items", app.Seeded)
	}

	if err := app.connectRemote(); err != nil {
		app.Close()
		return nil, WrapExitError(ExitCommandError, "failed to configure remote", err)
	}

	app.Metrics = metrics.New()
	app.Monitor = connectivity.New(false, connectivity.WithLogger(logger))
	app.Queue = queue.New(st,
		queue.WithClock(clock),
		queue.WithLogger(logger),
		queue.WithMetrics(app.Metrics),
	)
	app.Exec = mutation.NewExecutor(app.Queue, app.Deliverer, app.Monitor,
		mutation.WithTimeout(cfg.DeliveryTimeout),
		mutation.WithLogger(logger),
		mutation.WithMetrics(app.Metrics),
		mutation.WithClock(clock.Now),
	)

	locker := mutation.NewLocker()
	app.Shop = service.New(st, app.Exec, locker,
		service.WithIDGenerator(ids),
		service.WithClock(clock),
		service.WithLogger(logger),
		service.WithLowStockThreshold(cfg.LowStockThreshold),
	)
	app.Checkout = checkout.NewService(st, app.Exec, locker,
		checkout.WithIDGenerator(ids),
		checkout.WithClock(clock),
		checkout.WithLogger(logger),
	)
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	app.Session = session.NewManager(st, app.Exec,
		session.WithBcryptCost(cost),
		session.WithClock(clock),
		session.WithIDGenerator(ids),
		session.WithLogger(logger),
	)
	app.Reconciler = reconcile.New(app.Queue, app.Deliverer, app.Monitor,
		reconcile.WithItemTimeout(cfg.DeliveryTimeout),
		reconcile.WithLogger(logger),
		reconcile.WithMetrics(app.Metrics),
		reconcile.WithClock(clock.Now),
	)

	return app, nil
}

// connectRemote builds the deliverer for the configured transport. With no
// remote configured Deliverer stays nil and every mutation is queued.
func (a *App) connectRemote() error {
	if !a.Config.RemoteConfigured() {
		a.Logger.Debug("no remote configured; changes will be queued")
		return nil
	}

	switch a.Config.RemoteTransport {
	case config.TransportNATS:
		nc, err := remote.DialNATS(a.Config.NATSURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error { nc.Close(); return nil })
		a.Deliverer = remote.NewNATSDeliverer(nc, a.Config.NATSSubject)
	default:
		a.Deliverer = remote.NewHTTPDeliverer(a.Config.RemoteURL, a.Config.DeliveryTimeout)
	}
	return nil
}

// Probe checks the remote once and records the result on the monitor.
func (a *App) Probe(ctx context.Context) {
	if a.Deliverer == nil {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, a.Config.DeliveryTimeout)
	defer cancel()
	err := a.Deliverer.Ping(probeCtx)
	if err != nil {
		a.Logger.Debug("remote unreachable", "error", err)
	}
	a.Monitor.Set(err == nil)
}

// RequireSession fails with NO_SESSION unless a user is logged in.
func (a *App) RequireSession(ctx context.Context, op string) error {
	_, err := a.Session.Require(ctx, op)
	return err
}

// Close releases the store and remote connection, last opened first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// withApp opens the App, probes the remote, runs fn and closes the App.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, app *App, out *OutputFormatter) error) error {
	app, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			app.Logger.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	app.Probe(ctx)

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if app.Deliverer != nil {
		out.VerboseLog("remote %s: online=%t", app.Config.RemoteTransport, app.Monitor.Online())
	}
	return fn(ctx, app, out)
}
