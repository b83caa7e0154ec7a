package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core"
	"github.com/gaze-network/ticket-integrity/core/datasources"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/ledger/memory"
	ledgerpostgres "github.com/gaze-network/ticket-integrity/core/ledger/postgres"
	"github.com/gaze-network/ticket-integrity/internal/config"
	"github.com/gaze-network/ticket-integrity/internal/metrics"
	"github.com/gaze-network/ticket-integrity/internal/postgres"
	"github.com/gaze-network/ticket-integrity/modules/analytics"
	"github.com/gaze-network/ticket-integrity/modules/gate"
	"github.com/gaze-network/ticket-integrity/modules/marketplace"
	"github.com/gaze-network/ticket-integrity/pkg/automaxprocs"
	"github.com/gaze-network/ticket-integrity/pkg/cache"
	"github.com/gaze-network/ticket-integrity/pkg/errorhandler"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
	"github.com/gaze-network/ticket-integrity/pkg/middleware/requestcontext"
	"github.com/gaze-network/ticket-integrity/pkg/middleware/requestlogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// Register Modules
var Modules = do.Package(
	do.LazyNamed("gate", gate.New),
	do.LazyNamed("marketplace", marketplace.New),
	do.LazyNamed("analytics", analytics.New),
)

func NewRunCommand() *cobra.Command {
	// Create command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start ticket-integrity service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := automaxprocs.Init(); err != nil {
				logger.Error("Failed to set GOMAXPROCS", slogx.Error(err))
			}
			return runHandler(cmd, args)
		},
	}

	// Add local flags
	flags := runCmd.Flags()
	flags.String("modules", "", "Enable specific modules to run. E.g. `gate,marketplace`")
	flags.String("ledger", "", "Ledger driver. One of `http`, `postgres`, `memory`")

	// Bind flags to configuration
	config.BindPFlag("enable_modules", flags.Lookup("modules"))
	config.BindPFlag("ledger.driver", flags.Lookup("ledger"))

	return runCmd
}

const (
	shutdownTimeout = 60 * time.Second
)

func runHandler(cmd *cobra.Command, _ []string) error {
	conf := config.Load()

	// Validate inputs and configurations
	if err := conf.Validate(); err != nil {
		return errors.WithStack(err)
	}

	// Initialize application process context
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := do.New(Modules)
	do.ProvideValue(injector, conf)
	do.ProvideValue(injector, ctx)

	// Initialize ledger backend
	do.Provide(injector, func(i do.Injector) (ledger.ReadWriter, error) {
		conf := do.MustInvoke[config.Config](i)

		switch strings.ToLower(conf.Ledger.Driver) {
		case config.LedgerDriverHTTP:
			gateway, err := datasources.NewLedgerGateway(conf.Ledger.HTTP)
			if err != nil {
				return nil, errors.Wrap(err, "invalid ledger gateway configuration")
			}
			logger.InfoContext(ctx, "Using ledger gateway", slogx.String("url", conf.Ledger.HTTP.URL))
			return gateway, nil
		case config.LedgerDriverPostgres:
			pool := do.MustInvoke[*pgxpool.Pool](i)
			logger.InfoContext(ctx, "Using postgres ledger mirror")
			return ledgerpostgres.NewRepository(pool), nil
		case config.LedgerDriverMemory:
			logger.WarnContext(ctx, "Using in-memory ledger, state is lost on restart")
			return memory.New(), nil
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q ledger driver is not supported", conf.Ledger.Driver)
		}
	})

	// Initialize PostgreSQL connection pool (postgres ledger driver only)
	do.Provide(injector, func(i do.Injector) (*pgxpool.Pool, error) {
		conf := do.MustInvoke[config.Config](i)

		start := time.Now()
		pool, err := postgres.NewPool(ctx, conf.Ledger.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, "can't create postgres connection pool")
		}
		logger.InfoContext(ctx, "Connected to PostgreSQL", slog.Duration("latency", time.Since(start)))
		return pool, nil
	})

	// Initialize read cache
	do.Provide(injector, func(i do.Injector) (cache.Cache, error) {
		conf := do.MustInvoke[config.Config](i)

		c, err := cache.New(ctx, conf.Cache)
		if err != nil {
			if errors.Is(err, errs.Unsupported) {
				return nil, errors.Wrap(err, "invalid cache configuration")
			}
			return nil, errors.Wrap(err, "can't create cache")
		}
		return c, nil
	})

	do.Provide(injector, func(i do.Injector) (ledger.Reader, error) {
		rw, err := do.Invoke[ledger.ReadWriter](i)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		c, err := do.Invoke[cache.Cache](i)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return ledger.NewCachedReader(rw, c, conf.Cache.TTL), nil
	})

	do.Provide(injector, func(i do.Injector) (ledger.Writer, error) {
		rw, err := do.Invoke[ledger.ReadWriter](i)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return rw, nil
	})

	do.Provide(injector, func(i do.Injector) (ledger.IdentityResolver, error) {
		conf := do.MustInvoke[config.Config](i)
		if len(conf.Ledger.Identity) == 0 {
			return ledger.DirectIdentity{}, nil
		}
		return ledger.NewStaticIdentity(conf.Ledger.Identity), nil
	})

	// Initialize HTTP server
	do.Provide(injector, func(i do.Injector) (*fiber.App, error) {
		app := fiber.New(fiber.Config{
			AppName:      "Ticket Integrity",
			ErrorHandler: errorhandler.NewHTTPErrorHandler(),
		})
		app.
			Use(favicon.New()).
			Use(cors.New()).
			Use(requestid.New()).
			Use(requestcontext.New(
				requestcontext.WithRequestId(),
				requestcontext.WithClientIP(conf.HTTPServer.RequestIP),
				requestcontext.WithCaller(),
			)).
			Use(requestlogger.New(conf.HTTPServer.Logger)).
			Use(fiberrecover.New(fiberrecover.Config{
				EnableStackTrace: true,
				StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
					buf := make([]byte, 1024) // bufLen = 1024
					buf = buf[:runtime.Stack(buf, false)]
					logger.ErrorContext(c.UserContext(), "Something went wrong, panic in http handler", slogx.Any("panic", e), slog.String("stacktrace", string(buf)))
				},
			})).
			Use(compress.New(compress.Config{
				Level: compress.LevelDefault,
			}))

		// Health check
		app.Get("/", func(c *fiber.Ctx) error {
			return errors.WithStack(c.SendStatus(http.StatusOK))
		})

		if conf.Metrics.Enabled {
			metrics.Mount(app, conf.Metrics.Path)
		}

		return app, nil
	})

	// Mount modules
	{
		modules := lo.Uniq(conf.EnableModules)
		modules = lo.Map(modules, func(item string, _ int) string { return strings.TrimSpace(item) })
		modules = lo.Filter(modules, func(item string, _ int) bool { return item != "" })
		if len(modules) == 0 {
			logger.WarnContext(ctx, "No modules enabled, only health check and metrics are served")
		}
		for _, name := range modules {
			ctx := logger.WithContext(ctx, slogx.String("module", name))

			module, err := do.InvokeNamed[core.Module](injector, name)
			if err != nil {
				if errors.Is(err, do.ErrServiceNotFound) {
					return errors.Errorf("Module %q is not supported", name)
				}
				return errors.Wrapf(err, "can't init module %q", name)
			}
			logger.InfoContext(ctx, "Module enabled", slogx.String("name", module.Name()))
		}
	}

	// Run API server
	httpServer := do.MustInvoke[*fiber.App](injector)
	go func() {
		// stop main process if API stopped
		defer stop()

		logger.InfoContext(ctx, "Started HTTP server", slog.Int("port", conf.HTTPServer.Port))
		if err := httpServer.Listen(fmt.Sprintf(":%d", conf.HTTPServer.Port)); err != nil {
			logger.PanicContext(ctx, "Something went wrong, error during running HTTP server", slogx.Error(err))
		}
	}()

	logger.InfoContext(ctx, "Ticket Integrity started", slogx.String("ledger", conf.Ledger.Driver))

	// Wait for interrupt signal to gracefully stop the server
	<-ctx.Done()

	// Force shutdown if timeout exceeded or got signal again
	go func() {
		defer os.Exit(1)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		select {
		case <-ctx.Done():
			logger.FatalContext(ctx, "Received exit signal again. Force shutdown...")
		case <-time.After(shutdownTimeout + 15*time.Second):
			logger.FatalContext(ctx, "Shutdown timeout exceeded. Force shutdown...")
		}
	}()

	if err := httpServer.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.ErrorContext(ctx, "Failed while gracefully shutting down HTTP server", slogx.Error(err))
	}

	// Release backends that were actually created
	if c, err := do.Invoke[cache.Cache](injector); err == nil {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close cache", slogx.Error(err))
			}
		}
	}
	if conf.Ledger.Driver == config.LedgerDriverPostgres {
		if pool, err := do.Invoke[*pgxpool.Pool](injector); err == nil {
			pool.Close()
		}
	}

	logger.InfoContext(ctx, "Ticket Integrity stopped")
	return nil
}
