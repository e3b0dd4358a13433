package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/ishos/storefront/api/controllers"
	"github.com/ishos/storefront/api/routes"
	"github.com/ishos/storefront/internal/cart"
	"github.com/ishos/storefront/internal/catalog"
	"github.com/ishos/storefront/internal/cron"
	"github.com/ishos/storefront/internal/orders"
	"github.com/ishos/storefront/internal/session"
	"github.com/ishos/storefront/pkg/config"
	"github.com/ishos/storefront/pkg/db"
	"github.com/ishos/storefront/pkg/instance"
	"github.com/ishos/storefront/pkg/logger"
	"github.com/ishos/storefront/pkg/metrics"
	"github.com/ishos/storefront/pkg/migrate"
	"github.com/ishos/storefront/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	reader, err := catalog.Load(cfg.Catalog.Dir)
	if err != nil {
		logg.Error(context.Background(), "failed to load catalog content", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var (
		dbClient    *db.Client
		redisClient *redis.Client
		redisStore  routes.RedisStore
		dbPinger    controllers.Pinger
	)

	if cfg.DB.Enabled() {
		dbClient, err = db.New(context.Background(), cfg.DB, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap database", err)
			os.Exit(1)
		}
		dbPinger = dbClient
		if err := migrate.MaybeRun(context.Background(), cfg, logg, dbClient); err != nil {
			logg.Error(context.Background(), "failed to run migrations", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "no database configured, order log disabled")
	}

	var carts cart.Provider = cart.NewMemoryProvider()
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		redisStore = redisClient
		provider, err := cart.NewRedisProvider(redisClient, cfg.Session.TTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create cart provider", err)
			os.Exit(1)
		}
		carts = provider
	}

	sessions, err := session.NewManager(session.Options{
		Carts:   carts,
		TTL:     cfg.Session.TTL,
		Logger:  logg,
		Metrics: m,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	orderParams := orders.ServiceParams{Catalog: reader, Logger: logg, Metrics: m.Orders}
	if dbClient != nil {
		orderParams.Repo = orders.NewRepository(dbClient.DB())
		orderParams.Tx = dbClient
	}
	orderService, err := orders.NewService(orderParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	sweepJob, err := cron.NewSessionSweepJob(sessions)
	if err != nil {
		logg.Error(context.Background(), "failed to create session sweep job", err)
		os.Exit(1)
	}
	sweeper, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(sweepJob),
		Metrics:  m.Jobs,
		Interval: cfg.Session.SweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session sweeper", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"products": len(reader.AllProducts()),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, reader, sessions, orderService, redisStore, dbPinger, m, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "session sweeper stopped unexpectedly", err)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown(shutdownCtx, server, sessions, redisClient, dbClient); err != nil {
		logg.Error(shutdownCtx, "api server shutdown incomplete", err)
		exitCode = 1
	} else {
		logg.Info(shutdownCtx, "api server stopped")
	}
	os.Exit(exitCode)
}

// shutdown drains HTTP traffic first, then flushes carts before the
// stores they write to are closed.
func shutdown(ctx context.Context, server *http.Server, sessions *session.Manager, redisClient *redis.Client, dbClient *db.Client) error {
	var err error
	if shutdownErr := server.Shutdown(ctx); shutdownErr != nil && !errors.Is(shutdownErr, http.ErrServerClosed) {
		err = multierr.Append(err, shutdownErr)
	}
	err = multierr.Append(err, sessions.Close(ctx))
	if redisClient != nil {
		err = multierr.Append(err, redisClient.Close())
	}
	if dbClient != nil {
		err = multierr.Append(err, dbClient.Close())
	}
	return err
}
