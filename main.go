package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/supplier-performance/pkg/config"
	"github.com/ekaya-inc/supplier-performance/pkg/database"
	"github.com/ekaya-inc/supplier-performance/pkg/events"
	"github.com/ekaya-inc/supplier-performance/pkg/logging"
	"github.com/ekaya-inc/supplier-performance/pkg/references"
	"github.com/ekaya-inc/supplier-performance/pkg/repositories"
	"github.com/ekaya-inc/supplier-performance/pkg/retry"
	"github.com/ekaya-inc/supplier-performance/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Service stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("events_backend", cfg.Events.Backend),
		zap.String("reference_allocator", cfg.Performance.ReferenceAllocator))

	// Database
	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.URL(),
			MaxConnections: cfg.Database.MaxConnections,
		})
	})
	if err != nil {
		return fmt.Errorf("connect database: %s", logging.SanitizeError(err))
	}
	defer db.Close()

	if err := migrate(cfg.Database.URL(), logger); err != nil {
		return err
	}

	// Redis (optional)
	rdb, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*redis.Client, error) {
		return database.NewRedisClient(ctx, &cfg.Redis)
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Events
	bus := events.NewBus()
	bus.Subscribe(events.AllEvents, events.LogSink(logger))

	var publisher events.Publisher = bus
	var redisBus *events.RedisBus
	if cfg.Events.Backend == config.EventsRedis {
		// Publish through Redis and deliver locally from the subscription,
		// so every instance sees every event exactly once.
		redisBus, err = events.NewRedisBus(rdb, cfg.Events.Channel, logger)
		if err != nil {
			return fmt.Errorf("create redis event bus: %w", err)
		}
		publisher = redisBus
	}

	// Reference allocation
	store := database.NewStore(db)
	var allocator references.Allocator
	switch cfg.Performance.ReferenceAllocator {
	case config.AllocatorRedis:
		allocator = references.NewRedisAllocator(rdb, cfg.Performance.ReferencePrefix)
	default:
		allocator = references.NewPostgresAllocator(store)
	}

	svc := services.NewPerformanceService(
		repositories.NewEvaluationRepository(store),
		repositories.NewMetricRepository(store),
		repositories.NewRatingRepository(store),
		db,
		allocator,
		publisher,
		cfg.Performance,
		logger,
	)

	// Confirms the schema answers the service's queries before reporting ready.
	top, err := svc.GetTopSuppliers(ctx, 0)
	if err != nil {
		return fmt.Errorf("startup check: %w", err)
	}
	logger.Info("Supplier performance service ready", zap.Int("rated_suppliers_sampled", len(top)))

	g, gctx := errgroup.WithContext(ctx)
	if redisBus != nil {
		g.Go(func() error {
			err := redisBus.StartForwarder(gctx, func(e events.Event) {
				if err := bus.Publish(gctx, e); err != nil {
					logger.Warn("Local event delivery failed", zap.String("event", e.EventName()), zap.Error(err))
				}
			})
			if err != nil {
				return fmt.Errorf("start event relay: %w", err)
			}
			<-gctx.Done()
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		return nil
	})

	return g.Wait()
}

// migrate applies the embedded schema migrations using database/sql, as golang-migrate requires.
func migrate(url string, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", url)
	if err != nil {
		return fmt.Errorf("open migration connection: %s", logging.SanitizeError(err))
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
