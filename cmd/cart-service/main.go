package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikolayk812/cartservice/internal/config"
	"github.com/nikolayk812/cartservice/internal/db"
	"github.com/nikolayk812/cartservice/internal/httpapi"
	"github.com/nikolayk812/cartservice/internal/logger"
	"github.com/nikolayk812/cartservice/internal/port"
	"github.com/nikolayk812/cartservice/internal/pricing"
	"github.com/nikolayk812/cartservice/internal/repository"
	"github.com/nikolayk812/cartservice/internal/service"
	"github.com/nikolayk812/cartservice/internal/validation"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("CART_CONFIG"), "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "cart-service: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("logger.New: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg.Store, log)
	if err != nil {
		return fmt.Errorf("openStore: %w", err)
	}
	defer closeStore()

	unit, err := cfg.Currency()
	if err != nil {
		return err
	}

	engine := pricing.NewCheckoutEngine(pricing.NewShippingCalculator(), unit)
	manager := service.NewCartManager(repo, validation.NewAddressValidator(), engine,
		service.WithLogger(log),
		service.WithRetryAttempts(cfg.Retry.Attempts),
		service.WithRetryInterval(cfg.Retry.Interval),
	)

	handler := httpapi.NewHandler(manager, engine, log)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.NewRouter(handler, log, cfg.HTTP.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTP.Addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("srv.ListenAndServe: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (port.CartRepository, func(), error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := db.NewMongoClient(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, nil, fmt.Errorf("db.NewMongoClient: %w", err)
		}

		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		if err := db.EnsureMongoIndexes(ctx, coll); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("db.EnsureMongoIndexes: %w", err)
		}

		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn("mongo disconnect", zap.Error(err))
			}
		}
		return repository.NewMongoCart(coll), closeFn, nil

	default:
		if err := db.RunMigrations(cfg.Postgres.DSN, log); err != nil {
			return nil, nil, fmt.Errorf("db.RunMigrations: %w", err)
		}

		pool, err := db.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db.NewPool: %w", err)
		}
		return repository.NewCart(pool), pool.Close, nil
	}
}
