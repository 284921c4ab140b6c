// Package app wires configuration, storage, and transports into a running
// bottler service.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/potion-bottler/internal/adapter/handler"
	"github.com/rl1809/potion-bottler/internal/adapter/storage"
	"github.com/rl1809/potion-bottler/internal/config"
	"github.com/rl1809/potion-bottler/internal/core/domain"
	"github.com/rl1809/potion-bottler/internal/core/service"
	"github.com/rl1809/potion-bottler/internal/observability"
	"github.com/rl1809/potion-bottler/internal/port"
)

// Store is what the app needs from a storage adapter beyond the port.
type Store interface {
	port.InventoryRepository
	SetLiquidInventory(ctx context.Context, inv domain.LiquidInventory) error
	Close() error
}

type App struct {
	cfg     config.Config
	logger  zerolog.Logger
	store   Store
	rdb     *redis.Client
	Bottler *service.BottlerService
}

// New opens the configured store and, when configured, Redis.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger, store: store}
	opts := []service.Option{
		service.WithRecipeCount(cfg.RecipeCount),
		service.WithPrice(cfg.DefaultPrice),
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
		a.rdb = rdb
		opts = append(opts, service.WithCache(storage.NewRedisAdapter(rdb)))
	}

	a.Bottler = service.NewBottlerService(store, logger, opts...)
	return a, nil
}

func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Store {
	case config.StoreMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(cfg.MySQLMaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQLMaxIdleConns)
		db.SetConnMaxLifetime(cfg.MySQLConnMaxLifetime)

		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping mysql: %w", err)
		}
		adapter := storage.NewMySQLAdapter(db)
		if err := adapter.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info().Msg("connected to mysql")
		return adapter, nil

	case config.StoreSQLite:
		adapter, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite store")
		return adapter, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func (a *App) Store() Store {
	return a.store
}

// Handler returns the HTTP surface: bottler routes, health, and metrics.
func (a *App) Handler() http.Handler {
	observability.RegisterMetrics()

	mux := http.NewServeMux()
	handler.NewHTTPHandler(a.Bottler).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	return observability.RequestLogger(a.logger, mux)
}

// Serve runs the HTTP and gRPC servers until ctx is done or one of them fails.
func (a *App) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogger(a.logger)))
	handler.RegisterBottlerServer(grpcServer, handler.NewGRPCHandler(a.Bottler))

	lis, err := net.Listen("tcp", a.cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.logger.Info().Str("addr", a.cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info().Msg("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("HTTP shutdown")
		}
		a.logger.Info().Msg("HTTP server stopped")

		grpcServer.GracefulStop()
		a.logger.Info().Msg("gRPC server stopped")
		return nil
	})

	return g.Wait()
}

// Close releases the store and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	errs = append(errs, a.store.Close())
	a.logger.Info().Msg("connections closed")
	return errors.Join(errs...)
}

func unaryLogger(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		event := logger.Info()
		if err != nil {
			event = logger.Warn().Err(err)
		}
		event.
			Str("method", info.FullMethod).
			Dur("duration", time.Since(start)).
			Msg("grpc_request")
		return resp, err
	}
}
