// Package app assembles the booking engine: in-memory stores, the
// optional Postgres snapshot store and Redis collaborators, services
// and the HTTP server. The engine is authoritative in memory; Postgres
// only persists snapshots across restarts and Redis only accelerates
// reads, so both are optional.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/railbook/rail-go/internal/catalog"
	"github.com/railbook/rail-go/internal/config"
	"github.com/railbook/rail-go/internal/ledger"
	"github.com/railbook/rail-go/internal/orderbook"
	"github.com/railbook/rail-go/internal/postgres"
	redisx "github.com/railbook/rail-go/internal/redis"
	postgresrepo "github.com/railbook/rail-go/internal/repository/postgres"
	redisrepo "github.com/railbook/rail-go/internal/repository/redis"
	"github.com/railbook/rail-go/internal/schedule"
	"github.com/railbook/rail-go/internal/service"
	httpgin "github.com/railbook/rail-go/internal/transport/http/gin"
	"github.com/railbook/rail-go/internal/uow"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	services *service.Services

	store  *postgresrepo.Store // nil when snapshots are disabled
	uow    *uow.UoW
	cache  *redisrepo.Cache
	pubsub *redisx.TrainsPubSub

	httpServer *http.Server
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	// In-memory stores are the source of truth.
	cat := catalog.New()
	led := ledger.New()
	book := orderbook.New()
	proj := schedule.New(led)

	var (
		limiter *redisrepo.SlidingWindowLimiter
		idem    *redisrepo.IdempotencyStore
	)

	if cfg.Redis.Enabled() {
		rdb, err := redisx.New(ctx, redisx.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}

		a.cache = redisrepo.New(rdb)
		a.pubsub = redisx.NewTrainsPubSub(rdb)
		limiter = redisrepo.NewSlidingWindowLimiter(rdb, "buy", 30, 1*time.Minute)
		idem = redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)
	} else {
		logger.Info("redis disabled, running without cache and rate limits")
	}

	a.services = service.NewServices(cat, led, book, proj, a.cache, a.pubsub, limiter, service.Config{})

	if cfg.Postgres.Enabled() {
		pool, err := postgres.New(ctx, postgres.Config{DSN: cfg.Postgres.DSN()})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}

		a.store = postgresrepo.NewStore(pool)
		a.uow = uow.NewUoW(a.store)

		if err := a.store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}

		if err := a.restore(ctx, cat); err != nil {
			return nil, fmt.Errorf("failed to restore snapshot: %w", err)
		}
	} else {
		logger.Info("postgres disabled, state will not survive restarts")
	}

	router := httpgin.NewRouter(a.services, idem, logger)

	a.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	return a, nil
}

// Services exposes the assembled service layer, used by the console
// frontend which bypasses HTTP.
func (a *App) Services() *service.Services { return a.services }

// restore reloads users, trains and orders from the last snapshot and
// replays surviving orders into the seat ledger.
func (a *App) restore(ctx context.Context, cat *catalog.Catalog) error {
	snaps := a.store.Snapshots()

	users, err := snaps.LoadUsers(ctx)
	if err != nil {
		return err
	}
	a.services.Account.Restore(users)

	trains, err := snaps.LoadTrains(ctx)
	if err != nil {
		return err
	}
	cat.Restore(trains)

	orders, err := snaps.LoadOrders(ctx)
	if err != nil {
		return err
	}
	if err := a.services.Reservation.RestoreFromOrders(orders); err != nil {
		return err
	}

	a.logger.Info("snapshot restored",
		"users", len(users), "trains", len(trains), "orders", len(orders))

	return nil
}

// SaveSnapshot writes the full in-memory state to Postgres in one
// transaction. A no-op without a snapshot store.
func (a *App) SaveSnapshot(ctx context.Context) error {
	if a.uow == nil {
		return nil
	}

	users := a.services.Account.Snapshot()
	trains := a.services.Admin.Snapshot()
	orders := a.services.Reservation.Snapshot()

	return a.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		snaps := a.store.Snapshots().With(tx)

		if err := snaps.ReplaceUsers(ctx, users); err != nil {
			return err
		}
		if err := snaps.ReplaceTrains(ctx, trains); err != nil {
			return err
		}
		if err := snaps.ReplaceOrders(ctx, orders); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			a.logger.Info("snapshot saved",
				"users", len(users), "trains", len(trains), "orders", len(orders))
		})

		return nil
	})
}

// ClearSnapshot truncates the snapshot tables. A no-op without a
// snapshot store.
func (a *App) ClearSnapshot(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	return a.store.Snapshots().Truncate(ctx)
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Other instances invalidate our cached projections when a train
	// is released or its seats move.
	if a.pubsub != nil && a.cache != nil {
		g.Go(func() error {
			err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, trainID string, day int) {
				_ = a.cache.InvalidateTrainDay(ctx, trainID, day)
			})
			if err != nil && gCtx.Err() == nil {
				a.logger.Error("pubsub subscription failed", "error", err)
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	err := g.Wait()

	// Flush state so the next start resumes where this one stopped.
	flushCtx, cancelFlush := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelFlush()
	if snapErr := a.SaveSnapshot(flushCtx); snapErr != nil {
		a.logger.Error("failed to save snapshot on shutdown", "error", snapErr)
		if err == nil {
			err = snapErr
		}
	}

	return err
}
