package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderflow/internal/domain"
	"github.com/vladislavdragonenkov/orderflow/internal/health"
	"github.com/vladislavdragonenkov/orderflow/internal/lock/memorylock"
	"github.com/vladislavdragonenkov/orderflow/internal/lock/redislock"
	"github.com/vladislavdragonenkov/orderflow/internal/storage/memory"
	"github.com/vladislavdragonenkov/orderflow/internal/storage/postgres"
)

// Dependencies содержит собранные зависимости приложения.
type Dependencies struct {
	UnitOfWork  domain.UnitOfWork
	LockManager domain.LockManager
	Logger      *log.Entry

	health  []healthEntry
	closers []func() error
}

type healthEntry struct {
	name    string
	checker health.Checker
}

// NewDependencies инициализирует хранилище и менеджер замков по конфигурации:
// PostgreSQL и Redis при заданных адресах, иначе in-memory реализации для
// локальной разработки.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		deps.UnitOfWork = postgres.NewUnitOfWork(store)
		deps.closers = append(deps.closers, store.Close)
		deps.health = append(deps.health, healthEntry{
			name:    "postgres",
			checker: health.NewPingChecker("postgres", 2*time.Second, store.Ping),
		})
		logger.Info("хранилище: PostgreSQL")
	} else {
		memStore := memory.NewStore()
		seedDemoProducts(memStore, logger)
		deps.UnitOfWork = memStore
		logger.Warn("хранилище: in-memory (данные не переживут рестарт)")
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = client.Close()
			deps.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		deps.LockManager = redislock.NewManager(client, logger.WithField("component", "redislock"))
		deps.closers = append(deps.closers, client.Close)
		deps.health = append(deps.health, healthEntry{
			name: "redis",
			checker: health.NewPingChecker("redis", 2*time.Second, func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			}),
		})
		logger.Info("замки: Redis")
	} else {
		deps.LockManager = memorylock.NewManager()
		logger.Warn("замки: in-process (работает только в одном инстансе)")
	}

	return deps, nil
}

// RegisterHealthCheckers подключает проверки бэкендов к health handler.
func (d *Dependencies) RegisterHealthCheckers(handler *health.Handler) {
	for _, entry := range d.health {
		handler.RegisterChecker(entry.name, entry.checker)
	}
}

// Close освобождает внешние подключения в обратном порядке.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.WithError(err).Warn("failed to close dependency")
		}
	}
	d.closers = nil
}

// seedDemoProducts наполняет in-memory хранилище демо-товарами, чтобы сервис
// можно было пощупать без базы.
func seedDemoProducts(store *memory.Store, logger *log.Entry) {
	now := time.Now().UTC()
	demo := []domain.Product{
		{ID: "11111111-1111-1111-1111-111111111111", Name: "SSD 1TB", Description: "NVMe SSD", Stock: 100, PriceMinor: 899900, CreatedAt: now, UpdatedAt: now},
		{ID: "22222222-2222-2222-2222-222222222222", Name: "DDR5 32GB", Description: "Memory kit", Stock: 25, PriceMinor: 1249900, CreatedAt: now, UpdatedAt: now},
		{ID: "33333333-3333-3333-3333-333333333333", Name: "GPU RTX", Description: "Last units", Stock: 3, PriceMinor: 9999900, CreatedAt: now, UpdatedAt: now},
	}
	for _, p := range demo {
		store.SeedProduct(p)
	}
	logger.WithField("count", len(demo)).Info("in-memory хранилище засеяно демо-товарами")
}
