package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orderflow/internal/lock/memorylock"
	"github.com/vladislavdragonenkov/orderflow/internal/storage/memory"
)

func TestNewDependenciesInMemory(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	store, ok := deps.UnitOfWork.(*memory.Store)
	require.True(t, ok, "без DSN ожидается in-memory хранилище")
	require.IsType(t, &memorylock.Manager{}, deps.LockManager)

	// Демо-товары должны быть доступны сразу после старта.
	product, found := store.Product("33333333-3333-3333-3333-333333333333")
	require.True(t, found)
	require.Greater(t, product.Stock, int32(0))
}

func TestDependenciesLockManagerWorks(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	handle, err := deps.LockManager.Acquire(context.Background(), "product_order:demo", 10*time.Second)
	require.NoError(t, err)
	require.NoError(t, handle.Release(context.Background()))
}

func TestDependenciesCloseIsIdempotent(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	require.NoError(t, err)

	deps.Close()
	deps.Close()
}
