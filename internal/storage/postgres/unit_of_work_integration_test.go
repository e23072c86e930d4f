package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orderflow/internal/domain"
)

func TestUnitOfWork_CommitIntegration(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	uow := NewUnitOfWork(store)

	productID := uuid.NewString()
	seedProductForIntegrationTest(t, store, domain.Product{
		ID:         productID,
		Name:       "SSD 1TB",
		Stock:      10,
		PriceMinor: 250,
	})

	orderID := uuid.NewString()
	err := uow.Within(context.Background(), func(tx domain.PlacementTx) error {
		product, err := tx.LockProductForUpdate(context.Background(), productID)
		if err != nil {
			return err
		}
		if product.Stock != 10 || product.PriceMinor != 250 {
			t.Fatalf("unexpected product row: %+v", product)
		}
		if err := tx.DecrementStock(context.Background(), productID, 2); err != nil {
			return err
		}
		return tx.AppendOrder(context.Background(), domain.Order{
			ID:         orderID,
			UserID:     uuid.NewString(),
			ProductID:  productID,
			Quantity:   2,
			TotalMinor: 500,
			Status:     domain.OrderStatusCompleted,
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		t.Fatalf("within: %v", err)
	}

	if stock := productStockForIntegrationTest(t, store, productID); stock != 8 {
		t.Fatalf("expected stock 8 after commit, got %d", stock)
	}
	if count := countOrdersForIntegrationTest(t, store, productID); count != 1 {
		t.Fatalf("expected 1 order, got %d", count)
	}
}

func TestUnitOfWork_RollbackIntegration(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	uow := NewUnitOfWork(store)

	productID := uuid.NewString()
	seedProductForIntegrationTest(t, store, domain.Product{
		ID:         productID,
		Name:       "SSD 1TB",
		Stock:      10,
		PriceMinor: 250,
	})

	boom := errors.New("boom")
	err := uow.Within(context.Background(), func(tx domain.PlacementTx) error {
		if _, err := tx.LockProductForUpdate(context.Background(), productID); err != nil {
			return err
		}
		if err := tx.DecrementStock(context.Background(), productID, 5); err != nil {
			return err
		}
		if err := tx.AppendOrder(context.Background(), domain.Order{
			ID:         uuid.NewString(),
			UserID:     uuid.NewString(),
			ProductID:  productID,
			Quantity:   5,
			TotalMinor: 1250,
			Status:     domain.OrderStatusCompleted,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if stock := productStockForIntegrationTest(t, store, productID); stock != 10 {
		t.Fatalf("rollback must leave stock at 10, got %d", stock)
	}
	if count := countOrdersForIntegrationTest(t, store, productID); count != 0 {
		t.Fatalf("rollback must not create orders, got %d", count)
	}
}

func TestUnitOfWork_LockNotFoundIntegration(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	uow := NewUnitOfWork(store)

	err := uow.Within(context.Background(), func(tx domain.PlacementTx) error {
		_, err := tx.LockProductForUpdate(context.Background(), uuid.NewString())
		return err
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

// SELECT ... FOR UPDATE должен сериализовать конкурентные списания: при
// остатке 1 и двух транзакциях коммитится ровно одна.
func TestUnitOfWork_RowLockSerializesIntegration(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	uow := NewUnitOfWork(store)

	productID := uuid.NewString()
	seedProductForIntegrationTest(t, store, domain.Product{
		ID:         productID,
		Name:       "Last unit",
		Stock:      1,
		PriceMinor: 100,
	})

	const workers = 4
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := uow.Within(context.Background(), func(tx domain.PlacementTx) error {
				product, err := tx.LockProductForUpdate(context.Background(), productID)
				if err != nil {
					return err
				}
				if product.Stock < 1 {
					return domain.ErrInsufficientStock
				}
				if err := tx.DecrementStock(context.Background(), productID, 1); err != nil {
					return err
				}
				return tx.AppendOrder(context.Background(), domain.Order{
					ID:         uuid.NewString(),
					UserID:     uuid.NewString(),
					ProductID:  productID,
					Quantity:   1,
					TotalMinor: 100,
					Status:     domain.OrderStatusCompleted,
					CreatedAt:  time.Now().UTC(),
				})
			})
			if err == nil {
				mu.Lock()
				committed++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if committed != 1 {
		t.Fatalf("expected exactly one committed transaction, got %d", committed)
	}
	if stock := productStockForIntegrationTest(t, store, productID); stock != 0 {
		t.Fatalf("expected final stock 0, got %d", stock)
	}
	if count := countOrdersForIntegrationTest(t, store, productID); count != 1 {
		t.Fatalf("expected exactly one order, got %d", count)
	}
}
