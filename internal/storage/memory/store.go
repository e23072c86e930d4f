package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/orderflow/internal/domain"
)

// Store — in-memory реализация UnitOfWork для локальной разработки и тестов.
// Замок строки эмулируется мьютексом на каждый товар: конкурирующая
// "транзакция" блокируется на LockProductForUpdate ровно так же, как на
// SELECT ... FOR UPDATE, а изменения применяются только на коммите.
type Store struct {
	mu       sync.RWMutex
	products map[string]*productRow
	orders   []domain.Order

	commitErr error
}

type productRow struct {
	mu      sync.Mutex
	product domain.Product
}

// NewStore возвращает пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*productRow),
	}
}

// SeedProduct кладёт товар в хранилище, перезаписывая существующий.
func (s *Store) SeedProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &productRow{product: p}
}

// Product возвращает текущее закоммиченное состояние товара.
func (s *Store) Product(id string) (domain.Product, bool) {
	s.mu.RLock()
	row, ok := s.products[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Product{}, false
	}

	row.mu.Lock()
	defer row.mu.Unlock()
	return row.product, true
}

// Orders возвращает копию журнала заказов.
func (s *Store) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// SetCommitError заставляет последующие коммиты завершаться ошибкой err
// (nil возвращает нормальное поведение). Используется в тестах отката.
func (s *Store) SetCommitError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

func (s *Store) commitError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commitErr
}

// Within выполняет fn как одну атомарную единицу работы: все списания и
// заказы либо применяются целиком, либо отбрасываются.
func (s *Store) Within(ctx context.Context, fn func(tx domain.PlacementTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &placementTx{
		store:      s,
		locked:     make(map[string]*productRow),
		decrements: make(map[string]int32),
	}
	return tx.finish(fn(tx))
}

type placementTx struct {
	store *Store

	// locked — строки, удерживаемые этой транзакцией; порядок нужен для
	// симметричного освобождения.
	locked    map[string]*productRow
	lockOrder []*productRow

	decrements map[string]int32
	appended   []domain.Order
}

func (tx *placementTx) LockProductForUpdate(_ context.Context, productID string) (domain.Product, error) {
	tx.store.mu.RLock()
	row, ok := tx.store.products[productID]
	tx.store.mu.RUnlock()
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}

	if _, held := tx.locked[productID]; !held {
		// Здесь транзакция блокируется, пока строку держит другая.
		row.mu.Lock()
		tx.locked[productID] = row
		tx.lockOrder = append(tx.lockOrder, row)
	}

	return row.product, nil
}

func (tx *placementTx) DecrementStock(_ context.Context, productID string, qty int32) error {
	if _, held := tx.locked[productID]; !held {
		return fmt.Errorf("decrement stock for %q without row lock", productID)
	}
	tx.decrements[productID] += qty
	return nil
}

func (tx *placementTx) AppendOrder(_ context.Context, order domain.Order) error {
	tx.appended = append(tx.appended, order)
	return nil
}

// finish завершает транзакцию: при err == nil применяет изменения (или
// возвращает инъецированную ошибку коммита), иначе просто отбрасывает их.
// Замки строк снимаются в любом случае.
func (tx *placementTx) finish(err error) error {
	defer func() {
		for i := len(tx.lockOrder) - 1; i >= 0; i-- {
			tx.lockOrder[i].mu.Unlock()
		}
	}()

	if err != nil {
		return err
	}
	if commitErr := tx.store.commitError(); commitErr != nil {
		return fmt.Errorf("commit: %w", commitErr)
	}

	now := time.Now().UTC()
	for productID, qty := range tx.decrements {
		row := tx.locked[productID]
		row.product.Stock -= qty
		row.product.UpdatedAt = now
	}

	if len(tx.appended) > 0 {
		tx.store.mu.Lock()
		tx.store.orders = append(tx.store.orders, tx.appended...)
		tx.store.mu.Unlock()
	}

	return nil
}

var _ domain.UnitOfWork = (*Store)(nil)
var _ domain.PlacementTx = (*placementTx)(nil)
