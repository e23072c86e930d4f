package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/orderflow/internal/domain"
)

// unitOfWork реализует domain.UnitOfWork поверх одной PostgreSQL-транзакции.
// Замок строки товара обеспечивается SELECT ... FOR UPDATE и живёт до
// коммита или отката.
type unitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork создаёт PostgreSQL-реализацию UnitOfWork.
func NewUnitOfWork(store *Store) domain.UnitOfWork {
	return &unitOfWork{db: store.DB()}
}

func (u *unitOfWork) Within(ctx context.Context, fn func(tx domain.PlacementTx) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&placementTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("commit placement tx: %w", err)
	}

	return nil
}

type placementTx struct {
	tx *sql.Tx
}

func (p *placementTx) LockProductForUpdate(ctx context.Context, productID string) (domain.Product, error) {
	var product domain.Product

	err := p.tx.QueryRowContext(ctx, `
		SELECT id, name, description, stock, price_minor, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, productID).Scan(
		&product.ID, &product.Name, &product.Description,
		&product.Stock, &product.PriceMinor, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("lock product row: %w", err)
	}

	return product, nil
}

func (p *placementTx) DecrementStock(ctx context.Context, productID string, qty int32) error {
	res, err := p.tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $2,
		    updated_at = NOW()
		WHERE id = $1
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

func (p *placementTx) AppendOrder(ctx context.Context, order domain.Order) error {
	if _, err := p.tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, product_id, quantity, total_minor, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		order.ID, order.UserID, order.ProductID, order.Quantity,
		order.TotalMinor, string(order.Status), order.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

var _ domain.UnitOfWork = (*unitOfWork)(nil)
var _ domain.PlacementTx = (*placementTx)(nil)
