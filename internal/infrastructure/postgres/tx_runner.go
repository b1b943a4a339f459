package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/stock-quants/internal/application/quantops"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
)

var _ quantops.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Es la
// frontera todo-o-nada del motor: los bloqueos de fila (FOR UPDATE) tomados
// por los repositorios viven hasta el Commit/Rollback.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	quants repository.QuantRepository,
	moves repository.MoveRepository,
	locations repository.LocationRepository,
	products repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	quantRepo := NewQuantRepository(tx)
	moveRepo := NewMoveRepository(tx)
	locationRepo := NewLocationRepository(tx)
	productRepo := NewProductRepository(tx)

	if err := fn(quantRepo, moveRepo, locationRepo, productRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
