package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
)

var _ repository.MoveRepository = (*MoveRepo)(nil)

// MoveRepo implementación de MoveRepository sobre PostgreSQL.
type MoveRepo struct {
	q Querier
}

func NewMoveRepository(q Querier) *MoveRepo {
	return &MoveRepo{q: q}
}

func (r *MoveRepo) Create(ctx context.Context, m *entity.Move) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_moves (
			id, company_id, name, product_id, location_id, location_dest_id,
			product_qty, price_unit, state, partially_available,
			restrict_lot_id, restrict_partner_id, removal_strategy,
			date, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		m.ID, m.CompanyID, m.Name, m.ProductID, m.LocationID, m.LocationDestID,
		m.ProductQty, m.PriceUnit, m.State, m.PartiallyAvailable,
		nullable(m.RestrictLotID), nullable(m.RestrictPartnerID), m.RemovalStrategy,
		m.Date, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert move: %w", err)
	}
	return nil
}

func (r *MoveRepo) GetByID(ctx context.Context, id string) (*entity.Move, error) {
	var m entity.Move
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, name, product_id, location_id, location_dest_id,
		       product_qty, price_unit, state, partially_available,
		       COALESCE(restrict_lot_id, ''), COALESCE(restrict_partner_id, ''),
		       removal_strategy, date, created_at, updated_at
		FROM stock_moves WHERE id = $1`, id,
	).Scan(
		&m.ID, &m.CompanyID, &m.Name, &m.ProductID, &m.LocationID, &m.LocationDestID,
		&m.ProductQty, &m.PriceUnit, &m.State, &m.PartiallyAvailable,
		&m.RestrictLotID, &m.RestrictPartnerID,
		&m.RemovalStrategy, &m.Date, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get move: %w", err)
	}
	return &m, nil
}

func (r *MoveRepo) UpdateState(ctx context.Context, id, state string, partiallyAvailable bool) error {
	_, err := r.q.Exec(ctx, `
		UPDATE stock_moves SET state = $2, partially_available = $3, updated_at = now()
		WHERE id = $1`, id, state, partiallyAvailable)
	if err != nil {
		return fmt.Errorf("update move state: %w", err)
	}
	return nil
}
