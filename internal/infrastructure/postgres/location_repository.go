package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación de LocationRepository sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_locations (id, company_id, name, usage, parent_id, parent_path)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.CompanyID, l.Name, l.Usage, nullable(l.ParentID), l.ParentPath,
	)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, name, usage, COALESCE(parent_id, ''), parent_path
		FROM stock_locations WHERE id = $1`, id,
	).Scan(&l.ID, &l.CompanyID, &l.Name, &l.Usage, &l.ParentID, &l.ParentPath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

// SubtreeIDs resuelve el subárbol por prefijo de parent_path (raíz incluida).
func (r *LocationRepo) SubtreeIDs(ctx context.Context, rootID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT l.id
		FROM stock_locations l
		WHERE l.parent_path LIKE (
			SELECT root.parent_path FROM stock_locations root WHERE root.id = $1
		) || '%'
		ORDER BY l.parent_path`, rootID)
	if err != nil {
		return nil, fmt.Errorf("location subtree: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan location id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
