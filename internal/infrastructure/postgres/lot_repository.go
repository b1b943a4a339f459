package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-quants/internal/domain"
	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
)

var (
	_ repository.LotRepository     = (*LotRepo)(nil)
	_ repository.PackageRepository = (*PackageRepo)(nil)
)

// LotRepo implementación de LotRepository sobre PostgreSQL.
type LotRepo struct {
	q Querier
}

func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_lots (id, company_id, product_id, name, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.CompanyID, l.ProductID, l.Name, l.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lote duplicado %s", domain.ErrInvalidInput, l.Name)
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	var l entity.Lot
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, product_id, name, created_at
		FROM stock_lots WHERE id = $1`, id,
	).Scan(&l.ID, &l.CompanyID, &l.ProductID, &l.Name, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// PackageRepo implementación de PackageRepository sobre PostgreSQL.
type PackageRepo struct {
	q Querier
}

func NewPackageRepository(q Querier) *PackageRepo {
	return &PackageRepo{q: q}
}

func (r *PackageRepo) Create(ctx context.Context, p *entity.Package) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_packages (id, company_id, name, created_at)
		VALUES ($1, $2, $3, $4)`,
		p.ID, p.CompanyID, p.Name, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: paquete duplicado %s", domain.ErrInvalidInput, p.Name)
		}
		return fmt.Errorf("insert package: %w", err)
	}
	return nil
}

func (r *PackageRepo) GetByID(ctx context.Context, id string) (*entity.Package, error) {
	var p entity.Package
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, name, created_at
		FROM stock_packages WHERE id = $1`, id,
	).Scan(&p.ID, &p.CompanyID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get package: %w", err)
	}
	return &p, nil
}
