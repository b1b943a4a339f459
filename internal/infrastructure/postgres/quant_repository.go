package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/removal"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.QuantRepository = (*QuantRepo)(nil)

// QuantRepo implementación de QuantRepository sobre PostgreSQL (usable con pool o tx).
// Las operaciones de bloqueo (FindForUpdate, FindPropagatedFrom) solo tienen
// sentido dentro de una transacción del TxRunner.
type QuantRepo struct {
	q Querier
}

// NewQuantRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewQuantRepository(q Querier) *QuantRepo {
	return &QuantRepo{q: q}
}

// quantColumns lista de selección con el historial agregado como arreglo.
const quantColumns = `
	sq.id, sq.company_id, sq.product_id, sq.location_id,
	COALESCE(sq.lot_id, ''), COALESCE(sq.package_id, ''), COALESCE(sq.owner_id, ''),
	sq.quantity, COALESCE(sq.reservation_id, ''), sq.cost, sq.in_date,
	COALESCE(sq.propagated_from_id, ''), sq.created_at, sq.updated_at,
	COALESCE(ARRAY(
		SELECT r.move_id FROM stock_quant_move_rel r
		WHERE r.quant_id = sq.id ORDER BY r.seq
	), '{}'::text[])`

func scanQuant(row pgx.Row) (*entity.Quant, error) {
	var q entity.Quant
	err := row.Scan(
		&q.ID, &q.CompanyID, &q.ProductID, &q.LocationID,
		&q.LotID, &q.PackageID, &q.OwnerID,
		&q.Quantity, &q.ReservationID, &q.Cost, &q.InDate,
		&q.PropagatedFromID, &q.CreatedAt, &q.UpdatedAt,
		&q.History,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// buildWhere traduce el QuantFilter a condiciones SQL. Los valores vacíos no
// filtran (mismo contrato que el adaptador en memoria).
func buildWhere(f repository.QuantFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(args))))
	}

	if f.CompanyID != "" {
		add("sq.company_id = ?", f.CompanyID)
	}
	if f.ProductID != "" {
		add("sq.product_id = ?", f.ProductID)
	}
	if len(f.LocationIDs) > 0 {
		add("sq.location_id = ANY(?)", f.LocationIDs)
	}
	switch {
	case f.LotUnset:
		conds = append(conds, "sq.lot_id IS NULL")
	case f.LotID != "":
		add("sq.lot_id = ?", f.LotID)
	}
	if f.PackageID != "" {
		add("sq.package_id = ?", f.PackageID)
	}
	if f.OwnerID != "" {
		add("sq.owner_id = ?", f.OwnerID)
	}

	switch {
	case f.Reservation.OnlyFree:
		conds = append(conds, "sq.reservation_id IS NULL")
	case f.Reservation.ReservedFor != "":
		add("sq.reservation_id = ?", f.Reservation.ReservedFor)
	case len(f.Reservation.NotReservedFor) > 0:
		add("(sq.reservation_id IS NULL OR NOT (sq.reservation_id = ANY(?)))", f.Reservation.NotReservedFor)
	}

	if f.Negative {
		conds = append(conds, "sq.quantity < 0")
	} else {
		conds = append(conds, "sq.quantity > 0")
	}

	if len(f.ExcludeIDs) > 0 {
		add("NOT (sq.id = ANY(?))", f.ExcludeIDs)
	}

	return strings.Join(conds, " AND "), args
}

func orderClause(order removal.Order) string {
	if order.InDateDesc {
		return "ORDER BY sq.in_date DESC, sq.id DESC"
	}
	return "ORDER BY sq.in_date ASC, sq.id ASC"
}

func (r *QuantRepo) find(ctx context.Context, f repository.QuantFilter, order removal.Order, limit, offset int, forUpdate bool) ([]*entity.Quant, error) {
	where, args := buildWhere(f)
	query := fmt.Sprintf(`SELECT %s FROM stock_quants sq WHERE %s %s`,
		quantColumns, where, orderClause(order))
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	if forUpdate {
		query += " FOR UPDATE"
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find quants: %w", err)
	}
	defer rows.Close()

	var quants []*entity.Quant
	for rows.Next() {
		q, err := scanQuant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quant: %w", err)
		}
		quants = append(quants, q)
	}
	return quants, rows.Err()
}

// Find consulta pura (lecturas de display, sin bloqueo).
func (r *QuantRepo) Find(ctx context.Context, f repository.QuantFilter, order removal.Order, limit, offset int) ([]*entity.Quant, error) {
	return r.find(ctx, f, order, limit, offset, false)
}

// FindForUpdate consulta bloqueando las filas (FOR UPDATE) en el orden
// determinista de la estrategia antes de leer cantidades. Dos reservas
// concurrentes sobre el mismo producto/ubicación convergen a la misma
// asignación física: la segunda espera el commit de la primera.
func (r *QuantRepo) FindForUpdate(ctx context.Context, f repository.QuantFilter, order removal.Order, limit, offset int) ([]*entity.Quant, error) {
	return r.find(ctx, f, order, limit, offset, true)
}

// GetByID devuelve el quant o nil si no existe.
func (r *QuantRepo) GetByID(ctx context.Context, id string) (*entity.Quant, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_quants sq WHERE sq.id = $1`, quantColumns)
	q, err := scanQuant(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quant: %w", err)
	}
	return q, nil
}

// FindByReservation devuelve los quants reservados por un movimiento
// (índice por reservation_id).
func (r *QuantRepo) FindByReservation(ctx context.Context, moveID string) ([]*entity.Quant, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_quants sq WHERE sq.reservation_id = $1 ORDER BY sq.id`, quantColumns)
	rows, err := r.q.Query(ctx, query, moveID)
	if err != nil {
		return nil, fmt.Errorf("find quants by reservation: %w", err)
	}
	defer rows.Close()

	var quants []*entity.Quant
	for rows.Next() {
		q, err := scanQuant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quant: %w", err)
		}
		quants = append(quants, q)
	}
	return quants, rows.Err()
}

// FindPropagatedFrom devuelve las sombras del negativo dado, bloqueadas en
// orden ascendente de id (orden fijo de bloqueo entre reconciliaciones
// concurrentes).
func (r *QuantRepo) FindPropagatedFrom(ctx context.Context, negQuantID string, exclude []string) ([]*entity.Quant, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_quants sq WHERE sq.propagated_from_id = $1`, quantColumns)
	args := []any{negQuantID}
	if len(exclude) > 0 {
		args = append(args, exclude)
		query += fmt.Sprintf(" AND NOT (sq.id = ANY($%d))", len(args))
	}
	query += " ORDER BY sq.id ASC FOR UPDATE"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find propagated quants: %w", err)
	}
	defer rows.Close()

	var quants []*entity.Quant
	for rows.Next() {
		q, err := scanQuant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quant: %w", err)
		}
		quants = append(quants, q)
	}
	return quants, rows.Err()
}

// SetPropagatedFrom reapunta el origen de deuda de un conjunto de quants
// (vacío = sin origen).
func (r *QuantRepo) SetPropagatedFrom(ctx context.Context, ids []string, negQuantID string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `
		UPDATE stock_quants SET propagated_from_id = $2, updated_at = now()
		WHERE id = ANY($1)`, ids, nullable(negQuantID))
	if err != nil {
		return fmt.Errorf("set propagated_from: %w", err)
	}
	return nil
}

// Create persiste el quant y su historial inicial.
func (r *QuantRepo) Create(ctx context.Context, q *entity.Quant) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_quants (
			id, company_id, product_id, location_id, lot_id, package_id, owner_id,
			quantity, reservation_id, cost, in_date, propagated_from_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		q.ID, q.CompanyID, q.ProductID, q.LocationID,
		nullable(q.LotID), nullable(q.PackageID), nullable(q.OwnerID),
		q.Quantity, nullable(q.ReservationID), q.Cost, q.InDate,
		nullable(q.PropagatedFromID), q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quant: %w", err)
	}
	if len(q.History) > 0 {
		return r.AddHistory(ctx, q.ID, q.History)
	}
	return nil
}

// Update escribe los campos mutables del quant (cantidad, ubicación, reserva,
// lote, paquete, costo, origen de deuda).
func (r *QuantRepo) Update(ctx context.Context, q *entity.Quant) error {
	_, err := r.q.Exec(ctx, `
		UPDATE stock_quants SET
			location_id = $2, lot_id = $3, package_id = $4, owner_id = $5,
			quantity = $6, reservation_id = $7, cost = $8, in_date = $9,
			propagated_from_id = $10, updated_at = $11
		WHERE id = $1`,
		q.ID, q.LocationID, nullable(q.LotID), nullable(q.PackageID), nullable(q.OwnerID),
		q.Quantity, nullable(q.ReservationID), q.Cost, q.InDate,
		nullable(q.PropagatedFromID), q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update quant: %w", err)
	}
	return nil
}

// Delete elimina filas del ledger (solo reconciliación/merges).
func (r *QuantRepo) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `DELETE FROM stock_quants WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("delete quants: %w", err)
	}
	return nil
}

// AddHistory anexa movimientos al historial del quant sin duplicar.
func (r *QuantRepo) AddHistory(ctx context.Context, quantID string, moveIDs []string) error {
	if len(moveIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_quant_move_rel (quant_id, move_id)
		SELECT $1, unnest($2::text[])
		ON CONFLICT DO NOTHING`, quantID, moveIDs)
	if err != nil {
		return fmt.Errorf("add quant history: %w", err)
	}
	return nil
}

// ClearReservation libera todos los quants reservados por el movimiento. Idempotente.
func (r *QuantRepo) ClearReservation(ctx context.Context, moveID string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE stock_quants SET reservation_id = NULL, updated_at = now()
		WHERE reservation_id = $1`, moveID)
	if err != nil {
		return fmt.Errorf("clear reservation: %w", err)
	}
	return nil
}

// AggregateByLocations suma cantidades por producto (negativos incluidos:
// es el balance contable de las ubicaciones).
func (r *QuantRepo) AggregateByLocations(ctx context.Context, companyID string, locationIDs []string) (map[string]decimal.Decimal, error) {
	if len(locationIDs) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT product_id, SUM(quantity)
		FROM stock_quants
		WHERE company_id = $1 AND location_id = ANY($2)
		GROUP BY product_id`, companyID, locationIDs)
	if err != nil {
		return nil, fmt.Errorf("aggregate quants by location: %w", err)
	}
	defer rows.Close()
	return scanAggregation(rows)
}

// AggregateByPackage suma cantidades por producto dentro de un paquete.
func (r *QuantRepo) AggregateByPackage(ctx context.Context, packageID string) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, SUM(quantity)
		FROM stock_quants
		WHERE package_id = $1
		GROUP BY product_id`, packageID)
	if err != nil {
		return nil, fmt.Errorf("aggregate quants by package: %w", err)
	}
	defer rows.Close()
	return scanAggregation(rows)
}

func scanAggregation(rows pgx.Rows) (map[string]decimal.Decimal, error) {
	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var productID string
		var qty decimal.Decimal
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, fmt.Errorf("scan aggregation: %w", err)
		}
		totals[productID] = qty
	}
	return totals, rows.Err()
}

// SerialInInternalStock indica si ya existe stock interno positivo del
// producto bajo el número de serie dado.
func (r *QuantRepo) SerialInInternalStock(ctx context.Context, productID, lotID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM stock_quants sq
			JOIN stock_locations l ON l.id = sq.location_id
			WHERE sq.product_id = $1 AND sq.lot_id = $2
			  AND sq.quantity > 0 AND l.usage = 'internal'
		)`, productID, lotID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("serial in stock: %w", err)
	}
	return exists, nil
}
