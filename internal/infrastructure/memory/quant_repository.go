package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/removal"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.QuantRepository = (*QuantRepo)(nil)

// QuantRepo ledger de quants en memoria. Devuelve siempre copias profundas:
// mutar el resultado no toca el store hasta un Update explícito.
type QuantRepo struct {
	s *Store
}

func matchesFilter(q *entity.Quant, f repository.QuantFilter) bool {
	if f.CompanyID != "" && q.CompanyID != f.CompanyID {
		return false
	}
	if f.ProductID != "" && q.ProductID != f.ProductID {
		return false
	}
	if len(f.LocationIDs) > 0 && !contains(f.LocationIDs, q.LocationID) {
		return false
	}
	switch {
	case f.LotUnset:
		if q.LotID != "" {
			return false
		}
	case f.LotID != "":
		if q.LotID != f.LotID {
			return false
		}
	}
	if f.PackageID != "" && q.PackageID != f.PackageID {
		return false
	}
	if f.OwnerID != "" && q.OwnerID != f.OwnerID {
		return false
	}
	switch {
	case f.Reservation.OnlyFree:
		if q.ReservationID != "" {
			return false
		}
	case f.Reservation.ReservedFor != "":
		if q.ReservationID != f.Reservation.ReservedFor {
			return false
		}
	case len(f.Reservation.NotReservedFor) > 0:
		if q.ReservationID != "" && contains(f.Reservation.NotReservedFor, q.ReservationID) {
			return false
		}
	}
	if f.Negative {
		if !q.Quantity.IsNegative() {
			return false
		}
	} else if !q.Quantity.IsPositive() {
		return false
	}
	if contains(f.ExcludeIDs, q.ID) {
		return false
	}
	return true
}

func (r *QuantRepo) find(f repository.QuantFilter, order removal.Order, limit, offset int) []*entity.Quant {
	var out []*entity.Quant
	for _, q := range r.s.quants {
		if matchesFilter(q, f) {
			out = append(out, cloneQuant(q))
		}
	}
	order.Sort(out)
	if offset > 0 {
		if offset >= len(out) {
			return nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (r *QuantRepo) Find(_ context.Context, f repository.QuantFilter, order removal.Order, limit, offset int) ([]*entity.Quant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.find(f, order, limit, offset), nil
}

// FindForUpdate en memoria equivale a Find: el TxRunner ya serializa las
// transacciones completas.
func (r *QuantRepo) FindForUpdate(_ context.Context, f repository.QuantFilter, order removal.Order, limit, offset int) ([]*entity.Quant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.find(f, order, limit, offset), nil
}

func (r *QuantRepo) GetByID(_ context.Context, id string) (*entity.Quant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quants[id]
	if !ok {
		return nil, nil
	}
	return cloneQuant(q), nil
}

func (r *QuantRepo) FindByReservation(_ context.Context, moveID string) ([]*entity.Quant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Quant
	for _, q := range r.s.quants {
		if q.ReservationID == moveID {
			out = append(out, cloneQuant(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *QuantRepo) FindPropagatedFrom(_ context.Context, negQuantID string, exclude []string) ([]*entity.Quant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Quant
	for _, q := range r.s.quants {
		if q.PropagatedFromID == negQuantID && !contains(exclude, q.ID) {
			out = append(out, cloneQuant(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *QuantRepo) SetPropagatedFrom(_ context.Context, ids []string, negQuantID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		if q, ok := r.s.quants[id]; ok {
			q.PropagatedFromID = negQuantID
			q.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *QuantRepo) Create(_ context.Context, q *entity.Quant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.quants[q.ID] = cloneQuant(q)
	return nil
}

func (r *QuantRepo) Update(_ context.Context, q *entity.Quant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.quants[q.ID] = cloneQuant(q)
	return nil
}

func (r *QuantRepo) Delete(_ context.Context, ids ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.quants, id)
	}
	// Replica ON DELETE SET NULL de propagated_from_id.
	for _, q := range r.s.quants {
		if q.PropagatedFromID != "" && contains(ids, q.PropagatedFromID) {
			q.PropagatedFromID = ""
		}
	}
	return nil
}

func (r *QuantRepo) AddHistory(_ context.Context, quantID string, moveIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quants[quantID]
	if !ok {
		return nil
	}
	for _, moveID := range moveIDs {
		if !contains(q.History, moveID) {
			q.History = append(q.History, moveID)
		}
	}
	return nil
}

func (r *QuantRepo) ClearReservation(_ context.Context, moveID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.quants {
		if q.ReservationID == moveID {
			q.ReservationID = ""
			q.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *QuantRepo) AggregateByLocations(_ context.Context, companyID string, locationIDs []string) (map[string]decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := make(map[string]decimal.Decimal)
	for _, q := range r.s.quants {
		if q.CompanyID != companyID || !contains(locationIDs, q.LocationID) {
			continue
		}
		totals[q.ProductID] = totals[q.ProductID].Add(q.Quantity)
	}
	return totals, nil
}

func (r *QuantRepo) AggregateByPackage(_ context.Context, packageID string) (map[string]decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := make(map[string]decimal.Decimal)
	for _, q := range r.s.quants {
		if q.PackageID != packageID {
			continue
		}
		totals[q.ProductID] = totals[q.ProductID].Add(q.Quantity)
	}
	return totals, nil
}

func (r *QuantRepo) SerialInInternalStock(_ context.Context, productID, lotID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.quants {
		if q.ProductID != productID || q.LotID != lotID || !q.Quantity.IsPositive() {
			continue
		}
		loc, ok := r.s.locations[q.LocationID]
		if ok && loc.IsInternal() {
			return true, nil
		}
	}
	return false, nil
}
