package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.MoveRepository     = (*MoveRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.LotRepository      = (*LotRepo)(nil)
	_ repository.PackageRepository  = (*PackageRepo)(nil)
)

// MoveRepo movimientos en memoria.
type MoveRepo struct {
	s *Store
}

func (r *MoveRepo) Create(_ context.Context, m *entity.Move) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *m
	r.s.moves[m.ID] = &c
	return nil
}

func (r *MoveRepo) GetByID(_ context.Context, id string) (*entity.Move, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.moves[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r *MoveRepo) UpdateState(_ context.Context, id, state string, partiallyAvailable bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.moves[id]; ok {
		m.State = state
		m.PartiallyAvailable = partiallyAvailable
		m.UpdatedAt = time.Now()
	}
	return nil
}

// LocationRepo ubicaciones en memoria.
type LocationRepo struct {
	s *Store
}

func (r *LocationRepo) Create(_ context.Context, l *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *l
	r.s.locations[l.ID] = &c
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	c := *l
	return &c, nil
}

func (r *LocationRepo) SubtreeIDs(_ context.Context, rootID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	root, ok := r.s.locations[rootID]
	if !ok {
		return nil, nil
	}
	type pathID struct{ path, id string }
	var found []pathID
	for _, l := range r.s.locations {
		if strings.HasPrefix(l.ParentPath, root.ParentPath) {
			found = append(found, pathID{l.ParentPath, l.ID})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].path < found[j].path })
	ids := make([]string, len(found))
	for i, f := range found {
		ids[i] = f.id
	}
	return ids, nil
}

// ProductRepo productos en memoria.
type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *p
	r.s.products[p.ID] = &c
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *ProductRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.products[id]; ok {
		p.Cost = cost
		p.UpdatedAt = time.Now()
	}
	return nil
}

// LotRepo lotes en memoria.
type LotRepo struct {
	s *Store
}

func (r *LotRepo) Create(_ context.Context, l *entity.Lot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *l
	r.s.lots[l.ID] = &c
	return nil
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	c := *l
	return &c, nil
}

// PackageRepo paquetes en memoria.
type PackageRepo struct {
	s *Store
}

func (r *PackageRepo) Create(_ context.Context, p *entity.Package) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *p
	r.s.packages[p.ID] = &c
	return nil
}

func (r *PackageRepo) GetByID(_ context.Context, id string) (*entity.Package, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.packages[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}
