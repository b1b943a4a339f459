// Package memory implementa los puertos de repositorio sobre mapas en memoria.
// Pensado para pruebas y demos: mismo contrato que el adaptador PostgreSQL
// (copias profundas, vacío = sin valor, orden determinista), sin rollback.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-quants/internal/application/quantops"
	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
)

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu sync.Mutex

	quants    map[string]*entity.Quant
	moves     map[string]*entity.Move
	locations map[string]*entity.Location
	products  map[string]*entity.Product
	lots      map[string]*entity.Lot
	packages  map[string]*entity.Package

	// txMu serializa transacciones completas, el equivalente grueso de los
	// bloqueos de fila del adaptador PostgreSQL.
	txMu sync.Mutex
}

func NewStore() *Store {
	return &Store{
		quants:    make(map[string]*entity.Quant),
		moves:     make(map[string]*entity.Move),
		locations: make(map[string]*entity.Location),
		products:  make(map[string]*entity.Product),
		lots:      make(map[string]*entity.Lot),
		packages:  make(map[string]*entity.Package),
	}
}

func (s *Store) Quants() *QuantRepo       { return &QuantRepo{s: s} }
func (s *Store) Moves() *MoveRepo         { return &MoveRepo{s: s} }
func (s *Store) Locations() *LocationRepo { return &LocationRepo{s: s} }
func (s *Store) Products() *ProductRepo   { return &ProductRepo{s: s} }
func (s *Store) Lots() *LotRepo           { return &LotRepo{s: s} }
func (s *Store) Packages() *PackageRepo   { return &PackageRepo{s: s} }

var _ quantops.TxRunner = (*TxRunner)(nil)

// TxRunner frontera transaccional en memoria: serializa los callbacks con un
// mutex global. Sin rollback; un fn que falla a mitad deja sus escrituras
// (suficiente para pruebas, que siempre parten de un Store nuevo).
type TxRunner struct {
	store *Store
}

func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	quants repository.QuantRepository,
	moves repository.MoveRepository,
	locations repository.LocationRepository,
	products repository.ProductRepository,
) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(r.store.Quants(), r.store.Moves(), r.store.Locations(), r.store.Products())
}

func cloneQuant(q *entity.Quant) *entity.Quant {
	c := *q
	c.History = make([]string, len(q.History))
	copy(c.History, q.History)
	return &c
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
