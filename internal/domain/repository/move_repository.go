package repository

import (
	"context"

	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MoveRepository puerto de acceso a movimientos de stock. El motor trata el
// movimiento como contexto de solo lectura; únicamente escribe de vuelta su
// estado y el flag de disponibilidad parcial.
type MoveRepository interface {
	Create(ctx context.Context, m *entity.Move) error

	// GetByID devuelve el movimiento o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Move, error)

	// UpdateState escribe estado y flag de disponibilidad parcial.
	UpdateState(ctx context.Context, id, state string, partiallyAvailable bool) error
}

// LocationRepository puerto de acceso a ubicaciones.
type LocationRepository interface {
	Create(ctx context.Context, l *entity.Location) error

	// GetByID devuelve la ubicación o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Location, error)

	// SubtreeIDs devuelve los ids de la ubicación raíz y todos sus descendientes.
	SubtreeIDs(ctx context.Context, rootID string) ([]string, error)
}

// ProductRepository puerto de acceso a productos.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error

	// GetByID devuelve el producto o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)

	// UpdateCost escribe el costo promedio ponderado del producto.
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
}

// LotRepository puerto de acceso a lotes/números de serie.
type LotRepository interface {
	Create(ctx context.Context, l *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
}

// PackageRepository puerto de acceso a paquetes.
type PackageRepository interface {
	Create(ctx context.Context, p *entity.Package) error
	GetByID(ctx context.Context, id string) (*entity.Package, error)
}
