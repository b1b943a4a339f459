package repository

import (
	"context"

	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/removal"
	"github.com/shopspring/decimal"
)

// ReservationFilter restringe candidatos según su estado de reserva.
// Campos mutuamente excluyentes; todos vacíos = sin restricción.
// Es la pieza que el motor de reservas encadena como "dominios preferidos"
// (primero quants ya reservados a este movimiento, luego libres...).
type ReservationFilter struct {
	OnlyFree       bool     // reservation_id vacío
	ReservedFor    string   // reservation_id = movimiento dado
	NotReservedFor []string // reservation_id vacío o distinto de los dados
}

// QuantFilter dominio de búsqueda de quants. Siempre restringe por producto y
// empresa; el resto de dimensiones son opcionales (valor cero = sin filtro).
type QuantFilter struct {
	CompanyID string
	ProductID string

	// LocationIDs subárbol de ubicaciones ya resuelto (ver LocationRepository.SubtreeIDs).
	LocationIDs []string

	// LotID filtra por lote exacto. LotUnset exige quants sin lote registrado
	// (stock legado sin trazar). Nunca se sustituye un lote por otro distinto:
	// esa decisión es del caller armando pasadas.
	LotID    string
	LotUnset bool

	PackageID string
	OwnerID   string

	Reservation ReservationFilter

	// Negative selecciona deuda (qty < 0). Por defecto solo stock real (qty > 0).
	Negative bool

	// ExcludeIDs quants descartados: los ya consumidos por pasadas anteriores
	// (las pasadas son ortogonales entre sí) o, al reconciliar, el negativo
	// origen del propio quant entrante.
	ExcludeIDs []string
}

// QuantRepository puerto de acceso al ledger de quants.
//
// Contrato de lectura para todos los componentes; las operaciones de
// escritura (Create/Update/Delete/SetPropagatedFrom/AddHistory/
// ClearReservation) solo pueden invocarse desde el mutador y el
// reconciliador (paquete quantops) dentro de una transacción.
type QuantRepository interface {
	// Find consulta pura, ordenada y paginada (lecturas de solo display).
	Find(ctx context.Context, f QuantFilter, order removal.Order, limit, offset int) ([]*entity.Quant, error)

	// FindForUpdate misma consulta pero bloqueando las filas (FOR UPDATE) en el
	// orden determinista de la estrategia, antes de leer su cantidad. Toda
	// decisión de reserva/mutación pasa por aquí.
	FindForUpdate(ctx context.Context, f QuantFilter, order removal.Order, limit, offset int) ([]*entity.Quant, error)

	// GetByID devuelve el quant o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Quant, error)

	// FindByReservation devuelve los quants reservados por un movimiento
	// (índice por reservation_id para liberar rápido).
	FindByReservation(ctx context.Context, moveID string) ([]*entity.Quant, error)

	// FindPropagatedFrom devuelve, bloqueados y en orden ascendente de id, los
	// quants "sombra" creados para compensar el negativo dado, excluyendo los
	// ids indicados.
	FindPropagatedFrom(ctx context.Context, negQuantID string, exclude []string) ([]*entity.Quant, error)

	// SetPropagatedFrom reapunta el origen de deuda de un conjunto de quants.
	SetPropagatedFrom(ctx context.Context, ids []string, negQuantID string) error

	Create(ctx context.Context, q *entity.Quant) error
	Update(ctx context.Context, q *entity.Quant) error
	Delete(ctx context.Context, ids ...string) error

	// AddHistory anexa movimientos al historial del quant (sin duplicar).
	AddHistory(ctx context.Context, quantID string, moveIDs []string) error

	// ClearReservation libera todos los quants reservados por el movimiento.
	// Idempotente.
	ClearReservation(ctx context.Context, moveID string) error

	// AggregateByLocations suma cantidades por producto en las ubicaciones dadas
	// (negativos incluidos: es el balance contable).
	AggregateByLocations(ctx context.Context, companyID string, locationIDs []string) (map[string]decimal.Decimal, error)

	// AggregateByPackage suma cantidades por producto dentro de un paquete
	// (para relocalizar el paquete entero).
	AggregateByPackage(ctx context.Context, packageID string) (map[string]decimal.Decimal, error)

	// SerialInInternalStock indica si ya existe stock interno positivo del
	// producto bajo el número de serie dado.
	SerialInInternalStock(ctx context.Context, productID, lotID string) (bool, error)
}
