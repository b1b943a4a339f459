package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un movimiento de stock.
const (
	MoveDraft     = "draft"
	MoveConfirmed = "confirmed"
	MoveWaiting   = "waiting"
	MoveAssigned  = "assigned"
	MoveDone      = "done"
	MoveCancel    = "cancel"
)

// Move representa un movimiento de stock (colaborador externo, lectura
// principalmente). El motor solo escribe de vuelta el estado y los campos de
// disponibilidad; el resto es contexto inmutable dentro de la transacción.
type Move struct {
	ID        string
	CompanyID string
	Name      string
	ProductID string

	LocationID     string // origen
	LocationDestID string // destino

	// ProductQty demanda en la UdM base del producto.
	ProductQty decimal.Decimal

	// PriceUnit costo unitario para quants creados por este movimiento
	// (entradas desde proveedor, producción...).
	PriceUnit decimal.Decimal

	State string

	// PartiallyAvailable reserva cubre más de cero pero menos que ProductQty.
	PartiallyAvailable bool

	// RestrictLotID / RestrictPartnerID restricciones duras sobre qué quants
	// califican (lote exacto, dueño exacto).
	RestrictLotID     string
	RestrictPartnerID string

	// RemovalStrategy identificador resuelto por reglas de ruteo
	// ("fifo", "lifo"; vacío = fifo).
	RemovalStrategy string

	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDone indica si el movimiento ya fue procesado.
func (m *Move) IsDone() bool { return m.State == MoveDone }

// CanBeReserved indica si el movimiento admite reserva de stock.
// PartiallyAvailable no es un estado primario: un movimiento parcial sigue
// en confirmed/waiting con el flag activo.
func (m *Move) CanBeReserved() bool {
	return m.State == MoveConfirmed || m.State == MoveWaiting || m.State == MoveAssigned
}
