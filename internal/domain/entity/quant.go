package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quant representa una cantidad de un producto en una ubicación concreta
// (con lote, paquete y dueño opcionales). Es la fila del ledger físico:
// la suma de Quantity de todos los quants de un (producto, ubicación) es el
// stock real contable, incluyendo deuda (quants negativos).
//
// Un quant tiene un único estado de reserva: la reserva parcial se modela
// partiendo la fila en dos (parte reservada, parte libre), nunca con un
// contador aparte.
type Quant struct {
	ID        string
	CompanyID string
	ProductID string

	LocationID string
	LotID      string // vacío = sin lote
	PackageID  string // vacío = suelto
	OwnerID    string // vacío = stock propio

	// Quantity cantidad con signo en la UdM base del producto.
	// Positiva = stock real presente; negativa = deuda (stock prometido como
	// salido antes de consumir el quant real correspondiente).
	Quantity decimal.Decimal

	// ReservationID movimiento en curso que tiene derecho sobre esta fila
	// (vacío = libre). La reserva no altera Quantity.
	ReservationID string

	// Cost costo unitario al crearse, para valoración.
	Cost decimal.Decimal

	// InDate fecha de entrada al stock; clave del orden FIFO/LIFO.
	InDate time.Time

	// PropagatedFromID si esta fila positiva se creó para compensar un quant
	// negativo (flujo especulativo), apunta a ese negativo.
	PropagatedFromID string

	// History movimientos que tocaron este quant, en orden.
	History []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewID genera un identificador de quant/movimiento (UUID v4 en texto).
// El desempate determinista del orden de remoción usa comparación
// lexicográfica de estos ids.
func NewID() string {
	return uuid.New().String()
}

// IsNegative indica si la fila representa deuda.
func (q *Quant) IsNegative() bool {
	return q.Quantity.IsNegative()
}

// IsReserved indica si un movimiento tiene derecho sobre la fila.
func (q *Quant) IsReserved() bool {
	return q.ReservationID != ""
}

// SameGroup indica si otro quant comparte la clave de agrupación
// (producto, ubicación, lote, paquete, dueño, empresa).
func (q *Quant) SameGroup(o *Quant) bool {
	return q.ProductID == o.ProductID &&
		q.LocationID == o.LocationID &&
		q.LotID == o.LotID &&
		q.PackageID == o.PackageID &&
		q.OwnerID == o.OwnerID &&
		q.CompanyID == o.CompanyID
}

// CloneForSplit devuelve una copia con nuevo id y cantidad qty, conservando
// historial, costo, fecha de entrada y estado de reserva. Es la fila
// "sobrante" de un split.
func (q *Quant) CloneForSplit(qty decimal.Decimal, now time.Time) *Quant {
	history := make([]string, len(q.History))
	copy(history, q.History)
	return &Quant{
		ID:               NewID(),
		CompanyID:        q.CompanyID,
		ProductID:        q.ProductID,
		LocationID:       q.LocationID,
		LotID:            q.LotID,
		PackageID:        q.PackageID,
		OwnerID:          q.OwnerID,
		Quantity:         qty,
		ReservationID:    q.ReservationID,
		Cost:             q.Cost,
		InDate:           q.InDate,
		PropagatedFromID: q.PropagatedFromID,
		History:          history,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
