// Package reservation construye planes de reserva: dada una demanda y un
// contexto de movimiento, selecciona quants candidatos en el orden de la
// estrategia de remoción. No tiene efectos: las escrituras las aplica el
// mutador (paquete quantops) a partir del plan.
package reservation

import (
	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Entry par (quant, cantidad) de un plan. Quant nil significa "sin reservar
// contra stock real": el caller decide si crear un quant especulativo o dejar
// el movimiento parcialmente disponible.
type Entry struct {
	Quant *entity.Quant
	Qty   decimal.Decimal
}

// Plan secuencia ordenada de pares cuyo total siempre suma la cantidad pedida.
type Plan []Entry

// Total suma de todas las cantidades del plan (igual a la demanda).
func (p Plan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range p {
		total = total.Add(e.Qty)
	}
	return total
}

// Matched porción cubierta con quants reales.
func (p Plan) Matched() decimal.Decimal {
	total := decimal.Zero
	for _, e := range p {
		if e.Quant != nil {
			total = total.Add(e.Qty)
		}
	}
	return total
}

// Unmatched porción sin respaldo en stock real (entradas nil).
func (p Plan) Unmatched() decimal.Decimal {
	return p.Total().Sub(p.Matched())
}

// FullyMatched indica si todo el plan está respaldado por quants reales.
func (p Plan) FullyMatched() bool {
	return p.Unmatched().IsZero()
}

// consume recorre quants en orden tomando min(restante, cantidad del quant) de
// cada uno hasta agotar la demanda o los candidatos. Devuelve las entradas y
// lo que quedó sin cubrir.
func consume(quants []*entity.Quant, qty decimal.Decimal) (Plan, decimal.Decimal) {
	var plan Plan
	remaining := qty
	for _, q := range quants {
		if !remaining.IsPositive() {
			break
		}
		available := q.Quantity
		if !available.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, available)
		plan = append(plan, Entry{Quant: q, Qty: take})
		remaining = remaining.Sub(take)
	}
	return plan, remaining
}
