// Package removal traduce un identificador de estrategia de remoción
// (fifo/lifo) en una clave de ordenamiento determinista sobre quants.
// Servicio de dominio puro: sin efectos, sin estado.
package removal

import (
	"sort"

	"github.com/jhoicas/stock-quants/internal/domain"
	"github.com/jhoicas/stock-quants/internal/domain/entity"
)

// Estrategias soportadas. Vacío se interpreta como FIFO (estrategia por defecto
// del ruteo cuando nadie la configura).
const (
	FIFO = "fifo"
	LIFO = "lifo"
)

// Order clave de ordenamiento de candidatos para una estrategia.
type Order struct {
	// InDateDesc false = in_date ascendente (FIFO); true = descendente (LIFO).
	// El desempate usa el id en la misma dirección, para que el resultado sea
	// reproducible entre ejecuciones y adaptadores.
	InDateDesc bool
}

// OrderFor devuelve la clave de ordenamiento para la estrategia dada.
// Estrategias desconocidas fallan con domain.ErrUnknownStrategy: el orden de
// consumo debe ser determinista, nunca un fallback silencioso.
func OrderFor(strategy string) (Order, error) {
	switch strategy {
	case FIFO, "":
		return Order{InDateDesc: false}, nil
	case LIFO:
		return Order{InDateDesc: true}, nil
	default:
		return Order{}, domain.ErrUnknownStrategy
	}
}

// Less compara dos quants según la clave. Orden total: (in_date, id) en la
// dirección de la estrategia.
func (o Order) Less(a, b *entity.Quant) bool {
	if !a.InDate.Equal(b.InDate) {
		if o.InDateDesc {
			return a.InDate.After(b.InDate)
		}
		return a.InDate.Before(b.InDate)
	}
	if o.InDateDesc {
		return a.ID > b.ID
	}
	return a.ID < b.ID
}

// Sort ordena el slice in situ según la clave.
func (o Order) Sort(quants []*entity.Quant) {
	sort.SliceStable(quants, func(i, j int) bool {
		return o.Less(quants[i], quants[j])
	})
}
