package quantops

import (
	"context"

	"github.com/jhoicas/stock-quants/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del store, pasando
// repositorios atados a esa transacción. Garantiza el todo-o-nada de cada
// operación del motor: una reserva o un movimiento se confirma completo o se
// revierte completo, aunque el plan reporte cobertura parcial como resultado
// válido.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		quants repository.QuantRepository,
		moves repository.MoveRepository,
		locations repository.LocationRepository,
		products repository.ProductRepository,
	) error) error
}
