package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")

	// ErrUnknownStrategy estrategia de remoción desconocida o no soportada.
	// Error de configuración: se propaga al caller, nunca hay fallback silencioso.
	ErrUnknownStrategy = errors.New("estrategia de remoción desconocida")

	// ErrInvalidReservation reserva o split con cantidad no positiva, o contra
	// un quant sin cantidad disponible. Indica un bug en el caller.
	ErrInvalidReservation = errors.New("reserva inválida: cantidad o quant no positivo")

	// ErrInvalidDestination intento de mover stock a una ubicación de tipo "view"
	// (agregación, no física).
	ErrInvalidDestination = errors.New("destino inválido: ubicación de tipo vista")

	// ErrInsufficientLot violación de trazabilidad por número de serie: más de una
	// unidad bajo un serial, o serial ya presente en stock interno.
	ErrInsufficientLot = errors.New("número de serie inválido o duplicado en stock")
)
