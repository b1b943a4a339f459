package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trazabilidad de un producto.
const (
	TrackingNone   = "none"
	TrackingLot    = "lot"
	TrackingSerial = "serial" // un número de serie = exactamente una unidad
)

// Product representa un producto o SKU del inventario.
// Cost es el costo promedio ponderado; UoMRounding es el paso de redondeo de la
// unidad de medida (ej. 0.001 para kg con 3 decimales) usado en comparaciones
// de cantidades.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string
	Name        string
	Cost        decimal.Decimal
	UoMRounding decimal.Decimal
	Tracking    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Rounding devuelve el paso de redondeo efectivo (1 si no está configurado).
func (p *Product) Rounding() decimal.Decimal {
	if p.UoMRounding.IsPositive() {
		return p.UoMRounding
	}
	return decimal.New(1, 0)
}

// RoundQty redondea una cantidad al paso de la unidad de medida del producto.
func (p *Product) RoundQty(q decimal.Decimal) decimal.Decimal {
	r := p.Rounding()
	return q.Div(r).Round(0).Mul(r)
}

// CompareQty compara dos cantidades con la tolerancia de redondeo de la UdM:
// -1 si a < b, 0 si son iguales dentro de la tolerancia, 1 si a > b.
func (p *Product) CompareQty(a, b decimal.Decimal) int {
	return p.RoundQty(a).Cmp(p.RoundQty(b))
}

// IsZeroQty indica si la cantidad es cero dentro de la tolerancia de la UdM.
func (p *Product) IsZeroQty(q decimal.Decimal) bool {
	return p.RoundQty(q).IsZero()
}
