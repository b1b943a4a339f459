// Package valuation implementa la lógica de costo promedio ponderado
// (servicio de dominio, sin estado).
package valuation

import "github.com/shopspring/decimal"

// AverageCost calcula el nuevo costo promedio ponderado al entrar stock:
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Si el denominador no es positivo (stock en deuda o cero), devuelve el costo de entrada.
func AverageCost(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return costoEntrada
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// Value devuelve el valor de inventario de una cantidad a un costo unitario.
func Value(qty, unitCost decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitCost)
}
