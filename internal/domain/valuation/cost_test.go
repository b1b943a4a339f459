package valuation_test

import (
	"testing"

	"github.com/jhoicas/stock-quants/internal/domain/valuation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAverageCost_PromedioPonderado(t *testing.T) {
	// 10 unidades a 10.00 + 10 unidades a 20.00 = 20 unidades a 15.00
	nuevo := valuation.AverageCost(
		decimal.NewFromInt(10), decimal.NewFromInt(10),
		decimal.NewFromInt(10), decimal.NewFromInt(20),
	)
	assert.True(t, nuevo.Equal(decimal.NewFromInt(15)),
		"el promedio ponderado de 10@10 y 10@20 debe ser 15, fue %s", nuevo)
}

func TestAverageCost_EntradaDominaConStockCero(t *testing.T) {
	nuevo := valuation.AverageCost(
		decimal.Zero, decimal.NewFromInt(99),
		decimal.NewFromInt(5), decimal.RequireFromString("12.50"),
	)
	assert.True(t, nuevo.Equal(decimal.RequireFromString("12.50")),
		"sin stock previo el costo debe ser el de la entrada")
}

// TestAverageCost_StockEnDeuda con balance negativo el denominador no es
// fiable: se adopta el costo de entrada en vez de dividir.
func TestAverageCost_StockEnDeuda(t *testing.T) {
	nuevo := valuation.AverageCost(
		decimal.NewFromInt(-8), decimal.NewFromInt(10),
		decimal.NewFromInt(5), decimal.NewFromInt(20),
	)
	assert.True(t, nuevo.Equal(decimal.NewFromInt(20)))
}

func TestValue(t *testing.T) {
	v := valuation.Value(decimal.NewFromInt(4), decimal.RequireFromString("2.25"))
	assert.True(t, v.Equal(decimal.NewFromInt(9)))
}
