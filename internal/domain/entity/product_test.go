package entity_test

import (
	"testing"

	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundQty_PasoDeUdM(t *testing.T) {
	p := &entity.Product{UoMRounding: decimal.RequireFromString("0.001")}

	assert.True(t, p.RoundQty(decimal.RequireFromString("2.0004")).
		Equal(decimal.RequireFromString("2.000")))
	assert.True(t, p.RoundQty(decimal.RequireFromString("2.0006")).
		Equal(decimal.RequireFromString("2.001")))
}

func TestCompareQty_ToleranciaDeRedondeo(t *testing.T) {
	p := &entity.Product{UoMRounding: decimal.RequireFromString("0.01")}

	// Diferencia menor al paso: iguales dentro de la tolerancia.
	assert.Zero(t, p.CompareQty(
		decimal.RequireFromString("5.001"),
		decimal.RequireFromString("5.002"),
	))
	assert.Equal(t, -1, p.CompareQty(decimal.NewFromInt(4), decimal.NewFromInt(5)))
	assert.Equal(t, 1, p.CompareQty(decimal.NewFromInt(6), decimal.NewFromInt(5)))
}

func TestIsZeroQty(t *testing.T) {
	p := &entity.Product{UoMRounding: decimal.RequireFromString("0.01")}

	assert.True(t, p.IsZeroQty(decimal.RequireFromString("0.004")))
	assert.False(t, p.IsZeroQty(decimal.RequireFromString("0.01")))
}

// TestRounding_SinConfigurar sin paso configurado se comporta como unidades
// enteras (paso 1).
func TestRounding_SinConfigurar(t *testing.T) {
	p := &entity.Product{}
	assert.True(t, p.Rounding().Equal(decimal.New(1, 0)))
	assert.True(t, p.RoundQty(decimal.RequireFromString("2.4")).Equal(decimal.NewFromInt(2)))
}
