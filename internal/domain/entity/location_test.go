package entity_test

import (
	"testing"

	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestBuildParentPath(t *testing.T) {
	raiz := &entity.Location{ID: "wh"}
	raiz.ParentPath = entity.BuildParentPath(nil, raiz.ID)
	assert.Equal(t, "wh/", raiz.ParentPath)

	hija := &entity.Location{ID: "shelf", ParentID: raiz.ID}
	hija.ParentPath = entity.BuildParentPath(raiz, hija.ID)
	assert.Equal(t, "wh/shelf/", hija.ParentPath)
}

func TestContains_Subarbol(t *testing.T) {
	raiz := &entity.Location{ID: "wh", ParentPath: "wh/"}
	hija := &entity.Location{ID: "shelf", ParentPath: "wh/shelf/"}
	ajena := &entity.Location{ID: "otra", ParentPath: "otra/"}

	assert.True(t, raiz.Contains(raiz), "una ubicación se contiene a sí misma")
	assert.True(t, raiz.Contains(hija))
	assert.False(t, raiz.Contains(ajena))
	assert.False(t, hija.Contains(raiz))
	assert.False(t, raiz.Contains(nil))
}

func TestIsVirtualSource(t *testing.T) {
	casos := map[string]bool{
		entity.LocationSupplier:   true,
		entity.LocationInventory:  true,
		entity.LocationProduction: true,
		entity.LocationInternal:   false,
		entity.LocationCustomer:   false,
		entity.LocationTransit:    false,
		entity.LocationView:       false,
	}
	for uso, esperado := range casos {
		l := &entity.Location{Usage: uso}
		assert.Equal(t, esperado, l.IsVirtualSource(), "usage=%s", uso)
		assert.Equal(t, !esperado, l.IsRealSource(), "usage=%s", uso)
	}
}
