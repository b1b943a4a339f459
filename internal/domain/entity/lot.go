package entity

import "time"

// Lot representa un lote o número de serie de un producto.
// Para productos con Tracking=serial, un lote equivale a exactamente una unidad.
type Lot struct {
	ID        string
	CompanyID string
	ProductID string
	Name      string
	CreatedAt time.Time
}

// Package representa un paquete físico (caja, pallet) que agrupa quants.
// Mover un paquete completo relocaliza todos sus quants conservando PackageID.
type Package struct {
	ID        string
	CompanyID string
	Name      string
	CreatedAt time.Time
}
