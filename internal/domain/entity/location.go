package entity

import "strings"

// Tipos de uso de una ubicación de stock.
// Las de tipo supplier/inventory/production son virtuales: fuentes de
// suministro infinito, no almacenan stock físico contable.
const (
	LocationInternal   = "internal"
	LocationSupplier   = "supplier"
	LocationCustomer   = "customer"
	LocationInventory  = "inventory"
	LocationProduction = "production"
	LocationTransit    = "transit"
	LocationView       = "view"
)

// Location representa una ubicación de stock (bodega, estante, proveedor virtual...).
// ParentPath codifica la jerarquía como prefijo ("id1/id2/.../idN/") para
// consultas de subárbol sin recursión.
type Location struct {
	ID         string
	CompanyID  string
	Name       string
	Usage      string
	ParentID   string
	ParentPath string
}

// IsVirtualSource indica si la ubicación representa una fuente de suministro
// infinito (proveedor, ajuste de inventario, producción). Reservar contra
// ellas no consulta el ledger: todo lo pedido es "reservable".
func (l *Location) IsVirtualSource() bool {
	switch l.Usage {
	case LocationSupplier, LocationInventory, LocationProduction:
		return true
	}
	return false
}

// IsInternal indica si la ubicación almacena stock físico propio.
func (l *Location) IsInternal() bool {
	return l.Usage == LocationInternal
}

// IsRealSource indica si al consumir stock inexistente aquí debe quedar deuda
// (quant negativo). Las fuentes virtuales no acumulan deuda.
func (l *Location) IsRealSource() bool {
	return !l.IsVirtualSource()
}

// BuildParentPath calcula el parent_path de una ubicación hija de parent
// (nil = raíz): la ruta del padre más el id propio, terminada en "/".
func BuildParentPath(parent *Location, id string) string {
	if parent == nil {
		return id + "/"
	}
	return parent.ParentPath + id + "/"
}

// Contains indica si other está en el subárbol de l (l incluida).
func (l *Location) Contains(other *Location) bool {
	if other == nil {
		return false
	}
	if l.ID == other.ID {
		return true
	}
	return strings.HasPrefix(other.ParentPath, l.ParentPath)
}
