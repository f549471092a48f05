package model

import (
	"github.com/shopspring/decimal"
)

// Producto is a catalog entry as served by the POS API.
// The gateway never writes products; it only keeps per-session snapshots.
type Producto struct {
	ID           int             `json:"id"`
	Nombre       string          `json:"nombre"`
	CodigoBarras string          `json:"codigo_barras"`
	Costo        decimal.Decimal `json:"costo"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"`
	// Stock is the quantity on hand when the catalog was fetched. Never re-checked.
	Stock       int         `json:"stock"`
	Promociones []Promocion `json:"promociones"`
}

// Promocion.Tipo values as stored by the POS API.
const (
	PromocionDescuento = "descuento"
	Promocion2x1       = "2x1"
)

// Promocion is valid from FechaInicio to FechaFin, both ends inclusive.
// Valor is a percentage and only meaningful for PromocionDescuento.
type Promocion struct {
	ID          int             `json:"id"`
	Tipo        string          `json:"tipo"`
	Valor       decimal.Decimal `json:"valor"`
	FechaInicio Fecha           `json:"fecha_inicio"`
	FechaFin    Fecha           `json:"fecha_fin"`
}
