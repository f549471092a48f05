package model

import (
	"github.com/shopspring/decimal"
)

// ClienteSinRecibo is the id_cliente sent for a sale recorded without a
// customer identity.
const ClienteSinRecibo = 0

// Cliente is identified by its CI. ID is zero until the POS API assigns one.
type Cliente struct {
	ID             int    `json:"id_cliente"`
	CI             string `json:"ci"`
	NombreCompleto string `json:"nombre_completo"`
}

// Encontrado distinguishes a real match from the empty object the API
// returns when a CI lookup finds nothing.
func (c *Cliente) Encontrado() bool {
	return c != nil && c.ID != 0
}

type NuevoCliente struct {
	NombreCompleto string `json:"nombre_completo"`
	CI             string `json:"ci"`
}

// NuevaVenta is the POST /ventas payload. Every line is a snapshot of the
// cart at confirm time; MontoTotal is the sum of the Subtotal values.
type NuevaVenta struct {
	ClienteID  int            `json:"id_cliente"`
	UsuarioID  int            `json:"id_usuario"`
	SucursalID int            `json:"id_sucursal"`
	Detalles   []DetalleVenta `json:"detalles"`
	MontoTotal float64        `json:"monto_total"`
	Fecha      string         `json:"fecha"`
	Vendedor   string         `json:"vendedor"`
}

type DetalleVenta struct {
	ProductoID     int     `json:"producto_id"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precio_unitario"`
	Subtotal       float64 `json:"subtotal"`
}

// VentaRegistrada is the authoritative sale returned by the POS API.
// Receipts are rendered from it, never from the local cart.
type VentaRegistrada struct {
	ID         int                      `json:"id"`
	Fecha      Fecha                    `json:"fecha"`
	Vendedor   string                   `json:"vendedor"`
	MontoTotal decimal.Decimal          `json:"monto_total"`
	Sucursal   Sucursal                 `json:"sucursal"`
	Cliente    *Cliente                 `json:"cliente,omitempty"`
	Detalles   []DetalleVentaRegistrada `json:"detalles"`
}

type DetalleVentaRegistrada struct {
	Producto       ProductoResumen `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type ProductoResumen struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
}
