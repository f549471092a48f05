package dto

import (
	"bishuteria/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type EntrarVentasRequest struct {
	SucursalID int `json:"id_sucursal" validate:"omitempty,min=1"`
}

type EscanearRequest struct {
	CodigoBarras string `json:"codigo_barras" validate:"max=64"`
}

type CantidadRequest struct {
	Cantidad int `json:"cantidad" validate:"required,min=1"`
}

type SinReciboRequest struct {
	SinRecibo bool `json:"sin_recibo"`
}

type BuscarClienteRequest struct {
	CI string `json:"ci" validate:"required,max=20"`
}

// ConfirmarVentaRequest carries the manual customer form. Both fields are
// ignored when the checkout is in no-receipt mode or a customer was located.
type ConfirmarVentaRequest struct {
	CI             string `json:"ci"              validate:"max=20"`
	NombreCompleto string `json:"nombre_completo" validate:"max=200"`
}

type CancelarVentaRequest struct {
	Confirmado bool `json:"confirmado"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineaCarritoResponse struct {
	ProductoID        int             `json:"producto_id"`
	Nombre            string          `json:"nombre"`
	CodigoBarras      string          `json:"codigo_barras"`
	Cantidad          int             `json:"cantidad"`
	CantidadFacturada int             `json:"cantidad_facturada"`
	Stock             int             `json:"stock"`
	PrecioLista       decimal.Decimal `json:"precio_lista"`
	PrecioFinal       decimal.Decimal `json:"precio_final"`
	Es2x1             bool            `json:"es_2x1"`
	ConDescuento      bool            `json:"con_descuento"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

type CheckoutResponse struct {
	Estado    string         `json:"estado"`
	SinRecibo bool           `json:"sin_recibo"`
	Cliente   *model.Cliente `json:"cliente,omitempty"`
	Error     string         `json:"error,omitempty"`
}

type CarritoResponse struct {
	SucursalID int                    `json:"id_sucursal"`
	Productos  int                    `json:"productos_en_catalogo"`
	CatalogoEn string                 `json:"catalogo_en,omitempty"`
	Lineas     []LineaCarritoResponse `json:"lineas"`
	Total      decimal.Decimal        `json:"total"`
	Checkout   CheckoutResponse       `json:"checkout"`
}

type EscaneoResponse struct {
	Resultado string `json:"resultado"`
	// LimpiarEntrada tells the front-end to clear the scan field; only a
	// scan that changed the cart does.
	LimpiarEntrada bool            `json:"limpiar_entrada"`
	Carrito        CarritoResponse `json:"carrito"`
}

type BuscarClienteResponse struct {
	Encontrado bool            `json:"encontrado"`
	Cliente    *model.Cliente  `json:"cliente,omitempty"`
	Carrito    CarritoResponse `json:"carrito"`
}

type VentaConfirmadaResponse struct {
	Venta    *model.VentaRegistrada `json:"venta"`
	ReciboID *string                `json:"recibo_id,omitempty"`
	Recibo   string                 `json:"recibo"`
	Carrito  CarritoResponse        `json:"carrito"`
}
