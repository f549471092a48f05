package dto

import "github.com/shopspring/decimal"

// ReciboResponse is a journal entry as shown to the operator. CreatedAt is
// RFC 3339 in the configured timezone.
type ReciboResponse struct {
	ID             string          `json:"id"`
	VentaID        *int            `json:"venta_id,omitempty"`
	SucursalNombre string          `json:"sucursal_nombre"`
	ClienteNombre  *string         `json:"cliente_nombre,omitempty"`
	SinRecibo      bool            `json:"sin_recibo"`
	MontoTotal     decimal.Decimal `json:"monto_total"`
	Texto          string          `json:"texto"`
	EstadoPDF      string          `json:"estado_pdf"`
	CreatedAt      string          `json:"created_at"`
}
