package dto

import "github.com/shopspring/decimal"

// ConsultaPreciosResponse is the price check answer, priced for one unit
// at the moment of the request.
type ConsultaPreciosResponse struct {
	ProductoID      int              `json:"producto_id"`
	Nombre          string           `json:"nombre"`
	CodigoBarras    string           `json:"codigo_barras"`
	PrecioVenta     decimal.Decimal  `json:"precio_venta"`
	PrecioFinal     decimal.Decimal  `json:"precio_final"`
	StockDisponible int              `json:"stock_disponible"`
	Promocion       *PromocionActiva `json:"promocion,omitempty"`
}

type PromocionActiva struct {
	Descuento    *decimal.Decimal `json:"descuento_porcentaje,omitempty"`
	Es2x1        bool             `json:"es_2x1"`
	VigenteHasta string           `json:"vigente_hasta,omitempty"`
}
