// Package pos holds the point-of-sale rules that do not depend on any
// transport or storage: promotion pricing, the cart and the checkout state
// machine. Every function takes "now" explicitly so results are reproducible.
package pos

import (
	"time"

	"bishuteria/internal/model"

	"github.com/shopspring/decimal"
)

var cien = decimal.NewFromInt(100)

// Cotizacion is the priced view of one product at a given quantity.
type Cotizacion struct {
	PrecioLista       decimal.Decimal  `json:"precio_lista"`
	PrecioFinal       decimal.Decimal  `json:"precio_final"`
	Descuento         *model.Promocion `json:"descuento,omitempty"`
	Es2x1             bool             `json:"es_2x1"`
	Cantidad          int              `json:"cantidad"`
	CantidadFacturada int              `json:"cantidad_facturada"`
	Subtotal          decimal.Decimal  `json:"subtotal"`
}

// PromocionActiva reports whether now falls inside [FechaInicio, FechaFin].
// Date-only bounds are expanded to whole days in now's location. A promotion
// missing either bound is never active.
func PromocionActiva(p model.Promocion, now time.Time) bool {
	if p.FechaInicio.IsZero() || p.FechaFin.IsZero() {
		return false
	}
	loc := now.Location()
	return !now.Before(p.FechaInicio.InicioEn(loc)) && !now.After(p.FechaFin.FinEn(loc))
}

// PromocionesActivas keeps catalog order.
func PromocionesActivas(p model.Producto, now time.Time) []model.Promocion {
	var activas []model.Promocion
	for _, promo := range p.Promociones {
		if PromocionActiva(promo, now) {
			activas = append(activas, promo)
		}
	}
	return activas
}

// DescuentoActivo returns the first active promotion in catalog order when it
// is a discount. A discount listed after an active 2x1 is never applied.
func DescuentoActivo(p model.Producto, now time.Time) *model.Promocion {
	for _, promo := range p.Promociones {
		if !PromocionActiva(promo, now) {
			continue
		}
		if promo.Tipo != model.PromocionDescuento {
			return nil
		}
		found := promo
		return &found
	}
	return nil
}

// Tiene2x1 reports whether any buy-one-get-one promotion is active.
func Tiene2x1(p model.Producto, now time.Time) bool {
	for _, promo := range p.Promociones {
		if promo.Tipo == model.Promocion2x1 && PromocionActiva(promo, now) {
			return true
		}
	}
	return false
}

// PrecioFinal is the unit price after the active discount, rounded to cents
// and never below zero. Rounding happens before the line is multiplied by
// the billed quantity, so a fractional discount (33.33%) can total a few
// cents away from multiplying the unrounded price. Receipts and the sale
// payload both use this rounded price.
func PrecioFinal(p model.Producto, now time.Time) decimal.Decimal {
	precio := p.PrecioVenta
	if d := DescuentoActivo(p, now); d != nil {
		precio = precio.Sub(precio.Mul(d.Valor).Div(cien))
	}
	if precio.IsNegative() {
		return decimal.Zero
	}
	return precio.Round(2)
}

// CantidadFacturada is ceil(q/2) under a 2x1, q otherwise.
func CantidadFacturada(cantidad int, es2x1 bool) int {
	if cantidad <= 0 {
		return 0
	}
	if es2x1 {
		return (cantidad + 1) / 2
	}
	return cantidad
}

// Cotizar prices cantidad units of p. Discount and 2x1 compound when both
// are active.
func Cotizar(p model.Producto, cantidad int, now time.Time) Cotizacion {
	es2x1 := Tiene2x1(p, now)
	final := PrecioFinal(p, now)
	facturada := CantidadFacturada(cantidad, es2x1)
	return Cotizacion{
		PrecioLista:       p.PrecioVenta,
		PrecioFinal:       final,
		Descuento:         DescuentoActivo(p, now),
		Es2x1:             es2x1,
		Cantidad:          cantidad,
		CantidadFacturada: facturada,
		Subtotal:          final.Mul(decimal.NewFromInt(int64(facturada))),
	}
}
