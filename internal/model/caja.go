package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Caja states. CajaAusente is never sent by the POS API: it is how the
// gateway names "no caja record for this branch".
const (
	CajaAusente = "ausente"
	CajaAbierta = "abierta"
	CajaCerrada = "cerrada"
)

// Caja is a till session of one branch as returned by GET /cajas/status.
type Caja struct {
	ID            int             `json:"id"`
	SucursalID    int             `json:"id_sucursal"`
	Estado        string          `json:"estado"`
	SaldoInicial  decimal.Decimal `json:"saldo_inicial"`
	Ingresos      decimal.Decimal `json:"ingresos"`
	Egresos       decimal.Decimal `json:"egresos"`
	SaldoFinal    decimal.Decimal `json:"saldo_final"`
	Justificacion *string         `json:"justificacion,omitempty"`
	Sucursal      *Sucursal       `json:"sucursal,omitempty"`
}

// SaldoCalculado is saldo inicial + ingresos - egresos. The server owns the
// stored SaldoFinal; this is only used when the server omits it.
func (c *Caja) SaldoCalculado() decimal.Decimal {
	return c.SaldoInicial.Add(c.Ingresos).Sub(c.Egresos)
}

// SaldoDisponible prefers the server's final balance.
func (c *Caja) SaldoDisponible() decimal.Decimal {
	if c.SaldoFinal.IsZero() && (!c.SaldoInicial.IsZero() || !c.Ingresos.IsZero() || !c.Egresos.IsZero()) {
		return c.SaldoCalculado()
	}
	return c.SaldoFinal
}

// ── Wire payloads ─────────────────────────────────────────────────────────────
// Amounts travel as JSON numbers, matching what the POS API expects.

type AperturaCaja struct {
	SucursalID   int     `json:"id_sucursal"`
	SaldoInicial float64 `json:"saldo_inicial"`
	Rol          string  `json:"rol"`
}

type EdicionCaja struct {
	SucursalID   int     `json:"id_sucursal"`
	CajaID       int     `json:"caja_id"`
	SaldoInicial float64 `json:"saldo_inicial"`
	Ingresos     float64 `json:"ingresos"`
	Egresos      float64 `json:"egresos"`
}

// CierreCaja.Justificacion is nil unless Egresos > 0.
type CierreCaja struct {
	SucursalID    int     `json:"id_sucursal"`
	CerradoPor    int     `json:"cerrado_por"`
	Ingresos      float64 `json:"ingresos"`
	Egresos       float64 `json:"egresos"`
	Justificacion *string `json:"justificacion"`
}

type EgresoCaja struct {
	Monto float64 `json:"monto"`
}

// CajaVista is the last caja status the gateway fetched for a branch on
// behalf of one session. Expense guards read SaldoDisponible from here.
type CajaVista struct {
	SucursalID      int             `json:"id_sucursal"`
	Estado          string          `json:"estado"`
	Caja            *Caja           `json:"caja,omitempty"`
	SaldoDisponible decimal.Decimal `json:"saldo_disponible"`
	ActualizadaEn   time.Time       `json:"actualizada_en"`
}

// Abierta reports whether the cached status shows an open caja.
func (v *CajaVista) Abierta() bool {
	return v != nil && v.Estado == CajaAbierta && v.Caja != nil
}
