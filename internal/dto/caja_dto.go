package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────
// id_sucursal may be omitted: it then defaults to the session's branch.

type AbrirCajaRequest struct {
	SucursalID   int   `json:"id_sucursal"   validate:"omitempty,min=1"`
	SaldoInicial Monto `json:"saldo_inicial"`
	// MantenerSaldo carries the previous caja's final balance forward
	// (administrators only). SaldoInicial is ignored when set.
	MantenerSaldo bool `json:"mantener_saldo"`
}

type EditarCajaRequest struct {
	SucursalID   int   `json:"id_sucursal"   validate:"omitempty,min=1"`
	SaldoInicial Monto `json:"saldo_inicial"`
	Ingresos     Monto `json:"ingresos"`
	Egresos      Monto `json:"egresos"`
}

type EgresoRequest struct {
	SucursalID int   `json:"id_sucursal" validate:"omitempty,min=1"`
	Monto      Monto `json:"monto"`
}

type CerrarCajaRequest struct {
	SucursalID    int    `json:"id_sucursal"   validate:"omitempty,min=1"`
	Ingresos      Monto  `json:"ingresos"`
	Egresos       Monto  `json:"egresos"`
	Justificacion string `json:"justificacion" validate:"max=500"`
	Confirmado    bool   `json:"confirmado"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// CajaResponse amounts are formatted with two decimals.
type CajaResponse struct {
	SucursalID      int     `json:"id_sucursal"`
	Estado          string  `json:"estado"` // ausente | abierta | cerrada
	CajaID          *int    `json:"caja_id,omitempty"`
	SaldoInicial    string  `json:"saldo_inicial"`
	Ingresos        string  `json:"ingresos"`
	Egresos         string  `json:"egresos"`
	SaldoFinal      string  `json:"saldo_final"`
	SaldoDisponible string  `json:"saldo_disponible"`
	Justificacion   *string `json:"justificacion,omitempty"`
	ActualizadaEn   string  `json:"actualizada_en"`
}
