package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Local validation failures. None of them reaches the POS API.
var (
	ErrSaldoInvalido          = errors.New("debe ser un numero mayor o igual a cero")
	ErrMontoInvalido          = errors.New("debe ser un numero mayor a cero")
	ErrJustificacionRequerida = errors.New("la justificacion es obligatoria cuando hay egresos")
	ErrEgresoExcedeSaldo      = errors.New("el egreso supera el saldo disponible de la caja")
	ErrSinCajaAnterior        = errors.New("no hay una caja anterior cuyo saldo mantener")
)

// Permission and state failures.
var (
	ErrSoloAdministrador   = errors.New("accion reservada al administrador")
	ErrSoloNoAdministrador = errors.New("el administrador no registra egresos")
	ErrCajaNoAbierta       = errors.New("no hay una caja abierta en la sucursal")
	ErrCajaYaAbierta       = errors.New("ya hay una caja abierta en la sucursal")
	ErrSucursalNoPermitida = errors.New("no puede operar sobre otra sucursal")
	ErrSucursalRequerida   = errors.New("el usuario no tiene sucursal asignada")
)

var (
	ErrCredencialesInvalidas = errors.New("credenciales invalidas")
	ErrSesionExpirada        = errors.New("sesion expirada")
	ErrProductoNoEncontrado  = errors.New("producto no encontrado")
	ErrReciboNoEncontrado    = errors.New("recibo no encontrado")
	ErrPDFPendiente          = errors.New("el PDF del recibo aun no esta disponible")
)

// ValidacionError groups per-field failures so they can be reported
// together as {"fields": {...}}.
type ValidacionError struct {
	Campos map[string]error
}

func (e *ValidacionError) Error() string {
	nombres := make([]string, 0, len(e.Campos))
	for campo := range e.Campos {
		nombres = append(nombres, campo)
	}
	sort.Strings(nombres)
	partes := make([]string, 0, len(nombres))
	for _, campo := range nombres {
		partes = append(partes, campo+": "+e.Campos[campo].Error())
	}
	return "validacion: " + strings.Join(partes, "; ")
}

func (e *ValidacionError) Unwrap() []error {
	out := make([]error, 0, len(e.Campos))
	for _, err := range e.Campos {
		out = append(out, err)
	}
	return out
}

// Mensajes flattens Campos for the API envelope.
func (e *ValidacionError) Mensajes() map[string]string {
	out := make(map[string]string, len(e.Campos))
	for campo, err := range e.Campos {
		out[campo] = err.Error()
	}
	return out
}

func campoInvalido(campo string, err error) *ValidacionError {
	return &ValidacionError{Campos: map[string]error{campo: err}}
}

// validaciones accumulates field errors in call order.
type validaciones map[string]error

func (v validaciones) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidacionError{Campos: v}
}

// VentaFallidaError is a checkout rejected by the POS API. Mensaje is what
// the operator sees; the cart is still intact.
type VentaFallidaError struct {
	Mensaje string
	Err     error
}

func (e *VentaFallidaError) Error() string {
	return fmt.Sprintf("venta rechazada: %s", e.Mensaje)
}

func (e *VentaFallidaError) Unwrap() error { return e.Err }

// parseSaldo accepts any non-negative decimal, with comma or dot as the
// decimal separator. The parsed value is kept at full precision.
func parseSaldo(raw string) (decimal.Decimal, error) {
	d, err := parseDecimal(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrSaldoInvalido
	}
	return d, nil
}

// parseMontoPositivo is parseSaldo for amounts that must be > 0.
func parseMontoPositivo(raw string) (decimal.Decimal, error) {
	d, err := parseDecimal(raw)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrMontoInvalido
	}
	return d, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, errors.New("vacio")
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}
