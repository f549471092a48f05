package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bishuteria/internal/dto"
	"bishuteria/internal/infra"
	"bishuteria/internal/model"
	"bishuteria/internal/pos"
	"bishuteria/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CajaService drives the caja of a branch: ausente → abierta → cerrada.
// Every input is parsed and checked before the POS API is called; the
// server stays the authority on balances and on concurrent opens.
type CajaService interface {
	Estado(ctx context.Context, s *model.Sesion, sucursalID int) (*dto.CajaResponse, error)
	Abrir(ctx context.Context, s *model.Sesion, req dto.AbrirCajaRequest) (*dto.CajaResponse, error)
	Editar(ctx context.Context, s *model.Sesion, req dto.EditarCajaRequest) (*dto.CajaResponse, error)
	RegistrarEgreso(ctx context.Context, s *model.Sesion, req dto.EgresoRequest) (*dto.CajaResponse, error)
	Cerrar(ctx context.Context, s *model.Sesion, req dto.CerrarCajaRequest) (*dto.CajaResponse, error)
	Sucursales(ctx context.Context, s *model.Sesion) ([]model.Sucursal, error)
}

type cajaService struct {
	api    PosAPI
	vistas repository.CajaVistaRepository
	ttl    time.Duration
	now    func() time.Time
}

func NewCajaService(api PosAPI, vistas repository.CajaVistaRepository, ttl time.Duration) CajaService {
	return &cajaService{api: api, vistas: vistas, ttl: ttl, now: time.Now}
}

// ── Estado ────────────────────────────────────────────────────────────────────

func (s *cajaService) Estado(ctx context.Context, sesion *model.Sesion, sucursalID int) (*dto.CajaResponse, error) {
	suc, err := resolverSucursal(sesion, sucursalID)
	if err != nil {
		return nil, err
	}
	v, err := s.refrescar(ctx, sesion, suc)
	if err != nil {
		return nil, err
	}
	return cajaResponse(v), nil
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, sesion *model.Sesion, req dto.AbrirCajaRequest) (*dto.CajaResponse, error) {
	suc, err := resolverSucursal(sesion, req.SucursalID)
	if err != nil {
		return nil, err
	}

	var saldo decimal.Decimal
	if req.MantenerSaldo {
		if !sesion.EsAdministrador() {
			return nil, ErrSoloAdministrador
		}
	} else {
		saldo, err = parseSaldo(req.SaldoInicial.String())
		if err != nil {
			return nil, campoInvalido("saldo_inicial", err)
		}
	}

	// Another operator may have closed or opened it since the cached view.
	v, err := s.refrescar(ctx, sesion, suc)
	if err != nil {
		return nil, err
	}
	if v.Abierta() {
		return nil, ErrCajaYaAbierta
	}
	if req.MantenerSaldo {
		if v.Caja == nil {
			return nil, campoInvalido("mantener_saldo", ErrSinCajaAnterior)
		}
		saldo = v.SaldoDisponible
	}

	err = s.api.AbrirCaja(ctx, sesion.Token, model.AperturaCaja{
		SucursalID:   suc,
		SaldoInicial: saldo.InexactFloat64(),
		Rol:          sesion.Rol,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("sucursal_id", suc).
		Int("usuario_id", sesion.UsuarioID).
		Str("saldo_inicial", saldo.StringFixed(2)).
		Bool("mantener_saldo", req.MantenerSaldo).
		Msg("caja: abierta")

	return s.responderTrasCambio(ctx, sesion, suc)
}

// ── Editar ────────────────────────────────────────────────────────────────────

func (s *cajaService) Editar(ctx context.Context, sesion *model.Sesion, req dto.EditarCajaRequest) (*dto.CajaResponse, error) {
	if !sesion.EsAdministrador() {
		return nil, ErrSoloAdministrador
	}
	suc, err := resolverSucursal(sesion, req.SucursalID)
	if err != nil {
		return nil, err
	}

	errs := validaciones{}
	saldoInicial, err := parseSaldo(req.SaldoInicial.String())
	if err != nil {
		errs["saldo_inicial"] = err
	}
	ingresos, err := parseSaldo(req.Ingresos.String())
	if err != nil {
		errs["ingresos"] = err
	}
	egresos, err := parseSaldo(req.Egresos.String())
	if err != nil {
		errs["egresos"] = err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	v, err := s.vista(ctx, sesion, suc)
	if err != nil {
		return nil, err
	}
	if !v.Abierta() {
		return nil, ErrCajaNoAbierta
	}

	err = s.api.EditarCaja(ctx, sesion.Token, model.EdicionCaja{
		SucursalID:   suc,
		CajaID:       v.Caja.ID,
		SaldoInicial: saldoInicial.InexactFloat64(),
		Ingresos:     ingresos.InexactFloat64(),
		Egresos:      egresos.InexactFloat64(),
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int("sucursal_id", suc).Int("caja_id", v.Caja.ID).Msg("caja: editada")
	return s.responderTrasCambio(ctx, sesion, suc)
}

// ── RegistrarEgreso ───────────────────────────────────────────────────────────
// The balance check is a guard against typos, not an invariant: it compares
// against the last fetched status and the server decides.

func (s *cajaService) RegistrarEgreso(ctx context.Context, sesion *model.Sesion, req dto.EgresoRequest) (*dto.CajaResponse, error) {
	if sesion.EsAdministrador() {
		return nil, ErrSoloNoAdministrador
	}
	suc, err := resolverSucursal(sesion, req.SucursalID)
	if err != nil {
		return nil, err
	}
	monto, err := parseMontoPositivo(req.Monto.String())
	if err != nil {
		return nil, campoInvalido("monto", err)
	}

	v, err := s.vista(ctx, sesion, suc)
	if err != nil {
		return nil, err
	}
	if !v.Abierta() {
		return nil, ErrCajaNoAbierta
	}
	if monto.GreaterThan(v.SaldoDisponible) {
		return nil, campoInvalido("monto", ErrEgresoExcedeSaldo)
	}

	if err := s.api.RegistrarEgreso(ctx, sesion.Token, v.Caja.ID, model.EgresoCaja{Monto: monto.InexactFloat64()}); err != nil {
		return nil, err
	}

	log.Info().
		Int("sucursal_id", suc).
		Int("caja_id", v.Caja.ID).
		Str("monto", monto.StringFixed(2)).
		Msg("caja: egreso registrado")

	return s.responderTrasCambio(ctx, sesion, suc)
}

// ── Cerrar ────────────────────────────────────────────────────────────────────

func (s *cajaService) Cerrar(ctx context.Context, sesion *model.Sesion, req dto.CerrarCajaRequest) (*dto.CajaResponse, error) {
	if !sesion.EsAdministrador() {
		return nil, ErrSoloAdministrador
	}
	suc, err := resolverSucursal(sesion, req.SucursalID)
	if err != nil {
		return nil, err
	}

	// Numbers first, then the justification rule: it depends on egresos.
	errs := validaciones{}
	ingresos, err := parseSaldo(req.Ingresos.String())
	if err != nil {
		errs["ingresos"] = err
	}
	egresos, err := parseSaldo(req.Egresos.String())
	if err != nil {
		errs["egresos"] = err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	var justificacion *string
	if egresos.IsPositive() {
		j := strings.TrimSpace(req.Justificacion)
		if j == "" {
			return nil, campoInvalido("justificacion", ErrJustificacionRequerida)
		}
		justificacion = &j
	}
	if !req.Confirmado {
		return nil, pos.ErrConfirmacionRequerida
	}

	v, err := s.vista(ctx, sesion, suc)
	if err != nil {
		return nil, err
	}
	if !v.Abierta() {
		return nil, ErrCajaNoAbierta
	}

	err = s.api.CerrarCaja(ctx, sesion.Token, model.CierreCaja{
		SucursalID:    suc,
		CerradoPor:    sesion.UsuarioID,
		Ingresos:      ingresos.InexactFloat64(),
		Egresos:       egresos.InexactFloat64(),
		Justificacion: justificacion,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("sucursal_id", suc).
		Int("caja_id", v.Caja.ID).
		Int("cerrado_por", sesion.UsuarioID).
		Msg("caja: cerrada")

	return s.responderTrasCambio(ctx, sesion, suc)
}

// ── Sucursales ────────────────────────────────────────────────────────────────

func (s *cajaService) Sucursales(ctx context.Context, sesion *model.Sesion) ([]model.Sucursal, error) {
	if !sesion.EsAdministrador() {
		return nil, ErrSoloAdministrador
	}
	return s.api.ListarSucursales(ctx, sesion.Token)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// vista returns the cached status, fetching it when there is none.
func (s *cajaService) vista(ctx context.Context, sesion *model.Sesion, sucursalID int) (*model.CajaVista, error) {
	v, err := s.vistas.Get(ctx, sesion.ID, sucursalID)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.Warn().Err(err).Int("sucursal_id", sucursalID).Msg("caja: vista en cache ilegible, refrescando")
	}
	return s.refrescar(ctx, sesion, sucursalID)
}

// refrescar fetches the caja status and caches it. A 404 is the ausente
// state, not an error.
func (s *cajaService) refrescar(ctx context.Context, sesion *model.Sesion, sucursalID int) (*model.CajaVista, error) {
	v := &model.CajaVista{
		SucursalID:    sucursalID,
		Estado:        model.CajaAusente,
		ActualizadaEn: s.now(),
	}

	caja, err := s.api.EstadoCaja(ctx, sesion.Token, sucursalID)
	switch {
	case errors.Is(err, infra.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("estado de caja: %w", err)
	default:
		caja.Estado = strings.ToLower(strings.TrimSpace(caja.Estado))
		v.Estado = caja.Estado
		v.Caja = caja
		v.SaldoDisponible = caja.SaldoDisponible()
	}

	if err := s.vistas.Save(ctx, sesion.ID, v, s.ttl); err != nil {
		log.Warn().Err(err).Int("sucursal_id", sucursalID).Msg("caja: no se pudo guardar la vista")
	}
	return v, nil
}

func (s *cajaService) responderTrasCambio(ctx context.Context, sesion *model.Sesion, sucursalID int) (*dto.CajaResponse, error) {
	v, err := s.refrescar(ctx, sesion, sucursalID)
	if err != nil {
		return nil, err
	}
	return cajaResponse(v), nil
}

func cajaResponse(v *model.CajaVista) *dto.CajaResponse {
	resp := &dto.CajaResponse{
		SucursalID:      v.SucursalID,
		Estado:          v.Estado,
		SaldoInicial:    decimal.Zero.StringFixed(2),
		Ingresos:        decimal.Zero.StringFixed(2),
		Egresos:         decimal.Zero.StringFixed(2),
		SaldoFinal:      decimal.Zero.StringFixed(2),
		SaldoDisponible: v.SaldoDisponible.StringFixed(2),
		ActualizadaEn:   v.ActualizadaEn.Format(time.RFC3339),
	}
	if c := v.Caja; c != nil {
		id := c.ID
		resp.CajaID = &id
		resp.SaldoInicial = c.SaldoInicial.StringFixed(2)
		resp.Ingresos = c.Ingresos.StringFixed(2)
		resp.Egresos = c.Egresos.StringFixed(2)
		resp.SaldoFinal = c.SaldoFinal.StringFixed(2)
		resp.Justificacion = c.Justificacion
	}
	return resp
}
