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
	"bishuteria/internal/recibo"
	"bishuteria/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	mensajeVentaFallida   = "Error al registrar la venta"
	mensajeClienteFallido = "Error al registrar el cliente"
	mensajeClienteCI      = "Error al asociar el cliente existente."
)

// VentaService runs one operator's sales screen. The terminal state lives in
// Redis; every action loads it, applies a pos rule and saves it back while
// holding the session's lock.
type VentaService interface {
	EntrarPantalla(ctx context.Context, s *model.Sesion, req dto.EntrarVentasRequest) (*dto.CarritoResponse, error)
	Carrito(ctx context.Context, s *model.Sesion) (*dto.CarritoResponse, error)
	Escanear(ctx context.Context, s *model.Sesion, codigo string) (*dto.EscaneoResponse, error)
	CambiarCantidad(ctx context.Context, s *model.Sesion, productoID, cantidad int) (*dto.CarritoResponse, error)
	Quitar(ctx context.Context, s *model.Sesion, productoID int) (*dto.CarritoResponse, error)

	IniciarCheckout(ctx context.Context, s *model.Sesion) (*dto.CarritoResponse, error)
	MarcarSinRecibo(ctx context.Context, s *model.Sesion, sinRecibo bool) (*dto.CarritoResponse, error)
	BuscarCliente(ctx context.Context, s *model.Sesion, ci string) (*dto.BuscarClienteResponse, error)
	Confirmar(ctx context.Context, s *model.Sesion, req dto.ConfirmarVentaRequest) (*dto.VentaConfirmadaResponse, error)
	Cancelar(ctx context.Context, s *model.Sesion, confirmado bool) (*dto.CarritoResponse, error)

	ConsultarPrecio(ctx context.Context, s *model.Sesion, codigo string) (*dto.ConsultaPreciosResponse, error)
}

type ventaService struct {
	api       PosAPI
	terminals repository.TerminalRepository
	recibos   ReciboService
	loc       *time.Location
	now       func() time.Time
	locks     *cerrojos
}

func NewVentaService(api PosAPI, terminals repository.TerminalRepository, recibos ReciboService, loc *time.Location) VentaService {
	if loc == nil {
		loc = time.UTC
	}
	return &ventaService{
		api:       api,
		terminals: terminals,
		recibos:   recibos,
		loc:       loc,
		now:       time.Now,
		locks:     nuevosCerrojos(),
	}
}

func (s *ventaService) ahora() time.Time { return s.now().In(s.loc) }

// conTerminal runs fn on the session's terminal and saves it when fn
// succeeds.
func (s *ventaService) conTerminal(ctx context.Context, sesion *model.Sesion, fn func(t *pos.Terminal) error) (*pos.Terminal, error) {
	liberar := s.locks.tomar(sesion.ID)
	defer liberar()

	t, err := s.terminals.Load(ctx, sesion.ID)
	if err != nil {
		return nil, fmt.Errorf("cargar terminal: %w", err)
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	if err := s.terminals.Save(ctx, sesion.ID, t); err != nil {
		return nil, fmt.Errorf("guardar terminal: %w", err)
	}
	return t, nil
}

// cargarCatalogo replaces the snapshot. Cart lines keep the product data
// they were added with.
func (s *ventaService) cargarCatalogo(ctx context.Context, sesion *model.Sesion, t *pos.Terminal) error {
	productos, err := s.api.ListarProductos(ctx, sesion.Token)
	if err != nil {
		return fmt.Errorf("catalogo: %w", err)
	}
	t.Catalogo = productos
	t.CatalogoEn = s.now()
	if t.SucursalID == 0 {
		t.SucursalID = sesion.SucursalID
	}
	log.Debug().
		Str("sesion_id", sesion.ID.String()).
		Int("productos", len(productos)).
		Msg("ventas: catalogo cargado")
	return nil
}

func (s *ventaService) asegurarCatalogo(ctx context.Context, sesion *model.Sesion, t *pos.Terminal) error {
	if !t.CatalogoEn.IsZero() {
		return nil
	}
	return s.cargarCatalogo(ctx, sesion, t)
}

// ── Cart ──────────────────────────────────────────────────────────────────────

func (s *ventaService) EntrarPantalla(ctx context.Context, sesion *model.Sesion, req dto.EntrarVentasRequest) (*dto.CarritoResponse, error) {
	suc, err := resolverSucursal(sesion, req.SucursalID)
	if err != nil {
		return nil, err
	}
	t, err := s.conTerminal(ctx, sesion, func(t *pos.Terminal) error {
		if t.Checkout.Estado == pos.CheckoutEnviando {
			return pos.ErrVentaEnCurso
		}
		if t.SucursalID != 0 && t.SucursalID != suc {
			// A cart priced for another branch's stock is not carried over.
			t.Carrito.Vaciar()
			t.Checkout = pos.Checkout{Estado: pos.CheckoutInactivo}
		}
		t.SucursalID = suc
		return s.cargarCatalogo(ctx, sesion, t)
	})
	if err != nil {
		return nil, err
	}
	return s.carritoResponse(t), nil
}

func (s *ventaService) Carrito(ctx context.Context, sesion *model.Sesion) (*dto.CarritoResponse, error) {
	liberar := s.locks.tomar(sesion.ID)
	defer liberar()

	t, err := s.terminals.Load(ctx, sesion.ID)
	if err != nil {
		return nil, fmt.Errorf("cargar terminal: %w", err)
	}
	return s.carritoResponse(t), nil
}

func (s *ventaService) Escanear(ctx context.Context, sesion *model.Sesion, codigo string) (*dto.EscaneoResponse, error) {
	var res pos.ResultadoEscaneo
	t, err := s.conTerminal(ctx, sesion, func(t *pos.Terminal) error {
		if len([]rune(pos.NormalizarCodigo(codigo))) >= pos.LargoMinimoCodigo {
			if err := s.asegurarCatalogo(ctx, sesion, t); err != nil {
				return err
			}
		}
		var err error
		res, _, err = t.Escanear(codigo, s.ahora())
		return err
	})
	if err != nil {
		return nil, err
	}
	if !res.Modifico() {
		log.Debug().Str("sesion_id", sesion.ID.String()).Str("resultado", string(res)).Msg("ventas: escaneo sin cambios")
	}
	return &dto.EscaneoResponse{
		Resultado:      string(res),
		LimpiarEntrada: res.Modifico(),
		Carrito:        *s.carritoResponse(t),
	}, nil
}

func (s *ventaService) CambiarCantidad(ctx context.Context, sesion *model.Sesion, productoID, cantidad int) (*dto.CarritoResponse, error) {
	t, err := s.conTerminal(ctx, sesion, func(t *pos.Terminal) error {
		return t.CambiarCantidad(productoID, cantidad)
	})
	if err != nil {
		return nil, err
	}
	return s.carritoResponse(t), nil
}

func (s *ventaService) Quitar(ctx context.Context, sesion *model.Sesion, productoID int) (*dto.CarritoResponse, error) {
	t, err := s.conTerminal(ctx, sesion, func(t *pos.Terminal) error {
		return t.Quitar(productoID)
	})
	if err != nil {
		return nil, err
	}
	return s.carritoResponse(t), nil
}

// ── Checkout ──────────────────────────────────────────────────────────────────

func (s *ventaService) IniciarCheckout(ctx context.Context, sesion *model.Sesion) (*dto.CarritoResponse, error) {
	t, err := s.conTerminal(ctx, sesion, func(t *pos.Terminal) error {
		return t.Checkout.Revisar(&t.Carrito)
	})
	if err != nil {
		return nil, err
	}
	return s.carritoResponse(t), nil
}

func (s *ventaService) MarcarSinRecibo(ctx context.Context, sesion *model.Sesion, sinRecibo bool) (*dto.CarritoResponse, error) {
	t, err := s.conTerminal(ctx, sesion, func(t *pos.Terminal) error {
		return t.Checkout.MarcarSinRecibo(sinRecibo)
	})
	if err != nil {
		return nil, err
	}
	return s.carritoResponse(t), nil
}

// BuscarCliente looks a CI up. Not finding it is a normal answer: the
// operator then types the name in the confirm form.
func (s *ventaService) BuscarCliente(ctx context.Context, sesion *model.Sesion, ci string) (*dto.BuscarClienteResponse, error) {
	ci = strings.ToUpper(strings.TrimSpace(ci))
	var encontrado *model.Cliente
	t, err := s.conTerminal(ctx, sesion, func(t *pos.Terminal) error {
		if t.Checkout.Estado != pos.CheckoutRevisando && t.Checkout.Estado != pos.CheckoutFallido {
			return pos.ErrEstadoCheckout
		}
		cli, err := s.api.BuscarCliente(ctx, sesion.Token, ci)
		if err != nil {
			return err
		}
		if cli.Encontrado() {
			encontrado = cli
		}
		return t.Checkout.AsignarCliente(encontrado)
	})
	if err != nil {
		return nil, err
	}
	return &dto.BuscarClienteResponse{
		Encontrado: encontrado != nil,
		Cliente:    encontrado,
		Carrito:    *s.carritoResponse(t),
	}, nil
}

func (s *ventaService) Cancelar(ctx context.Context, sesion *model.Sesion, confirmado bool) (*dto.CarritoResponse, error) {
	t, err := s.conTerminal(ctx, sesion, func(t *pos.Terminal) error {
		return t.Cancelar(confirmado)
	})
	if err != nil {
		return nil, err
	}
	return s.carritoResponse(t), nil
}

// Confirmar submits the sale. The customer is always resolved first: reused
// when it was located, created otherwise, and re-located when creation says
// the CI already exists. Any other failure leaves the checkout in fallido
// with the cart intact.
//
// The enviando state is never persisted: the session lock already keeps
// every other action of this operator waiting until the POS API answers.
func (s *ventaService) Confirmar(ctx context.Context, sesion *model.Sesion, req dto.ConfirmarVentaRequest) (*dto.VentaConfirmadaResponse, error) {
	liberar := s.locks.tomar(sesion.ID)
	defer liberar()

	t, err := s.terminals.Load(ctx, sesion.ID)
	if err != nil {
		return nil, fmt.Errorf("cargar terminal: %w", err)
	}
	if t.Checkout.Estado == pos.CheckoutEnviando {
		return nil, pos.ErrVentaEnCurso
	}
	if t.Carrito.Vacio() {
		return nil, pos.ErrCarritoVacio
	}

	resolucion, err := pos.ResolverCliente(t.Checkout, pos.FormularioCliente{
		CI:             req.CI,
		NombreCompleto: req.NombreCompleto,
	})
	if err != nil {
		return nil, err
	}
	if err := t.Checkout.IniciarEnvio(); err != nil {
		return nil, err
	}
	sinRecibo := t.Checkout.SinRecibo

	cliente, err := s.resolverClienteRemoto(ctx, sesion, t, resolucion)
	if err != nil {
		return nil, s.fallar(ctx, sesion, t, err, mensajeClienteFallido)
	}

	clienteID := model.ClienteSinRecibo
	if cliente != nil {
		clienteID = cliente.ID
	}
	sucursalID := t.SucursalID
	if sucursalID == 0 {
		sucursalID = sesion.SucursalID
	}
	payload := pos.ArmarVenta(&t.Carrito, clienteID, sesion, sucursalID, s.ahora())

	venta, err := s.api.CrearVenta(ctx, sesion.Token, payload)
	if err != nil {
		return nil, s.fallar(ctx, sesion, t, err, mensajeVentaFallida)
	}

	log.Info().
		Str("sesion_id", sesion.ID.String()).
		Int("venta_id", venta.ID).
		Int("cliente_id", clienteID).
		Str("monto_total", venta.MontoTotal.StringFixed(2)).
		Msg("ventas: venta registrada")

	datos := recibo.Datos{Venta: *venta, SinRecibo: sinRecibo}
	if !sinRecibo {
		datos.Cliente = cliente
	}

	resp := &dto.VentaConfirmadaResponse{Venta: venta}
	var reciboID *uuid.UUID
	if s.recibos != nil {
		rec, err := s.recibos.Registrar(ctx, sesion, sucursalID, datos)
		if err != nil {
			log.Error().Err(err).Int("venta_id", venta.ID).Msg("ventas: no se pudo guardar el recibo")
		} else {
			reciboID = &rec.ID
			id := rec.ID.String()
			resp.ReciboID = &id
			resp.Recibo = rec.Texto
		}
	}
	if resp.Recibo == "" {
		resp.Recibo = recibo.Construir(datos, s.loc).Texto()
	}

	t.RegistrarExito(venta, reciboID)
	if err := s.terminals.Save(ctx, sesion.ID, t); err != nil {
		// The sale exists remotely; the stale cart must not be resubmitted
		// unnoticed, so the error reaches the operator.
		return nil, fmt.Errorf("venta %d registrada pero no se pudo limpiar el carrito: %w", venta.ID, err)
	}
	resp.Carrito = *s.carritoResponse(t)
	return resp, nil
}

// resolverClienteRemoto returns nil for a no-receipt sale.
func (s *ventaService) resolverClienteRemoto(ctx context.Context, sesion *model.Sesion, t *pos.Terminal, r pos.ResolucionCliente) (*model.Cliente, error) {
	switch r.Accion {
	case pos.ClienteNinguno:
		return nil, nil
	case pos.ClienteExistente:
		return t.Checkout.Cliente, nil
	}

	creado, err := s.api.CrearCliente(ctx, sesion.Token, r.Nuevo)
	if err == nil {
		t.Checkout.Cliente = creado
		return creado, nil
	}
	if !errors.Is(err, infra.ErrCIDuplicado) {
		return nil, err
	}

	log.Info().Str("ci", r.Nuevo.CI).Msg("ventas: CI ya registrado, reutilizando cliente existente")
	existente, lookupErr := s.api.BuscarCliente(ctx, sesion.Token, r.Nuevo.CI)
	if lookupErr != nil {
		return nil, &VentaFallidaError{Mensaje: mensajeClienteCI, Err: lookupErr}
	}
	if !existente.Encontrado() {
		return nil, &VentaFallidaError{Mensaje: mensajeClienteCI, Err: err}
	}
	t.Checkout.Cliente = existente
	return existente, nil
}

// fallar records the failure on the terminal and builds the error the
// operator sees. The cart is left untouched.
func (s *ventaService) fallar(ctx context.Context, sesion *model.Sesion, t *pos.Terminal, err error, fallback string) error {
	var vf *VentaFallidaError
	if !errors.As(err, &vf) {
		vf = &VentaFallidaError{Mensaje: mensajeRemoto(err, fallback), Err: err}
	}
	t.Checkout.Fallo(vf.Mensaje)
	if saveErr := s.terminals.Save(ctx, sesion.ID, t); saveErr != nil {
		log.Error().Err(saveErr).Str("sesion_id", sesion.ID.String()).Msg("ventas: no se pudo guardar el fallo")
	}
	log.Warn().Err(err).Str("sesion_id", sesion.ID.String()).Str("mensaje", vf.Mensaje).Msg("ventas: venta fallida")
	return vf
}

func mensajeRemoto(err error, fallback string) string {
	if errors.Is(err, infra.ErrCircuitOpen) {
		return infra.ErrCircuitOpen.Error()
	}
	return infra.MensajeServidor(err, fallback)
}

// ── Price check ───────────────────────────────────────────────────────────────

func (s *ventaService) ConsultarPrecio(ctx context.Context, sesion *model.Sesion, codigo string) (*dto.ConsultaPreciosResponse, error) {
	t, err := s.conTerminal(ctx, sesion, func(t *pos.Terminal) error {
		return s.asegurarCatalogo(ctx, sesion, t)
	})
	if err != nil {
		return nil, err
	}
	p, ok := t.Catalogo.PorCodigo(codigo)
	if !ok {
		return nil, ErrProductoNoEncontrado
	}

	now := s.ahora()
	resp := &dto.ConsultaPreciosResponse{
		ProductoID:      p.ID,
		Nombre:          p.Nombre,
		CodigoBarras:    p.CodigoBarras,
		PrecioVenta:     p.PrecioVenta,
		PrecioFinal:     pos.PrecioFinal(p, now),
		StockDisponible: p.Stock,
	}

	activas := pos.PromocionesActivas(p, now)
	if len(activas) == 0 {
		return resp, nil
	}
	promo := &dto.PromocionActiva{Es2x1: pos.Tiene2x1(p, now)}
	if d := pos.DescuentoActivo(p, now); d != nil {
		valor := d.Valor
		promo.Descuento = &valor
	}
	hasta := activas[0].FechaFin.FinEn(s.loc)
	for _, a := range activas[1:] {
		if fin := a.FechaFin.FinEn(s.loc); fin.Before(hasta) {
			hasta = fin
		}
	}
	promo.VigenteHasta = hasta.Format("2006-01-02")
	resp.Promocion = promo
	return resp, nil
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func (s *ventaService) carritoResponse(t *pos.Terminal) *dto.CarritoResponse {
	r := t.Carrito.Resumir(s.ahora())
	resp := &dto.CarritoResponse{
		SucursalID: t.SucursalID,
		Productos:  len(t.Catalogo),
		Lineas:     make([]dto.LineaCarritoResponse, 0, len(r.Lineas)),
		Total:      r.Total,
		Checkout: dto.CheckoutResponse{
			Estado:    string(t.Checkout.Estado),
			SinRecibo: t.Checkout.SinRecibo,
			Cliente:   t.Checkout.Cliente,
			Error:     t.Checkout.Error,
		},
	}
	if !t.CatalogoEn.IsZero() {
		resp.CatalogoEn = t.CatalogoEn.In(s.loc).Format(time.RFC3339)
	}
	for _, l := range r.Lineas {
		resp.Lineas = append(resp.Lineas, dto.LineaCarritoResponse{
			ProductoID:        l.Producto.ID,
			Nombre:            l.Producto.Nombre,
			CodigoBarras:      l.Producto.CodigoBarras,
			Cantidad:          l.Cantidad,
			CantidadFacturada: l.CantidadFacturada,
			Stock:             l.Producto.Stock,
			PrecioLista:       l.PrecioLista,
			PrecioFinal:       l.PrecioFinal,
			Es2x1:             l.Es2x1,
			ConDescuento:      l.Descuento != nil,
			Subtotal:          l.Subtotal,
		})
	}
	return resp
}
