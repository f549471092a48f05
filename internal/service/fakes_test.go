package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"bishuteria/internal/infra"
	"bishuteria/internal/model"
	"bishuteria/internal/pos"
	"bishuteria/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// ── Remote API fake ───────────────────────────────────────────────────────────

type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	login    *model.LoginRemoto
	loginErr error

	sucursales []model.Sucursal
	productos  []model.Producto

	cajas map[int]*model.Caja // by sucursal; missing = 404

	clientes       map[string]*model.Cliente // by CI
	crearClienteFn func(req model.NuevoCliente) (*model.Cliente, error)
	crearVentaErr  error
	ventas         []model.NuevaVenta
	nextID         int

	aperturas []model.AperturaCaja
	ediciones []model.EdicionCaja
	cierres   []model.CierreCaja
	egresos   []model.EgresoCaja
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls:    make(map[string]int),
		cajas:    make(map[int]*model.Caja),
		clientes: make(map[string]*model.Cliente),
		nextID:   100,
	}
}

var _ PosAPI = (*fakeAPI)(nil)

func (f *fakeAPI) hit(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*model.LoginRemoto, error) {
	f.hit("login")
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.login, nil
}

func (f *fakeAPI) ListarSucursales(_ context.Context, _ string) ([]model.Sucursal, error) {
	f.hit("sucursales")
	return f.sucursales, nil
}

func (f *fakeAPI) ListarProductos(_ context.Context, _ string) ([]model.Producto, error) {
	f.hit("productos")
	return f.productos, nil
}

func (f *fakeAPI) EstadoCaja(_ context.Context, _ string, sucursalID int) (*model.Caja, error) {
	f.hit("estado_caja")
	c, ok := f.cajas[sucursalID]
	if !ok {
		return nil, fmt.Errorf("estado caja: %w", infra.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeAPI) AbrirCaja(_ context.Context, _ string, req model.AperturaCaja) error {
	f.hit("abrir_caja")
	f.aperturas = append(f.aperturas, req)
	saldo := dec(req.SaldoInicial)
	f.nextID++
	f.cajas[req.SucursalID] = &model.Caja{
		ID: f.nextID, SucursalID: req.SucursalID, Estado: model.CajaAbierta,
		SaldoInicial: saldo, SaldoFinal: saldo,
	}
	return nil
}

func (f *fakeAPI) EditarCaja(_ context.Context, _ string, req model.EdicionCaja) error {
	f.hit("editar_caja")
	f.ediciones = append(f.ediciones, req)
	c := f.cajas[req.SucursalID]
	c.SaldoInicial, c.Ingresos, c.Egresos = dec(req.SaldoInicial), dec(req.Ingresos), dec(req.Egresos)
	c.SaldoFinal = c.SaldoCalculado()
	return nil
}

func (f *fakeAPI) CerrarCaja(_ context.Context, _ string, req model.CierreCaja) error {
	f.hit("cerrar_caja")
	f.cierres = append(f.cierres, req)
	c := f.cajas[req.SucursalID]
	c.Estado = model.CajaCerrada
	c.Ingresos, c.Egresos = dec(req.Ingresos), dec(req.Egresos)
	c.Justificacion = req.Justificacion
	c.SaldoFinal = c.SaldoCalculado()
	return nil
}

func (f *fakeAPI) RegistrarEgreso(_ context.Context, _ string, cajaID int, req model.EgresoCaja) error {
	f.hit("egreso")
	f.egresos = append(f.egresos, req)
	for _, c := range f.cajas {
		if c.ID == cajaID {
			c.Egresos = c.Egresos.Add(dec(req.Monto))
			c.SaldoFinal = c.SaldoCalculado()
		}
	}
	return nil
}

func (f *fakeAPI) BuscarCliente(_ context.Context, _ string, ci string) (*model.Cliente, error) {
	f.hit("buscar_cliente")
	if c, ok := f.clientes[ci]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeAPI) CrearCliente(_ context.Context, _ string, req model.NuevoCliente) (*model.Cliente, error) {
	f.hit("crear_cliente")
	if f.crearClienteFn != nil {
		return f.crearClienteFn(req)
	}
	f.nextID++
	c := &model.Cliente{ID: f.nextID, CI: req.CI, NombreCompleto: req.NombreCompleto}
	f.clientes[req.CI] = c
	return c, nil
}

func (f *fakeAPI) CrearVenta(_ context.Context, _ string, req model.NuevaVenta) (*model.VentaRegistrada, error) {
	f.hit("crear_venta")
	if f.crearVentaErr != nil {
		return nil, f.crearVentaErr
	}
	f.ventas = append(f.ventas, req)
	f.nextID++
	v := &model.VentaRegistrada{
		ID:         f.nextID,
		Fecha:      model.NuevoInstante(time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)),
		Vendedor:   req.Vendedor,
		MontoTotal: dec(req.MontoTotal),
		Sucursal:   model.Sucursal{ID: req.SucursalID, Nombre: "Bishuteria Centro", Direccion: "Av. Arce 2525"},
	}
	for _, c := range f.clientes {
		if c.ID == req.ClienteID {
			cp := *c
			v.Cliente = &cp
		}
	}
	for _, d := range req.Detalles {
		v.Detalles = append(v.Detalles, model.DetalleVentaRegistrada{
			Producto:       model.ProductoResumen{ID: d.ProductoID, Nombre: "Producto"},
			Cantidad:       d.Cantidad,
			PrecioUnitario: dec(d.PrecioUnitario),
			Subtotal:       dec(d.Subtotal),
		})
	}
	return v, nil
}

// ── Repository fakes ──────────────────────────────────────────────────────────
// Values are stored as JSON to behave like Redis: callers never share memory
// with what was saved.

type memSesiones struct{ m map[uuid.UUID][]byte }

func newMemSesiones() *memSesiones { return &memSesiones{m: make(map[uuid.UUID][]byte)} }

var _ repository.SesionRepository = (*memSesiones)(nil)

func (r *memSesiones) Save(_ context.Context, s *model.Sesion, _ time.Duration) error {
	raw, err := json.Marshal(s)
	r.m[s.ID] = raw
	return err
}

func (r *memSesiones) FindByID(_ context.Context, id uuid.UUID) (*model.Sesion, error) {
	raw, ok := r.m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var s model.Sesion
	return &s, json.Unmarshal(raw, &s)
}

func (r *memSesiones) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.m, id)
	return nil
}

type memTerminales struct {
	mu    sync.Mutex
	m     map[uuid.UUID][]byte
	saves int
}

func newMemTerminales() *memTerminales { return &memTerminales{m: make(map[uuid.UUID][]byte)} }

var _ repository.TerminalRepository = (*memTerminales)(nil)

func (r *memTerminales) Load(_ context.Context, id uuid.UUID) (*pos.Terminal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.m[id]
	if !ok {
		return pos.NuevaTerminal(), nil
	}
	var t pos.Terminal
	return &t, json.Unmarshal(raw, &t)
}

func (r *memTerminales) Save(_ context.Context, id uuid.UUID, t *pos.Terminal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, err := json.Marshal(t)
	r.m[id] = raw
	r.saves++
	return err
}

func (r *memTerminales) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

type memVistas struct{ m map[string]model.CajaVista }

func newMemVistas() *memVistas { return &memVistas{m: make(map[string]model.CajaVista)} }

var _ repository.CajaVistaRepository = (*memVistas)(nil)

func vistaKey(id uuid.UUID, suc int) string { return fmt.Sprintf("%s:%d", id, suc) }

func (r *memVistas) Get(_ context.Context, id uuid.UUID, suc int) (*model.CajaVista, error) {
	v, ok := r.m[vistaKey(id, suc)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (r *memVistas) Save(_ context.Context, id uuid.UUID, v *model.CajaVista, _ time.Duration) error {
	r.m[vistaKey(id, v.SucursalID)] = *v
	return nil
}

func (r *memVistas) DeleteAll(_ context.Context, id uuid.UUID) error {
	for k := range r.m {
		if strings.HasPrefix(k, id.String()+":") {
			delete(r.m, k)
		}
	}
	return nil
}

type memRecibos struct {
	mu sync.Mutex
	m  map[uuid.UUID]model.Recibo
}

func newMemRecibos() *memRecibos { return &memRecibos{m: make(map[uuid.UUID]model.Recibo)} }

var _ repository.ReciboRepository = (*memRecibos)(nil)

func (r *memRecibos) Create(_ context.Context, rec *model.Recibo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	r.m[rec.ID] = *rec
	return nil
}

func (r *memRecibos) FindByID(_ context.Context, id uuid.UUID) (*model.Recibo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *memRecibos) Update(_ context.Context, rec *model.Recibo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[rec.ID] = *rec
	return nil
}

func (r *memRecibos) ListPDFPendientes(_ context.Context, antesDe time.Time, limit int) ([]model.Recibo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Recibo
	for _, rec := range r.m {
		if rec.EstadoPDF == model.ReciboPDFPendiente && rec.CreatedAt.Before(antesDe) && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

type encoladorFake struct{ ids []uuid.UUID }

func (e *encoladorFake) EncolarReciboPDF(_ context.Context, id uuid.UUID) error {
	e.ids = append(e.ids, id)
	return nil
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

func sesionVendedor() *model.Sesion {
	return &model.Sesion{
		ID: uuid.New(), UsuarioID: 5, NombreCompleto: "Ana Mamani", Rol: "vendedor",
		SucursalID: 1, SucursalNombre: "Centro", Token: "tok-vendedor",
	}
}

func sesionAdmin() *model.Sesion {
	return &model.Sesion{
		ID: uuid.New(), UsuarioID: 1, NombreCompleto: "Admin", Rol: model.RolAdministrador,
		SucursalID: 1, SucursalNombre: "Centro", Token: "tok-admin",
	}
}
