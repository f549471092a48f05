package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bishuteria/internal/dto"
	"bishuteria/internal/infra"
	"bishuteria/internal/middleware"
	"bishuteria/internal/model"
	"bishuteria/internal/pos"
	"bishuteria/internal/recibo"
	"bishuteria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Fakes ─────────────────────────────────────────────────────────────────────

type fakeCaja struct {
	err     error
	ultimo  interface{}
	estados map[int]*dto.CajaResponse
}

func (f *fakeCaja) Estado(_ context.Context, _ *model.Sesion, suc int) (*dto.CajaResponse, error) {
	f.ultimo = suc
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.estados[suc]; ok {
		return r, nil
	}
	return &dto.CajaResponse{SucursalID: suc, Estado: "ausente"}, nil
}

func (f *fakeCaja) Abrir(_ context.Context, _ *model.Sesion, req dto.AbrirCajaRequest) (*dto.CajaResponse, error) {
	f.ultimo = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CajaResponse{SucursalID: 1, Estado: "abierta", SaldoInicial: req.SaldoInicial.String()}, nil
}

func (f *fakeCaja) Editar(_ context.Context, _ *model.Sesion, req dto.EditarCajaRequest) (*dto.CajaResponse, error) {
	f.ultimo = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CajaResponse{SucursalID: 1, Estado: "abierta"}, nil
}

func (f *fakeCaja) RegistrarEgreso(_ context.Context, _ *model.Sesion, req dto.EgresoRequest) (*dto.CajaResponse, error) {
	f.ultimo = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CajaResponse{SucursalID: 1, Estado: "abierta", Egresos: req.Monto.String()}, nil
}

func (f *fakeCaja) Cerrar(_ context.Context, _ *model.Sesion, req dto.CerrarCajaRequest) (*dto.CajaResponse, error) {
	f.ultimo = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CajaResponse{SucursalID: 1, Estado: "cerrada"}, nil
}

func (f *fakeCaja) Sucursales(_ context.Context, _ *model.Sesion) ([]model.Sucursal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []model.Sucursal{{ID: 1, Nombre: "Centro"}, {ID: 3, Nombre: "Sopocachi"}}, nil
}

// fakeVentas answers every call with carrito, or err when set.
type fakeVentas struct {
	err       error
	codigo    string
	ci        string
	confirmar dto.ConfirmarVentaRequest
	cantidad  int
}

func (f *fakeVentas) carrito() (*dto.CarritoResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CarritoResponse{SucursalID: 1, Total: decimal.NewFromInt(50), Lineas: []dto.LineaCarritoResponse{}}, nil
}

func (f *fakeVentas) EntrarPantalla(_ context.Context, _ *model.Sesion, _ dto.EntrarVentasRequest) (*dto.CarritoResponse, error) {
	return f.carrito()
}

func (f *fakeVentas) Carrito(_ context.Context, _ *model.Sesion) (*dto.CarritoResponse, error) {
	return f.carrito()
}

func (f *fakeVentas) Escanear(_ context.Context, _ *model.Sesion, codigo string) (*dto.EscaneoResponse, error) {
	f.codigo = codigo
	c, err := f.carrito()
	if err != nil {
		return nil, err
	}
	return &dto.EscaneoResponse{Resultado: string(pos.EscaneoAgregado), LimpiarEntrada: true, Carrito: *c}, nil
}

func (f *fakeVentas) CambiarCantidad(_ context.Context, _ *model.Sesion, _, cantidad int) (*dto.CarritoResponse, error) {
	f.cantidad = cantidad
	return f.carrito()
}

func (f *fakeVentas) Quitar(_ context.Context, _ *model.Sesion, _ int) (*dto.CarritoResponse, error) {
	return f.carrito()
}

func (f *fakeVentas) IniciarCheckout(_ context.Context, _ *model.Sesion) (*dto.CarritoResponse, error) {
	return f.carrito()
}

func (f *fakeVentas) MarcarSinRecibo(_ context.Context, _ *model.Sesion, _ bool) (*dto.CarritoResponse, error) {
	return f.carrito()
}

func (f *fakeVentas) BuscarCliente(_ context.Context, _ *model.Sesion, ci string) (*dto.BuscarClienteResponse, error) {
	f.ci = ci
	c, err := f.carrito()
	if err != nil {
		return nil, err
	}
	return &dto.BuscarClienteResponse{Encontrado: false, Carrito: *c}, nil
}

func (f *fakeVentas) Confirmar(_ context.Context, _ *model.Sesion, req dto.ConfirmarVentaRequest) (*dto.VentaConfirmadaResponse, error) {
	f.confirmar = req
	c, err := f.carrito()
	if err != nil {
		return nil, err
	}
	return &dto.VentaConfirmadaResponse{Venta: &model.VentaRegistrada{ID: 321}, Recibo: "RECIBO", Carrito: *c}, nil
}

func (f *fakeVentas) Cancelar(_ context.Context, _ *model.Sesion, confirmado bool) (*dto.CarritoResponse, error) {
	if !confirmado {
		return nil, pos.ErrConfirmacionRequerida
	}
	return f.carrito()
}

func (f *fakeVentas) ConsultarPrecio(_ context.Context, _ *model.Sesion, codigo string) (*dto.ConsultaPreciosResponse, error) {
	f.codigo = codigo
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ConsultaPreciosResponse{Nombre: "Anillo plata", PrecioFinal: decimal.NewFromInt(25)}, nil
}

type fakeRecibos struct {
	ruta string
	err  error
}

func (f *fakeRecibos) Registrar(context.Context, *model.Sesion, int, recibo.Datos) (*model.Recibo, error) {
	return nil, nil
}

func (f *fakeRecibos) Obtener(_ context.Context, _ *model.Sesion, id uuid.UUID) (*dto.ReciboResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ReciboResponse{ID: id.String(), Texto: "RECIBO", EstadoPDF: model.ReciboPDFGenerado}, nil
}

func (f *fakeRecibos) RutaPDF(context.Context, *model.Sesion, uuid.UUID) (string, error) {
	return f.ruta, f.err
}

func (f *fakeRecibos) GenerarPDF(context.Context, uuid.UUID) error               { return nil }
func (f *fakeRecibos) MarcarPDFFallido(context.Context, uuid.UUID, string) error { return nil }
func (f *fakeRecibos) ReencolarPendientes(context.Context, time.Time, int) (int, error) {
	return 0, nil
}

type fakeAuth struct {
	err    error
	logout uuid.UUID
}

func (f *fakeAuth) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.LoginResponse{AccessToken: "tok", TokenType: "Bearer", User: dto.UsuarioResponse{Email: req.Email}}, nil
}

func (f *fakeAuth) Logout(_ context.Context, id uuid.UUID) error {
	f.logout = id
	return f.err
}

func (f *fakeAuth) Sesion(context.Context, uuid.UUID) (*model.Sesion, error) { return nil, nil }

// ── Helpers ───────────────────────────────────────────────────────────────────

var vendedora = &model.Sesion{ID: uuid.New(), UsuarioID: 5, NombreCompleto: "Ana Quispe", Rol: "vendedor", SucursalID: 1}

// newEngine mounts the handlers with a fixed session in place of JWTAuth.
func newEngine(caja service.CajaService, ventas service.VentaService, recibos service.ReciboService, auth service.AuthService) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.SesionKey, vendedora)
		c.Next()
	})
	if auth != nil {
		h := NewAuthHandler(auth)
		r.POST("/v1/auth/login", h.Login)
		r.POST("/v1/auth/logout", h.Logout)
	}
	if caja != nil {
		h := NewCajaHandler(caja)
		r.GET("/v1/caja/estado", h.Estado)
		r.POST("/v1/caja/abrir", h.Abrir)
		r.PUT("/v1/caja/editar", h.Editar)
		r.POST("/v1/caja/egresos", h.RegistrarEgreso)
		r.POST("/v1/caja/cerrar", h.Cerrar)
		r.GET("/v1/sucursales", h.Sucursales)
	}
	if ventas != nil {
		h := NewVentasHandler(ventas)
		r.POST("/v1/ventas/sesion", h.EntrarPantalla)
		r.GET("/v1/ventas/carrito", h.Carrito)
		r.POST("/v1/ventas/carrito/escanear", h.Escanear)
		r.PUT("/v1/ventas/carrito/:producto_id", h.CambiarCantidad)
		r.DELETE("/v1/ventas/carrito/:producto_id", h.Quitar)
		r.POST("/v1/ventas/checkout/cliente", h.BuscarCliente)
		r.POST("/v1/ventas/checkout/confirmar", h.Confirmar)
		r.POST("/v1/ventas/checkout/cancelar", h.Cancelar)
		r.GET("/v1/precio/:barcode", NewConsultaPreciosHandler(ventas).GetPrecioPorBarcode)
	}
	if recibos != nil {
		h := NewRecibosHandler(recibos)
		r.GET("/v1/recibos/:id", h.Obtener)
		r.GET("/v1/recibos/:id/pdf", h.DescargarPDF)
	}
	return r
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// ── Error mapping ─────────────────────────────────────────────────────────────

func TestResponderError_Mapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"solo admin", service.ErrSoloAdministrador, http.StatusForbidden, "solo_administrador"},
		{"caja ya abierta", fmt.Errorf("abrir: %w", service.ErrCajaYaAbierta), http.StatusConflict, "caja_ya_abierta"},
		{"caja no abierta", service.ErrCajaNoAbierta, http.StatusConflict, "caja_no_abierta"},
		{"sesion remota", infra.ErrUnauthorized, http.StatusUnauthorized, "sesion_remota_expirada"},
		{"carrito vacio", pos.ErrCarritoVacio, http.StatusUnprocessableEntity, "carrito_vacio"},
		{"linea", pos.ErrLineaNoEncontrada, http.StatusNotFound, "linea_no_encontrada"},
		{"circuito abierto", infra.ErrCircuitOpen, http.StatusServiceUnavailable, "pos_no_disponible"},
		{"pdf pendiente", service.ErrPDFPendiente, http.StatusConflict, "pdf_pendiente"},
		{"pdf fallido", service.ErrPDFFallido, http.StatusConflict, "pdf_fallido"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine(&fakeCaja{err: tc.err}, nil, nil, nil)
			w := do(r, http.MethodGet, "/v1/caja/estado", nil)
			assert.Equal(t, tc.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, tc.code, body["code"])
			assert.Contains(t, tc.err.Error(), body["detail"])
		})
	}
}

func TestResponderError_ValidacionDeServicio(t *testing.T) {
	err := &service.ValidacionError{Campos: map[string]error{"saldo_inicial": service.ErrSaldoInvalido}}
	r := newEngine(&fakeCaja{err: err}, nil, nil, nil)

	w := do(r, http.MethodPost, "/v1/caja/abrir", map[string]interface{}{"saldo_inicial": "abc"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, service.ErrSaldoInvalido.Error(), fields["saldo_inicial"])
}

func TestResponderError_VentaFallidaMuestraMensajeServidor(t *testing.T) {
	causa := &infra.APIError{StatusCode: 400, Mensaje: "Stock insuficiente", Detalle: "Collar perlas"}
	r := newEngine(nil, &fakeVentas{err: &service.VentaFallidaError{Mensaje: "Stock insuficiente: Collar perlas", Err: causa}}, nil, nil)

	w := do(r, http.MethodPost, "/v1/ventas/checkout/confirmar", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decode(t, w)
	assert.Equal(t, "venta_fallida", body["code"])
	assert.Equal(t, "Stock insuficiente: Collar perlas", body["detail"])
}

func TestResponderError_VentaFallidaCircuitoAbierto(t *testing.T) {
	r := newEngine(nil, &fakeVentas{err: &service.VentaFallidaError{Mensaje: "Servicio no disponible", Err: infra.ErrCircuitOpen}}, nil, nil)

	w := do(r, http.MethodPost, "/v1/ventas/checkout/confirmar", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestResponderError_APIErrorRemoto(t *testing.T) {
	r := newEngine(&fakeCaja{err: &infra.APIError{StatusCode: 500, Mensaje: "Base de datos caida"}}, nil, nil, nil)

	w := do(r, http.MethodGet, "/v1/caja/estado", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decode(t, w)
	assert.Equal(t, "pos_api", body["code"])
	assert.Contains(t, body["detail"], "Base de datos caida")
}

func TestResponderError_Desconocido500(t *testing.T) {
	r := newEngine(&fakeCaja{err: fmt.Errorf("boom")}, nil, nil, nil)

	w := do(r, http.MethodGet, "/v1/caja/estado", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error interno del servidor", decode(t, w)["detail"])
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func TestLoginHandler_Validacion(t *testing.T) {
	r := newEngine(nil, nil, nil, &fakeAuth{})

	w := do(r, http.MethodPost, "/v1/auth/login", map[string]string{"email": "no-es-email", "password": "x"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "email", fields["Email"])
}

func TestLoginHandler_JSONInvalido(t *testing.T) {
	r := newEngine(nil, nil, nil, &fakeAuth{})

	w := do(r, http.MethodPost, "/v1/auth/login", "{")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["detail"], "JSON invalido")
}

func TestLoginHandler_CredencialesInvalidas(t *testing.T) {
	r := newEngine(nil, nil, nil, &fakeAuth{err: service.ErrCredencialesInvalidas})

	w := do(r, http.MethodPost, "/v1/auth/login", map[string]string{"email": "ana@bishu.bo", "password": "x"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutHandler_UsaSesion(t *testing.T) {
	auth := &fakeAuth{}
	r := newEngine(nil, nil, nil, auth)

	w := do(r, http.MethodPost, "/v1/auth/logout", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, vendedora.ID, auth.logout)
}

// ── Caja ──────────────────────────────────────────────────────────────────────

func TestCajaHandler_EstadoQuerySucursal(t *testing.T) {
	caja := &fakeCaja{}
	r := newEngine(caja, nil, nil, nil)

	w := do(r, http.MethodGet, "/v1/caja/estado?id_sucursal=3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, caja.ultimo)

	w = do(r, http.MethodGet, "/v1/caja/estado", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, caja.ultimo)

	w = do(r, http.MethodGet, "/v1/caja/estado?id_sucursal=tres", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCajaHandler_AbrirAceptaNumeroYTexto(t *testing.T) {
	caja := &fakeCaja{}
	r := newEngine(caja, nil, nil, nil)

	w := do(r, http.MethodPost, "/v1/caja/abrir", `{"saldo_inicial": 150.5}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, dto.Monto("150.5"), caja.ultimo.(dto.AbrirCajaRequest).SaldoInicial)

	w = do(r, http.MethodPost, "/v1/caja/abrir", `{"saldo_inicial": "100,25"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, dto.Monto("100,25"), caja.ultimo.(dto.AbrirCajaRequest).SaldoInicial)
}

func TestCajaHandler_EgresoYCierre(t *testing.T) {
	caja := &fakeCaja{}
	r := newEngine(caja, nil, nil, nil)

	w := do(r, http.MethodPost, "/v1/caja/egresos", map[string]string{"monto": "20"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "20", decode(t, w)["egresos"])

	w = do(r, http.MethodPost, "/v1/caja/cerrar", map[string]interface{}{"egresos": "20", "justificacion": "taxi", "confirmado": true})
	assert.Equal(t, http.StatusOK, w.Code)
	req := caja.ultimo.(dto.CerrarCajaRequest)
	assert.True(t, req.Confirmado)
	assert.Equal(t, "taxi", req.Justificacion)
}

func TestCajaHandler_Sucursales(t *testing.T) {
	r := newEngine(&fakeCaja{}, nil, nil, nil)

	w := do(r, http.MethodGet, "/v1/sucursales", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var out []model.Sucursal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out, 2)
}

// ── Ventas ────────────────────────────────────────────────────────────────────

func TestVentasHandler_EntrarPantallaSinCuerpo(t *testing.T) {
	r := newEngine(nil, &fakeVentas{}, nil, nil)

	w := do(r, http.MethodPost, "/v1/ventas/sesion", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["id_sucursal"])
}

func TestVentasHandler_Escanear(t *testing.T) {
	ventas := &fakeVentas{}
	r := newEngine(nil, ventas, nil, nil)

	w := do(r, http.MethodPost, "/v1/ventas/carrito/escanear", map[string]string{"codigo_barras": "ABC123"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ABC123", ventas.codigo)
	body := decode(t, w)
	assert.Equal(t, true, body["limpiar_entrada"])
}

func TestVentasHandler_CambiarCantidad(t *testing.T) {
	ventas := &fakeVentas{}
	r := newEngine(nil, ventas, nil, nil)

	w := do(r, http.MethodPut, "/v1/ventas/carrito/7", map[string]int{"cantidad": 3})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, ventas.cantidad)

	w = do(r, http.MethodPut, "/v1/ventas/carrito/x", map[string]int{"cantidad": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/v1/ventas/carrito/7", map[string]int{"cantidad": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestVentasHandler_CantidadFueraDeRango(t *testing.T) {
	r := newEngine(nil, &fakeVentas{err: pos.ErrCantidadFueraDeRango}, nil, nil)

	w := do(r, http.MethodPut, "/v1/ventas/carrito/7", map[string]int{"cantidad": 99})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "cantidad_fuera_de_rango", decode(t, w)["code"])
}

func TestVentasHandler_ConfirmarConCliente(t *testing.T) {
	ventas := &fakeVentas{}
	r := newEngine(nil, ventas, nil, nil)

	w := do(r, http.MethodPost, "/v1/ventas/checkout/confirmar", map[string]string{"ci": "4455667", "nombre_completo": "Rosa Flores"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "4455667", ventas.confirmar.CI)
	assert.Equal(t, "RECIBO", decode(t, w)["recibo"])
}

func TestVentasHandler_CancelarRequiereConfirmacion(t *testing.T) {
	r := newEngine(nil, &fakeVentas{}, nil, nil)

	w := do(r, http.MethodPost, "/v1/ventas/checkout/cancelar", map[string]bool{"confirmado": false})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodPost, "/v1/ventas/checkout/cancelar", map[string]bool{"confirmado": true})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVentasHandler_BuscarClienteRequiereCI(t *testing.T) {
	ventas := &fakeVentas{}
	r := newEngine(nil, ventas, nil, nil)

	w := do(r, http.MethodPost, "/v1/ventas/checkout/cliente", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodPost, "/v1/ventas/checkout/cliente", map[string]string{"ci": "123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "123", ventas.ci)
}

func TestConsultaPrecios_NoEncontrado(t *testing.T) {
	r := newEngine(nil, &fakeVentas{err: service.ErrProductoNoEncontrado}, nil, nil)

	w := do(r, http.MethodGet, "/v1/precio/ZZZ", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConsultaPrecios_OK(t *testing.T) {
	ventas := &fakeVentas{}
	r := newEngine(nil, ventas, nil, nil)

	w := do(r, http.MethodGet, "/v1/precio/ABC123", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ABC123", ventas.codigo)
}

// ── Recibos ───────────────────────────────────────────────────────────────────

func TestRecibosHandler_IDInvalido(t *testing.T) {
	r := newEngine(nil, nil, &fakeRecibos{}, nil)

	w := do(r, http.MethodGet, "/v1/recibos/no-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecibosHandler_Obtener(t *testing.T) {
	r := newEngine(nil, nil, &fakeRecibos{}, nil)
	id := uuid.New()

	w := do(r, http.MethodGet, "/v1/recibos/"+id.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), decode(t, w)["id"])
}

func TestRecibosHandler_PDFPendiente409(t *testing.T) {
	r := newEngine(nil, nil, &fakeRecibos{err: service.ErrPDFPendiente}, nil)

	w := do(r, http.MethodGet, "/v1/recibos/"+uuid.NewString()+"/pdf", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "pdf_pendiente", decode(t, w)["code"])
}

func TestRecibosHandler_DescargaPDF(t *testing.T) {
	ruta := filepath.Join(t.TempDir(), "recibo_x.pdf")
	require.NoError(t, os.WriteFile(ruta, []byte("%PDF-1.3"), 0o600))
	r := newEngine(nil, nil, &fakeRecibos{ruta: ruta}, nil)

	w := do(r, http.MethodGet, "/v1/recibos/"+uuid.NewString()+"/pdf", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "recibo_x.pdf")
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}

// ── Health ────────────────────────────────────────────────────────────────────

func TestHealth_SinDependencias(t *testing.T) {
	r := gin.New()
	r.GET("/health", Health(nil, nil, infra.NewCircuitBreaker(infra.DefaultCBConfig("pos-api"))))

	w := do(r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "error", body["db"])
	assert.Equal(t, "closed", body["pos_api"])
}
