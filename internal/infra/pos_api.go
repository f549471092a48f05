package infra

// pos_api.go: resty client for the remote POS REST API.
// Every call goes through the circuit breaker. Only transport errors and 5xx
// responses count as breaker failures: a 4xx is the server answering, not the
// server being down.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bishuteria/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound     = errors.New("pos api: recurso no encontrado")
	ErrUnauthorized = errors.New("pos api: no autorizado")
	ErrCIDuplicado  = errors.New("pos api: el CI ya esta registrado")
)

// mensajeCIDuplicado is what the API answers when POST /clientes hits an
// existing CI.
const mensajeCIDuplicado = "el ci ya está registrado"

// APIError carries the server-provided message so it can be shown verbatim.
type APIError struct {
	StatusCode int
	Mensaje    string
	Detalle    string
	causa      error
}

func (e *APIError) Error() string {
	msg := e.Mensaje
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Detalle != "" {
		return fmt.Sprintf("pos api %d: %s (%s)", e.StatusCode, msg, e.Detalle)
	}
	return fmt.Sprintf("pos api %d: %s", e.StatusCode, msg)
}

func (e *APIError) Unwrap() error { return e.causa }

// errorBody covers both {"error","detalle"} and {"message"} bodies.
type errorBody struct {
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Detalle json.RawMessage `json:"detalle"`
}

type APIClient struct {
	http *resty.Client
	cb   *CircuitBreaker
}

func NewAPIClient(baseURL string, timeout time.Duration, cb *CircuitBreaker) *APIClient {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &APIClient{http: httpClient, cb: cb}
}

// Breaker exposes the breaker state for the health endpoint.
func (c *APIClient) Breaker() *CircuitBreaker { return c.cb }

// ── Auth ──────────────────────────────────────────────────────────────────────

func (c *APIClient) Login(ctx context.Context, email, password string) (*model.LoginRemoto, error) {
	var out model.LoginRemoto
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "login", "", http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) ListarSucursales(ctx context.Context, token string) ([]model.Sucursal, error) {
	var out []model.Sucursal
	if err := c.do(ctx, "listar_sucursales", token, http.MethodGet, "/sucursales", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Catalog ───────────────────────────────────────────────────────────────────

func (c *APIClient) ListarProductos(ctx context.Context, token string) ([]model.Producto, error) {
	var out []model.Producto
	if err := c.do(ctx, "listar_productos", token, http.MethodGet, "/productos", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Caja ──────────────────────────────────────────────────────────────────────

// EstadoCaja returns ErrNotFound when the branch has no caja record.
func (c *APIClient) EstadoCaja(ctx context.Context, token string, sucursalID int) (*model.Caja, error) {
	var out model.Caja
	q := map[string]string{"id_sucursal": strconv.Itoa(sucursalID)}
	if err := c.do(ctx, "estado_caja", token, http.MethodGet, "/cajas/status", q, nil, &out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, ErrNotFound
	}
	return &out, nil
}

func (c *APIClient) AbrirCaja(ctx context.Context, token string, req model.AperturaCaja) error {
	return c.do(ctx, "abrir_caja", token, http.MethodPost, "/cajas/open", nil, req, nil)
}

func (c *APIClient) EditarCaja(ctx context.Context, token string, req model.EdicionCaja) error {
	return c.do(ctx, "editar_caja", token, http.MethodPut, "/cajas/edit", nil, req, nil)
}

func (c *APIClient) CerrarCaja(ctx context.Context, token string, req model.CierreCaja) error {
	return c.do(ctx, "cerrar_caja", token, http.MethodPost, "/cajas/close", nil, req, nil)
}

func (c *APIClient) RegistrarEgreso(ctx context.Context, token string, cajaID int, req model.EgresoCaja) error {
	path := fmt.Sprintf("/cajas/%d/egresos", cajaID)
	return c.do(ctx, "registrar_egreso", token, http.MethodPost, path, nil, req, nil)
}

// ── Clientes / Ventas ─────────────────────────────────────────────────────────

// BuscarCliente returns (nil, nil) when no customer has that CI. The API
// answers either 404 or an empty object for that case.
func (c *APIClient) BuscarCliente(ctx context.Context, token, ci string) (*model.Cliente, error) {
	var out model.Cliente
	err := c.do(ctx, "buscar_cliente", token, http.MethodGet, "/clientes", map[string]string{"ci": ci}, nil, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !out.Encontrado() {
		return nil, nil
	}
	return &out, nil
}

// CrearCliente wraps ErrCIDuplicado when the CI already exists.
func (c *APIClient) CrearCliente(ctx context.Context, token string, req model.NuevoCliente) (*model.Cliente, error) {
	var out model.Cliente
	if err := c.do(ctx, "crear_cliente", token, http.MethodPost, "/clientes", nil, req, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && esCIDuplicado(apiErr) {
			apiErr.causa = ErrCIDuplicado
		}
		return nil, err
	}
	if out.CI == "" {
		out.CI = req.CI
	}
	if out.NombreCompleto == "" {
		out.NombreCompleto = req.NombreCompleto
	}
	return &out, nil
}

func (c *APIClient) CrearVenta(ctx context.Context, token string, req model.NuevaVenta) (*model.VentaRegistrada, error) {
	var out model.VentaRegistrada
	if err := c.do(ctx, "crear_venta", token, http.MethodPost, "/ventas", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func esCIDuplicado(e *APIError) bool {
	if e.StatusCode == http.StatusConflict {
		return true
	}
	for _, s := range []string{e.Mensaje, e.Detalle} {
		if strings.Contains(strings.ToLower(s), mensajeCIDuplicado) {
			return true
		}
	}
	return false
}

// ── Transport ─────────────────────────────────────────────────────────────────

func (c *APIClient) do(ctx context.Context, op, token, method, path string, query map[string]string, body, result any) error {
	var resp *resty.Response
	start := time.Now()

	err := c.cb.Execute(func() error {
		req := c.http.R().SetContext(ctx)
		if token != "" {
			req.SetAuthToken(token)
		}
		if len(query) > 0 {
			req.SetQueryParams(query)
		}
		if body != nil {
			req.SetBody(body)
		}
		r, err := req.Execute(method, path)
		if err != nil {
			return fmt.Errorf("pos api %s: %w", op, err)
		}
		resp = r
		if r.StatusCode() >= http.StatusInternalServerError {
			return apiErrorFromResponse(r)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("op", op).Dur("latency", time.Since(start)).Msg("pos api: request failed")
		return err
	}

	log.Debug().Str("op", op).Int("status", resp.StatusCode()).Dur("latency", time.Since(start)).Msg("pos api")

	if resp.IsError() {
		return apiErrorFromResponse(resp)
	}
	if result == nil {
		return nil
	}
	raw := bytes.TrimSpace(resp.Body())
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("pos api %s: decode response: %w", op, err)
	}
	return nil
}

func apiErrorFromResponse(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}

	var eb errorBody
	if json.Unmarshal(resp.Body(), &eb) == nil {
		apiErr.Mensaje = strings.TrimSpace(eb.Error)
		if apiErr.Mensaje == "" {
			apiErr.Mensaje = strings.TrimSpace(eb.Message)
		}
		apiErr.Detalle = detalleTexto(eb.Detalle)
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		apiErr.causa = ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		apiErr.causa = ErrUnauthorized
	}
	return apiErr
}

// detalleTexto flattens "detalle", which the API sends as a string or as an
// arbitrary JSON value.
func detalleTexto(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	return string(raw)
}

// MensajeServidor returns the server-provided message of err, or fallback
// when err did not come from an API response.
func MensajeServidor(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Mensaje != "" {
		if apiErr.Detalle != "" {
			return apiErr.Mensaje + ": " + apiErr.Detalle
		}
		return apiErr.Mensaje
	}
	return fallback
}
