package pos

import (
	"errors"
	"strings"
	"time"

	"bishuteria/internal/model"

	"github.com/google/uuid"
)

var (
	ErrCarritoVacio          = errors.New("el carrito esta vacio")
	ErrConfirmacionRequerida = errors.New("se requiere confirmacion")
	ErrEstadoCheckout        = errors.New("accion no permitida en el estado actual del cobro")
	ErrClienteIncompleto     = errors.New("CI y nombre completo son obligatorios")
	ErrCINoNumerico          = errors.New("el CI solo puede contener numeros")
	ErrVentaEnCurso          = errors.New("hay una venta enviandose, espere la respuesta")
)

type EstadoCheckout string

const (
	CheckoutInactivo  EstadoCheckout = "inactivo"
	CheckoutRevisando EstadoCheckout = "revisando"
	CheckoutEnviando  EstadoCheckout = "enviando"
	CheckoutExitoso   EstadoCheckout = "exitoso"
	CheckoutFallido   EstadoCheckout = "fallido"
)

// Checkout moves inactivo → revisando → enviando → {exitoso, fallido}.
// A failed checkout keeps its cart and customer data and can be confirmed
// again or cancelled.
type Checkout struct {
	Estado    EstadoCheckout `json:"estado"`
	SinRecibo bool           `json:"sin_recibo"`
	// Cliente is set only by a successful CI lookup.
	Cliente *model.Cliente `json:"cliente,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func (c *Checkout) editable() bool {
	return c.Estado == CheckoutRevisando || c.Estado == CheckoutFallido
}

// Revisar opens the review step. Calling it again while reviewing keeps the
// customer already selected.
func (c *Checkout) Revisar(carrito *Carrito) error {
	if c.Estado == CheckoutEnviando {
		return ErrVentaEnCurso
	}
	if carrito.Vacio() {
		return ErrCarritoVacio
	}
	if c.Estado != CheckoutRevisando && c.Estado != CheckoutFallido {
		c.SinRecibo = false
		c.Cliente = nil
	}
	c.Estado = CheckoutRevisando
	c.Error = ""
	return nil
}

func (c *Checkout) MarcarSinRecibo(sinRecibo bool) error {
	if !c.editable() {
		return ErrEstadoCheckout
	}
	c.SinRecibo = sinRecibo
	return nil
}

// AsignarCliente records the result of a CI lookup. nil means not found
// and leaves manual entry to the confirm form.
func (c *Checkout) AsignarCliente(cli *model.Cliente) error {
	if !c.editable() {
		return ErrEstadoCheckout
	}
	if cli.Encontrado() {
		c.Cliente = cli
	} else {
		c.Cliente = nil
	}
	return nil
}

func (c *Checkout) IniciarEnvio() error {
	if !c.editable() {
		return ErrEstadoCheckout
	}
	c.Estado = CheckoutEnviando
	c.Error = ""
	return nil
}

func (c *Checkout) Exito() {
	c.Estado = CheckoutExitoso
	c.SinRecibo = false
	c.Cliente = nil
	c.Error = ""
}

func (c *Checkout) Fallo(mensaje string) {
	c.Estado = CheckoutFallido
	c.Error = mensaje
}

// Cancelar is allowed before submission only.
func (c *Checkout) Cancelar(confirmado bool) error {
	if c.Estado == CheckoutEnviando {
		return ErrVentaEnCurso
	}
	if !c.editable() {
		return ErrEstadoCheckout
	}
	if !confirmado {
		return ErrConfirmacionRequerida
	}
	*c = Checkout{Estado: CheckoutInactivo}
	return nil
}

// ── Customer resolution ───────────────────────────────────────────────────────

// FormularioCliente is what the operator typed in the review form.
type FormularioCliente struct {
	CI             string
	NombreCompleto string
}

type AccionCliente int

const (
	// ClienteNinguno: no-receipt sale, ClienteID is the sentinel.
	ClienteNinguno AccionCliente = iota
	// ClienteExistente: reuse the customer located by CI.
	ClienteExistente
	// ClienteCrear: create Nuevo remotely before submitting the sale.
	ClienteCrear
)

type ResolucionCliente struct {
	Accion    AccionCliente
	ClienteID int
	Nuevo     model.NuevoCliente
}

// ResolverCliente decides how the sale will reference its customer. It
// never calls anything remote.
func ResolverCliente(c Checkout, form FormularioCliente) (ResolucionCliente, error) {
	if c.SinRecibo {
		return ResolucionCliente{Accion: ClienteNinguno, ClienteID: model.ClienteSinRecibo}, nil
	}
	if c.Cliente.Encontrado() {
		return ResolucionCliente{Accion: ClienteExistente, ClienteID: c.Cliente.ID}, nil
	}
	ci := strings.TrimSpace(form.CI)
	nombre := strings.TrimSpace(form.NombreCompleto)
	if ci == "" || nombre == "" {
		return ResolucionCliente{}, ErrClienteIncompleto
	}
	if !soloDigitos(ci) {
		return ResolucionCliente{}, ErrCINoNumerico
	}
	return ResolucionCliente{
		Accion: ClienteCrear,
		Nuevo:  model.NuevoCliente{CI: strings.ToUpper(ci), NombreCompleto: nombre},
	}, nil
}

func soloDigitos(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ── Terminal ──────────────────────────────────────────────────────────────────

// Terminal is everything one operator's sales screen holds between requests.
type Terminal struct {
	// SucursalID is the branch sales are recorded for; fixed when the
	// catalog is loaded.
	SucursalID     int                    `json:"id_sucursal"`
	Catalogo       Catalogo               `json:"catalogo"`
	CatalogoEn     time.Time              `json:"catalogo_en"`
	Carrito        Carrito                `json:"carrito"`
	Checkout       Checkout               `json:"checkout"`
	UltimaVenta    *model.VentaRegistrada `json:"ultima_venta,omitempty"`
	UltimoReciboID *uuid.UUID             `json:"ultimo_recibo_id,omitempty"`
}

func NuevaTerminal() *Terminal {
	return &Terminal{Checkout: Checkout{Estado: CheckoutInactivo}}
}

// Escanear refuses to touch the cart while a sale is being submitted.
func (t *Terminal) Escanear(codigo string, now time.Time) (ResultadoEscaneo, *Linea, error) {
	if t.Checkout.Estado == CheckoutEnviando {
		return "", nil, ErrVentaEnCurso
	}
	res, linea := t.Carrito.Escanear(t.Catalogo, codigo, now)
	return res, linea, nil
}

func (t *Terminal) CambiarCantidad(productoID, cantidad int) error {
	if t.Checkout.Estado == CheckoutEnviando {
		return ErrVentaEnCurso
	}
	return t.Carrito.CambiarCantidad(productoID, cantidad)
}

func (t *Terminal) Quitar(productoID int) error {
	if t.Checkout.Estado == CheckoutEnviando {
		return ErrVentaEnCurso
	}
	t.Carrito.Quitar(productoID)
	return nil
}

// Cancelar discards the cart together with the customer form.
func (t *Terminal) Cancelar(confirmado bool) error {
	if err := t.Checkout.Cancelar(confirmado); err != nil {
		return err
	}
	t.Carrito.Vaciar()
	return nil
}

// RegistrarExito applies a successful submission.
func (t *Terminal) RegistrarExito(venta *model.VentaRegistrada, reciboID *uuid.UUID) {
	t.Checkout.Exito()
	t.Carrito.Vaciar()
	t.UltimaVenta = venta
	t.UltimoReciboID = reciboID
}

// ArmarVenta builds the POST /ventas payload from the same summary used for
// the displayed total.
func ArmarVenta(carrito *Carrito, clienteID int, sesion *model.Sesion, sucursalID int, now time.Time) model.NuevaVenta {
	r := carrito.Resumir(now)
	detalles := make([]model.DetalleVenta, 0, len(r.Lineas))
	for _, l := range r.Lineas {
		detalles = append(detalles, model.DetalleVenta{
			ProductoID:     l.Producto.ID,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioFinal.InexactFloat64(),
			Subtotal:       l.Subtotal.InexactFloat64(),
		})
	}
	return model.NuevaVenta{
		ClienteID:  clienteID,
		UsuarioID:  sesion.UsuarioID,
		SucursalID: sucursalID,
		Detalles:   detalles,
		MontoTotal: r.Total.InexactFloat64(),
		Fecha:      now.Format(time.RFC3339),
		Vendedor:   sesion.Vendedor(),
	}
}
