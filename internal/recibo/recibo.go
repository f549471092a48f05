// Package recibo lays out the thermal receipt printed after a sale.
//
// The layout targets 80 mm paper with a monospaced font: 33 columns split
// into Producto(12) Cant(4) P.U(6) Subt(8) with single-space separators.
// Text columns are left aligned, numbers right aligned, and anything wider
// than its column is cut, never wrapped.
package recibo

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"bishuteria/internal/model"
)

const (
	AnchoLinea = 33

	colProducto = 12
	colCant     = 4
	colPU       = 6
	colSubt     = 8

	largoSucursal  = 20
	largoDireccion = 30
	largoCliente   = 30

	FormatoFecha     = "02/01/2006 15:04:05"
	clienteSinNombre = "Sin Nombre"
	agradecimiento   = "¡Gracias por su preferencia! :-) "
)

// Renglon is one printed line. An empty Texto is a blank spacer line.
type Renglon struct {
	Texto    string `json:"texto"`
	Centrado bool   `json:"centrado,omitempty"`
	Negrita  bool   `json:"negrita,omitempty"`
	Grande   bool   `json:"grande,omitempty"`
}

type Documento struct {
	Renglones []Renglon `json:"renglones"`
}

// Datos is everything a receipt is built from. Venta must be the sale as
// returned by the POS API.
type Datos struct {
	Venta     model.VentaRegistrada `json:"venta"`
	Cliente   *model.Cliente        `json:"cliente,omitempty"`
	SinRecibo bool                  `json:"sin_recibo"`
}

// Construir renders d. Timestamps are shown in loc.
func Construir(d Datos, loc *time.Location) Documento {
	v := d.Venta
	var r []Renglon

	r = append(r,
		Renglon{Texto: cortar(v.Sucursal.Nombre, largoSucursal), Centrado: true, Negrita: true, Grande: true},
		Renglon{Texto: cortar(v.Sucursal.Direccion, largoDireccion), Centrado: true},
		Renglon{},
		Renglon{Texto: "Fecha: " + formatearFecha(v.Fecha, loc)},
	)

	if !d.SinRecibo {
		r = append(r, Renglon{Texto: "Cliente: " + cortar(nombreCliente(d), largoCliente)})
	}

	r = append(r,
		Renglon{Texto: fila("Producto", "Cant", "P.U", "Subt", false)},
		Renglon{Texto: strings.Repeat("-", AnchoLinea)},
	)
	for _, det := range v.Detalles {
		r = append(r, Renglon{Texto: fila(
			det.Producto.Nombre,
			strconv.Itoa(det.Cantidad),
			det.PrecioUnitario.StringFixed(2),
			det.Subtotal.StringFixed(2),
			true,
		)})
	}
	r = append(r,
		Renglon{Texto: strings.Repeat("-", AnchoLinea)},
		Renglon{Texto: "Total: Bs. " + v.MontoTotal.StringFixed(2), Negrita: true},
		Renglon{},
		Renglon{Texto: agradecimiento, Centrado: true},
	)
	return Documento{Renglones: r}
}

// Texto renders the document as plain fixed-width text, one line per
// renglon, centering within AnchoLinea.
func (d Documento) Texto() string {
	var b strings.Builder
	for i, r := range d.Renglones {
		if i > 0 {
			b.WriteByte('\n')
		}
		if r.Centrado {
			b.WriteString(centrar(r.Texto, AnchoLinea))
		} else {
			b.WriteString(r.Texto)
		}
	}
	return b.String()
}

func nombreCliente(d Datos) string {
	if d.Cliente != nil && strings.TrimSpace(d.Cliente.NombreCompleto) != "" {
		return d.Cliente.NombreCompleto
	}
	if d.Venta.Cliente != nil && strings.TrimSpace(d.Venta.Cliente.NombreCompleto) != "" {
		return d.Venta.Cliente.NombreCompleto
	}
	return clienteSinNombre
}

func formatearFecha(f model.Fecha, loc *time.Location) string {
	if f.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return f.En(loc).In(loc).Format(FormatoFecha)
}

// fila builds a table row. Numeric columns are right aligned only for item
// rows; the header keeps every label left aligned.
func fila(producto, cant, pu, subt string, numerosDerecha bool) string {
	return pad(producto, colProducto, false) + " " +
		pad(cant, colCant, numerosDerecha) + " " +
		pad(pu, colPU, numerosDerecha) + " " +
		pad(subt, colSubt, numerosDerecha)
}

// pad cuts s to n runes or fills it with spaces up to n.
func pad(s string, n int, derecha bool) string {
	if utf8.RuneCountInString(s) > n {
		return cortar(s, n)
	}
	relleno := strings.Repeat(" ", n-utf8.RuneCountInString(s))
	if derecha {
		return relleno + s
	}
	return s + relleno
}

func cortar(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func centrar(s string, ancho int) string {
	n := utf8.RuneCountInString(s)
	if n >= ancho {
		return s
	}
	return strings.Repeat(" ", (ancho-n)/2) + s
}
