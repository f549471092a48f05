package pos

import (
	"errors"
	"strings"
	"time"

	"bishuteria/internal/model"

	"github.com/shopspring/decimal"
)

// LargoMinimoCodigo is the shortest input treated as a barcode. Shorter
// input comes from a scanner mid-burst or a keyboard and is ignored.
const LargoMinimoCodigo = 2

var (
	ErrCantidadFueraDeRango = errors.New("la cantidad debe estar entre 1 y el stock disponible")
	ErrLineaNoEncontrada    = errors.New("el producto no esta en el carrito")
)

// ResultadoEscaneo names every outcome of a scan, including the ones that
// leave the cart untouched.
type ResultadoEscaneo string

const (
	EscaneoAgregado     ResultadoEscaneo = "agregado"
	EscaneoIncrementado ResultadoEscaneo = "incrementado"
	// EscaneoSinCoincidencia: nothing in the snapshot has that barcode.
	// The operator gets no error for it.
	EscaneoSinCoincidencia ResultadoEscaneo = "sin_coincidencia"
	EscaneoSinStock        ResultadoEscaneo = "sin_stock"
	EscaneoIgnorado        ResultadoEscaneo = "ignorado"
)

// Modifico reports whether the outcome changed the cart.
func (r ResultadoEscaneo) Modifico() bool {
	return r == EscaneoAgregado || r == EscaneoIncrementado
}

// NormalizarCodigo trims and uppercases a barcode.
func NormalizarCodigo(codigo string) string {
	return strings.ToUpper(strings.TrimSpace(codigo))
}

// Catalogo is a read-only product snapshot taken when the sales screen opens.
type Catalogo []model.Producto

// PorCodigo matches the normalized barcode exactly.
func (c Catalogo) PorCodigo(codigo string) (model.Producto, bool) {
	codigo = NormalizarCodigo(codigo)
	if codigo == "" {
		return model.Producto{}, false
	}
	for _, p := range c {
		if NormalizarCodigo(p.CodigoBarras) == codigo {
			return p, true
		}
	}
	return model.Producto{}, false
}

func (c Catalogo) PorID(id int) (model.Producto, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return model.Producto{}, false
}

// Linea carries a copy of the product as it was in the snapshot, so stock
// bounds and promotions stay fixed for the life of the line.
type Linea struct {
	Producto model.Producto `json:"producto"`
	Cantidad int            `json:"cantidad"`
}

func (l Linea) Cotizar(now time.Time) Cotizacion {
	return Cotizar(l.Producto, l.Cantidad, now)
}

type Carrito struct {
	Lineas []Linea `json:"lineas"`
}

func (c *Carrito) Vacio() bool { return len(c.Lineas) == 0 }

func (c *Carrito) Vaciar() { c.Lineas = nil }

func (c *Carrito) indice(productoID int) int {
	for i := range c.Lineas {
		if c.Lineas[i].Producto.ID == productoID {
			return i
		}
	}
	return -1
}

// Escanear resolves codigo against the snapshot and adds the product.
func (c *Carrito) Escanear(cat Catalogo, codigo string, now time.Time) (ResultadoEscaneo, *Linea) {
	if len([]rune(strings.TrimSpace(codigo))) < LargoMinimoCodigo {
		return EscaneoIgnorado, nil
	}
	p, ok := cat.PorCodigo(codigo)
	if !ok {
		return EscaneoSinCoincidencia, nil
	}
	return c.Agregar(p, now)
}

// Agregar adds one unit of p, or two while a 2x1 is active, capped at the
// snapshot stock.
func (c *Carrito) Agregar(p model.Producto, now time.Time) (ResultadoEscaneo, *Linea) {
	incremento := 1
	if Tiene2x1(p, now) {
		incremento = 2
	}

	if i := c.indice(p.ID); i >= 0 {
		l := &c.Lineas[i]
		if l.Cantidad >= l.Producto.Stock {
			return EscaneoSinStock, l
		}
		l.Cantidad = min(l.Cantidad+incremento, l.Producto.Stock)
		return EscaneoIncrementado, l
	}

	if p.Stock <= 0 {
		return EscaneoSinStock, nil
	}
	c.Lineas = append(c.Lineas, Linea{Producto: p, Cantidad: min(incremento, p.Stock)})
	return EscaneoAgregado, &c.Lineas[len(c.Lineas)-1]
}

// CambiarCantidad accepts any value in [1, stock].
func (c *Carrito) CambiarCantidad(productoID, cantidad int) error {
	i := c.indice(productoID)
	if i < 0 {
		return ErrLineaNoEncontrada
	}
	if cantidad < 1 || cantidad > c.Lineas[i].Producto.Stock {
		return ErrCantidadFueraDeRango
	}
	c.Lineas[i].Cantidad = cantidad
	return nil
}

// Quitar removes the line for productoID. Removing a missing line is a no-op.
func (c *Carrito) Quitar(productoID int) bool {
	i := c.indice(productoID)
	if i < 0 {
		return false
	}
	c.Lineas = append(c.Lineas[:i], c.Lineas[i+1:]...)
	return true
}

// LineaCotizada pairs a line with its price at a given instant.
type LineaCotizada struct {
	Producto model.Producto `json:"producto"`
	Cotizacion
}

// Resumen is the single place where cart totals are computed. Both the
// displayed total and the checkout payload are built from it.
type Resumen struct {
	Lineas []LineaCotizada `json:"lineas"`
	Total  decimal.Decimal `json:"total"`
}

func (c *Carrito) Resumir(now time.Time) Resumen {
	r := Resumen{Lineas: make([]LineaCotizada, 0, len(c.Lineas)), Total: decimal.Zero}
	for _, l := range c.Lineas {
		cot := l.Cotizar(now)
		r.Lineas = append(r.Lineas, LineaCotizada{Producto: l.Producto, Cotizacion: cot})
		r.Total = r.Total.Add(cot.Subtotal)
	}
	return r
}

func (c *Carrito) Total(now time.Time) decimal.Decimal {
	return c.Resumir(now).Total
}
