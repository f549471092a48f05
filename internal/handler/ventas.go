package handler

import (
	"net/http"

	"bishuteria/internal/dto"
	"bishuteria/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// EntrarPantalla godoc
// @Summary Abre la pantalla de ventas y carga el catalogo de la sucursal
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.EntrarVentasRequest false "Sucursal"
// @Success 200 {object} dto.CarritoResponse
// @Router /v1/ventas/sesion [post]
func (h *VentasHandler) EntrarPantalla(c *gin.Context) {
	var req dto.EntrarVentasRequest
	// The body is optional.
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EntrarPantalla(c.Request.Context(), sesion(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) Carrito(c *gin.Context) {
	resp, err := h.svc.Carrito(c.Request.Context(), sesion(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Escanear godoc
// @Summary Agrega un producto por codigo de barras
// @Description Codigos de menos de 2 caracteres y codigos sin coincidencia no son errores: el resultado lo indica.
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.EscanearRequest true "Codigo"
// @Success 200 {object} dto.EscaneoResponse
// @Router /v1/ventas/carrito/escanear [post]
func (h *VentasHandler) Escanear(c *gin.Context) {
	var req dto.EscanearRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Escanear(c.Request.Context(), sesion(c), req.CodigoBarras)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarCantidad godoc
// @Summary Fija la cantidad de una linea (1..stock)
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param producto_id path int true "Producto"
// @Param body body dto.CantidadRequest true "Cantidad"
// @Success 200 {object} dto.CarritoResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/ventas/carrito/{producto_id} [put]
func (h *VentasHandler) CambiarCantidad(c *gin.Context) {
	id, ok := paramInt(c, "producto_id")
	if !ok {
		return
	}
	var req dto.CantidadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarCantidad(c.Request.Context(), sesion(c), id, req.Cantidad)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) Quitar(c *gin.Context) {
	id, ok := paramInt(c, "producto_id")
	if !ok {
		return
	}
	resp, err := h.svc.Quitar(c.Request.Context(), sesion(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Checkout ──────────────────────────────────────────────────────────────────

func (h *VentasHandler) IniciarCheckout(c *gin.Context) {
	resp, err := h.svc.IniciarCheckout(c.Request.Context(), sesion(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) MarcarSinRecibo(c *gin.Context) {
	var req dto.SinReciboRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.MarcarSinRecibo(c.Request.Context(), sesion(c), req.SinRecibo)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BuscarCliente godoc
// @Summary Busca un cliente por CI para el cobro en curso
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.BuscarClienteRequest true "CI"
// @Success 200 {object} dto.BuscarClienteResponse
// @Router /v1/ventas/checkout/cliente [post]
func (h *VentasHandler) BuscarCliente(c *gin.Context) {
	var req dto.BuscarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.BuscarCliente(c.Request.Context(), sesion(c), req.CI)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirmar godoc
// @Summary Registra la venta en el servicio POS
// @Description Si falla, el carrito se conserva y el mensaje del servidor se devuelve tal cual.
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ConfirmarVentaRequest false "Cliente nuevo"
// @Success 201 {object} dto.VentaConfirmadaResponse
// @Failure 502 {object} apierror.APIError
// @Router /v1/ventas/checkout/confirmar [post]
func (h *VentasHandler) Confirmar(c *gin.Context) {
	var req dto.ConfirmarVentaRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Confirmar(c.Request.Context(), sesion(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *VentasHandler) Cancelar(c *gin.Context) {
	var req dto.CancelarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), sesion(c), req.Confirmado)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
