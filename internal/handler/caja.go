package handler

import (
	"net/http"

	"bishuteria/internal/dto"
	"bishuteria/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Estado godoc
// @Summary Estado de la caja de una sucursal
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id_sucursal query int false "Sucursal (solo administrador)"
// @Success 200 {object} dto.CajaResponse
// @Failure 403 {object} apierror.APIError
// @Router /v1/caja/estado [get]
func (h *CajaHandler) Estado(c *gin.Context) {
	suc, ok := queryInt(c, "id_sucursal")
	if !ok {
		return
	}
	resp, err := h.svc.Estado(c.Request.Context(), sesion(c), suc)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Abrir godoc
// @Summary Abre la caja de la sucursal
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.CajaResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), sesion(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Editar godoc
// @Summary Corrige saldo inicial, ingresos y egresos de la caja abierta
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.EditarCajaRequest true "Montos"
// @Success 200 {object} dto.CajaResponse
// @Router /v1/caja/editar [put]
func (h *CajaHandler) Editar(c *gin.Context) {
	var req dto.EditarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Editar(c.Request.Context(), sesion(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarEgreso godoc
// @Summary Registra un egreso de la caja abierta
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.EgresoRequest true "Monto"
// @Success 201 {object} dto.CajaResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/caja/egresos [post]
func (h *CajaHandler) RegistrarEgreso(c *gin.Context) {
	var req dto.EgresoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarEgreso(c.Request.Context(), sesion(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cerrar godoc
// @Summary Cierra la caja; requiere confirmacion y justificacion si hay egresos
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Cierre"
// @Success 200 {object} dto.CajaResponse
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), sesion(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) Sucursales(c *gin.Context) {
	resp, err := h.svc.Sucursales(c.Request.Context(), sesion(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
