package handler

import (
	"net/http"
	"path/filepath"

	"bishuteria/internal/apierror"
	"bishuteria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RecibosHandler struct{ svc service.ReciboService }

func NewRecibosHandler(svc service.ReciboService) *RecibosHandler { return &RecibosHandler{svc: svc} }

func (h *RecibosHandler) id(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de recibo invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// Obtener godoc
// @Summary Recibo de una venta (texto de ancho fijo y metadatos)
// @Tags recibos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del recibo"
// @Success 200 {object} dto.ReciboResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/recibos/{id} [get]
func (h *RecibosHandler) Obtener(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), sesion(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF godoc
// @Summary Descarga el PDF del recibo
// @Tags recibos
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "ID del recibo"
// @Success 200 {file} file
// @Failure 409 {object} apierror.APIError "PDF pendiente"
// @Router /v1/recibos/{id}/pdf [get]
func (h *RecibosHandler) DescargarPDF(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	ruta, err := h.svc.RutaPDF(c.Request.Context(), sesion(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.FileAttachment(ruta, filepath.Base(ruta))
}
