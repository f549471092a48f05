package handler

import (
	"net/http"
	"strings"

	"bishuteria/internal/apierror"
	"bishuteria/internal/service"

	"github.com/gin-gonic/gin"
)

// ConsultaPreciosHandler answers the price check screen from the session's
// catalog snapshot.
type ConsultaPreciosHandler struct{ svc service.VentaService }

func NewConsultaPreciosHandler(svc service.VentaService) *ConsultaPreciosHandler {
	return &ConsultaPreciosHandler{svc: svc}
}

// GetPrecioPorBarcode godoc
// @Summary Consulta de precio por codigo de barras
// @Tags consulta
// @Produce json
// @Security BearerAuth
// @Param barcode path string true "Codigo de barras"
// @Success 200 {object} dto.ConsultaPreciosResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/precio/{barcode} [get]
func (h *ConsultaPreciosHandler) GetPrecioPorBarcode(c *gin.Context) {
	barcode := strings.TrimSpace(c.Param("barcode"))
	if barcode == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Codigo de barras requerido"))
		return
	}
	resp, err := h.svc.ConsultarPrecio(c.Request.Context(), sesion(c), barcode)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
