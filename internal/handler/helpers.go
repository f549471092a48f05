package handler

import (
	"errors"
	"net/http"
	"strconv"

	"bishuteria/internal/apierror"
	"bishuteria/internal/infra"
	"bishuteria/internal/middleware"
	"bishuteria/internal/model"
	"bishuteria/internal/pos"
	"bishuteria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// bindAndValidate binds the JSON body and runs go-playground/validator tags.
// Returns false after writing the error response; the caller must return.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// sesion is set by JWTAuth on every route that reaches a handler using it.
func sesion(c *gin.Context) *model.Sesion {
	return middleware.GetSesion(c)
}

func paramInt(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, apierror.New(name+" invalido"))
		return 0, false
	}
	return n, true
}

// queryInt reads an optional positive integer; absent means 0.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, apierror.New(name+" invalido"))
		return 0, false
	}
	return n, true
}

// ── Error mapping ─────────────────────────────────────────────────────────────

type mapeo struct {
	err    error
	status int
	code   string
}

// mapeos is checked in order with errors.Is.
var mapeos = []mapeo{
	{service.ErrSoloAdministrador, http.StatusForbidden, "solo_administrador"},
	{service.ErrSoloNoAdministrador, http.StatusForbidden, "solo_no_administrador"},
	{service.ErrSucursalNoPermitida, http.StatusForbidden, "sucursal_no_permitida"},

	{service.ErrCredencialesInvalidas, http.StatusUnauthorized, "credenciales_invalidas"},
	{service.ErrSesionExpirada, http.StatusUnauthorized, "sesion_expirada"},
	{infra.ErrUnauthorized, http.StatusUnauthorized, "sesion_remota_expirada"},

	{service.ErrProductoNoEncontrado, http.StatusNotFound, "producto_no_encontrado"},
	{service.ErrReciboNoEncontrado, http.StatusNotFound, "recibo_no_encontrado"},
	{pos.ErrLineaNoEncontrada, http.StatusNotFound, "linea_no_encontrada"},

	{service.ErrCajaNoAbierta, http.StatusConflict, "caja_no_abierta"},
	{service.ErrCajaYaAbierta, http.StatusConflict, "caja_ya_abierta"},
	{pos.ErrEstadoCheckout, http.StatusConflict, "estado_checkout"},
	{pos.ErrVentaEnCurso, http.StatusConflict, "venta_en_curso"},
	{service.ErrPDFPendiente, http.StatusConflict, "pdf_pendiente"},
	{service.ErrPDFFallido, http.StatusConflict, "pdf_fallido"},

	{pos.ErrCarritoVacio, http.StatusUnprocessableEntity, "carrito_vacio"},
	{pos.ErrClienteIncompleto, http.StatusUnprocessableEntity, "cliente_incompleto"},
	{pos.ErrCINoNumerico, http.StatusUnprocessableEntity, "ci_no_numerico"},
	{pos.ErrCantidadFueraDeRango, http.StatusUnprocessableEntity, "cantidad_fuera_de_rango"},
	{pos.ErrConfirmacionRequerida, http.StatusUnprocessableEntity, "confirmacion_requerida"},
	{service.ErrSucursalRequerida, http.StatusUnprocessableEntity, "sucursal_requerida"},

	{infra.ErrCircuitOpen, http.StatusServiceUnavailable, "pos_no_disponible"},
}

// responderError writes the response for a service error. Remote messages
// are shown verbatim; anything unknown is logged and hidden behind a 500.
func responderError(c *gin.Context, err error) {
	var ve *service.ValidacionError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(ve.Mensajes()))
		return
	}

	// A failed sale wraps the remote cause; its own message wins.
	var vf *service.VentaFallidaError
	if errors.As(err, &vf) {
		status := http.StatusBadGateway
		if errors.Is(err, infra.ErrCircuitOpen) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, apierror.WithCode("venta_fallida", vf.Mensaje))
		return
	}

	for _, m := range mapeos {
		if errors.Is(err, m.err) {
			c.JSON(m.status, apierror.WithCode(m.code, m.err.Error()))
			return
		}
	}

	var apiErr *infra.APIError
	if errors.As(err, &apiErr) {
		log.Warn().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Int("upstream_status", apiErr.StatusCode).
			Err(err).
			Msg("pos api error")
		c.JSON(http.StatusBadGateway, apierror.WithCode("pos_api", infra.MensajeServidor(err, "Error del servicio POS")))
		return
	}

	// ErrorHandler logs it.
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
}
