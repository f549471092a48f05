package router

import (
	"time"

	"bishuteria/internal/config"
	"bishuteria/internal/handler"
	"bishuteria/internal/infra"
	"bishuteria/internal/middleware"
	"bishuteria/internal/model"
	"bishuteria/internal/repository"
	"bishuteria/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are built by the composition root and shared with the worker pool.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	PosAPI *infra.APIClient
	// Recibos is shared with the PDF worker so both see the same journal.
	Recibos service.ReciboService
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository/PosAPI ← Redis/Postgres/HTTP
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	sesionRepo := repository.NewSesionRepository(d.Redis)
	terminalRepo := repository.NewTerminalRepository(d.Redis, cfg.SesionVentaTTL())
	vistaRepo := repository.NewCajaVistaRepository(d.Redis)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(d.PosAPI, sesionRepo, terminalRepo, vistaRepo, cfg)
	cajaSvc := service.NewCajaService(d.PosAPI, vistaRepo, cfg.SesionVentaTTL())
	ventaSvc := service.NewVentaService(d.PosAPI, terminalRepo, d.Recibos, cfg.Location())

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	consultaH := handler.NewConsultaPreciosHandler(ventaSvc)
	recibosH := handler.NewRecibosHandler(d.Recibos)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(d.DB, d.Redis, d.PosAPI.Breaker()))

	r.POST("/v1/auth/login", middleware.LoginRateLimiter(), authH.Login)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret, authSvc))
	{
		v1.POST("/auth/logout", authH.Logout)

		v1.GET("/sucursales", middleware.RequireRole(model.RolAdministrador), cajaH.Sucursales)

		// Per-action role rules (close is admin-only, expenses non-admin)
		// live in CajaService so they also hold for direct service callers.
		caja := v1.Group("/caja")
		{
			caja.GET("/estado", cajaH.Estado)
			caja.POST("/abrir", cajaH.Abrir)
			caja.PUT("/editar", cajaH.Editar)
			caja.POST("/egresos", cajaH.RegistrarEgreso)
			caja.POST("/cerrar", cajaH.Cerrar)
		}

		ventas := v1.Group("/ventas")
		{
			ventas.POST("/sesion", ventasH.EntrarPantalla)
			ventas.GET("/carrito", ventasH.Carrito)
			ventas.POST("/carrito/escanear", ventasH.Escanear)
			ventas.PUT("/carrito/:producto_id", ventasH.CambiarCantidad)
			ventas.DELETE("/carrito/:producto_id", ventasH.Quitar)

			ventas.POST("/checkout", ventasH.IniciarCheckout)
			ventas.POST("/checkout/sin-recibo", ventasH.MarcarSinRecibo)
			ventas.POST("/checkout/cliente", ventasH.BuscarCliente)
			ventas.POST("/checkout/confirmar", ventasH.Confirmar)
			ventas.POST("/checkout/cancelar", ventasH.Cancelar)
		}

		v1.GET("/precio/:barcode", consultaH.GetPrecioPorBarcode)

		v1.GET("/recibos/:id", recibosH.Obtener)
		v1.GET("/recibos/:id/pdf", recibosH.DescargarPDF)
	}

	// Swagger UI, outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
