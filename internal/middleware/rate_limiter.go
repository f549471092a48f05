package middleware

import (
	"net/http"
	"sync"
	"time"

	"bishuteria/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ventana counts the requests of one key inside a fixed window.
type ventana struct {
	mu    sync.Mutex
	count int
	finEn time.Time
}

// limitador is a per-key fixed-window counter.
type limitador struct {
	nombre  string
	limit   int
	window  time.Duration
	mensaje string

	mu       sync.Mutex
	ventanas map[string]*ventana
}

func nuevoLimitador(nombre string, limit int, window time.Duration, mensaje string) *limitador {
	l := &limitador{
		nombre:   nombre,
		limit:    limit,
		window:   window,
		mensaje:  mensaje,
		ventanas: make(map[string]*ventana),
	}
	registrar(l)
	return l
}

// permitir reports whether one more request fits, and when the window ends.
func (l *limitador) permitir(key string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	v, ok := l.ventanas[key]
	if !ok {
		v = &ventana{}
		l.ventanas[key] = v
	}
	l.mu.Unlock()

	v.mu.Lock()
	defer v.mu.Unlock()
	if now.After(v.finEn) {
		v.count = 0
		v.finEn = now.Add(l.window)
	}
	v.count++
	return v.count <= l.limit, v.finEn
}

func (l *limitador) purgar(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, v := range l.ventanas {
		v.mu.Lock()
		if now.After(v.finEn) {
			delete(l.ventanas, k)
			n++
		}
		v.mu.Unlock()
	}
	return n
}

func (l *limitador) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, finEn := l.permitir(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", finEn.UTC().Format(http.TimeFormat))
			log.Warn().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("limiter", l.nombre).
				Str("ip", c.ClientIP()).
				Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.mensaje))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return nuevoLimitador("login", 20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.").handler()
}

// RateLimiter limits every route to limit requests per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return nuevoLimitador("api", limit, window, "Demasiadas solicitudes. Intente nuevamente en un momento.").handler()
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Expired windows are dropped so IPs that never return do not pile up.

const purgeInterval = 5 * time.Minute

var (
	limitadores   []*limitador
	limitadoresMu sync.Mutex
	purgeOnce     sync.Once
)

func registrar(l *limitador) {
	limitadoresMu.Lock()
	limitadores = append(limitadores, l)
	limitadoresMu.Unlock()
	purgeOnce.Do(func() { go purgeExpiredEntries() })
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		limitadoresMu.Lock()
		ls := append([]*limitador(nil), limitadores...)
		limitadoresMu.Unlock()

		for _, l := range ls {
			if n := l.purgar(now); n > 0 {
				log.Debug().Str("limiter", l.nombre).Int("purged", n).Msg("rate limiter entries purged")
			}
		}
	}
}
