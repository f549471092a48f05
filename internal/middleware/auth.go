package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bishuteria/internal/apierror"
	"bishuteria/internal/model"
	"bishuteria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	ClaimsKey = "claims"
	SesionKey = "sesion"
)

// JWTClaims mirror what AuthService.Login signs. The token only points at
// the session; the session itself lives in Redis.
type JWTClaims struct {
	SesionID   string `json:"sid"`
	UserID     int    `json:"user_id"`
	Rol        string `json:"rol"`
	SucursalID int    `json:"id_sucursal"`
	jwt.RegisteredClaims
}

// SesionLoader resolves the session a token points at.
type SesionLoader interface {
	Sesion(ctx context.Context, sesionID uuid.UUID) (*model.Sesion, error)
}

// JWTAuth validates the Bearer token and loads its session. A valid token
// whose session was logged out or expired is rejected.
func JWTAuth(secret string, sesiones SesionLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		sid, err := uuid.Parse(claims.SesionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}
		sesion, err := sesiones.Sesion(c.Request.Context(), sid)
		if err != nil {
			if errors.Is(err, service.ErrSesionExpirada) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(service.ErrSesionExpirada.Error()))
				return
			}
			log.Error().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("auth: cannot load session")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, apierror.New("No se pudo verificar la sesion"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(SesionKey, sesion)
		c.Next()
	}
}

// RequireRole rejects sessions whose role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		s := GetSesion(c)
		if s == nil || !allowed[s.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}

// GetSesion returns the session loaded by JWTAuth, nil outside protected routes.
func GetSesion(c *gin.Context) *model.Sesion {
	v, ok := c.Get(SesionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*model.Sesion)
	return s
}
