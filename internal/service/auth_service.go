package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bishuteria/internal/config"
	"bishuteria/internal/dto"
	"bishuteria/internal/infra"
	"bishuteria/internal/model"
	"bishuteria/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// Logout is idempotent: an unknown session is not an error.
	Logout(ctx context.Context, sesionID uuid.UUID) error
	// Sesion loads a live session; ErrSesionExpirada when it is gone.
	Sesion(ctx context.Context, sesionID uuid.UUID) (*model.Sesion, error)
}

type authService struct {
	api       PosAPI
	sesiones  repository.SesionRepository
	terminals repository.TerminalRepository
	vistas    repository.CajaVistaRepository
	cfg       *config.Config
	now       func() time.Time
}

func NewAuthService(
	api PosAPI,
	sesiones repository.SesionRepository,
	terminals repository.TerminalRepository,
	vistas repository.CajaVistaRepository,
	cfg *config.Config,
) AuthService {
	return &authService{
		api:       api,
		sesiones:  sesiones,
		terminals: terminals,
		vistas:    vistas,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	remoto, err := s.api.Login(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, infra.ErrUnauthorized) || errors.Is(err, infra.ErrNotFound) {
			return nil, ErrCredencialesInvalidas
		}
		return nil, err
	}
	if remoto.Token == "" {
		return nil, errors.New("el servicio POS no devolvio un token")
	}

	u := remoto.Usuario
	sesion := &model.Sesion{
		ID:             uuid.New(),
		UsuarioID:      u.ID,
		NombreCompleto: u.NombreCompleto,
		Email:          u.Email,
		Rol:            u.Rol,
		SucursalID:     u.SucursalID,
		Token:          remoto.Token,
		CreadaEn:       s.now(),
	}
	if u.Sucursal != nil {
		sesion.SucursalNombre = u.Sucursal.Nombre
		if sesion.SucursalID == 0 {
			sesion.SucursalID = u.Sucursal.ID
		}
	}

	ttl := s.cfg.JWTExpiration()
	if err := s.sesiones.Save(ctx, sesion, ttl); err != nil {
		return nil, fmt.Errorf("guardar sesion: %w", err)
	}

	token, err := s.generateToken(sesion, ttl)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("sesion_id", sesion.ID.String()).
		Int("usuario_id", sesion.UsuarioID).
		Str("rol", sesion.Rol).
		Int("sucursal_id", sesion.SucursalID).
		Msg("auth: login")

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(ttl.Seconds()),
		User: dto.UsuarioResponse{
			ID:             sesion.UsuarioID,
			NombreCompleto: sesion.NombreCompleto,
			Email:          sesion.Email,
			Rol:            sesion.Rol,
			SucursalID:     sesion.SucursalID,
			SucursalNombre: sesion.SucursalNombre,
		},
	}, nil
}

func (s *authService) Logout(ctx context.Context, sesionID uuid.UUID) error {
	if err := s.terminals.Delete(ctx, sesionID); err != nil {
		return err
	}
	if err := s.vistas.DeleteAll(ctx, sesionID); err != nil {
		return err
	}
	return s.sesiones.Delete(ctx, sesionID)
}

func (s *authService) Sesion(ctx context.Context, sesionID uuid.UUID) (*model.Sesion, error) {
	sesion, err := s.sesiones.FindByID(ctx, sesionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSesionExpirada
	}
	return sesion, err
}

func (s *authService) generateToken(sesion *model.Sesion, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sid":         sesion.ID.String(),
		"user_id":     sesion.UsuarioID,
		"rol":         sesion.Rol,
		"id_sucursal": sesion.SucursalID,
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
