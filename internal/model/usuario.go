package model

import (
	"time"

	"github.com/google/uuid"
)

// RolAdministrador is the only role allowed to edit or close a caja and to
// act on branches other than its own. Every other role is a seller.
const RolAdministrador = "administrador"

// Sucursal is a physical store location.
type Sucursal struct {
	ID        int    `json:"id"`
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
}

// Usuario as returned by POST /auth/login.
type Usuario struct {
	ID             int       `json:"id"`
	NombreCompleto string    `json:"nombre_completo"`
	Email          string    `json:"email"`
	Rol            string    `json:"rol"`
	SucursalID     int       `json:"id_sucursal"`
	Sucursal       *Sucursal `json:"sucursal,omitempty"`
}

// LoginRemoto is the POS API login response.
type LoginRemoto struct {
	Token   string  `json:"token"`
	Usuario Usuario `json:"usuario"`
}

// Sesion is created at login and destroyed at logout. Services receive it
// explicitly and treat it as read-only.
type Sesion struct {
	ID             uuid.UUID `json:"id"`
	UsuarioID      int       `json:"id_usuario"`
	NombreCompleto string    `json:"nombre_completo"`
	Email          string    `json:"email"`
	Rol            string    `json:"rol"`
	SucursalID     int       `json:"id_sucursal"`
	SucursalNombre string    `json:"sucursal_nombre"`
	// Token is the bearer credential attached to every POS API call.
	Token    string    `json:"token"`
	CreadaEn time.Time `json:"creada_en"`
}

func (s *Sesion) EsAdministrador() bool {
	return s != nil && s.Rol == RolAdministrador
}

// Vendedor is the seller name printed on receipts.
func (s *Sesion) Vendedor() string {
	if s == nil || s.NombreCompleto == "" {
		return "Vendedor"
	}
	return s.NombreCompleto
}
