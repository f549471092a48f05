package service

import (
	"context"

	"bishuteria/internal/infra"
	"bishuteria/internal/model"
)

// PosAPI is the remote POS REST API as the services see it. infra.APIClient
// is the production implementation; tests use in-memory fakes.
type PosAPI interface {
	Login(ctx context.Context, email, password string) (*model.LoginRemoto, error)
	ListarSucursales(ctx context.Context, token string) ([]model.Sucursal, error)
	ListarProductos(ctx context.Context, token string) ([]model.Producto, error)

	EstadoCaja(ctx context.Context, token string, sucursalID int) (*model.Caja, error)
	AbrirCaja(ctx context.Context, token string, req model.AperturaCaja) error
	EditarCaja(ctx context.Context, token string, req model.EdicionCaja) error
	CerrarCaja(ctx context.Context, token string, req model.CierreCaja) error
	RegistrarEgreso(ctx context.Context, token string, cajaID int, req model.EgresoCaja) error

	// BuscarCliente returns nil, nil when no customer has that CI.
	BuscarCliente(ctx context.Context, token, ci string) (*model.Cliente, error)
	CrearCliente(ctx context.Context, token string, req model.NuevoCliente) (*model.Cliente, error)
	CrearVenta(ctx context.Context, token string, req model.NuevaVenta) (*model.VentaRegistrada, error)
}

var _ PosAPI = (*infra.APIClient)(nil)
