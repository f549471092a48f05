package service

import "bishuteria/internal/model"

// resolverSucursal applies branch scoping: 0 means the session's branch,
// and only administrators may name a different one.
func resolverSucursal(s *model.Sesion, pedida int) (int, error) {
	if pedida == 0 {
		pedida = s.SucursalID
	}
	if pedida == 0 {
		return 0, ErrSucursalRequerida
	}
	if !s.EsAdministrador() && pedida != s.SucursalID {
		return 0, ErrSucursalNoPermitida
	}
	return pedida, nil
}
