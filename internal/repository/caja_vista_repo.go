package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"bishuteria/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cajaVistaPrefix = "caja_vista:"

// CajaVistaRepository keeps, per session, one hash field per branch with the
// last caja status fetched from the POS API.
type CajaVistaRepository interface {
	Get(ctx context.Context, sesionID uuid.UUID, sucursalID int) (*model.CajaVista, error)
	Save(ctx context.Context, sesionID uuid.UUID, v *model.CajaVista, ttl time.Duration) error
	DeleteAll(ctx context.Context, sesionID uuid.UUID) error
}

type cajaVistaRepo struct{ rdb *redis.Client }

func NewCajaVistaRepository(rdb *redis.Client) CajaVistaRepository {
	return &cajaVistaRepo{rdb: rdb}
}

func (r *cajaVistaRepo) Get(ctx context.Context, sesionID uuid.UUID, sucursalID int) (*model.CajaVista, error) {
	raw, err := r.rdb.HGet(ctx, cajaVistaPrefix+sesionID.String(), strconv.Itoa(sucursalID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var v model.CajaVista
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *cajaVistaRepo) Save(ctx context.Context, sesionID uuid.UUID, v *model.CajaVista, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	key := cajaVistaPrefix + sesionID.String()
	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, strconv.Itoa(v.SucursalID), payload)
		p.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

func (r *cajaVistaRepo) DeleteAll(ctx context.Context, sesionID uuid.UUID) error {
	return r.rdb.Del(ctx, cajaVistaPrefix+sesionID.String()).Err()
}
