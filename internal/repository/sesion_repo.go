package repository

import (
	"context"
	"time"

	"bishuteria/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sesionPrefix = "sesion:"

type SesionRepository interface {
	Save(ctx context.Context, s *model.Sesion, ttl time.Duration) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sesion, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type sesionRepo struct{ rdb *redis.Client }

func NewSesionRepository(rdb *redis.Client) SesionRepository {
	return &sesionRepo{rdb: rdb}
}

func (r *sesionRepo) Save(ctx context.Context, s *model.Sesion, ttl time.Duration) error {
	return setJSON(ctx, r.rdb, sesionPrefix+s.ID.String(), s, ttl)
}

func (r *sesionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sesion, error) {
	return getJSON[model.Sesion](ctx, r.rdb, sesionPrefix+id.String())
}

func (r *sesionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rdb.Del(ctx, sesionPrefix+id.String()).Err()
}
