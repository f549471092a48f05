package repository

import (
	"context"
	"errors"
	"time"

	"bishuteria/internal/pos"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const terminalPrefix = "terminal:"

// TerminalRepository stores one operator's sales screen (catalog snapshot,
// cart, checkout) between requests.
type TerminalRepository interface {
	// Load returns a fresh terminal when nothing is stored.
	Load(ctx context.Context, sesionID uuid.UUID) (*pos.Terminal, error)
	Save(ctx context.Context, sesionID uuid.UUID, t *pos.Terminal) error
	Delete(ctx context.Context, sesionID uuid.UUID) error
}

type terminalRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTerminalRepository(rdb *redis.Client, ttl time.Duration) TerminalRepository {
	return &terminalRepo{rdb: rdb, ttl: ttl}
}

func (r *terminalRepo) Load(ctx context.Context, sesionID uuid.UUID) (*pos.Terminal, error) {
	t, err := getJSON[pos.Terminal](ctx, r.rdb, terminalPrefix+sesionID.String())
	if errors.Is(err, ErrNotFound) {
		return pos.NuevaTerminal(), nil
	}
	if err != nil {
		return nil, err
	}
	if t.Checkout.Estado == "" {
		t.Checkout.Estado = pos.CheckoutInactivo
	}
	return t, nil
}

// Save refreshes the TTL on every write, so an idle screen expires
// SESION_VENTA_TTL_HOURS after its last action.
func (r *terminalRepo) Save(ctx context.Context, sesionID uuid.UUID, t *pos.Terminal) error {
	return setJSON(ctx, r.rdb, terminalPrefix+sesionID.String(), t, r.ttl)
}

func (r *terminalRepo) Delete(ctx context.Context, sesionID uuid.UUID) error {
	return r.rdb.Del(ctx, terminalPrefix+sesionID.String()).Err()
}
