package worker

// recibo_worker.go
// Renders journaled receipts to PDF. Each job is attempted up to three
// times with backoff; a receipt that still fails is marked as errored and
// its job goes to the dead letter queue.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const reciboMaxIntentos = 3

type ReciboPDFPayload struct {
	ReciboID string `json:"recibo_id"`
}

// RecibosPDF is the part of the receipt service the worker drives.
type RecibosPDF interface {
	GenerarPDF(ctx context.Context, id uuid.UUID) error
	MarcarPDFFallido(ctx context.Context, id uuid.UUID, motivo string) error
}

type ReciboPDFWorker struct {
	recibos RecibosPDF
	rdb     *redis.Client
	backoff time.Duration
}

func NewReciboPDFWorker(recibos RecibosPDF, rdb *redis.Client) *ReciboPDFWorker {
	return &ReciboPDFWorker{recibos: recibos, rdb: rdb, backoff: time.Second}
}

func (w *ReciboPDFWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReciboPDFPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("recibo_worker: invalid payload")
		return
	}
	id, err := uuid.Parse(payload.ReciboID)
	if err != nil {
		log.Error().Str("recibo_id", payload.ReciboID).Msg("recibo_worker: invalid recibo_id")
		return
	}

	err = withRetry(ctx, reciboMaxIntentos, w.backoff, func(attempt int) error {
		if err := w.recibos.GenerarPDF(ctx, id); err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("recibo_id", payload.ReciboID).
				Msg("recibo_worker: PDF attempt failed")
			return err
		}
		return nil
	})
	if err == nil {
		log.Info().Str("recibo_id", payload.ReciboID).Msg("recibo_worker: PDF generated")
		return
	}
	if ctx.Err() != nil {
		// Shutdown mid-retry: the sweeper picks the receipt up again.
		return
	}

	reason := fmt.Sprintf("max retries (%d) exceeded: %v", reciboMaxIntentos, err)
	SendToDLQ(ctx, w.rdb, QueueReciboPDF, jobReciboPDF, raw, reason, reciboMaxIntentos)
	if mErr := w.recibos.MarcarPDFFallido(ctx, id, err.Error()); mErr != nil {
		log.Error().Err(mErr).Str("recibo_id", payload.ReciboID).Msg("recibo_worker: failed to mark receipt as errored")
	}
}

// withRetry calls fn up to maxAttempts times, waiting base, 2*base, ...
// between attempts. Returns the last error when every attempt fails.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
