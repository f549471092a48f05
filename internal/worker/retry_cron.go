package worker

// retry_cron.go
// Periodically re-queues receipts whose PDF is still pending: jobs lost on
// a restart, or never queued because Redis was down at checkout.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
	// Receipts younger than this still have their original job in flight.
	retryMinAge = 2 * time.Minute
)

type RecibosPendientes interface {
	ReencolarPendientes(ctx context.Context, antesDe time.Time, limit int) (int, error)
}

type RetryCronConfig struct {
	Recibos    RecibosPendientes
	Dispatcher *Dispatcher
	Now        func() time.Time
}

// StartRetryCron ticks every 30s until ctx is cancelled.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) int {
	// A backlog means the workers are behind, not that jobs were lost.
	if cfg.Dispatcher != nil {
		n, err := cfg.Dispatcher.Pendientes(ctx, QueueReciboPDF)
		if err != nil {
			log.Warn().Err(err).Msg("retry_cron: cannot read queue length, skipping tick")
			return 0
		}
		if n >= retryBatchSize {
			log.Debug().Int64("pending_jobs", n).Msg("retry_cron: queue backlog, skipping tick")
			return 0
		}
	}

	n, err := cfg.Recibos.ReencolarPendientes(ctx, cfg.Now().Add(-retryMinAge), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Int("requeued", n).Msg("retry_cron: failed to requeue pending receipts")
		return n
	}
	if n > 0 {
		log.Info().Int("count", n).Msg("retry_cron: pending receipts requeued")
	}
	return n
}
