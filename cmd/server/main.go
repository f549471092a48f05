package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bishuteria/internal/config"
	"bishuteria/internal/infra"
	"bishuteria/internal/repository"
	"bishuteria/internal/router"
	"bishuteria/internal/service"
	"bishuteria/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig("pos-api"))
	posAPI := infra.NewAPIClient(cfg.POSAPIURL, cfg.POSAPITimeout(), cb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The receipt journal is shared by the HTTP side (writes, reads) and the
	// worker pool (PDF rendering), so it is built here.
	dispatcher := worker.NewDispatcher(rdb)
	recibos := service.NewReciboService(repository.NewReciboRepository(db), dispatcher, cfg.PDFStoragePath, cfg.Location())

	worker.StartWorkerPool(ctx, rdb, map[string]worker.JobHandler{
		worker.QueueReciboPDF: worker.NewReciboPDFWorker(recibos, rdb),
	}, cfg.WorkerPoolSize)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{Recibos: recibos, Dispatcher: dispatcher})

	r := router.New(cfg, router.Deps{DB: db, Redis: rdb, PosAPI: posAPI, Recibos: recibos})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("pos_api", cfg.POSAPIURL).Msgf("bishuteria gateway listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown on SIGINT / SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
