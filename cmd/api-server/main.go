package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-server/internal/api"
	"github.com/clinicore/clinic-server/internal/billing"
	"github.com/clinicore/clinic-server/internal/clinic"
	"github.com/clinicore/clinic-server/internal/config"
	"github.com/clinicore/clinic-server/internal/db"
	"github.com/clinicore/clinic-server/internal/facility"
	"github.com/clinicore/clinic-server/internal/pharmacy"
	redisclient "github.com/clinicore/clinic-server/internal/redis"
	"github.com/clinicore/clinic-server/internal/staff"
	"github.com/clinicore/clinic-server/internal/timeline"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("config load error")
	}

	logger := newLogger(cfg.Env, "api-server")
	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	rdb, err := redisclient.Connect(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	clinicRepo := clinic.NewPgRepository(pgPool)
	pharmacyRepo := pharmacy.NewPgRepository(pgPool)

	clinicSvc := clinic.NewService(clinicRepo, logger)
	pharmacySvc := pharmacy.NewService(pharmacyRepo, logger)
	billingSvc := billing.NewService(billing.NewPgRepository(pgPool), logger)
	timelineBuilder := timeline.NewBuilder(clinicRepo, pharmacyRepo, logger)
	guard := redisclient.NewIdempotencyGuard(rdb, cfg.IdempotencyTTL)

	router := api.NewRouter(api.RouterConfig{
		Clinic:   clinicSvc,
		Timeline: timelineBuilder,
		Pharmacy: pharmacySvc,
		Billing:  billingSvc,
		Facility: facility.NewPgRepository(pgPool),
		Staff:    staff.NewPgRepository(pgPool),
		Guard:    guard,
		PgPool:   pgPool,
		Redis:    rdb,
		Env:      cfg.Env,
		Version:  version,
		Log:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newLogger(env, service string) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", service).Logger()
	if env == "dev" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return logger
}
