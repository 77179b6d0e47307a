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

	"github.com/vetdesk/clinic-scheduling/internal/api"
	"github.com/vetdesk/clinic-scheduling/internal/availability"
	"github.com/vetdesk/clinic-scheduling/internal/boarding"
	"github.com/vetdesk/clinic-scheduling/internal/booking"
	"github.com/vetdesk/clinic-scheduling/internal/config"
	"github.com/vetdesk/clinic-scheduling/internal/db"
	"github.com/vetdesk/clinic-scheduling/internal/notify"
	redisclient "github.com/vetdesk/clinic-scheduling/internal/redis"
	"github.com/vetdesk/clinic-scheduling/internal/registry"
	"github.com/vetdesk/clinic-scheduling/internal/schedule"
	"github.com/vetdesk/clinic-scheduling/internal/sequence"
)

const version = "dev"

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api-server").Logger()
	log.Info().Msg("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("configuration loaded")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	// Wire the engine
	schedRepo := schedule.NewPgRepository(pgPool)
	schedSvc := schedule.NewService(schedRepo, log)

	bookingStore := booking.NewPgStore(pgPool)
	generator := availability.NewGenerator(
		schedRepo,
		bookingStore,
		cfg.SlotStepMinutes,
		schedule.NewPeriodSource(schedRepo),
		schedule.NewWeeklySource(schedRepo),
	)

	locker := redisclient.NewPractitionerLocker(rdb, cfg.LockTTL, cfg.LockWait)
	notifier := notify.NewLogNotifier(log)
	bookingSvc := booking.NewService(bookingStore, generator, locker, notifier, cfg.BookingRetries, cfg.BookingBackoff, log)

	codes := sequence.NewGenerator(sequence.NewPgCounterStore(pgPool))
	registrySvc := registry.NewService(registry.NewPgRepository(pgPool), codes)

	boardingSvc := boarding.NewService(boarding.NewPgRepository(pgPool), log)

	router := api.NewRouter(api.RouterConfig{
		Booking:      bookingSvc,
		Availability: generator,
		Schedule:     schedSvc,
		Registry:     registrySvc,
		Boarding:     boardingSvc,
		PgPool:       pgPool,
		Redis:        rdb,
		Log:          log,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
}
