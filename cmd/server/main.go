// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages. Every external
// dependency is optional: without Postgres the service runs on in-memory
// stores, without Redis settings resolution skips the cache, and without
// Kafka brokers the outbox relay is not started.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"incentra/internal/events"
	eventsmetrics "incentra/internal/events/metrics"
	"incentra/internal/matching"
	matchinghandler "incentra/internal/matching/handler"
	matchingmetrics "incentra/internal/matching/metrics"
	"incentra/internal/platform/config"
	"incentra/internal/platform/httpserver"
	"incentra/internal/platform/kafka"
	"incentra/internal/platform/logger"
	"incentra/internal/platform/postgres"
	platformredis "incentra/internal/platform/redis"
	"incentra/internal/profile"
	profilehandler "incentra/internal/profile/handler"
	"incentra/internal/program"
	programhandler "incentra/internal/program/handler"
	"incentra/internal/settings"
	settingshandler "incentra/internal/settings/handler"
	httptransport "incentra/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		if err := postgres.ApplySchema(ctx, db); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		programStore  program.Store
		profileStore  profile.Store
		settingsStore settings.Store
		outboxStore   events.Store
	)
	if db != nil {
		programStore = program.NewPostgres(db)
		profileStore = profile.NewPostgres(db)
		settingsStore = settings.NewPostgres(db)
		outboxStore = events.NewPostgres(db)
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		programStore = program.NewInMemoryStore()
		profileStore = profile.NewInMemoryStore()
		settingsStore = settings.NewInMemoryStore()
		outboxStore = events.NewInMemoryStore()
	}
	if redisClient != nil {
		settingsStore = settings.NewRedisCache(settingsStore, redisClient, cfg.SettingsCacheTTL)
	}

	eventMetrics := eventsmetrics.New()
	var publisher events.Publisher = events.NewOutboxPublisher(outboxStore, eventMetrics)

	programService := program.NewService(programStore, log)
	profileService := profile.NewService(profileStore, log)
	settingsService := settings.New(settingsStore, log)
	matchingService := matching.NewService(
		programService,
		profileService,
		settingsService,
		publisher,
		log,
		matchingmetrics.New(),
	)

	router := httptransport.NewRouter(
		matchinghandler.New(matchingService, log),
		programhandler.New(programService, log),
		profilehandler.New(profileService, log),
		settingshandler.New(settingsService, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting incentra", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := kafka.New(ctx, cfg.Kafka.Brokers)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer kafkaClient.Close()

		if err := kafka.EnsureTopic(ctx, kafkaClient, cfg.Kafka.Topic, 1); err != nil {
			log.Error("kafka topic setup failed", "error", err)
			os.Exit(1)
		}

		relay := events.NewRelay(outboxStore, kafkaClient, cfg.Kafka.Topic,
			cfg.Kafka.RelayInterval, cfg.Kafka.RelayBatch, log, eventMetrics)
		group.Go(func() error {
			if err := relay.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
