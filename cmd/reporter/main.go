package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tcollier/portfolio-report/internal/api"
	"github.com/tcollier/portfolio-report/internal/config"
	"github.com/tcollier/portfolio-report/internal/database"
	"github.com/tcollier/portfolio-report/internal/events"
	"github.com/tcollier/portfolio-report/internal/logger"
	"github.com/tcollier/portfolio-report/internal/mailer"
	"github.com/tcollier/portfolio-report/internal/marketdata"
	"github.com/tcollier/portfolio-report/internal/runner"
	"github.com/tcollier/portfolio-report/internal/scheduler"
)

// Exit codes: 0 success, 1 failure, 3 report persisted but not delivered.
func main() {
	os.Exit(run())
}

func run() int {
	scheduleMode := flag.Bool("schedule", false, "run as a daemon on the configured cron schedule")
	flag.Parse()

	cfg := config.Load()

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	log.Info().Bool("schedule", *scheduleMode).Msg("Starting portfolio reporter")

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		return 1
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Error().Err(err).Msg("Failed to run migrations")
		return 1
	}

	var market marketdata.Provider = marketdata.NewClient(cfg.Market.FetchTimeout, log)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		market = marketdata.NewCachedProvider(market, rdb, cfg.Redis.TTL, log)
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("Market data cache enabled")
	}

	sender := mailer.NewSender(cfg.Email, log)

	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()
	if producer != nil {
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Event publishing enabled")
	}

	job := runner.New(cfg, log, db, market, sender, producer)

	if !*scheduleMode {
		switch err := job.Run(); {
		case err == nil:
			return 0
		case errors.Is(err, runner.ErrDeliveryFailed):
			return 3
		default:
			return 1
		}
	}

	return runDaemon(cfg, log, db, job)
}

// runDaemon keeps the process alive with the report job on a cron schedule
// and a read-only status API, until SIGINT or SIGTERM.
func runDaemon(cfg *config.Config, log zerolog.Logger, db *database.DB, job *runner.Runner) int {
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.Schedule.Cron, job); err != nil {
		log.Error().Err(err).Str("schedule", cfg.Schedule.Cron).Msg("Failed to register report job")
		return 1
	}
	sched.Start()

	router := api.SetupRoutes(api.NewHandler(db, job))
	srv := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Status API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Status API server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Status API forced to shut down")
	}

	// Waits for an in-flight run to finish before returning.
	sched.Stop()

	log.Info().Msg("Stopped")
	return 0
}
