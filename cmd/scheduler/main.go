package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medtrack/medtrack-api/internal/config"
	"github.com/medtrack/medtrack-api/internal/email"
	"github.com/medtrack/medtrack-api/internal/repository/postgres"
	"github.com/medtrack/medtrack-api/internal/worker"
	"github.com/medtrack/medtrack-api/pkg/logger"
	"github.com/medtrack/medtrack-api/pkg/messaging"
	redisbroker "github.com/medtrack/medtrack-api/pkg/messaging/redis"
	"github.com/medtrack/medtrack-api/pkg/metrics"
)

// Standalone scheduler deployment. Runs the minute scan and the dispatch
// loop without the HTTP API, for installations that separate serving from
// background work. Idempotent reminder creation makes it safe to run this
// alongside an API instance that also has its scheduler enabled.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	appLogger := &logger.Logger{ZL: log.Logger}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.ZL.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Redis broker")
		}
		defer broker.Close()
	}

	userRepo := postgres.NewUserRepository(db)
	medicationRepo := postgres.NewMedicationRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)

	m := metrics.New("medtrack_scheduler")
	scheduler := worker.NewReminderScheduler(medicationRepo, reminderRepo, broker, appLogger, m)

	emailSvc := email.NewSMTPService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	dispatcher := worker.NewReminderDispatcher(
		reminderRepo,
		medicationRepo,
		userRepo,
		emailSvc,
		appLogger,
		m,
		worker.DispatcherConfig{
			PollInterval: time.Duration(cfg.Scheduler.DispatchPollSeconds) * time.Second,
			BatchSize:    cfg.Scheduler.DispatchBatchSize,
		},
	)

	setupHealthCheck(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.ZL.Info().Msg("Shutting down...")
		cancel()
	}()

	go dispatcher.Start(ctx)
	scheduler.Start(ctx)
}

func setupHealthCheck(logger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			logger.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
}
