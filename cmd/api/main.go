package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medtrack/medtrack-api/internal/config"
	"github.com/medtrack/medtrack-api/internal/email"
	"github.com/medtrack/medtrack-api/internal/handler"
	analyticsHandler "github.com/medtrack/medtrack-api/internal/handler/analytics"
	authHandler "github.com/medtrack/medtrack-api/internal/handler/auth"
	medicationHandler "github.com/medtrack/medtrack-api/internal/handler/medication"
	reminderHandler "github.com/medtrack/medtrack-api/internal/handler/reminder"
	"github.com/medtrack/medtrack-api/internal/middleware"
	"github.com/medtrack/medtrack-api/internal/repository/postgres"
	"github.com/medtrack/medtrack-api/internal/router"
	analyticsService "github.com/medtrack/medtrack-api/internal/service/analytics"
	authService "github.com/medtrack/medtrack-api/internal/service/auth"
	medicationService "github.com/medtrack/medtrack-api/internal/service/medication"
	reminderService "github.com/medtrack/medtrack-api/internal/service/reminder"
	"github.com/medtrack/medtrack-api/internal/worker"
	"github.com/medtrack/medtrack-api/pkg/logger"
	"github.com/medtrack/medtrack-api/pkg/messaging"
	redisbroker "github.com/medtrack/medtrack-api/pkg/messaging/redis"
	"github.com/medtrack/medtrack-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	appLogger := &logger.Logger{ZL: log.Logger}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	medicationRepo := postgres.NewMedicationRepository(db)
	logRepo := postgres.NewMedicationLogRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)
	renewalRepo := postgres.NewRenewalRepository(db)

	// Services
	authSvc := authService.NewService(userRepo, authService.Config{
		Secret:      cfg.JWT.Secret,
		ExpiryHours: cfg.JWT.ExpiryHours,
	})
	medicationSvc := medicationService.NewService(medicationRepo, logRepo, renewalRepo)
	reminderSvc := reminderService.NewService(reminderRepo, userRepo)
	analyticsSvc := analyticsService.NewService(logRepo, medicationRepo)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	h := handler.NewHandler(db)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		medicationHandler.NewHandler(medicationSvc),
		reminderHandler.NewHandler(reminderSvc),
		analyticsHandler.NewHandler(analyticsSvc),
		h,
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORSConfig:     middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Message broker is optional; reminder events degrade to log-only
	// without it.
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	if cfg.Scheduler.Enabled {
		m := metrics.New("medtrack")
		scheduler := worker.NewReminderScheduler(medicationRepo, reminderRepo, broker, appLogger, m)
		go scheduler.Start(ctx)

		if cfg.Scheduler.DispatchEnabled {
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
			go dispatcher.Start(ctx)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
