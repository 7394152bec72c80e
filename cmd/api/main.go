package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/carewire/hospital-api/internal/config"
	"github.com/carewire/hospital-api/internal/email"
	"github.com/carewire/hospital-api/internal/handler"
	appointmentHandler "github.com/carewire/hospital-api/internal/handler/appointment"
	authHandler "github.com/carewire/hospital-api/internal/handler/auth"
	invoiceHandler "github.com/carewire/hospital-api/internal/handler/invoice"
	promHandler "github.com/carewire/hospital-api/internal/handler/prometheus"
	reportHandler "github.com/carewire/hospital-api/internal/handler/report"
	userHandler "github.com/carewire/hospital-api/internal/handler/user"
	"github.com/carewire/hospital-api/internal/middleware"
	mongorepo "github.com/carewire/hospital-api/internal/repository/mongo"
	"github.com/carewire/hospital-api/internal/router"
	appointmentService "github.com/carewire/hospital-api/internal/service/appointment"
	authService "github.com/carewire/hospital-api/internal/service/auth"
	eventService "github.com/carewire/hospital-api/internal/service/event"
	invoiceService "github.com/carewire/hospital-api/internal/service/invoice"
	reportService "github.com/carewire/hospital-api/internal/service/report"
	userService "github.com/carewire/hospital-api/internal/service/user"
	jwtauth "github.com/carewire/hospital-api/pkg/auth"
	"github.com/carewire/hospital-api/pkg/logger"
	redisbroker "github.com/carewire/hospital-api/pkg/messaging/redis"
	"github.com/carewire/hospital-api/pkg/metrics"
	"github.com/carewire/hospital-api/pkg/validator"
	"github.com/carewire/hospital-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	if err := validator.RegisterCustomValidations(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validations")
	}

	db, err := mongorepo.NewDB(cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	// Repositories
	userRepo := mongorepo.NewUserRepository(db)
	appointmentRepo := mongorepo.NewAppointmentRepository(db)
	invoiceRepo := mongorepo.NewInvoiceRepository(db)
	reportRepo := mongorepo.NewReportRepository(db)
	outboxRepo := mongorepo.NewOutboxRepository(db)

	// Services
	jwtSvc, err := jwtauth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token service")
	}

	eventSvc := eventService.NewService(outboxRepo)
	emailSvc := email.NewService(cfg.SMTP)

	authSvc := authService.NewService(userRepo, jwtSvc, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	userSvc := userService.NewService(userRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, userRepo, eventSvc, emailSvc, appLogger)
	invoiceSvc := invoiceService.NewService(invoiceRepo, userRepo, eventSvc, emailSvc, appLogger)
	reportSvc := reportService.NewService(reportRepo, userRepo, eventSvc, appLogger)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	h := handler.NewHandler(db)
	prom := promHandler.New()

	rateRPS := cfg.RateLimit.RequestsPerSecond
	if !cfg.RateLimit.Enabled {
		rateRPS = 0
	}

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		userHandler.NewHandler(userSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		invoiceHandler.NewHandler(invoiceSvc),
		reportHandler.NewHandler(reportSvc),
		h,
		prom,
		router.Config{
			RateLimitRPS:   rateRPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORS:           corsConfig(cfg),
			RequestTimeout: 30 * time.Second,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Outbox processor drains domain events to Redis. The API keeps
	// serving if Redis is down; events stay pending until it returns.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	if cfg.Redis.URL != "" {
		zl := log.Logger
		broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &zl)
		if err != nil {
			log.Error().Err(err).Msg("failed to connect to Redis, outbox processing disabled")
		} else {
			defer broker.Close()
			processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
				BatchSize:     cfg.Outbox.BatchSize,
				PollInterval:  cfg.Outbox.PollInterval,
				RetryAttempts: cfg.Outbox.RetryAttempts,
			}, appLogger, metrics.NewMetrics("hospital", "outbox"))
			go processor.Start(workerCtx)
		}
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		c.AllowOrigins = cfg.Security.AllowedOrigins
	}
	return c
}
