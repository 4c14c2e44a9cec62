package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"ims/internal/caching"
	"ims/internal/config"
	"ims/internal/email/noop"
	"ims/internal/email/ses"
	"ims/internal/handler"
	"ims/internal/logger"
	"ims/internal/port"
	"ims/internal/repository/postgres"
	"ims/internal/router"
	"ims/internal/service"
	s3storage "ims/internal/storage/s3"
	"ims/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	dashboardRepo := postgres.NewDashboardRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Outbound webhook notifier
	notifier := webhook.NewHTTPNotifier(&cfg.Webhook)

	// Email sender
	var emailSender port.EmailSender
	if cfg.Email.Provider == "ses" {
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		emailSender = noop.NewNoopSender()
	}

	// Dashboard cache is optional; an empty address disables it
	var cache port.DashboardCache
	if cfg.Redis.Addr != "" {
		cache, err = caching.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, dashboard caching disabled")
			cache = nil
		}
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, s3Client, notifier, emailSender,
		cache, &cfg.S3, cfg.Policy, cfg.Portal)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cache, cfg.Redis.TTL)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)
	integrationH := handler.NewIntegrationHandler(invoiceSvc, cfg.Integration.Secret)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, authH, invoiceH, dashboardH, integrationH, healthH,
		cfg.CORS.AllowedOrigins)

	log.Info().Str("addr", cfg.Server.Port).Msg("server starting")
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
