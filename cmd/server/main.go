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

	"github.com/inkpress/blog-backend/config"
	"github.com/inkpress/blog-backend/internal/app/controller"
	"github.com/inkpress/blog-backend/internal/app/repository"
	"github.com/inkpress/blog-backend/internal/app/service"
	"github.com/inkpress/blog-backend/internal/db"
	"github.com/inkpress/blog-backend/internal/metrics"
	"github.com/inkpress/blog-backend/internal/middleware"
	"github.com/inkpress/blog-backend/internal/ratelimit"
	"github.com/inkpress/blog-backend/internal/router"
	"github.com/inkpress/blog-backend/internal/scheduler"
	"github.com/inkpress/blog-backend/internal/session"
	"github.com/inkpress/blog-backend/internal/storage"
	"github.com/inkpress/blog-backend/internal/validation"
	"github.com/inkpress/blog-backend/internal/web"
	"github.com/inkpress/blog-backend/pkg/logger"
	"github.com/inkpress/blog-backend/pkg/mailer"
	"github.com/inkpress/blog-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel, logFormat := "info", "json"
	if cfg.Server.Environment == "development" {
		logLevel, logFormat = "debug", "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: logFormat == "console",
	})

	logger.Info("Starting blog backend server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := validation.Register(); err != nil {
		logger.Fatal("Failed to register validators", err)
	}

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize Redis (rate limiter and sessions)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	m := metrics.New(prometheus.NewRegistry())

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	tokenRepo := repository.NewAccessTokenRepository(db.GetDB())
	resetRepo := repository.NewPasswordResetRepository(db.GetDB())
	mediaRepo := repository.NewMediaRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo)
	loginGuard := service.NewLoginGuard(
		authService,
		ratelimit.NewLimiter(redis.GetClient()),
		cfg.Auth.LoginMaxAttempts,
		cfg.Auth.LoginDecay,
		m,
	)
	tokenService := service.NewTokenService(authService, loginGuard, userRepo, tokenRepo, m, cfg.Auth.TokenTTL)
	webAuthService := service.NewWebAuthService(authService, loginGuard)
	passwordResetService := service.NewPasswordResetService(
		resetRepo,
		userRepo,
		mailer.NewResetNotifier(mailer.NewSender(cfg.Mail), cfg.Auth.ResetTokenTTL),
		m,
		cfg.App.URL,
		cfg.Auth.ResetTokenTTL,
	)
	mediaService := service.NewMediaService(mediaRepo, storage.NewS3Storage(context.Background(), cfg.S3))

	sessions := session.NewManager(
		session.NewStore(redis.GetClient()),
		session.NewCookieCodec(cfg.App.Key),
		session.Config{
			CookieName:       cfg.Session.CookieName,
			Lifetime:         cfg.Session.Lifetime,
			RememberLifetime: cfg.Session.RememberLifetime,
			Secure:           cfg.Session.Secure,
		},
	)

	templates, err := web.Templates()
	if err != nil {
		logger.Fatal("Failed to parse templates", err)
	}

	// Setup router
	r := router.NewRouter(
		controller.NewAuthController(tokenService, authService, passwordResetService),
		controller.NewWebAuthController(webAuthService, passwordResetService, sessions),
		controller.NewMediaController(mediaService),
		controller.NewHealthController(cfg.Server.Environment),
		middleware.NewAuthMiddleware(tokenService),
		middleware.NewSessionMiddleware(sessions, webAuthService),
		m,
		templates,
		cfg,
	)

	maintenance := scheduler.NewMaintenanceScheduler(tokenRepo, passwordResetService)
	if err := maintenance.Start(); err != nil {
		logger.Fatal("Failed to start maintenance scheduler", err)
	}
	defer maintenance.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
		return
	}
	logger.Info("Server stopped successfully")
}
