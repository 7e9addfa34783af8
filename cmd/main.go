package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/design-survey/brackets"
	"github.com/Dosada05/design-survey/config"
	"github.com/Dosada05/design-survey/db"
	"github.com/Dosada05/design-survey/db/migrations"
	"github.com/Dosada05/design-survey/handlers"
	"github.com/Dosada05/design-survey/middleware"
	"github.com/Dosada05/design-survey/repositories"
	api "github.com/Dosada05/design-survey/routes"
	"github.com/Dosada05/design-survey/services"
	"github.com/Dosada05/design-survey/storage"
	"github.com/go-chi/chi/v5"
)

// @title Design Survey API
// @version 1.0
// @description Опрос предпочтений по UI-дизайнам: сравнение компонентов и турнир на выбывание.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Int("tournament_size", cfg.TournamentSize),
		slog.Duration("session_ttl", cfg.SessionTTL))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.RunMigrations {
		if err := migrations.Run(ctx, dbConn); err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	// Архив анкет в Cloudflare R2 необязателен
	var uploader storage.FileUploader
	if r2 := cfg.R2(); r2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", r2.BucketName))
	} else {
		logger.Warn("Cloudflare R2 is not configured, survey archive disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	surveyRepo := repositories.NewPostgresSurveyRepository(dbConn)

	sessionService := services.NewSessionService(cfg.TournamentSize, cfg.SessionTTL, wsHub, logger)
	surveyService := services.NewSurveyService(surveyRepo, sessionService, uploader, wsHub, logger)
	authService := services.NewAuthService(cfg.AdminPasswordHash, logger)
	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH is empty, admin login disabled")
	}
	logger.Info("Services initialized")

	// Очистка брошенных сессий
	go func() {
		ticker := time.NewTicker(cfg.SessionSweepPeriod)
		defer ticker.Stop()
		logger.Info("session sweeper started", slog.Duration("interval", cfg.SessionSweepPeriod))

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				sessionService.PurgeExpired(ctx, now)
			}
		}
	}()

	// Инициализация обработчиков HTTP
	healthHandler := handlers.NewHealthHandler(dbConn)
	designHandler := handlers.NewDesignHandler()
	sessionHandler := handlers.NewSessionHandler(sessionService)
	surveyHandler := handlers.NewSurveyHandler(surveyService)
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, sessionService, cfg.CORSAllowedOrigins, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:      cfg.JWTSecretKey,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			SubmitLimiter:  middleware.PerMinute(cfg.SubmitRateLimit),
			SessionLimiter: middleware.PerMinute(cfg.SessionRateLimit),
			TrustProxy:     cfg.TrustProxyHeaders,
		},
		healthHandler,
		designHandler,
		sessionHandler,
		surveyHandler,
		authHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	// Hub закрывает websocket-клиентов, свипер останавливается.
	stop()
	logger.Info("application exited")
}
