package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	_ "powereye/docs" // swagger docs

	"powereye/internal/auth"
	"powereye/internal/cache"
	"powereye/internal/config"
	"powereye/internal/db"
	"powereye/internal/handler"
	"powereye/internal/logging"
	"powereye/internal/repository"
	"powereye/internal/router"
	"powereye/internal/service"
	"powereye/internal/telemetry"
)

// @title PowerEye API
// @version 1.0
// @description Industrial power monitoring API: users, machines and alerts with JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "powereye", cfg.OTLPEndpoint, cfg.OTLPInsecure, logger)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}

	gormDB, err := db.NewMySQL(cfg.DSN(), logger)
	if err != nil {
		logger.Error("database init", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	if cfg.UsingDefaultSecret() {
		logger.Warn("JWT_SECRET is not set; tokens are signed with the development default")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if cacheClient.Enabled() {
		if err := cacheClient.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, token revocation degraded", "addr", cfg.RedisAddr, "error", err)
		}
	}

	e := echo.New()
	registerRoutes(e, cfg, gormDB, cacheClient, logger)

	logger.Info("swagger documentation available", "url", swaggerURL(cfg))

	addr := ":" + cfg.ServerPort
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", "error", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func registerRoutes(e *echo.Echo, cfg *config.Config, gormDB *gorm.DB, cacheClient *cache.Client, logger *slog.Logger) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	machineRepo := repository.NewMachineRepository(gormDB)
	alertRepo := repository.NewAlertRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	hasher := auth.NewPasswordHasher(auth.BcryptCost)

	// Initialize services
	authService := service.NewAuthService(userRepo, hasher, jwtService, tokenStore)
	userService := service.NewUserService(userRepo)
	machineService := service.NewMachineService(machineRepo)
	alertService := service.NewAlertService(alertRepo, machineRepo)
	reportService := service.NewReportService(machineRepo, alertRepo)

	router.Register(
		e,
		cfg,
		logger,
		auth.NewAuthenticator(jwtService, tokenStore),
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewMachineHandler(machineService),
		handler.NewAlertHandler(alertService),
		handler.NewReportHandler(reportService),
		handler.NewHealthHandler(func(ctx context.Context) error {
			return db.Ping(ctx, gormDB)
		}),
	)
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
