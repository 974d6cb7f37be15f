package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	_ "github.com/lib/pq"

	httpapi "ecoloop-backend/internal/api/http"
	"ecoloop-backend/internal/config"
	"ecoloop-backend/internal/logger"
	"ecoloop-backend/internal/repository/postgres"
	"ecoloop-backend/internal/security"
	"ecoloop-backend/internal/service"
	"ecoloop-backend/internal/storage"
	"ecoloop-backend/migrations"
)

func main() {
	// Env vars override file config, .env is a convenience for local runs
	_ = godotenv.Load(".env")

	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ecoLoop backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if err := runMigrations(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations applied")

	store := postgres.NewStore(db)

	tokenManager := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)

	documentStore, err := storage.NewLocalDocumentStore(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize document storage", "error", err)
		log.Fatalf("Failed to initialize document storage: %v", err)
	}
	logger.Info("Using local document storage", "upload_dir", cfg.Storage.UploadDir)

	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	identitySvc := service.NewIdentityService(
		store.UserRepository,
		store.PendingRegistrationRepository,
		store.OTPRepository,
		store.TokenBlacklistRepository,
		tokenManager,
		emailSvc,
	)
	applicationSvc := service.NewApplicationService(
		store.RoleApplicationRepository,
		store.UserRepository,
		store.AuditLogRepository,
		emailSvc,
	)
	adminSvc := service.NewAdminService(
		store.UserRepository,
		store.AuditLogRepository,
		emailSvc,
	)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Identity:     identitySvc,
		Applications: applicationSvc,
		Admin:        adminSvc,
		Documents:    documentStore,
		Tokens:       tokenManager,
		MaxFileBytes: cfg.Storage.MaxFileSize * 1024 * 1024,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Block until asked to stop, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutting down...", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server exited")
}

// runMigrations brings the schema up to date using the embedded goose files
func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}
