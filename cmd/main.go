package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/gradesystem/backend/docs"
	authMiddleware "github.com/gradesystem/backend/internal/auth/middleware"
	"github.com/gradesystem/backend/internal/auth/service"
	"github.com/gradesystem/backend/internal/config"
	"github.com/gradesystem/backend/internal/handlers"
	"github.com/gradesystem/backend/internal/logger"
	loggerMiddleware "github.com/gradesystem/backend/internal/logger/middleware"
	"github.com/gradesystem/backend/internal/middlewares"
	"github.com/gradesystem/backend/internal/models"
	"github.com/gradesystem/backend/internal/repositories"
	"github.com/gradesystem/backend/internal/services"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Grading System API
// @version 1.0
// @description API for grading management: accounts, tasks and grades

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Credential and session primitives
	codec, err := service.NewCredentialCodec(cfg.Password.Iterations, cfg.Password.SaltBytes)
	if err != nil {
		logger.Logger.Fatal("Invalid credential settings", zap.Error(err))
	}
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	// Initialize layers
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	taskRepo := repositories.NewTaskRepository(db, logger.Logger)
	gradeRepo := repositories.NewGradeRepository(db, logger.Logger)

	accountService, err := services.NewAccountService(userRepo, codec, tokens, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to create account service", zap.Error(err))
	}
	adminService := services.NewAdminService(userRepo, accountService, logger.Logger)
	taskService := services.NewTaskService(taskRepo, logger.Logger)
	gradeService := services.NewGradeService(gradeRepo, userRepo, logger.Logger)

	authHandler := handlers.NewAuthHandler(accountService, logger.Logger)
	adminHandler := handlers.NewAdminHandler(accountService, adminService, logger.Logger)
	taskHandler := handlers.NewTaskHandler(taskService, logger.Logger)
	gradeHandler := handlers.NewGradeHandler(gradeService, logger.Logger)
	studentHandler := handlers.NewStudentHandler(taskService, gradeService, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(middlewares.DefaultMaxBodyBytes, logger.Logger))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	loginLimit := httprate.Limit(
		cfg.RateLimit.LoginPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"too many login attempts"}`))
		}),
	)

	// API routes
	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, loginLimit, authMiddleware.RequireAuth(tokens))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireRole(tokens, models.RoleDirector))
			adminHandler.RegisterRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireRole(tokens, models.RoleProfessor))
			taskHandler.RegisterRoutes(r)
			gradeHandler.RegisterRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireRole(tokens, models.RoleStudent))
			studentHandler.RegisterRoutes(r)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations applies pending migrations from the migrations directory
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "grades_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// running from cmd/
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
