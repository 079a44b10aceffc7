// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/admissions-checklist/internal/config"
	"github.com/javajoker/admissions-checklist/internal/database"
	"github.com/javajoker/admissions-checklist/internal/i18n"
	"github.com/javajoker/admissions-checklist/internal/repository"
	"github.com/javajoker/admissions-checklist/internal/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	setupLogging(cfg.Log)

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		logrus.Fatal("Failed to initialize i18n: ", err)
	}

	repo, cleanup := openRepository(cfg)
	defer cleanup()

	svc, err := router.NewServices(repo, cfg)
	if err != nil {
		logrus.Fatal("Failed to initialize services: ", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := router.Initialize(svc, cfg)

	// Background jobs stop when ctx is cancelled
	ctx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()

	var stopSweep func()
	if cfg.Sweep.Enabled {
		scheduler, err := svc.Sweeper.Start(ctx, cfg.Sweep)
		if err != nil {
			logrus.Fatal("Failed to start overdue sweep: ", err)
		}
		stopSweep = func() { <-scheduler.Stop().Done() }
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Cancel a sweep in progress and wait for it to return
	stopJobs()
	if stopSweep != nil {
		stopSweep()
	}

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("Server exited")
}

func setupLogging(cfg config.LogConfig) {
	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// openRepository returns the configured store and a function that releases it.
func openRepository(cfg *config.Config) (repository.Repository, func()) {
	if cfg.Database.Driver == "memory" {
		logrus.Warn("Using in-memory storage; data is lost on restart")
		return repository.NewMemoryRepository(), func() {}
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to initialize database: ", err)
	}

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	if cfg.Database.SeedDemo {
		if err := database.SeedDemoData(db); err != nil {
			logrus.Fatal("Failed to seed demo data: ", err)
		}
	}

	return repository.NewGormRepository(db), func() { database.Close(db) }
}
