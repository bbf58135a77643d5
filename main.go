package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doctor-booking/api"
	"doctor-booking/config"
	"doctor-booking/database"
	"doctor-booking/database/migrations"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.LUTC)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	debugf := func(format string, args ...any) {
		if cfg.Debug() {
			logger.Printf("[DEBUG] "+format, args...)
		}
	}

	if cfg.UsesDefaultDSN() {
		logger.Println("using default database DSN")
	} else {
		logger.Println("connecting to database using POSTGRES_DSN from environment")
	}
	debugf("config loaded: port=%s driver=%s max_open=%d max_idle=%d conn_max_lifetime=%s timezone=%s",
		cfg.Port, cfg.DB.Driver, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.ConnMaxLifetime, cfg.Location)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	db, err := database.Connect(connectCtx, cfg.DB.Driver, cfg.DSN(), database.PoolOptions{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	cancel()
	if err != nil {
		logger.Fatalf("database connect: %v", err)
	}
	defer db.Close()
	logger.Println("successfully connected to database")

	if cfg.DB.AutoMigrate {
		applied, err := migrations.Up(ctx, db)
		if err != nil {
			logger.Fatalf("failed to run migrations: %v", err)
		}
		debugf("migrations applied: %v", applied)
	}

	service := api.NewAPI(db,
		api.WithLogger(logger),
		api.WithLocation(cfg.Location),
		api.WithAllowedOrigins(cfg.AllowedOrigins),
	)
	service.RegisterRoutes()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           service.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("server shutdown: %v", err)
		}
	}()

	logger.Printf("server starting on port %s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server: %v", err)
	}
	logger.Println("server stopped")
}
