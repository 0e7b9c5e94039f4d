package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"winter-feast/internal/config"
	"winter-feast/internal/database"
	"winter-feast/internal/logger"
	"winter-feast/internal/services/auth"
	"winter-feast/internal/services/menu"
	"winter-feast/internal/services/order"
	"winter-feast/internal/services/reservation"
	"winter-feast/internal/session"
	"winter-feast/internal/web"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to configuration file")
		port       = flag.Int("port", 0, "HTTP port (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	log := logger.New("winter-feast")
	requestID := logger.GenerateRequestID()

	log.Info("service_started", "Starting winter-feast", requestID, map[string]interface{}{
		"port": cfg.HTTP.Port,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	if err := run(ctx, cfg, log, requestID); err != nil {
		log.Error("service_failed", "Service failed", requestID, err, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, requestID string) error {
	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	sessions := session.NewRedisStore(redisClient, time.Duration(cfg.Session.TTLMinutes)*time.Minute)

	authSvc := auth.NewService(auth.NewPostgresRepository(db), log)
	menuSvc := menu.NewService(menu.NewPostgresRepository(db), cfg.Uploads.Dir, log)
	orderSvc := order.NewService(order.NewPostgresRepository(db), menuSvc, log)
	reservationSvc := reservation.NewService(reservation.NewPostgresRepository(db), log)

	if err := authSvc.EnsureAdmin(ctx, cfg.Admin.Nickname, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	if err := menuSvc.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed menu: %w", err)
	}

	handler, err := web.NewHandler(cfg, authSvc, menuSvc, orderSvc, reservationSvc, sessions, log)
	if err != nil {
		return fmt.Errorf("failed to build web handler: %w", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("http_server_started", fmt.Sprintf("Listening on :%d", cfg.HTTP.Port), requestID, nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	log.Info("service_stopped", "Server stopped cleanly", requestID, nil)
	return nil
}
