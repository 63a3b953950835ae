package main

import (
	"context"
	"fmt"
	"meet-and-greet/internal/client"
	"meet-and-greet/internal/config"
	"meet-and-greet/internal/logger"
	"meet-and-greet/internal/model"
	"meet-and-greet/internal/repository"
	"meet-and-greet/internal/server"
	"meet-and-greet/internal/service"
	"meet-and-greet/internal/session"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewStructured(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log = log.WithFields(map[string]interface{}{"env": cfg.Environment.Name})

	applicationRepo, closeStore, err := openApplicationRepository(cfg)
	if err != nil {
		log.WithError(err).Error("failed to open application store", map[string]interface{}{
			"driver": cfg.Store.Driver,
		})
		os.Exit(1)
	}
	defer closeStore()

	sessions, closeSessions, err := openSessionStore(cfg)
	if err != nil {
		log.WithError(err).Error("failed to open wizard session store", map[string]interface{}{
			"redis_addr": cfg.Redis.Addr,
		})
		os.Exit(1)
	}
	defer closeSessions()

	plans := model.DefaultPlanCatalog()
	applicationService := service.NewApplicationService(applicationRepo, plans, log)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(applicationService, sessions, plans, log, server.Options{
		SubmitTimeout: cfg.Wizard.SubmitTimeout,
	})

	log.Info("starting HTTP server", map[string]interface{}{
		"addr":     serverAddr,
		"driver":   cfg.Store.Driver,
		"sessions": sessionBackend(cfg),
	})
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP server error", nil)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error", nil)
	}
}

func openApplicationRepository(cfg *config.Config) (repository.ApplicationRepository, func(), error) {
	if cfg.Store.Driver == client.DriverSupabase {
		supabase, err := client.NewSupabaseClient(&cfg.Supabase, nil)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSupabaseApplicationRepository(supabase, cfg.Supabase.Table), func() {}, nil
	}

	db, err := client.OpenDatabase(cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewApplicationRepository(db), func() { _ = client.CloseDatabase(db) }, nil
}

func openSessionStore(cfg *config.Config) (session.Store, func(), error) {
	if cfg.Redis.Addr == "" {
		return session.NewMemoryStore(cfg.Wizard.SessionTTL), func() {}, nil
	}

	rdb := session.NewRedisClient(&cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}

	// A submit that outlives its timeout must not keep the session locked.
	lockTTL := cfg.Wizard.SubmitTimeout + 5*time.Second
	return session.NewRedisStore(rdb, cfg.Wizard.SessionTTL, lockTTL), func() { _ = rdb.Close() }, nil
}

func sessionBackend(cfg *config.Config) string {
	if cfg.Redis.Addr == "" {
		return "memory"
	}
	return "redis"
}
