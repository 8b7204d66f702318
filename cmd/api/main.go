package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gshelgaas/bankcards/internal/api"
	"github.com/gshelgaas/bankcards/internal/apperr"
	"github.com/gshelgaas/bankcards/internal/auth"
	"github.com/gshelgaas/bankcards/internal/cardsec"
	"github.com/gshelgaas/bankcards/internal/config"
	"github.com/gshelgaas/bankcards/internal/db"
	"github.com/gshelgaas/bankcards/internal/logger"
	"github.com/gshelgaas/bankcards/internal/metrics"
	"github.com/gshelgaas/bankcards/internal/repository/postgres"
	"github.com/gshelgaas/bankcards/internal/services"
	"github.com/gshelgaas/bankcards/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	store := postgres.NewStore(pool)
	cipher := cardsec.New(cfg.EncryptionSecret, cfg.HMACSecret)
	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)

	wp := worker.NewPool(cfg.Workers)
	defer wp.Stop()

	userSvc := services.NewUserService(store, tm)
	cardSvc := services.NewCardService(store, cipher, wp)
	transferSvc := services.NewTransferService(store, wp)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		seedAdmin(ctx, userSvc, cfg.AdminEmail, cfg.AdminPassword)
	}

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:          cfg,
		TokenManager: tm,
		UserSvc:      userSvc,
		CardSvc:      cardSvc,
		TransferSvc:  transferSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// seedAdmin bootstraps the first admin account. A Conflict means it
// already exists; anything else is fatal misconfiguration worth a
// loud log.
func seedAdmin(ctx context.Context, users *services.UserService, email, password string) {
	_, err := users.Register(ctx, services.RegisterParams{
		Email:     email,
		Password:  password,
		FirstName: "Admin",
		LastName:  "Admin",
		Role:      "ADMIN",
	})
	if err != nil && !apperr.IsConflict(err) {
		slog.Error("seed admin", "err", err)
	}
}
