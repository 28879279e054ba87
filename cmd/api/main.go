package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/settham78ths/V2/internal/billing"
	"github.com/settham78ths/V2/internal/entitlement"
	"github.com/settham78ths/V2/internal/generations"
	"github.com/settham78ths/V2/internal/jobposting"
	"github.com/settham78ths/V2/internal/llm/openrouter"
	"github.com/settham78ths/V2/internal/services/health"
	"github.com/settham78ths/V2/internal/session"
	"github.com/settham78ths/V2/internal/shared/config"
	"github.com/settham78ths/V2/internal/shared/server"
	"github.com/settham78ths/V2/internal/shared/storage/db"
	"github.com/settham78ths/V2/internal/shared/telemetry"
	"github.com/settham78ths/V2/internal/uploads"
	"github.com/settham78ths/V2/internal/users"
)

func main() {
	cfg := config.Load()

	var dbHandle *sql.DB
	if cfg.DatabaseURL != "" {
		handle, err := db.Connect(context.Background(), cfg.DatabaseURL, db.DefaultServerOptions())
		if err != nil {
			telemetry.Error("startup.db_connect_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		dbHandle = handle
		defer dbHandle.Close()
	} else {
		telemetry.Warn("startup.no_database", map[string]any{
			"detail": "DATABASE_URL not set, using in-memory stores",
		})
	}

	client := openrouter.NewClient(openrouter.Options{
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})
	if err := client.CheckConfig(); err != nil {
		// Boot anyway; the health endpoint keeps reporting this.
		telemetry.Warn("startup.model_config", map[string]any{"error": err.Error()})
	}

	var (
		sessionStore session.Store
		uploadRepo   uploads.Repository
		userRepo     users.Repository
		genRepo      generations.Repository
	)
	if dbHandle != nil {
		sessionStore = session.NewPGStore(dbHandle)
		uploadRepo = uploads.NewPGRepository(dbHandle)
		userRepo = users.NewPGRepository(dbHandle)
		genRepo = generations.NewPGRepository(dbHandle)
	} else {
		sessionStore = session.NewMemoryStore()
		uploadRepo = uploads.NewMemoryRepository()
		userRepo = users.NewMemoryRepository()
		genRepo = generations.NewMemoryRepository()
	}

	genService := generations.NewService(
		client, genRepo, sessionStore, uploadRepo, userRepo,
		entitlement.OperatorList(cfg.OperatorUsernames),
		cfg.DefaultLanguage,
	)
	billingService := billing.NewService(sessionStore, userRepo, billing.NewStaticVerifier(cfg.PaymentTestIntents))

	router := server.NewRouter(server.Dependencies{
		Config:      cfg,
		Health:      health.NewService(dbHandle, client),
		Uploads:     uploads.NewHandler(uploadRepo, sessionStore),
		Generations: generations.NewHandler(genService),
		Billing:     billing.NewHandler(billingService),
		JobPostings: jobposting.NewHandler(jobposting.NewFetcher(15*time.Second), genService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		telemetry.Info("startup.listening", map[string]any{"port": cfg.Port, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error("server.failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Info("shutdown.begin", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Error("shutdown.failed", map[string]any{"error": err.Error()})
	}
	telemetry.Info("shutdown.complete", nil)
}
