package main

import (
	"context"
	"os"

	"github.com/settham78ths/V2/internal/shared/config"
	"github.com/settham78ths/V2/internal/shared/storage/db"
	"github.com/settham78ths/V2/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		telemetry.Error("migrate.no_database_url", nil)
		os.Exit(1)
	}

	ctx := context.Background()
	handle, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultMigrateOptions())
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer handle.Close()

	if err := db.Migrate(ctx, handle); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.complete", nil)
}
