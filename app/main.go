package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/vsafonov/torgi-sync/app/cfg"
	"github.com/vsafonov/torgi-sync/app/feed"
	"github.com/vsafonov/torgi-sync/app/geoportal"
	"github.com/vsafonov/torgi-sync/app/ingest"
	"github.com/vsafonov/torgi-sync/app/sheets"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using process environment")
	}

	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	runID := uuid.NewString()[:8]
	logger := slog.Default().With("run_id", runID)
	slog.SetDefault(logger)

	slog.Info("Starting lot sync", "version", appCfg.Version, "sheet", appCfg.SheetID)

	ctx := context.Background()

	store, err := sheets.NewClient(ctx, appCfg.SheetID, appCfg.SheetName, appCfg.CredentialsJSON)
	if err != nil {
		slog.Error("Failed to create sheets client", "error", err)
		os.Exit(1)
	}

	fetcher := feed.NewClient(appCfg.FeedURL, appCfg.UserAgent)
	enricher := geoportal.NewClient(appCfg.GeoportalURL, appCfg.MapURL, appCfg.UserAgent)
	pacer := ingest.NewPacer(time.Duration(appCfg.LookupDelayMs) * time.Millisecond)

	driver := ingest.NewDriver(store, fetcher, enricher, pacer, ingest.Options{
		RetryWindow: appCfg.RetryWindow,
		MaxProbeRow: appCfg.MaxProbeRow,
	})

	if err := driver.Run(ctx); err != nil {
		slog.Error("Sync run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Sync run finished")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
