package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/zentrum/internal/api"
	"github.com/Veraticus/zentrum/internal/certs"
	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/Veraticus/zentrum/internal/common"
	"github.com/Veraticus/zentrum/internal/config"
	"github.com/Veraticus/zentrum/internal/export"
	"github.com/Veraticus/zentrum/internal/settings"
	"github.com/Veraticus/zentrum/internal/storage"
	"github.com/spf13/viper"
)

// Output formats accepted by --output.
const outputText = "text"

// loadConfig reads the client configuration from viper.
func loadConfig() (config.ClientConfig, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.ClientConfig{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openSettings opens the settings database with auto-migration and loads
// the stored credentials.
func openSettings(ctx context.Context, cfg config.ClientConfig) (*settings.Store, func(), error) {
	db, err := storage.NewSQLiteStorage(cfg.SettingsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open settings: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := settings.NewStore(db, slog.Default())
	store.Load(ctx)

	cleanup := func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Warn("failed to close settings database", "error", closeErr)
		}
	}
	return store, cleanup, nil
}

// initClient builds an API client whose credentials come from the settings store.
func initClient(ctx context.Context) (*api.Client, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	store, cleanup, err := openSettings(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []api.Option{
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(slog.Default()),
	}
	if cfg.CAFile != "" {
		pool, err := certs.LoadPool(cfg.CAFile)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts = append(opts, api.WithRootCAs(pool))
	}

	client, err := api.NewClient(cfg.ServerURL, store, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	if !store.HasAPIKey() {
		slog.Debug("no Anthropic API key configured, the service default applies")
	}
	return client, cleanup, nil
}

// writeOutput renders v in the requested format. Text output is produced by text.
func writeOutput(w io.Writer, format string, v any, text func() string) error {
	if format == "" || format == outputText {
		_, err := io.WriteString(w, text())
		return err
	}

	out, err := export.Marshal(format, v)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// printLine writes one styled line, logging write failures.
func printLine(w io.Writer, line string) {
	if _, err := fmt.Fprintln(w, line); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

// failure renders err for the terminal the way the controllers report it.
func failure(err error, fallback string) string {
	return cli.FormatError(common.DisplayMessage(err, fallback))
}
