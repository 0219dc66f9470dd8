// Command crawlservd is the control process: it loads configuration,
// connects to the store, runs the startup sweeps every URL list needs
// before any worker starts, resumes in-flight Thread Records, and
// serves the command channel and the observability endpoints until
// terminated. Grounded on cmd/crawler's signal-handling/health-server
// shell, generalized from "one hardcoded Crawler" to the full module
// registry.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/crawlserv/crawlservpp-sub000/internal/api"
	"github.com/crawlserv/crawlservpp-sub000/internal/config"
	"github.com/crawlserv/crawlservpp-sub000/internal/platform/logging"
	"github.com/crawlserv/crawlservpp-sub000/internal/platform/observability"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger := logging.New("info")
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	db, err := store.New(ctx, cfg.PostgresDSN, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	runStartupSweeps(ctx, db, &logger)

	registry := api.NewRegistry(db, &logger, api.NetworkOptions{
		UserAgent:  cfg.HTTPUserAgent,
		Timeout:    cfg.HTTPTimeout,
		MinRPS:     1,
		ErrorDelay: cfg.HTTPErrorDelay,
	})

	if err := registry.Resume(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to resume thread records")
	}

	healthServer := observability.NewServer(db, cfg.HealthPort, &logger)
	commandServer := api.NewServer(db, registry, cfg.APIPort, &logger)

	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("observability server error")
		}
	}()

	logger.Info().Msg("starting command channel")

	if err := commandServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("command channel error")
	}

	logger.Info().Msg("crawlservd stopped")
}

// runStartupSweeps repairs stale hashes and duplicate locks across
// every URL list before any worker starts, per store.ListAllURLLists'
// documented purpose.
func runStartupSweeps(ctx context.Context, db *store.DB, logger *zerolog.Logger) {
	lists, err := db.ListAllURLLists(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list url lists for startup sweep")
		return
	}

	for _, entry := range lists {
		if n, err := db.RepairStaleHashes(ctx, entry.WebsiteNamespace, entry.List.Namespace); err != nil {
			logger.Error().Err(err).Str("list", entry.List.Namespace).Msg("repair stale hashes")
		} else if n > 0 {
			logger.Info().Int64("count", n).Str("list", entry.List.Namespace).Msg("repaired stale hashes")
		}

		if n, err := db.RepairDuplicateLocks(ctx, entry.WebsiteNamespace, entry.List.Namespace); err != nil {
			logger.Error().Err(err).Str("list", entry.List.Namespace).Msg("repair duplicate locks")
		} else if n > 0 {
			logger.Info().Int64("count", n).Str("list", entry.List.Namespace).Msg("repaired duplicate locks")
		}
	}
}
