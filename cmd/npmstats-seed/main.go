// Command npmstats-seed captures one raw snapshot: it fetches last-week
// per-version download counts from npm's API for every tracked package and
// writes them as a single dated seed file for npmstats-update to consume.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"npmstats/internal/config"
	"npmstats/internal/domain"
	"npmstats/internal/seed"
	"npmstats/internal/util"
	"npmstats/pkg/npmapi"
)

func main() {
	cfgFlag := flag.String("config", "", "config file path (default $NPMSTATS_CONFIG or config/npmstats.yaml)")
	dateFlag := flag.String("date", "", "snapshot date YYYY-MM-DD (default today, UTC)")
	flag.Parse()

	cfgPath := *cfgFlag
	if cfgPath == "" {
		cfgPath = "config/npmstats.yaml"
		if p := os.Getenv("NPMSTATS_CONFIG"); p != "" {
			cfgPath = p
		}
	}

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	date := *dateFlag
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		log.Fatalf("invalid -date %q: %v", date, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := npmapi.NewClient(cfg.Seeder.BaseURL)
	limiter := util.NewRateLimiter(cfg.Seeder.RateLimitPerMin)
	retryDelay := time.Duration(cfg.Seeder.RetryBaseMS) * time.Millisecond

	snap := domain.RawSnapshot{}
	failed := 0
	for _, pkg := range config.Packages {
		if err := limiter.Wait(ctx); err != nil {
			log.Fatalf("aborted: %v", err)
		}

		var counts map[string]int64
		err := util.Retry(ctx, cfg.Seeder.RetryAttempts, retryDelay, func() error {
			var ferr error
			counts, ferr = client.VersionDownloads(ctx, pkg)
			if errors.Is(ferr, npmapi.ErrPackageNotFound) {
				// Retrying a 404 won't help.
				return nil
			}
			return ferr
		})
		if err != nil {
			slog.Error("fetch failed", "package", pkg, "err", err)
			failed++
			continue
		}
		if len(counts) == 0 {
			slog.Warn("no download data", "package", pkg)
			continue
		}

		snap[pkg] = domain.Snapshot{Package: pkg, Downloads: counts}
		slog.Info("fetched", "package", pkg, "versions", len(counts))
	}

	if len(snap) == 0 {
		log.Fatalf("no package produced data; refusing to write an empty snapshot for %s", date)
	}

	seeds := seed.NewDir(cfg.Storage.SeedDir)
	if err := seeds.Write(date, snap); err != nil {
		log.Fatalf("failed to write snapshot: %v", err)
	}

	fmt.Printf("wrote snapshot %s: %d packages (%d fetch failures)\n", date, len(snap), failed)
	if failed > 0 {
		os.Exit(1)
	}
}
