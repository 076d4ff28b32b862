// Command npmstats-update runs one batch update: it folds newly available
// seed snapshots into every tracked package's historical series. Re-running
// it is how new weeks get picked up; there is no daemon mode.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"npmstats/internal/config"
	"npmstats/internal/seed"
	"npmstats/internal/store"
	"npmstats/internal/update"
	"npmstats/internal/util"
)

func main() {
	cfgFlag := flag.String("config", "", "config file path (default $NPMSTATS_CONFIG or config/npmstats.yaml)")
	history := flag.Int("history", 0, "print the N most recent recorded runs and exit")
	noHistory := flag.Bool("no-history", false, "skip recording this run in the history database")
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

	if *history > 0 {
		if err := printHistory(cfg.Storage.SQLitePath, *history); err != nil {
			log.Fatalf("failed to print run history: %v", err)
		}
		return
	}

	seeds := seed.NewDir(cfg.Storage.SeedDir)
	files := store.NewFileStore(cfg.Storage.SeriesDir)
	runner := update.NewRunner(update.NewUpdater(seeds, files), config.Packages)

	if !*noHistory {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); err != nil {
			log.Fatalf("failed to create run history dir: %v", err)
		}
		runs, err := store.NewRunStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open run history: %v", err)
		}
		defer runs.Close()
		runner.SetRunStore(runs)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sum := runner.Run(ctx)

	fmt.Printf("updated %d packages, %d failed\n", sum.Succeeded(), sum.Failed())
	for _, res := range sum.Results {
		if res.Err != nil {
			fmt.Printf("  FAILED %s: %v\n", res.Package, res.Err)
		}
	}
	if sum.Failed() > 0 {
		os.Exit(1)
	}
}

// printHistory lists recent recorded runs with their per-package failures.
func printHistory(dbPath string, limit int) error {
	runs, err := store.NewRunStore(dbPath)
	if err != nil {
		return err
	}
	defer runs.Close()

	ctx := context.Background()
	records, err := runs.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("run %d  %s  ok=%d failed=%d\n",
			rec.ID, rec.StartedAt.Format("2006-01-02 15:04:05"), rec.Succeeded, rec.Failed)
		if rec.Failed == 0 {
			continue
		}
		pkgs, err := runs.RunPackages(ctx, rec.ID)
		if err != nil {
			return err
		}
		for _, p := range pkgs {
			if !p.OK {
				fmt.Printf("  FAILED %s: %s\n", p.Package, p.Err)
			}
		}
	}
	return nil
}
