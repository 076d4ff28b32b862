// Command npmstats-export flattens every persisted historical series into
// parquet files for offline analytics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"npmstats/internal/config"
	"npmstats/internal/store"
	"npmstats/internal/util"
)

func main() {
	cfgFlag := flag.String("config", "", "config file path (default $NPMSTATS_CONFIG or config/npmstats.yaml)")
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

	ctx := context.Background()
	files := store.NewFileStore(cfg.Storage.SeriesDir)
	exports := store.NewParquetStore(cfg.Storage.ExportDir)

	pkgs, err := files.List(ctx)
	if err != nil {
		log.Fatalf("failed to list series: %v", err)
	}
	if len(pkgs) == 0 {
		log.Fatalf("no series found under %s", cfg.Storage.SeriesDir)
	}

	exported, failed := 0, 0
	for _, pkg := range pkgs {
		ser, err := files.Load(ctx, pkg)
		if err != nil {
			slog.Error("loading series failed", "package", pkg, "err", err)
			failed++
			continue
		}
		if err := exports.ExportSeries(ser); err != nil {
			slog.Error("export failed", "package", pkg, "err", err)
			failed++
			continue
		}
		exported++
	}

	fmt.Printf("exported %d series to %s, %d failed\n", exported, cfg.Storage.ExportDir, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
