package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"CupSentinel/internal/config"
	"CupSentinel/internal/detector"
	"CupSentinel/internal/logging"
	"CupSentinel/internal/plot"
	"CupSentinel/internal/seed"
	"CupSentinel/internal/store"
)

var (
	cfgFile  string
	logLevel string
	seedPath string
	seedKind string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Cup-and-handle pattern watcher for seven large-cap US equities",
		Long: `Sentinel samples prices of Apple, Microsoft, Alphabet, Amazon, Nvidia,
Meta and Tesla, keeps them in memory and checks each series for a
cup-and-handle formation.

Examples:
  sentinel serve
  sentinel detect --seed-path data/history.csv
  sentinel render Nvidia -o nvda.png --annotate
  sentinel replay --seed-path data/history.db --out charts/`,
		SilenceUsage: true,
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultCfg, "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&seedPath, "seed-path", "", "warm-start samples from this file (overrides seed.path)")
	rootCmd.PersistentFlags().StringVar(&seedKind, "seed-kind", "", "seed file kind: sqlite, csv (guessed from the extension when empty)")

	rootCmd.AddCommand(newServeCmd(), newDetectCmd(), newRenderCmd(), newReplayCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the core wiring shared by every subcommand.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    *store.Store
	detector *detector.Detector
	renderer *plot.Renderer
}

// loadApp reads and validates configuration, then builds the store,
// detector and renderer.
func loadApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if seedPath != "" {
		cfg.Seed.Path = seedPath
		cfg.Seed.Kind = seedKind
		if cfg.Seed.Kind == "" {
			cfg.Seed.Kind = config.SeedKindFromPath(seedPath)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	st := store.New()
	return &app{
		cfg:      cfg,
		log:      logging.New(cfg.Log),
		store:    st,
		detector: detector.New(cfg.Detector, st),
		renderer: plot.New(cfg.Render, st, cfg.Detector.SmoothingWindow),
	}, nil
}

// warmStart replays the configured seed into the store. step may be nil.
func (a *app) warmStart(ctx context.Context, step func()) (seed.Stats, error) {
	loader, err := seed.Open(a.seedKind(), a.cfg.Seed.Path, a.log)
	if err != nil {
		return seed.Stats{}, err
	}
	defer loader.Close()
	return seed.Replay(ctx, loader, a.store, a.log, step)
}

func (a *app) seedKind() string {
	if a.cfg.Seed.Kind == "none" {
		return ""
	}
	return a.cfg.Seed.Kind
}
