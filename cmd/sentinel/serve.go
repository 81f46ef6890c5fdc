package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"CupSentinel/internal/api"
	"CupSentinel/internal/collector"
	"CupSentinel/internal/httputil"
	"CupSentinel/internal/notifier"
	"CupSentinel/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	var tickOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sampler, the HTTP API and the optional Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			return a.serve(tickOnStart || os.Getenv("RUN_ON_START") == "true")
		},
	}
	cmd.Flags().BoolVar(&tickOnStart, "tick-on-start", false, "run one tick immediately")
	return cmd
}

func (a *app) serve(tickOnStart bool) error {
	log := a.log
	cfg := a.cfg
	log.Info().Msg("sentinel starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := a.warmStart(ctx, nil); err != nil {
		return err
	}

	src, err := collector.NewSource(collector.SourceConfig{
		Provider:      cfg.Quote.Provider,
		BaseURL:       cfg.Quote.BaseURL,
		APIKey:        cfg.Quote.APIKey,
		Proxy:         cfg.Proxy,
		RatePerMinute: cfg.Quote.RatePerMinute,
		Timeout:       time.Duration(cfg.Quote.TimeoutSec) * time.Second,
		Retry: httputil.RetryConfig{
			MaxAttempts: cfg.Quote.RetryAttempts,
			BaseDelay:   httputil.DefaultRetry.BaseDelay,
			MaxDelay:    httputil.DefaultRetry.MaxDelay,
			OnRetry: func(attempt int, err error, wait time.Duration) {
				log.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("quote request retry")
			},
		},
	})
	if err != nil {
		return err
	}
	log.Info().Str("source", src.Name()).Msg("quote source ready")
	ing := collector.NewIngestor(src, a.store, cfg.Collector.Workers, log)

	var tn *notifier.TelegramNotifier
	var alerter scheduler.Alerter
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		alerter = tn
	}

	sched := scheduler.NewScheduler(ctx, ing, a.detector, a.renderer, a.store, alerter,
		scheduler.NYSEHours(cfg.Location()), log)
	sched.AllHours = cfg.Schedule.AllHours
	if err := sched.Register(cfg.Schedule.TickCron); err != nil {
		return err
	}
	sched.Start()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}
	if tickOnStart {
		sched.TickNow()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.SetupRoutes(api.NewHandler(a.detector, a.renderer, a.store, log)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping")
	case err := <-errCh:
		sched.Stop()
		return err
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	sched.Stop()
	cancel()
	log.Info().Msg("sentinel stopped")
	return nil
}
