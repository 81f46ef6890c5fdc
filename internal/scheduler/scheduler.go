package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"CupSentinel/internal/model"
	"CupSentinel/internal/notifier"
	"CupSentinel/internal/plot"
)

// Ticker runs one ingestion pass.
type Ticker interface {
	Tick(ctx context.Context)
}

// Detector returns a verdict for one company.
type Detector interface {
	Detect(c model.Company) (*model.DetectionResult, error)
}

// Renderer draws a company chart.
type Renderer interface {
	Render(c model.Company, det *model.DetectionResult) (*plot.Artifact, error)
}

// Counter reports how many samples a company has.
type Counter interface {
	Len(c model.Company) (int, error)
}

// Alerter delivers pattern alerts.
type Alerter interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendPhoto(ctx context.Context, caption string, png []byte) error
}

// Scheduler drives ingestion on a cron cadence, gated to trading hours, and
// alerts when a company's detection flips from false to true.
type Scheduler struct {
	Cron     *cron.Cron
	Ingestor Ticker
	Detector Detector
	Renderer Renderer
	Store    Counter
	Alerter  Alerter // nil disables alerts
	Hours    MarketHours
	AllHours bool
	Ctx      context.Context

	now      func() time.Time
	log      zerolog.Logger
	running  sync.WaitGroup
	mu       sync.Mutex
	detected map[model.Company]bool
}

// NewScheduler creates a Scheduler whose cron runs in hours.Location.
func NewScheduler(ctx context.Context, ing Ticker, det Detector, ren Renderer, st Counter, alerter Alerter, hours MarketHours, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(hours.Location)),
		Ingestor: ing,
		Detector: det,
		Renderer: ren,
		Store:    st,
		Alerter:  alerter,
		Hours:    hours,
		Ctx:      ctx,
		now:      time.Now,
		log:      log.With().Str("component", "scheduler").Logger(),
		detected: make(map[model.Company]bool),
	}
}

// Register schedules the tick task.
func (s *Scheduler) Register(tickCron string) error {
	if _, err := s.Cron.AddFunc(tickCron, s.RunTick); err != nil {
		return fmt.Errorf("register tick task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running ticks to finish. Call
// it before cancelling Ctx so in-flight fetches complete.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.running.Wait()
	s.log.Info().Msg("scheduler stopped")
}

// TickNow runs one tick in the background. Stop waits for it.
func (s *Scheduler) TickNow() {
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		s.runTick()
	}()
}

// RunTick ingests one round of quotes and sweeps for new patterns. Outside
// trading hours it does nothing unless AllHours is set.
func (s *Scheduler) RunTick() {
	s.running.Add(1)
	defer s.running.Done()
	s.runTick()
}

func (s *Scheduler) runTick() {
	if !s.AllHours {
		if open, reason := s.Hours.Status(s.now()); !open {
			s.log.Debug().Str("reason", reason).Msg("market closed, tick skipped")
			return
		}
	}
	s.Ingestor.Tick(s.Ctx)
	s.sweep()
}

// sweep re-runs detection for every company and alerts on new detections.
func (s *Scheduler) sweep() {
	for _, c := range model.Companies() {
		res, err := s.Detector.Detect(c)
		if err != nil {
			if !errors.Is(err, model.ErrInsufficientData) {
				s.log.Error().Err(err).Str("company", string(c)).Msg("detect")
			}
			continue
		}

		s.mu.Lock()
		was := s.detected[c]
		s.detected[c] = res.Detected
		s.mu.Unlock()

		if res.Detected && !was {
			s.log.Info().Str("company", string(c)).Float64("confidence", res.Confidence).Msg("pattern detected")
			s.alert(res)
		}
	}
}

func (s *Scheduler) alert(res *model.DetectionResult) {
	if s.Alerter == nil {
		return
	}
	text := notifier.FormatPatternAlert(res)
	if s.Renderer != nil {
		err := s.sendChart(res, text)
		if err == nil {
			return
		}
		s.log.Warn().Err(err).Msg("chart alert failed, falling back to text")
	}
	if err := s.Alerter.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send alert")
	}
}

func (s *Scheduler) sendChart(res *model.DetectionResult, caption string) error {
	art, err := s.Renderer.Render(res.Company, res)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return s.Alerter.SendPhoto(s.Ctx, caption, art.Data)
}

// Detected reports the verdict of c at the last sweep.
func (s *Scheduler) Detected(c model.Company) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detected[c]
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText()
	}
	switch strings.ToLower(fields[0]) {
	case "/detect":
		if len(fields) < 2 {
			return "Usage: /detect &lt;company&gt;"
		}
		c, err := model.ParseCompany(strings.Join(fields[1:], " "))
		if err != nil {
			return notifier.FormatError(err)
		}
		res, err := s.Detector.Detect(c)
		if err != nil {
			return notifier.FormatError(err)
		}
		return notifier.FormatDetection(res)
	case "/companies":
		counts := make(map[model.Company]int)
		for _, c := range model.Companies() {
			if n, err := s.Store.Len(c); err == nil {
				counts[c] = n
			}
		}
		return notifier.FormatCompanies(counts)
	default:
		return notifier.HelpText()
	}
}
