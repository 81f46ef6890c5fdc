// Package detector decides whether a company's recent price history forms a
// cup-and-handle.
package detector

import (
	"fmt"

	"CupSentinel/internal/calculator"
	"CupSentinel/internal/model"
)

// Config holds the detection thresholds. Percentages are in percent units.
type Config struct {
	MinPoints           int     `yaml:"min_points"`
	SmoothingWindow     int     `yaml:"smoothing_window"` // 0 = pick from volatility
	WindowPoints        int     `yaml:"window_points"`    // 0 = whole series
	MinCupDepthPct      float64 `yaml:"min_cup_depth_pct"`
	RimTolerancePct     float64 `yaml:"rim_tolerance_pct"`
	MaxHandleDepthRatio float64 `yaml:"max_handle_depth_ratio"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		MinPoints:           30,
		SmoothingWindow:     3,
		MinCupDepthPct:      10,
		RimTolerancePct:     3,
		MaxHandleDepthRatio: 0.5,
	}
}

// Validate checks that the thresholds describe a searchable shape.
func (c Config) Validate() error {
	if c.MinPoints < 5 {
		return fmt.Errorf("min_points must be at least 5, got %d", c.MinPoints)
	}
	if c.SmoothingWindow < 0 {
		return fmt.Errorf("smoothing_window must not be negative")
	}
	if c.WindowPoints != 0 && c.WindowPoints < c.MinPoints {
		return fmt.Errorf("window_points (%d) must be 0 or at least min_points (%d)", c.WindowPoints, c.MinPoints)
	}
	if c.MinCupDepthPct <= 0 || c.MinCupDepthPct >= 100 {
		return fmt.Errorf("min_cup_depth_pct must be in (0, 100)")
	}
	if c.RimTolerancePct <= 0 {
		return fmt.Errorf("rim_tolerance_pct must be positive")
	}
	if c.MaxHandleDepthRatio <= 0 || c.MaxHandleDepthRatio >= 1 {
		return fmt.Errorf("max_handle_depth_ratio must be in (0, 1)")
	}
	return nil
}

// SeriesReader is the read side of the series store.
type SeriesReader interface {
	Snapshot(c model.Company) ([]model.PricePoint, error)
}

// Detector runs cup-and-handle detection against a store.
type Detector struct {
	cfg    Config
	cfgErr error
	store  SeriesReader
}

// New builds a Detector. An invalid cfg is kept and reported by every Detect
// call, so thresholds such as a zero tolerance never reach the shape search.
func New(cfg Config, st SeriesReader) *Detector {
	return &Detector{cfg: cfg, cfgErr: cfg.Validate(), store: st}
}

// Config returns the thresholds in use.
func (d *Detector) Config() Config { return d.cfg }

// Detect snapshots c's series and analyzes it. It fails with
// ErrUnknownCompany or ErrInsufficientData, or when the detector was built
// from an invalid Config; every other outcome is a verdict.
func (d *Detector) Detect(c model.Company) (*model.DetectionResult, error) {
	if d.cfgErr != nil {
		return nil, fmt.Errorf("detector config: %w", d.cfgErr)
	}
	points, err := d.store.Snapshot(c)
	if err != nil {
		return nil, err
	}
	if len(points) < d.cfg.MinPoints {
		return nil, &model.InsufficientDataError{Company: c, Have: len(points), Need: d.cfg.MinPoints}
	}
	return d.Analyze(c, points), nil
}

// Analyze runs the shape search on points, which must hold at least
// MinPoints samples in time order. points is not modified.
func (d *Detector) Analyze(c model.Company, points []model.PricePoint) *model.DetectionResult {
	// Step a: trailing window
	window := points
	if d.cfg.WindowPoints > 0 && len(window) > d.cfg.WindowPoints {
		window = window[len(window)-d.cfg.WindowPoints:]
	}
	raw := model.Prices(window)

	// Step b: smoothed working copy
	width := d.SmoothingFor(raw)
	s := calculator.MovingAverage(raw, width)

	res := &model.DetectionResult{
		Company:         c,
		Landmarks:       []model.Landmark{},
		Points:          len(window),
		SmoothingWindow: width,
	}

	// Step c: try left rims oldest first, first complete pattern wins
	candidates := calculator.LocalMaxima(s)
	if len(candidates) == 0 {
		res.Reason = "no left rim"
		return res
	}
	var firstReason string
	for _, left := range candidates {
		m, reason := d.match(s, raw, left)
		if m == nil {
			if firstReason == "" {
				firstReason = reason
			}
			continue
		}
		res.Detected = true
		res.Confidence = m.confidence
		res.Landmarks = m.landmarks(window, s)
		return res
	}
	res.Reason = firstReason
	return res
}

// SmoothingFor returns the moving-average width applied to prices.
func (d *Detector) SmoothingFor(prices []float64) int {
	if d.cfg.SmoothingWindow > 0 {
		return d.cfg.SmoothingWindow
	}
	return calculator.AutoSmoothingWindow(prices)
}
