// Package plot renders a company's price history as a chart, optionally
// annotated with the landmarks of a detected cup-and-handle.
package plot

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"CupSentinel/internal/calculator"
	"CupSentinel/internal/model"
)

// Config controls the chart geometry.
type Config struct {
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
	Ticks    int     `yaml:"ticks"`
}

func DefaultConfig() Config {
	return Config{WidthIn: 12, HeightIn: 6, Ticks: 10}
}

// SeriesReader is the read side of the series store.
type SeriesReader interface {
	Snapshot(c model.Company) ([]model.PricePoint, error)
}

var (
	rawColor     = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	smoothColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	patternColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

const tickLayout = "01-02 15:04"

// Renderer draws charts from store snapshots.
type Renderer struct {
	cfg       Config
	store     SeriesReader
	smoothing int
	Encoder   Encoder
}

// New creates a renderer. smoothing is the moving-average width of the
// smoothed line when no detection is supplied; 0 picks it from volatility.
func New(cfg Config, st SeriesReader, smoothing int) *Renderer {
	if cfg.Ticks <= 0 {
		cfg.Ticks = 10
	}
	return &Renderer{
		cfg:       cfg,
		store:     st,
		smoothing: smoothing,
		Encoder:   NewPNGEncoder(cfg.WidthIn, cfg.HeightIn),
	}
}

// Render draws c's full series. When det reports a detection its landmarks
// are overlaid. A single sample is enough for a chart.
func (r *Renderer) Render(c model.Company, det *model.DetectionResult) (*Artifact, error) {
	points, err := r.store.Snapshot(c)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, &model.InsufficientDataError{Company: c, Have: 0, Need: 1}
	}

	p, err := r.build(c, points, det)
	if err != nil {
		return nil, fmt.Errorf("build chart for %s: %w", c, err)
	}
	data, err := r.Encoder.Encode(p)
	if err != nil {
		return nil, fmt.Errorf("encode chart for %s: %w", c, err)
	}
	return &Artifact{Company: c, Format: r.Encoder.Format(), Data: data}, nil
}

func (r *Renderer) build(c model.Company, points []model.PricePoint, det *model.DetectionResult) (*gplot.Plot, error) {
	detected := det != nil && det.Detected

	p := gplot.New()
	p.Title.Text = chartTitle(c, detected)
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Price"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	prices := model.Prices(points)
	width := r.smoothing
	if det != nil && det.SmoothingWindow > 0 {
		width = det.SmoothingWindow
	}
	if width == 0 {
		width = calculator.AutoSmoothingWindow(prices)
	}
	smoothed := calculator.MovingAverage(prices, width)

	rawLine, err := plotter.NewLine(indexed(prices))
	if err != nil {
		return nil, err
	}
	rawLine.LineStyle.Color = rawColor
	rawLine.LineStyle.Width = vg.Points(1)
	rawLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	smoothLine, err := plotter.NewLine(indexed(smoothed))
	if err != nil {
		return nil, err
	}
	smoothLine.LineStyle.Color = smoothColor
	smoothLine.LineStyle.Width = vg.Points(1.5)

	p.Add(rawLine, smoothLine)
	p.Legend.Add("Raw Price", rawLine)
	p.Legend.Add(fmt.Sprintf("Smoothed (window %d)", width), smoothLine)

	if detected {
		if err := overlay(p, points, det.Landmarks); err != nil {
			return nil, err
		}
	}

	p.X.Tick.Marker = gplot.ConstantTicks(timeTicks(points, r.cfg.Ticks))
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

// overlay connects the landmarks with a green polyline, marks and labels them.
// Landmarks are located by timestamp so a trailing detection window lands on
// the right samples of the full series.
func overlay(p *gplot.Plot, points []model.PricePoint, landmarks []model.Landmark) error {
	xys := make(plotter.XYs, 0, len(landmarks))
	labels := make([]string, 0, len(landmarks))
	for _, l := range landmarks {
		i := sort.Search(len(points), func(i int) bool { return !points[i].Time.Before(l.Time) })
		if i == len(points) || !points[i].Time.Equal(l.Time) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(i), Y: l.Level})
		labels = append(labels, string(l.Role))
	}
	if len(xys) == 0 {
		return nil
	}

	line, marks, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.LineStyle.Color = patternColor
	line.LineStyle.Width = vg.Points(2)
	marks.GlyphStyle.Color = patternColor
	marks.GlyphStyle.Shape = draw.CircleGlyph{}
	marks.GlyphStyle.Radius = vg.Points(4)

	lbls, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	for i := range lbls.TextStyle {
		lbls.TextStyle[i].Color = patternColor
	}
	lbls.Offset = vg.Point{X: vg.Points(4), Y: vg.Points(6)}

	p.Add(line, marks, lbls)
	p.Legend.Add("Cup and Handle", line, marks)
	return nil
}

// indexed places values at evenly spaced x positions.
func indexed(values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i), Y: v}
	}
	return xys
}

// timeTicks labels about n evenly spaced samples with their timestamps.
func timeTicks(points []model.PricePoint, n int) []gplot.Tick {
	step := len(points) / n
	if step < 1 {
		step = 1
	}
	ticks := make([]gplot.Tick, 0, n+1)
	for i := 0; i < len(points); i += step {
		ticks = append(ticks, gplot.Tick{Value: float64(i), Label: points[i].Time.Format(tickLayout)})
	}
	return ticks
}

// chartTitle names the company by its display name, e.g.
// "Apple - Pattern Detected: true".
func chartTitle(c model.Company, detected bool) string {
	return fmt.Sprintf("%s - Pattern Detected: %t", c, detected)
}
