package seed

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"CupSentinel/internal/model"
)

// csvTime accepts RFC 3339 and the plain "2006-01-02 15:04:05" layout,
// read as UTC.
type csvTime struct {
	time.Time
}

var csvLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04"}

func (t *csvTime) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range csvLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// csvRow is one line of a seed file with header timestamp,symbol,price[,volume].
type csvRow struct {
	Timestamp csvTime `csv:"timestamp"`
	Symbol    string  `csv:"symbol"`
	Price     float64 `csv:"price"`
	Volume    float64 `csv:"volume"`
}

// CSVLoader reads samples from a CSV file.
type CSVLoader struct {
	Path string
}

func NewCSVLoader(path string) *CSVLoader { return &CSVLoader{Path: path} }

func (l *CSVLoader) Load(_ context.Context) ([]Row, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open seed csv: %w", err)
	}
	defer f.Close()

	var lines []*csvRow
	if err := gocsv.Unmarshal(f, &lines); err != nil {
		return nil, fmt.Errorf("parse seed csv: %w", err)
	}
	out := make([]Row, 0, len(lines))
	for _, ln := range lines {
		c, _ := model.ParseCompany(ln.Symbol)
		out = append(out, Row{
			Company: c,
			Symbol:  ln.Symbol,
			Point:   model.PricePoint{Time: ln.Timestamp.Time, Price: ln.Price, Volume: ln.Volume},
		})
	}
	return out, nil
}

func (l *CSVLoader) Close() error { return nil }
