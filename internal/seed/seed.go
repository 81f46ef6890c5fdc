// Package seed warm-starts the series store from historical samples. It only
// reads; nothing here writes samples back.
package seed

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"CupSentinel/internal/model"
)

// Row is one historical sample. Company is empty when Symbol does not name
// a tracked company.
type Row struct {
	Company model.Company
	Symbol  string
	Point   model.PricePoint
}

// Loader reads historical rows from some source.
type Loader interface {
	Load(ctx context.Context) ([]Row, error)
	Close() error
}

// Appender is the write side of the series store.
type Appender interface {
	Append(c model.Company, p model.PricePoint) error
}

// Stats summarises one replay.
type Stats struct {
	Rows     int
	Appended int
	Skipped  int
}

// Open returns the loader for kind ("sqlite", "csv", or "" for none).
func Open(kind, path string, log zerolog.Logger) (Loader, error) {
	switch kind {
	case "", "none":
		return NewNoopLoader(), nil
	case "sqlite":
		return NewSQLiteLoader(path, log)
	case "csv":
		return NewCSVLoader(path), nil
	default:
		return nil, fmt.Errorf("unknown seed kind %q", kind)
	}
}

// Replay loads every row, orders them by time and appends them. Rows for
// untracked symbols and duplicate or stale samples are skipped. step, when
// set, is called once per row.
func Replay(ctx context.Context, l Loader, st Appender, log zerolog.Logger, step func()) (Stats, error) {
	rows, err := l.Load(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("load seed: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Point.Time.Before(rows[j].Point.Time) })

	stats := Stats{Rows: len(rows)}
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if step != nil {
			step()
		}
		if !r.Company.Valid() {
			log.Debug().Str("symbol", r.Symbol).Msg("untracked symbol in seed, skipped")
			stats.Skipped++
			continue
		}
		err := st.Append(r.Company, r.Point)
		switch {
		case err == nil:
			stats.Appended++
		case errors.Is(err, model.ErrOutOfOrderSample), errors.Is(err, model.ErrInvalidSample):
			stats.Skipped++
		default:
			return stats, err
		}
	}
	log.Info().Int("rows", stats.Rows).Int("appended", stats.Appended).Int("skipped", stats.Skipped).Msg("seed replayed")
	return stats, nil
}
