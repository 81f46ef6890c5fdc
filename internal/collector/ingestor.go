package collector

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"CupSentinel/internal/model"
)

// Appender is the write side of the series store.
type Appender interface {
	Append(c model.Company, p model.PricePoint) error
}

// Ingestor runs one fetch-and-append pass over all companies per Tick.
type Ingestor struct {
	Source    QuoteSource
	Store     Appender
	Companies []model.Company
	Workers   int
	log       zerolog.Logger
}

// NewIngestor creates an Ingestor over every known company.
func NewIngestor(src QuoteSource, st Appender, workers int, log zerolog.Logger) *Ingestor {
	if workers <= 0 {
		workers = 4
	}
	return &Ingestor{
		Source:    src,
		Store:     st,
		Companies: model.Companies(),
		Workers:   workers,
		log:       log.With().Str("component", "ingestor").Str("source", src.Name()).Logger(),
	}
}

// Tick fetches one quote per company and appends it. Companies are
// independent: a failure for one is logged and does not affect the others.
func (in *Ingestor) Tick(ctx context.Context) {
	tickID := uuid.NewString()
	log := in.log.With().Str("tick_id", tickID).Logger()

	sem := make(chan struct{}, in.Workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	appended := 0

	for _, c := range in.Companies {
		wg.Add(1)
		go func(c model.Company) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if in.ingest(ctx, c, log) {
				mu.Lock()
				appended++
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()

	log.Info().Int("appended", appended).Int("companies", len(in.Companies)).Msg("tick complete")
}

func (in *Ingestor) ingest(ctx context.Context, c model.Company, log zerolog.Logger) bool {
	clog := log.With().Str("company", string(c)).Logger()

	q, err := in.Source.Quote(ctx, c)
	if err != nil {
		var fe *model.FetchError
		if errors.As(err, &fe) {
			clog.Warn().Err(fe.Err).Bool("retryable", fe.Retryable).Msg("quote fetch failed")
		} else {
			clog.Warn().Err(err).Msg("quote fetch failed")
		}
		return false
	}

	if err := in.Store.Append(c, q.Point()); err != nil {
		switch {
		case errors.Is(err, model.ErrOutOfOrderSample):
			clog.Debug().Err(err).Msg("sample not newer than last, skipped")
		default:
			clog.Warn().Err(err).Msg("append failed")
		}
		return false
	}
	clog.Debug().Float64("price", q.Price).Time("at", q.Time).Msg("sample appended")
	return true
}
