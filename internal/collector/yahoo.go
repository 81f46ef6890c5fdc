package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"CupSentinel/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooSource quotes companies through the public Yahoo Finance chart API.
type YahooSource struct {
	BaseURL string
	httpClient
}

// NewYahooSource creates a Yahoo Finance source. cfg.BaseURL overrides the
// public endpoint.
func NewYahooSource(cfg SourceConfig) *YahooSource {
	base := cfg.BaseURL
	if base == "" {
		base = yahooBaseURL
	}
	return &YahooSource{BaseURL: base, httpClient: newHTTPSourceClient(cfg)}
}

func (s *YahooSource) Name() string { return "yahoo" }

// yahooChart is the subset of the chart API response we read.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string  `json:"symbol"`
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				RegularMarketTime   int64   `json:"regularMarketTime"`
				RegularMarketVolume float64 `json:"regularMarketVolume"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *YahooSource) Quote(ctx context.Context, c model.Company) (model.Quote, error) {
	fail := func(err error, retryable bool) (model.Quote, error) {
		return model.Quote{}, &model.FetchError{Source: s.Name(), Company: c, Err: err, Retryable: retryable}
	}
	symbol := c.Symbol()
	if symbol == "" {
		return model.Quote{}, &model.UnknownCompanyError{Name: string(c)}
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1m&range=1d", s.BaseURL, url.PathEscape(symbol))
	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0")

	var chart yahooChart
	if retryable, err := s.getJSON(ctx, u, header, &chart); err != nil {
		return fail(err, retryable)
	}
	if chart.Chart.Error != nil {
		return fail(fmt.Errorf("api error: %s", chart.Chart.Error.Description), false)
	}
	if len(chart.Chart.Result) == 0 {
		return fail(fmt.Errorf("no data returned"), true)
	}

	meta := chart.Chart.Result[0].Meta
	q := model.Quote{
		Time:   time.Unix(meta.RegularMarketTime, 0).UTC(),
		Price:  roundCents(meta.RegularMarketPrice),
		Volume: meta.RegularMarketVolume,
	}
	if meta.RegularMarketTime == 0 {
		q.Time = time.Time{}
	}
	if err := checkQuote(q); err != nil {
		return fail(err, false)
	}
	return q, nil
}
