package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"CupSentinel/internal/model"
)

// RESTSource implements QuoteSource against a generic quote service exposing
// GET /api/v1/quote?symbol=TICKER.
type RESTSource struct {
	BaseURL string
	APIKey  string
	httpClient
}

// NewRESTSource creates a source for the service at cfg.BaseURL.
func NewRESTSource(cfg SourceConfig) *RESTSource {
	return &RESTSource{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		httpClient: newHTTPSourceClient(cfg),
	}
}

func (s *RESTSource) Name() string { return "rest" }

// restQuote is the expected JSON shape of the quote endpoint.
type restQuote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
	Volume    float64 `json:"volume"`
}

func (s *RESTSource) Quote(ctx context.Context, c model.Company) (model.Quote, error) {
	symbol := c.Symbol()
	if symbol == "" {
		return model.Quote{}, &model.UnknownCompanyError{Name: string(c)}
	}
	endpoint := fmt.Sprintf("%s/api/v1/quote?symbol=%s", s.BaseURL, url.QueryEscape(symbol))
	header := http.Header{}
	if s.APIKey != "" {
		header.Set("Authorization", "Bearer "+s.APIKey)
	}

	var rq restQuote
	if retryable, err := s.getJSON(ctx, endpoint, header, &rq); err != nil {
		return model.Quote{}, &model.FetchError{Source: s.Name(), Company: c, Err: err, Retryable: retryable}
	}

	q := model.Quote{Price: roundCents(rq.Price), Volume: rq.Volume}
	if rq.Timestamp > 0 {
		q.Time = time.Unix(rq.Timestamp, 0).UTC()
	} else {
		// service did not stamp the quote
		q.Time = time.Now().UTC()
	}
	if err := checkQuote(q); err != nil {
		return model.Quote{}, &model.FetchError{Source: s.Name(), Company: c, Err: err}
	}
	return q, nil
}
