package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"CupSentinel/internal/httputil"
	"CupSentinel/internal/model"
)

// QuoteSource returns the latest quote of one company.
type QuoteSource interface {
	Quote(ctx context.Context, c model.Company) (model.Quote, error)
	Name() string
}

// SourceConfig selects and tunes a QuoteSource.
type SourceConfig struct {
	Provider      string // yahoo | rest | mock
	BaseURL       string
	APIKey        string
	Proxy         string
	RatePerMinute int
	Timeout       time.Duration
	Retry         httputil.RetryConfig
}

// NewSource builds the QuoteSource named by cfg.Provider.
func NewSource(cfg SourceConfig) (QuoteSource, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "yahoo":
		return NewYahooSource(cfg), nil
	case "rest":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("rest quote source requires a base url")
		}
		return NewRESTSource(cfg), nil
	case "mock":
		return NewRandomWalkSource(time.Now().UnixNano()), nil
	default:
		return nil, fmt.Errorf("unknown quote provider %q", cfg.Provider)
	}
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// roundCents rounds a quoted price to two decimals.
func roundCents(p float64) float64 {
	return decimal.NewFromFloat(p).Round(2).InexactFloat64()
}

// checkQuote rejects quotes that could never be stored.
func checkQuote(q model.Quote) error {
	if q.Price <= 0 {
		return fmt.Errorf("non-positive price %v", q.Price)
	}
	if q.Time.IsZero() {
		return fmt.Errorf("quote without timestamp")
	}
	return nil
}
