package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"CupSentinel/internal/httputil"
)

// httpClient is the shared transport of the HTTP quote sources.
type httpClient struct {
	client  *http.Client
	limiter *Limiter
	retry   httputil.RetryConfig
}

func newHTTPSourceClient(cfg SourceConfig) httpClient {
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = httputil.DefaultRetry
	}
	return httpClient{
		client:  newHTTPClient(cfg.Proxy, cfg.Timeout),
		limiter: NewLimiter(cfg.RatePerMinute),
		retry:   retry,
	}
}

// getJSON fetches endpoint and decodes the body into out. Every attempt,
// retries included, waits on the limiter. The returned bool reports whether
// a later attempt could succeed.
func (h httpClient) getJSON(ctx context.Context, endpoint string, header http.Header, out any) (bool, error) {
	retry := h.retry
	retry.OnRetry = func(attempt int, err error, wait time.Duration) {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
			h.limiter.SignalRateLimited()
		}
		if h.retry.OnRetry != nil {
			h.retry.OnRetry(attempt, err, wait)
		}
	}
	resp, err := httputil.Do(ctx, h.client, retry, func() (*http.Request, error) {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequest(http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range header {
			req.Header[k] = v
		}
		return req, nil
	})
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
			h.limiter.SignalRateLimited()
		}
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	h.limiter.ResetBackoff()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode: %w", err)
	}
	return false, nil
}
