package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CupSentinel/internal/httputil"
	"CupSentinel/internal/model"
)

func testConfig(url string) SourceConfig {
	return SourceConfig{
		BaseURL: url,
		APIKey:  "secret",
		Retry:   httputil.RetryConfig{MaxAttempts: 2, BaseDelay: 5 * time.Millisecond, MaxDelay: 10 * time.Millisecond},
	}
}

func TestYahooSource_Quote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/NVDA", r.URL.Path)
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"NVDA","regularMarketPrice":131.4567,"regularMarketTime":1741012200,"regularMarketVolume":1200}}],"error":null}}`))
	}))
	defer srv.Close()

	q, err := NewYahooSource(testConfig(srv.URL)).Quote(context.Background(), model.Nvidia)
	require.NoError(t, err)
	assert.Equal(t, 131.46, q.Price)
	assert.Equal(t, 1200.0, q.Volume)
	assert.Equal(t, time.Unix(1741012200, 0).UTC(), q.Time)
}

func TestYahooSource_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	_, err := NewYahooSource(testConfig(srv.URL)).Quote(context.Background(), model.Meta)
	var fe *model.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "yahoo", fe.Source)
	assert.Equal(t, model.Meta, fe.Company)
	assert.False(t, fe.Retryable)
}

func TestRESTSource_Quote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "GOOGL", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"GOOGL","price":172.005,"timestamp":1741012500}`))
	}))
	defer srv.Close()

	q, err := NewRESTSource(testConfig(srv.URL)).Quote(context.Background(), model.Alphabet)
	require.NoError(t, err)
	assert.InDelta(t, 172.01, q.Price, 0.001)
	assert.Equal(t, time.Unix(1741012500, 0).UTC(), q.Time)
}

func TestRESTSource_ServerErrorIsRetryable(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRESTSource(testConfig(srv.URL)).Quote(context.Background(), model.Amazon)
	var fe *model.FetchError
	require.True(t, errors.As(err, &fe))
	assert.True(t, fe.Retryable)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRESTSource_RejectsNonPositivePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"TSLA","price":0}`))
	}))
	defer srv.Close()

	_, err := NewRESTSource(testConfig(srv.URL)).Quote(context.Background(), model.Tesla)
	var fe *model.FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestNewSource(t *testing.T) {
	for _, p := range []string{"", "yahoo", "mock"} {
		src, err := NewSource(SourceConfig{Provider: p})
		require.NoError(t, err, p)
		assert.NotNil(t, src)
	}
	_, err := NewSource(SourceConfig{Provider: "rest"})
	assert.Error(t, err)
	_, err = NewSource(SourceConfig{Provider: "bloomberg"})
	assert.Error(t, err)
}

func TestLimiter_Backoff(t *testing.T) {
	l := NewLimiter(600)
	require.NoError(t, l.Wait(context.Background()))
	assert.Equal(t, minBackoff, l.Backoff())

	l.SignalRateLimited()
	assert.Equal(t, 2*minBackoff, l.Backoff())
	l.ResetBackoff()
	assert.Equal(t, minBackoff, l.Backoff())
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := NewLimiter(600)
	l.SignalRateLimited()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestRESTSource_RetryWaitsOnLimiter(t *testing.T) {
	var (
		mu    sync.Mutex
		hits  atomic.Int32
		first time.Time
		gap   time.Duration
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if hits.Add(1) == 1 {
			first = time.Now()
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		gap = time.Since(first)
		w.Write([]byte(`{"symbol":"AMZN","price":201.5,"timestamp":1741012500}`))
	}))
	defer srv.Close()

	src := NewRESTSource(testConfig(srv.URL))
	q, err := src.Quote(context.Background(), model.Amazon)
	require.NoError(t, err)
	assert.Equal(t, 201.5, q.Price)
	assert.Equal(t, int32(2), hits.Load())
	mu.Lock()
	defer mu.Unlock()
	// the 429 penalty, not the 5ms retry delay, spaces the two attempts
	assert.GreaterOrEqual(t, gap, minBackoff)
	assert.Equal(t, minBackoff, src.limiter.Backoff())
}
