package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CupSentinel/internal/detector"
	"CupSentinel/internal/model"
	"CupSentinel/internal/plot"
	"CupSentinel/internal/store"
)

func cupAndHandle() []float64 {
	var out []float64
	for p := 100.0; p >= 70; p-- {
		out = append(out, p)
	}
	for p := 71.0; p <= 98; p++ {
		out = append(out, p)
	}
	for p := 97.0; p >= 90; p-- {
		out = append(out, p)
	}
	for p := 91.0; p <= 99; p++ {
		out = append(out, p)
	}
	return out
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	st := store.New()
	t0 := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)
	for i, p := range cupAndHandle() {
		require.NoError(t, st.Append(model.Apple, model.PricePoint{Time: t0.Add(time.Duration(i) * 5 * time.Minute), Price: p}))
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, st.Append(model.Tesla, model.PricePoint{Time: t0.Add(time.Duration(i) * time.Minute), Price: 250}))
	}
	det := detector.New(detector.DefaultConfig(), st)
	ren := plot.New(plot.Config{WidthIn: 4, HeightIn: 2}, st, 3)
	return SetupRoutes(NewHandler(det, ren, st, zerolog.Nop()))
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/detect-pattern", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDetectPattern_Detected(t *testing.T) {
	rec := post(t, newTestRouter(t), `{"company":"apple"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp detectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.Apple, resp.Company)
	assert.True(t, resp.PatternDetected)
	assert.Len(t, resp.Landmarks, 5)
	assert.Empty(t, resp.PlotBase64)
}

func TestDetectPattern_IncludePlot(t *testing.T) {
	rec := post(t, newTestRouter(t), `{"company":"AAPL","include_plot":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp detectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data, err := base64.StdEncoding.DecodeString(resp.PlotBase64)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestDetectPattern_Errors(t *testing.T) {
	h := newTestRouter(t)
	tests := []struct {
		body   string
		status int
	}{
		{`{"company":"Nokia"}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
		{`{"company":"Tesla"}`, http.StatusUnprocessableEntity},
		{`{"company":"Meta","include_plot":true}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		rec := post(t, h, tt.body)
		assert.Equal(t, tt.status, rec.Code, tt.body)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body["error"])
	}
}

func TestPlot(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{
		"/companies/Apple/plot.png",
		"/companies/aapl/plot.png?annotate=true",
		// too few samples to detect, still enough to draw
		"/companies/TSLA/plot.png?annotate=true",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies/Meta/plot.png", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies/Nokia/plot.png", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCompaniesAndHealth(t *testing.T) {
	h := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []companyInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 7)
	assert.Equal(t, model.Apple, list[0].Name)
	assert.Equal(t, 76, list[0].Samples)
	require.NotNil(t, list[0].LastPrice)
	assert.Equal(t, 99.0, list[0].LastPrice.Price)
	assert.Nil(t, list[1].LastPrice)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/detect-pattern", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
