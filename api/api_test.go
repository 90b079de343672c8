package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/cnosuke/pagemeta/scraper"
	"github.com/cnosuke/pagemeta/types"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockScraper struct {
	options []scraper.Options
	page    *types.ScrapedPage
	err     error
}

func (m *MockScraper) Scrape(ctx context.Context, rawURL string, opts scraper.Options) (*types.ScrapedPage, error) {
	m.options = append(m.options, opts)
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

var testDefaults = scraper.Options{
	Timeout:       10 * time.Second,
	UserAgent:     "test-agent/1.0",
	StripTracking: true,
}

func newTestRouter(s PageScraper) (*gin.Engine, *Metrics) {
	m := NewMetrics()
	return NewRouter(s, testDefaults, m, gin.TestMode), m
}

func get(r http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(&MockScraper{})

	w := get(r, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r, _ := newTestRouter(&MockScraper{})

	w := get(r, "/healthz", nil)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	w = get(r, "/healthz", http.Header{"X-Request-Id": []string{"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestScrape_Success(t *testing.T) {
	m := &MockScraper{page: &types.ScrapedPage{
		Title:    "Example Domain",
		URL:      "https://example.com/",
		Language: types.StringPtr("en"),
	}}
	r, metrics := newTestRouter(m)

	w := get(r, "/v1/scrape?url="+url.QueryEscape("https://example.com/?utm_source=x"), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Example Domain","url":"https://example.com/","description":null,"language":"en"}`, w.Body.String())
	require.Len(t, m.options, 1)
	assert.Equal(t, testDefaults, m.options[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Scrapes.WithLabelValues("ok")))
}

func TestScrape_QueryOptions(t *testing.T) {
	m := &MockScraper{page: &types.ScrapedPage{Title: "t", URL: "https://example.com/"}}
	r, _ := newTestRouter(m)

	w := get(r, "/v1/scrape?url=https://example.com/&strip_tracking=false&timeout=1.5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, m.options, 1)
	assert.False(t, m.options[0].StripTracking)
	assert.Equal(t, 1500*time.Millisecond, m.options[0].Timeout)
}

func TestScrape_InvalidQuery(t *testing.T) {
	for _, query := range []string{"strip_tracking=maybe", "timeout=-1", "timeout=soon"} {
		t.Run(query, func(t *testing.T) {
			m := &MockScraper{}
			r, _ := newTestRouter(m)

			w := get(r, "/v1/scrape?url=https://example.com/&"+query, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "invalid_request", body.Error.Kind)
			assert.Empty(t, m.options)
		})
	}
}

func TestScrape_ErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{types.NewInvalidURLError("", "empty host", nil), http.StatusBadRequest, "invalid_url"},
		{types.NewHTTPError("https://example.com/", 404, "Not Found"), http.StatusBadGateway, "client_error"},
		{types.NewHTTPError("https://example.com/", 500, "oops"), http.StatusBadGateway, "server_error"},
		{types.NewTimeoutError("https://example.com/", errors.New("deadline exceeded")), http.StatusGatewayTimeout, "timeout"},
		{types.NewTransportError("https://example.com/", errors.New("connection refused")), http.StatusBadGateway, "transport_failure"},
		{errors.New("unexpected"), http.StatusInternalServerError, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			r, metrics := newTestRouter(&MockScraper{err: tt.err})

			w := get(r, "/v1/scrape?url=https://example.com/", nil)

			assert.Equal(t, tt.status, w.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body.Error.Kind)
			assert.Equal(t, tt.err.Error(), body.Error.Message)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Scrapes.WithLabelValues(tt.kind)))
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(&MockScraper{page: &types.ScrapedPage{Title: "t", URL: "https://example.com/"}})

	_ = get(r, "/v1/scrape?url=https://example.com/", nil)
	w := get(r, "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `pagemeta_scrapes_total{kind="ok"} 1`)
	assert.Contains(t, w.Body.String(), "pagemeta_scrape_duration_seconds_count 1")
}

func TestScrape_EndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html lang="de"><head><title>Hallo</title></head></html>`))
	}))
	t.Cleanup(upstream.Close)

	s, err := scraper.New()
	require.NoError(t, err)
	r, _ := newTestRouter(s)

	w := get(r, "/v1/scrape?url="+url.QueryEscape(upstream.URL+"/?gclid=1&q=go"), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var page types.ScrapedPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, "Hallo", page.Title)
	assert.Equal(t, upstream.URL+"/?q=go", page.URL)
	require.NotNil(t, page.Language)
	assert.Equal(t, "de", *page.Language)
}
