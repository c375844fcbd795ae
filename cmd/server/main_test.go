package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medsummary/internal/config"
	"medsummary/internal/navstate"
	"medsummary/internal/report"
	"medsummary/internal/summary"
	"medsummary/internal/web"
)

type nopSummarizer struct{}

func (nopSummarizer) Summarize(_ context.Context, _ string, _ []byte) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		UploadRateLimitPerMinute: 2,
		UploadMaxMB:              1,
		CORSAllowedOrigins:       []string{"https://app.example.com"},
	}
	pages, err := web.NewRenderer()
	require.NoError(t, err)

	store := navstate.NewStore(time.Minute, time.Minute)
	t.Cleanup(store.Close)

	log := zap.NewNop()
	svc := summary.NewService(nopSummarizer{}, report.NewService(nil, log), log)
	h := summary.NewHandler(svc, store, pages, log, cfg.UploadMaxBytes())
	return newRouter(cfg, log, h)
}

func TestRouter(t *testing.T) {
	r := testRouter(t)

	t.Run("Health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("Static", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Home", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("CORS Preflight On API", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/summaries", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Upload Rate Limit", func(t *testing.T) {
		var last int
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(""))
			req.RemoteAddr = "203.0.113.7:1234"
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			last = rec.Code
		}
		assert.Equal(t, http.StatusTooManyRequests, last)
	})
}
