package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"recycling-helper/config"
	"recycling-helper/gemini"
	"recycling-helper/llm"
	"recycling-helper/metrics"
	"recycling-helper/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	calls atomic.Int32
	mu    sync.Mutex
	body  []byte
}

func (u *upstream) lastBody() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return string(u.body)
}

// newUpstream starts a fake generateContent endpoint and returns a config
// pointing at it.
func newUpstream(t *testing.T, status int, body string) (*config.Config, *upstream) {
	t.Helper()
	up := &upstream{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		up.mu.Lock()
		up.body = b
		up.mu.Unlock()
		up.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		AllowedOrigins: []string{"*"},
		GeminiAPIKey:   "test-key",
		GeminiModel:    "gemini-test",
		GeminiEndpoint: srv.URL + "/v1beta/models/%s:generateContent",
		GeminiTimeout:  time.Second,
	}
	return cfg, up
}

func newTestRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics.Register()
	return setupRouter(cfg, gemini.NewClient(cfg))
}

func postAnalyze(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, EndPointAnalyzeImage, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthIgnoresConfiguration(t *testing.T) {
	router := newTestRouter(&config.Config{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, EndPointHealth, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAnalyzeImage_EndToEnd(t *testing.T) {
	cfg, up := newUpstream(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"Recycle it as plastic."}]}}]}`)
	router := newTestRouter(cfg)

	w := postAnalyze(router, `{"imageData":"data:image/png;base64,iVBOR,w0KGgo=","prompt":"Which bin?"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"Recycle it as plastic."}`, w.Body.String())
	assert.Equal(t, int32(1), up.calls.Load())
	assert.Contains(t, up.lastBody(), `"data":"iVBOR,w0KGgo="`)
	assert.Contains(t, up.lastBody(), `"mimeType":"image/png"`)
}

func TestAnalyzeImage_MissingTextFallsBack(t *testing.T) {
	cfg, _ := newUpstream(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{}]}}]}`)
	router := newTestRouter(cfg)

	w := postAnalyze(router, `{"imageData":"iVBORw0KGgo=","prompt":"Which bin?"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.AnalyzeImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, llm.FallbackText, resp.Text)
}

func TestAnalyzeImage_UpstreamRateLimited(t *testing.T) {
	cfg, up := newUpstream(t, http.StatusTooManyRequests, `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`)
	router := newTestRouter(cfg)

	w := postAnalyze(router, `{"imageData":"iVBORw0KGgo=","prompt":"Which bin?"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Gemini API 연결 실패", resp.Error)
	assert.True(t, strings.HasPrefix(resp.Detail, "Gemini API error (status 429)"), resp.Detail)
	assert.NotContains(t, resp.Detail, "test-key")
	assert.Equal(t, int32(1), up.calls.Load())
}

func TestAnalyzeImage_MalformedUpstreamJSON(t *testing.T) {
	cfg, _ := newUpstream(t, http.StatusOK, `not json`)
	router := newTestRouter(cfg)

	w := postAnalyze(router, `{"imageData":"iVBORw0KGgo=","prompt":"Which bin?"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error."}`, w.Body.String())
}

func TestAnalyzeImage_NoAPIKeySkipsUpstream(t *testing.T) {
	cfg, up := newUpstream(t, http.StatusOK, `{}`)
	cfg.GeminiAPIKey = ""
	router := newTestRouter(cfg)

	w := postAnalyze(router, `{"imageData":"iVBORw0KGgo=","prompt":"Which bin?"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Server mis-configuration: no API key."}`, w.Body.String())
	assert.Equal(t, int32(0), up.calls.Load())
}

func TestAnalyzeImage_Preflight(t *testing.T) {
	cfg, _ := newUpstream(t, http.StatusOK, `{}`)
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodOptions, EndPointAnalyzeImage, nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthHasNoCORSHeaders(t *testing.T) {
	router := newTestRouter(&config.Config{AllowedOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodGet, EndPointHealth, nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestVersionAndMetricsEndpoints(t *testing.T) {
	router := newTestRouter(&config.Config{GeminiModel: "gemini-test"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, EndPointVersion, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service":"recycling-helper"`)
	assert.Contains(t, w.Body.String(), `"model":"gemini-test"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, EndPointMetrics, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recycling_helper_http_requests_total")
}
