package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DaanHessen/jwtviz/internal/narration"
	"github.com/DaanHessen/jwtviz/internal/util"
)

func newTestServer(t *testing.T, origins string) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	svc := narration.NewService(narration.DefaultCatalog(), []byte("test-secret"), zap.NewNop(),
		narration.WithMetrics(narration.NewMetrics(reg)))
	cfg := util.Config{Env: "test", Port: "0", CORSAllowedOrigins: origins}
	return New(cfg, svc, reg, zap.NewNop())
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestNarrationEndpoint(t *testing.T) {
	s := newTestServer(t, "")

	w := do(t, s, http.MethodGet, "/api/narration/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(0), body["step"])
	assert.Equal(t, narration.DefaultCatalog()[0], body["narration"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	for _, path := range []string{"/api/narration/7", "/api/narration/-1", "/api/narration/abc", "/api/narration/2abc"} {
		w := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "Step not found", decode(t, w)["error"], path)
	}
}

func TestChatEndpoint(t *testing.T) {
	s := newTestServer(t, "")

	w := do(t, s, http.MethodPost, "/api/chat", `{"message":"Is it SAFE to store?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, narration.DefaultRules()[2].Answer, decode(t, w)["answer"])

	w = do(t, s, http.MethodPost, "/api/chat", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, narration.DefaultAnswer, decode(t, w)["answer"])

	w = do(t, s, http.MethodPost, "/api/chat", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, narration.DefaultAnswer, decode(t, w)["answer"])

	w = do(t, s, http.MethodPost, "/api/chat", `{"message":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])
}

func TestSampleTokenEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	w := do(t, s, http.MethodGet, "/api/token/sample", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	tok, _ := body["token"].(string)
	assert.Len(t, strings.Split(tok, "."), 3)
	assert.Contains(t, body["header"], `"HS256"`)
	assert.Contains(t, body["payload"], `"user-42"`)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, "")
	w := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	do(t, s, http.MethodGet, "/api/narration/2", "")
	w = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `jwtviz_narration_lookups_total{result="found"} 1`)
	assert.Contains(t, w.Body.String(), "gin_requests_total{")
	assert.Contains(t, w.Body.String(), `url="/api/narration/:step"`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestCORS(t *testing.T) {
	open := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api/narration/1", nil)
	req.Header.Set("Origin", "http://client.test")
	w := httptest.NewRecorder()
	open.Handler().ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	narrow := newTestServer(t, "http://localhost:3000")
	req = httptest.NewRequest(http.MethodGet, "/api/narration/1", nil)
	req.Header.Set("Origin", "http://client.test")
	w = httptest.NewRecorder()
	narrow.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestServer(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("server did not stop")
	}
}
