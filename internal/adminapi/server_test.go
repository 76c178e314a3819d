package adminapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sonicrain/matchd/internal/bus"
	"github.com/sonicrain/matchd/internal/config"
	"github.com/sonicrain/matchd/internal/engine"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Admin.JWTSecret = "test-secret"
	cfg.Admin.User = "root"
	cfg.Admin.Password = "hunter2"
	cfg.Admin.Addr = ":0"
	return cfg
}

func runTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(bus.NewMemoryBus(), nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go e.Run(ctx)
	return e
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	cfg := testConfig()
	e := runTestEngine(t)
	srv := New(cfg, e, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"user":"root","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.httpSrv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginIssuesTokenOnSuccess(t *testing.T) {
	cfg := testConfig()
	e := runTestEngine(t)
	srv := New(cfg, e, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"user":"root","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.httpSrv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "token")
}

func TestSnapshotRequiresAuth(t *testing.T) {
	cfg := testConfig()
	e := runTestEngine(t)
	srv := New(cfg, e, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil)
	rec := httptest.NewRecorder()
	srv.httpSrv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSnapshotReturnsEngineState(t *testing.T) {
	cfg := testConfig()
	e := runTestEngine(t)
	srv := New(cfg, e, zap.NewNop())

	token, err := issueToken(cfg.Admin.JWTSecret, "root")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshot?token="+token, nil)
	rec := httptest.NewRecorder()
	srv.httpSrv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "queued_rooms")
}

func TestHealthzIsUnauthenticated(t *testing.T) {
	cfg := testConfig()
	e := runTestEngine(t)
	srv := New(cfg, e, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.httpSrv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunShutsDownOnContextCancel(t *testing.T) {
	cfg := testConfig()
	e := runTestEngine(t)
	srv := New(cfg, e, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down after context cancel")
	}
}
