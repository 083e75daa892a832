package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/nazmulhossain/shopdesk-backend/pkg/auth"
	"github.com/nazmulhossain/shopdesk-backend/pkg/config"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "shopdesk-test", ExpirationMinutes: 60},
	}
}

func TestRouterHealthEndpoints(t *testing.T) {
	handler := NewRouter(testRouterConfig(), nil, Deps{DB: stubPinger{}})

	live := httptest.NewRecorder()
	handler.ServeHTTP(live, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if live.Code != http.StatusOK {
		t.Fatalf("expected live 200 got %d", live.Code)
	}
	if live.Header().Get("X-ShopDesk-Env") != "test" {
		t.Fatalf("expected env header, got %q", live.Header().Get("X-ShopDesk-Env"))
	}

	ready := httptest.NewRecorder()
	handler.ServeHTTP(ready, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if ready.Code != http.StatusOK {
		t.Fatalf("expected ready 200 got %d", ready.Code)
	}
}

func TestRouterMetricsExposed(t *testing.T) {
	handler := NewRouter(testRouterConfig(), nil, Deps{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200 got %d", rec.Code)
	}
}

func TestRouterRequiresAuth(t *testing.T) {
	handler := NewRouter(testRouterConfig(), nil, Deps{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestRouterAuthedRouteReachesController(t *testing.T) {
	cfg := testRouterConfig()
	handler := NewRouter(cfg, nil, Deps{})

	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   "manager",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// No order service wired, so the controller answers with an internal error
	// rather than a 401: auth passed and routing matched.
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
