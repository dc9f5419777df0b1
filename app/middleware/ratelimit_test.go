package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/internity/ms-go-reservations/config"
)

func TestRateLimiterDisabledPassesThrough(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{Enabled: false}, nil, logrus.WithField("module", "test"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	called := false
	handler := limiter(func(echo.Context) error {
		called = true
		return nil
	})
	if err := handler(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected next handler to run when limiting is disabled")
	}
}

func TestRateLimiterNilClientPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       30,
		RefillTokens:   1,
		RefillInterval: 2 * time.Second,
		TTL:            10 * time.Minute,
		Prefix:         "rl",
	}
	limiter := NewRateLimiter(cfg, nil, logrus.WithField("module", "test"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	called := false
	handler := limiter(func(echo.Context) error {
		called = true
		return nil
	})
	if err := handler(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected next handler to run without a redis client")
	}
}

func TestRateKeyIncludesIPAndRoute(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	ctx := e.NewContext(req, httptest.NewRecorder())
	ctx.SetPath("/api/reservations")

	key := rateKey("rl", ctx)
	if key != "rl:ip:203.0.113.7:route:POST /api/reservations" {
		t.Fatalf("unexpected rate key: %q", key)
	}
}
