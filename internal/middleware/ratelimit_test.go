package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/config"
)

func rateCtx(userID uint64) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
	req.Header.Set("X-Real-Ip", "203.0.113.9")
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/v1/videos")
	if userID != 0 {
		c.Set("user_id", userID)
	}
	return c
}

func TestBuildRateKeyStrategies(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl"}

	cfg.KeyStrategy = "ip"
	if key := buildRateKey(cfg, rateCtx(0)); !strings.Contains(key, "203.0.113.9") {
		t.Fatalf("ip strategy key = %q", key)
	}

	cfg.KeyStrategy = "user"
	if key := buildRateKey(cfg, rateCtx(7)); !strings.Contains(key, "user:7") {
		t.Fatalf("user strategy key = %q", key)
	}
	if key := buildRateKey(cfg, rateCtx(0)); !strings.Contains(key, "anon") {
		t.Fatalf("anonymous key = %q", key)
	}

	cfg.KeyStrategy = "unknown-falls-back"
	key := buildRateKey(cfg, rateCtx(7))
	for _, part := range []string{"rl:", "203.0.113.9", "user:7", "GET /api/v1/videos"} {
		if !strings.Contains(key, part) {
			t.Fatalf("default key %q missing %q", key, part)
		}
	}
}

func TestTokenBucketPassesThroughWhenDisabled(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	c := rateCtx(0)
	ran := false
	err := mw(func(c echo.Context) error {
		ran = true
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil || !ran {
		t.Fatalf("disabled limiter blocked the request (err=%v)", err)
	}
}

func TestAsInt64Conversions(t *testing.T) {
	cases := map[string]struct {
		in   interface{}
		want int64
	}{
		"int64":   {int64(5), 5},
		"int":     {3, 3},
		"float":   {2.9, 2},
		"string":  {"17", 17},
		"garbage": {"x", 0},
		"nil":     {nil, 0},
	}
	for name, tc := range cases {
		if got := asInt64(tc.in); got != tc.want {
			t.Errorf("%s: asInt64(%v) = %d, want %d", name, tc.in, got, tc.want)
		}
	}
}
