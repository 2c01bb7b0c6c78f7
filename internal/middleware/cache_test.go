package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Neruaka/jana-distribution/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{
		"Content-Type": []string{"application/json; charset=UTF-8"},
		"X-Custom":     []string{"a", "b"},
	}
	body := []byte(`{"success":true,"data":[]}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(payload)
	if !ok {
		t.Fatal("decodePayload rejected a valid payload")
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if gotHdr.Get("Content-Type") != "application/json; charset=UTF-8" {
		t.Fatalf("Content-Type = %q", gotHdr.Get("Content-Type"))
	}
	if len(gotHdr.Values("X-Custom")) != 2 {
		t.Fatalf("X-Custom = %v", gotHdr.Values("X-Custom"))
	}
	if !bytes.Equal(gotBody, body) {
		t.Fatalf("body = %q, want %q", gotBody, body)
	}
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	for _, bs := range [][]byte{nil, {}, {1, 2, 3}, []byte("not-a-payload")} {
		if _, _, _, ok := decodePayload(bs); ok {
			t.Fatalf("decodePayload accepted %v", bs)
		}
	}
}

func newTestContext(method, target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/products")
	return c
}

func TestCacheKeyVariesWithQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "catalog", KeyStrategy: "route_query"}
	a := cacheKeyFrom(cfg, newTestContext(http.MethodGet, "/api/products?page=1"))
	b := cacheKeyFrom(cfg, newTestContext(http.MethodGet, "/api/products?page=2"))
	if a == b {
		t.Fatal("different queries produced the same cache key")
	}
}

func TestCacheKeyRouteStrategyIgnoresQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "catalog", KeyStrategy: "route"}
	a := cacheKeyFrom(cfg, newTestContext(http.MethodGet, "/api/products?page=1"))
	b := cacheKeyFrom(cfg, newTestContext(http.MethodGet, "/api/products?page=2"))
	if a != b {
		t.Fatal("route strategy should ignore the query string")
	}
}

func TestBuildRateKeyStrategies(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}
	c := newTestContext(http.MethodPost, "/api/auth/login")
	c.SetPath("/api/auth/login")
	key := buildRateKey(cfg, c)
	if key == "" {
		t.Fatal("empty rate key")
	}
	// Same request coordinates must bucket together.
	if key != buildRateKey(cfg, func() echo.Context {
		c2 := newTestContext(http.MethodPost, "/api/auth/login")
		c2.SetPath("/api/auth/login")
		return c2
	}()) {
		t.Fatal("identical requests produced different rate keys")
	}
}
