//go:build !integration

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimit(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(0.001, 2))
	e.GET("/api", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	get := func(path, ip string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := get("/api", "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, code)
		}
	}
	if code := get("/api", "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("over burst: status = %d, want 429", code)
	}
	if code := get("/api", "10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other client: status = %d", code)
	}
	for i := 0; i < 5; i++ {
		if code := get("/healthz", "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("healthz limited: status = %d", code)
		}
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(0, 0))
	e.GET("/api", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
}
