package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsFullBudget(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	e := echo.New()
	e.Use(rl.RateLimitMiddleware())
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Every request within the budget passes, including the very first one.
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d within budget must pass", i+1)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiterTracksClientsSeparately(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	e := echo.New()
	e.Use(rl.RateLimitMiddleware())
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.Header.Set(echo.HeaderXRealIP, "203.0.113.10")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A different client's budget is untouched by the first one's usage.
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.Header.Set(echo.HeaderXRealIP, "203.0.113.20")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}
