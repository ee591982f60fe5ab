package middleware

import (
	"net/http"
	"time"

	"shopReco/pkg/logger"
	"shopReco/pkg/utils"

	jsonres "shopReco/pkg/response"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimit throttles each client IP to rps requests per second with the given
// burst. Operational endpoints are never limited.
func RateLimit(rps float64, burst int) echo.MiddlewareFunc {
	if rps <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/healthz"
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logger.Warn("rate_limited",
				"trace_id", utils.TraceIDFromContext(c.Request().Context()),
				"client", identifier,
				"path", c.Path(),
			)
			return c.JSON(http.StatusTooManyRequests, jsonres.Error(
				"TOO_MANY_REQUESTS", "Rate limit exceeded", nil,
			))
		},
	})
}
