package middleware

import (
	"shopReco/pkg/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const HeaderRequestID = "X-Request-ID"

// Trace propagates the caller's request id, or assigns a new one, into the
// request context and the response header.
func Trace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(HeaderRequestID)
			if traceID == "" || len(traceID) > 64 {
				traceID = uuid.NewString()
			}

			req := c.Request()
			c.SetRequest(req.WithContext(utils.WithTraceID(req.Context(), traceID)))
			c.Response().Header().Set(HeaderRequestID, traceID)

			return next(c)
		}
	}
}
