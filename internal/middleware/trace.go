package middleware

import (
	"rehabDose/business/prediction"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const RequestIDHeader = "X-Request-ID"

// TraceID tags every request with a trace id, reusing the caller's X-Request-ID
// when present, and echoes it back on the response.
func TraceID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(RequestIDHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			ctx := prediction.ContextWithTraceID(c.Request().Context(), traceID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(RequestIDHeader, traceID)

			return next(c)
		}
	}
}
