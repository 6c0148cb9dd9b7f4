package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Logger writes one line per request once the error handler has set the
// final status. Server errors log at error, client errors at warn and
// health probes at debug.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			// Hand errors to the error handler now so the logged status is
			// the one the client receives.
			if err := next(c); err != nil {
				c.Error(err)
			}

			res := c.Response()
			var evt *zerolog.Event
			switch {
			case res.Status >= 500:
				evt = logger.Error()
			case res.Status >= 400:
				evt = logger.Warn()
			case strings.HasPrefix(req.URL.Path, "/health"):
				evt = logger.Debug()
			default:
				evt = logger.Info()
			}

			// Set by RequestID, the tenant resolver and auth respectively;
			// any of them may be missing on early failures.
			rid, _ := c.Get("request_id").(string)
			tenantID, _ := c.Get("tenant_id").(string)
			userID, _ := c.Get("user_id").(int64)
			evt.
				Str("request_id", rid).
				Str("tenant_id", tenantID).
				Int64("user_id", userID).
				Str("method", req.Method).
				Str("route", c.Path()).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			// Already written by c.Error above.
			return nil
		}
	}
}
