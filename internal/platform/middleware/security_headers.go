package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders hardens JSON responses. Strict-Transport-Security is
// only sent when hsts is set, since development hosts run plain HTTP.
func SecurityHeaders(hsts bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			// Prevent MIME type sniffing
			h.Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			h.Set("X-Frame-Options", "DENY")

			// Do not leak tenant hostnames or record URLs to third parties.
			h.Set("Referrer-Policy", "no-referrer")

			// Responses carry patient and billing data; never cache them.
			h.Set("Cache-Control", "no-store")

			// HTTP Strict Transport Security, 1 year including subdomains.
			// Tenant hosts are subdomains of the platform domain.
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			return next(c)
		}
	}
}
