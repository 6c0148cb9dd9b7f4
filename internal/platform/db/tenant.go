package db

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	TenantIDKey contextKey = "tenant_id"
	TxKey       contextKey = "db_tx"
)

// TenantHeader lets API clients that cannot use per-tenant hostnames pick
// the tenant explicitly.
const TenantHeader = "X-Tenant-ID"

var errUnknownTenant = errors.New("unknown tenant")

var tenantIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidTenantID reports whether id is usable as a tenant identifier.
func ValidTenantID(id string) bool {
	return tenantIDPattern.MatchString(id)
}

// TenantResolver maps request hosts to tenants.
type TenantResolver interface {
	ResolveHost(ctx context.Context, host string) (string, bool, error)
	TenantExists(ctx context.Context, tenantID string) (bool, error)
}

// TenantMiddleware resolves the tenant of every request. The host's
// registered domain wins, then the X-Tenant-ID header, then defaultTenant.
func TenantMiddleware(resolver TenantResolver, defaultTenant string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			tenantID, err := extractTenantID(ctx, c, resolver, defaultTenant)
			if errors.Is(err, errUnknownTenant) {
				return echo.NewHTTPError(http.StatusNotFound, "tenant not found")
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "tenant resolution failed")
			}
			if !tenantIDPattern.MatchString(tenantID) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant identifier")
			}

			ctx = context.WithValue(ctx, TenantIDKey, tenantID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("tenant_id", tenantID)

			return next(c)
		}
	}
}

func extractTenantID(ctx context.Context, c echo.Context, resolver TenantResolver, defaultTenant string) (string, error) {
	if tid, ok, err := resolver.ResolveHost(ctx, hostOnly(c.Request().Host)); err != nil {
		return "", err
	} else if ok {
		return tid, nil
	}

	if tid := c.Request().Header.Get(TenantHeader); tid != "" {
		if !tenantIDPattern.MatchString(tid) {
			return tid, nil
		}
		exists, err := resolver.TenantExists(ctx, tid)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", errUnknownTenant
		}
		return tid, nil
	}

	return defaultTenant, nil
}

func hostOnly(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}

// TenantFromContext retrieves the tenant ID from context.
func TenantFromContext(ctx context.Context) string {
	tid, _ := ctx.Value(TenantIDKey).(string)
	return tid
}
