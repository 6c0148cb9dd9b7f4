package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/platform/access"
	"github.com/hospitalhq/hms/internal/platform/db"
)

// JWTMiddleware authenticates bearer access tokens and stores the request
// scope. Tokens bound to a tenant are only accepted on that tenant's
// hosts; superuser tokens carry no tenant.
func JWTMiddleware(tokens *Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided.")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := tokens.Parse(strings.TrimSpace(parts[1]), TokenAccess)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Given token not valid for any token type")
			}
			uid, _ := claims.UserID()

			ctx := c.Request().Context()
			tenantID := db.TenantFromContext(ctx)
			if claims.TenantID != "" && tenantID != "" && claims.TenantID != tenantID {
				return echo.NewHTTPError(http.StatusUnauthorized, "token is not valid for this tenant")
			}
			if tenantID == "" {
				tenantID = claims.TenantID
			}

			scope := access.Scope{
				TenantID: tenantID,
				Principal: access.Principal{
					UserID:        uid,
					TenantID:      claims.TenantID,
					Email:         claims.Email,
					IsTenantAdmin: claims.IsTenantAdmin,
					IsSuperuser:   claims.IsSuperuser,
				},
			}
			c.SetRequest(c.Request().WithContext(access.WithScope(ctx, scope)))
			c.Set("user_id", uid)

			return next(c)
		}
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c echo.Context) (access.Principal, bool) {
	scope, ok := access.FromContext(c.Request().Context())
	if !ok || !scope.Authenticated() {
		return access.Principal{}, false
	}
	return scope.Principal, true
}
