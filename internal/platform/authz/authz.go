// Package authz guards routes with a casbin role model. Record-level
// ownership is decided separately by package access.
package authz

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospitalhq/hms/internal/platform/access"
)

// Mode selects how route checks act on a denial. enforce returns 403,
// shadow only logs the denial, disabled skips evaluation. Config refuses
// anything but enforce in production.
type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow"
	ModeDisabled Mode = "disabled"
)

// ParseMode validates a configured mode. Empty means enforce.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.TrimSpace(strings.ToLower(raw))); m {
	case "":
		return ModeEnforce, nil
	case ModeEnforce, ModeShadow, ModeDisabled:
		return m, nil
	default:
		return "", fmt.Errorf("authz: invalid mode %q (expected enforce|shadow|disabled)", raw)
	}
}

const (
	RoleSuperadmin  = "superadmin"
	RoleTenantAdmin = "tenant-admin"
	RoleUser        = "user"
	RoleAnonymous   = "anonymous"
)

const (
	ObjectRecords     = "records"
	ObjectProfile     = "profile"
	ObjectTenantUsers = "tenant.users"
	ObjectSaaS        = "saas"
)

const (
	ActionRead  = "read"
	ActionWrite = "write"
	ActionAdmin = "admin"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && (p.act == "*" || r.act == p.act)
`

// defaultPolicy applies when no policy file is configured.
var defaultPolicy = [][]string{
	{Subject(RoleUser), ObjectRecords, ActionRead},
	{Subject(RoleUser), ObjectRecords, ActionWrite},
	{Subject(RoleUser), ObjectProfile, ActionRead},
	{Subject(RoleUser), ObjectProfile, ActionWrite},
	{Subject(RoleTenantAdmin), ObjectTenantUsers, ActionAdmin},
	{Subject(RoleSuperadmin), ObjectSaaS, "*"},
}

var defaultGrouping = [][]string{
	{Subject(RoleTenantAdmin), Subject(RoleUser)},
}

func Subject(role string) string {
	return "role:" + role
}

// RoleOf maps a principal to its route role.
func RoleOf(p access.Principal) string {
	switch {
	case p.IsSuperuser && p.TenantID == "":
		return RoleSuperadmin
	case p.UserID == 0:
		return RoleAnonymous
	case p.IsTenantAdmin:
		return RoleTenantAdmin
	default:
		return RoleUser
	}
}

type Authorizer struct {
	enforcer *casbin.Enforcer
	mode     Mode
	logger   zerolog.Logger
}

// NewAuthorizer builds the enforcer. With an empty policyPath the built-in
// policy is loaded; otherwise the CSV file replaces it.
func NewAuthorizer(policyPath string, mode Mode, logger zerolog.Logger) (*Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: parse model: %w", err)
	}

	var enforcer *casbin.Enforcer
	if policyPath != "" {
		enforcer, err = casbin.NewEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		enforcer, err = casbin.NewEnforcer(m)
	}
	if err != nil {
		return nil, fmt.Errorf("authz: create enforcer: %w", err)
	}

	if policyPath == "" {
		if _, err := enforcer.AddPolicies(defaultPolicy); err != nil {
			return nil, fmt.Errorf("authz: load default policy: %w", err)
		}
		if _, err := enforcer.AddGroupingPolicies(defaultGrouping); err != nil {
			return nil, fmt.Errorf("authz: load default roles: %w", err)
		}
	}

	return &Authorizer{enforcer: enforcer, mode: mode, logger: logger}, nil
}

// Authorize reports whether role may perform action on object. enforced
// is false when the decision is only logged.
func (a *Authorizer) Authorize(role, object, action string) (allowed bool, enforced bool, err error) {
	switch a.mode {
	case ModeDisabled:
		return true, false, nil
	case ModeShadow:
		ok, err := a.enforcer.Enforce(Subject(role), object, action)
		return ok, false, err
	case ModeEnforce:
		ok, err := a.enforcer.Enforce(Subject(role), object, action)
		return ok, true, err
	default:
		return false, false, errors.New("authz: unknown mode")
	}
}

// Require returns middleware allowing the request only if the caller's
// role may perform action on object.
func (a *Authorizer) Require(object, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope, _ := access.FromContext(c.Request().Context())
			role := RoleOf(scope.Principal)

			allowed, enforced, err := a.Authorize(role, object, action)
			if err != nil {
				return fmt.Errorf("authz: enforce: %w", err)
			}
			if allowed {
				return next(c)
			}

			a.logger.Warn().
				Str("role", role).
				Str("object", object).
				Str("action", action).
				Bool("enforced", enforced).
				Str("path", c.Path()).
				Msg("authz denied")
			if !enforced {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to perform this action.")
		}
	}
}
