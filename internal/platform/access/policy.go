// Package access decides whether an authenticated principal may act on a
// tenant-owned record.
package access

import "context"

// Action is an operation a principal attempts on a single record.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Decision is the outcome of an authorization check.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// Principal is the authenticated actor of a request.
type Principal struct {
	UserID        int64
	TenantID      string
	Email         string
	IsTenantAdmin bool
	IsSuperuser   bool
}

// Owned is implemented by every record that belongs to a tenant and may
// carry the id of the user who created it.
type Owned interface {
	OwnerTenant() string
	Owner() *int64
}

// Authorize reports whether p may perform a on r. Tenants never cross;
// inside a tenant, admins may do anything and other users only touch
// records they created.
func Authorize(p Principal, r Owned, a Action) Decision {
	if p.TenantID == "" || p.TenantID != r.OwnerTenant() {
		return Deny
	}
	if p.IsTenantAdmin {
		return Allow
	}
	if owner := r.Owner(); owner != nil && *owner == p.UserID {
		return Allow
	}
	return Deny
}

// AuthorizeTenant only checks tenant membership. Used for resources whose
// single-record operations are visible to every member of the tenant.
func AuthorizeTenant(p Principal, r Owned) Decision {
	return Decision(p.TenantID != "" && p.TenantID == r.OwnerTenant())
}

// Scope is the explicit per-request context passed into services: the
// tenant resolved from the host and the principal, if authenticated.
type Scope struct {
	TenantID  string
	Principal Principal
}

// Authenticated reports whether the scope carries a principal.
func (s Scope) Authenticated() bool {
	return s.Principal.UserID != 0
}

// UserID returns a pointer suitable for a created_by column, or nil for
// anonymous scopes.
func (s Scope) UserID() *int64 {
	if !s.Authenticated() {
		return nil
	}
	id := s.Principal.UserID
	return &id
}

type scopeKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope stored in ctx.
func FromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok
}
