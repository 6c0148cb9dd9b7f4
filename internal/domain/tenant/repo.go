package tenant

import "context"

type Repository interface {
	CreateTenant(ctx context.Context, t *Tenant) error
	GetTenant(ctx context.Context, id string) (*Tenant, error)
	TenantExists(ctx context.Context, id string) (bool, error)
	ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, int, error)

	CreateDomain(ctx context.Context, d *Domain) error
	ListDomains(ctx context.Context, limit, offset int) ([]*Domain, int, error)
	// TenantForHost returns the tenant owning host, if any.
	TenantForHost(ctx context.Context, host string) (string, bool, error)
}
