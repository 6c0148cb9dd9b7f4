package tenant

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type hostEntry struct {
	tenantID string
	found    bool
}

// Resolver answers the tenant middleware's lookups from an expiring LRU
// in front of the repository. Misses are cached too; Invalidate drops
// everything after tenants or domains change.
type Resolver struct {
	repo    Repository
	hosts   *expirable.LRU[string, hostEntry]
	tenants *expirable.LRU[string, bool]
}

func NewResolver(repo Repository, size int, ttl time.Duration) *Resolver {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Resolver{
		repo:    repo,
		hosts:   expirable.NewLRU[string, hostEntry](size, nil, ttl),
		tenants: expirable.NewLRU[string, bool](size, nil, ttl),
	}
}

func (r *Resolver) ResolveHost(ctx context.Context, host string) (string, bool, error) {
	if e, ok := r.hosts.Get(host); ok {
		return e.tenantID, e.found, nil
	}
	tenantID, found, err := r.repo.TenantForHost(ctx, host)
	if err != nil {
		return "", false, err
	}
	r.hosts.Add(host, hostEntry{tenantID: tenantID, found: found})
	return tenantID, found, nil
}

func (r *Resolver) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	if exists, ok := r.tenants.Get(tenantID); ok {
		return exists, nil
	}
	exists, err := r.repo.TenantExists(ctx, tenantID)
	if err != nil {
		return false, err
	}
	r.tenants.Add(tenantID, exists)
	return exists, nil
}

func (r *Resolver) Invalidate() {
	r.hosts.Purge()
	r.tenants.Purge()
}
