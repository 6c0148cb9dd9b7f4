package tenant

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// MemoryRepo is an in-process Repository for tests and local tooling.
type MemoryRepo struct {
	mu      sync.RWMutex
	tenants map[string]*Tenant
	domains []*Domain
	nextID  int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tenants: map[string]*Tenant{}}
}

func (m *MemoryRepo) CreateTenant(_ context.Context, t *Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[t.ID]; ok {
		return ErrTenantTaken
	}
	t.CreatedAt = time.Now().UTC()
	cp := *t
	m.tenants[t.ID] = &cp
	return nil
}

func (m *MemoryRepo) GetTenant(_ context.Context, id string) (*Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryRepo) TenantExists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tenants[id]
	return ok, nil
}

func (m *MemoryRepo) ListTenants(_ context.Context, limit, offset int) ([]*Tenant, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := lo.Values(m.tenants)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return lo.Slice(all, offset, offset+limit), len(all), nil
}

func (m *MemoryRepo) CreateDomain(_ context.Context, d *Domain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.Domain = strings.ToLower(d.Domain)
	if _, ok := m.tenants[d.TenantID]; !ok {
		return ErrUnknownOwner
	}
	if lo.ContainsBy(m.domains, func(x *Domain) bool { return x.Domain == d.Domain }) {
		return ErrDomainTaken
	}
	m.nextID++
	d.ID = m.nextID
	d.CreatedAt = time.Now().UTC()
	cp := *d
	m.domains = append(m.domains, &cp)
	return nil
}

func (m *MemoryRepo) ListDomains(_ context.Context, limit, offset int) ([]*Domain, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.Slice(m.domains, offset, offset+limit), len(m.domains), nil
}

func (m *MemoryRepo) TenantForHost(_ context.Context, host string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := lo.Find(m.domains, func(x *Domain) bool { return x.Domain == strings.ToLower(host) })
	if !ok {
		return "", false, nil
	}
	return d.TenantID, true, nil
}
