package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// MemoryRepo is an in-process Repository used by tests and local tooling.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: map[int64]*User{}}
}

func sameTenant(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *MemoryRepo) emailTaken(u *User) bool {
	for _, other := range m.users {
		if other.ID != u.ID && sameTenant(other.TenantID, u.TenantID) && strings.EqualFold(other.Email, u.Email) {
			return true
		}
	}
	return false
}

func (m *MemoryRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(u) {
		return ErrEmailTaken
	}
	m.nextID++
	now := time.Now().UTC()
	u.ID, u.CreatedAt, u.UpdatedAt = m.nextID, now, now
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryRepo) GetByID(_ context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryRepo) GetByEmail(_ context.Context, tenantID *string, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := lo.Find(lo.Values(m.users), func(u *User) bool {
		return sameTenant(u.TenantID, tenantID) && strings.EqualFold(u.Email, email)
	})
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryRepo) Update(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	if m.emailTaken(u) {
		return ErrEmailTaken
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MemoryRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*User, int, error) {
	return m.list(func(u *User) bool { return u.TenantID != nil && *u.TenantID == tenantID }, limit, offset)
}

func (m *MemoryRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	return m.list(func(*User) bool { return true }, limit, offset)
}

func (m *MemoryRepo) list(keep func(*User) bool, limit, offset int) ([]*User, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := lo.Filter(lo.Values(m.users), func(u *User, _ int) bool { return keep(u) })
	sortByID(matched)
	page := lo.Map(lo.Slice(matched, offset, offset+limit), func(u *User, _ int) *User {
		cp := *u
		return &cp
	})
	return page, len(matched), nil
}

func sortByID(users []*User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
}
