package record

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/samber/lo"
)

// MemoryStore is an in-process Store with the same tenant scoping and
// uniqueness rules as the PostgreSQL store.
type MemoryStore[T any] struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*Record[T]
	unique []string
	title  string
	now    func() time.Time
}

func NewMemoryStore[T any](def Definition[T]) *MemoryStore[T] {
	return &MemoryStore[T]{
		rows:   make(map[int64]*Record[T]),
		unique: def.Unique,
		title:  def.Title,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func clone[T any](r *Record[T]) *Record[T] {
	c := *r
	if r.CreatedBy != nil {
		id := *r.CreatedBy
		c.CreatedBy = &id
	}
	return &c
}

func (s *MemoryStore[T]) sorted() []*Record[T] {
	rows := lo.Values(s.rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

func matches[T any](r *Record[T], tenantID string, f Filter) bool {
	if r.TenantID != tenantID {
		return false
	}
	if f.CreatedBy != nil && (r.CreatedBy == nil || *r.CreatedBy != *f.CreatedBy) {
		return false
	}
	if len(f.Fields) == 0 {
		return true
	}
	fields, err := fieldsOf(r.Data)
	if err != nil {
		return false
	}
	for k, want := range f.Fields {
		if textValue(fields[k]) != want {
			return false
		}
	}
	return true
}

func (s *MemoryStore[T]) List(_ context.Context, tenantID string, f Filter) ([]*Record[T], int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := lo.Filter(s.sorted(), func(r *Record[T], _ int) bool { return matches(r, tenantID, f) })
	total := len(hits)
	if f.Limit > 0 {
		hits = lo.Slice(hits, f.Offset, f.Offset+f.Limit)
	}
	return lo.Map(hits, func(r *Record[T], _ int) *Record[T] { return clone(r) }), total, nil
}

func (s *MemoryStore[T]) Get(_ context.Context, tenantID string, id int64) (*Record[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows[id]
	if !ok || r.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

// checkUnique must be called with the write lock held.
func (s *MemoryStore[T]) checkUnique(rec *Record[T]) error {
	if len(s.unique) == 0 {
		return nil
	}
	fields, err := fieldsOf(rec.Data)
	if err != nil {
		return err
	}
	for _, u := range s.unique {
		value := textValue(fields[u])
		if value == "" {
			continue
		}
		for _, other := range s.rows {
			if other.ID == rec.ID || other.TenantID != rec.TenantID {
				continue
			}
			otherFields, err := fieldsOf(other.Data)
			if err != nil {
				return err
			}
			if textValue(otherFields[u]) == value {
				return NewConflict(u, s.title)
			}
		}
	}
	return nil
}

func (s *MemoryStore[T]) Create(_ context.Context, rec *Record[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(rec); err != nil {
		return err
	}
	s.nextID++
	rec.ID = s.nextID
	rec.CreatedAt = s.now()
	rec.UpdatedAt = rec.CreatedAt
	s.rows[rec.ID] = clone(rec)
	return nil
}

func (s *MemoryStore[T]) Update(_ context.Context, rec *Record[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.rows[rec.ID]
	if !ok || cur.TenantID != rec.TenantID {
		return ErrNotFound
	}
	if err := s.checkUnique(rec); err != nil {
		return err
	}
	updated := clone(cur)
	updated.Data = rec.Data
	updated.UpdatedAt = s.now()
	s.rows[rec.ID] = updated

	rec.CreatedBy = clone(cur).CreatedBy
	rec.CreatedAt = cur.CreatedAt
	rec.UpdatedAt = updated.UpdatedAt
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, tenantID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[id]
	if !ok || r.TenantID != tenantID {
		return ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *MemoryStore[T]) Exists(_ context.Context, tenantID string, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows[id]
	return ok && r.TenantID == tenantID, nil
}

func (s *MemoryStore[T]) ClearReference(_ context.Context, tenantID, field string, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := strconv.FormatInt(id, 10)
	var n int64
	for _, r := range s.rows {
		if r.TenantID != tenantID {
			continue
		}
		fields, err := fieldsOf(r.Data)
		if err != nil {
			return n, err
		}
		if textValue(fields[field]) != want {
			continue
		}
		fields[field] = json.RawMessage("null")
		var data T
		if err := decodeInto(fields, &data); err != nil {
			return n, err
		}
		r.Data = data
		r.UpdatedAt = s.now()
		n++
	}
	return n, nil
}
