package record

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type edge struct {
	field  string
	target string
}

type entry struct {
	exists func(ctx context.Context, tenantID string, id int64) (bool, error)
	clear  func(ctx context.Context, tenantID, field string, id int64) (int64, error)
	refs   []edge
}

type detachJob struct {
	e     *entry
	field string
}

// Registry knows every kind's store so services can check references
// across kinds and null them when a referenced record goes away.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]*entry)}
}

// Register adds def's store to r. Registering a kind twice panics.
func Register[T any](r *Registry, def Definition[T], store Store[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.kinds[def.Kind]; dup {
		panic(fmt.Sprintf("record: kind %q registered twice", def.Kind))
	}
	e := &entry{exists: store.Exists, clear: store.ClearReference}
	for _, ref := range def.References {
		e.refs = append(e.refs, edge{field: ref.Field, target: ref.Target})
	}
	r.kinds[def.Kind] = e
}

// Kinds lists registered kinds in name order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Exists reports whether id names a record of kind in tenantID.
func (r *Registry) Exists(ctx context.Context, kind, tenantID string, id int64) (bool, error) {
	r.mu.RLock()
	e, ok := r.kinds[kind]
	r.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf("record: unknown kind %q", kind)
	}
	return e.exists(ctx, tenantID, id)
}

// Detach nulls every reference to the record kind/id held by other
// records of the tenant and returns how many rows changed.
func (r *Registry) Detach(ctx context.Context, kind, tenantID string, id int64) (int64, error) {
	r.mu.RLock()
	var jobs []detachJob
	for _, e := range r.kinds {
		for _, ref := range e.refs {
			if ref.target == kind {
				jobs = append(jobs, detachJob{e, ref.field})
			}
		}
	}
	r.mu.RUnlock()

	var total int64
	for _, j := range jobs {
		n, err := j.e.clear(ctx, tenantID, j.field, id)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
