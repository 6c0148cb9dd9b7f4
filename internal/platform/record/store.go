package record

import "context"

// Filter narrows a list query inside one tenant.
type Filter struct {
	// CreatedBy restricts to rows created by this user.
	CreatedBy *int64
	// Fields maps payload fields to required text values.
	Fields map[string]string
	Limit  int
	Offset int
}

// Store persists records of one kind. Every method is scoped by tenant;
// rows of other tenants behave as if they did not exist.
type Store[T any] interface {
	List(ctx context.Context, tenantID string, f Filter) ([]*Record[T], int, error)
	Get(ctx context.Context, tenantID string, id int64) (*Record[T], error)
	// Create assigns ID and timestamps.
	Create(ctx context.Context, rec *Record[T]) error
	// Update replaces the payload only; tenant and creator are immutable.
	Update(ctx context.Context, rec *Record[T]) error
	Delete(ctx context.Context, tenantID string, id int64) error
	Exists(ctx context.Context, tenantID string, id int64) (bool, error)
	// ClearReference nulls field on every row of the tenant pointing at id
	// and returns the number of rows touched.
	ClearReference(ctx context.Context, tenantID, field string, id int64) (int64, error)
}

// TxRunner groups store calls into one unit of work.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoTx runs functions directly. Used with the in-memory store.
type NoTx struct{}

func (NoTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
