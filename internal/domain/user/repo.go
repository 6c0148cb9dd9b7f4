package user

import "context"

// Repository persists users. Email is unique per tenant, and among
// superusers.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByEmail looks up an email inside tenantID, or among superusers
	// when tenantID is nil.
	GetByEmail(ctx context.Context, tenantID *string, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*User, int, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
}
