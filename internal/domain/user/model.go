package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email is already registered for this tenant")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotSuperuser       = errors.New("only global superusers are allowed to generate tokens")
)

// User is an account. Tenant members carry a TenantID; global superusers
// administer the SaaS and belong to no tenant.
type User struct {
	ID            int64     `db:"id" json:"id"`
	TenantID      *string   `db:"tenant_id" json:"tenant,omitempty"`
	Email         string    `db:"email" json:"email"`
	Username      string    `db:"username" json:"username"`
	Phone         string    `db:"phone" json:"phone"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	IsTenantAdmin bool      `db:"is_tenant_admin" json:"is_tenant_admin"`
	IsSuperuser   bool      `db:"is_superuser" json:"-"`
	IsStaff       bool      `db:"is_staff" json:"is_staff"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// OwnerTenant and Owner make a user subject to the ownership policy with
// the account as its own creator.
func (u *User) OwnerTenant() string {
	if u.TenantID == nil {
		return ""
	}
	return *u.TenantID
}

func (u *User) Owner() *int64 { return &u.ID }

// RegisterInput is the body of POST /user/register.
type RegisterInput struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateInput is a partial update; nil fields are left alone.
type UpdateInput struct {
	Email         *string `json:"email"`
	Username      *string `json:"username"`
	Phone         *string `json:"phone"`
	IsTenantAdmin *bool   `json:"is_tenant_admin"`
	IsStaff       *bool   `json:"is_staff"`
}
