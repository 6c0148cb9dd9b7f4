package tenant

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("tenant not found")
	ErrTenantTaken  = errors.New("tenant name already taken")
	ErrDomainTaken  = errors.New("domain already registered")
	ErrUnknownOwner = errors.New("domain references an unknown tenant")
)

// Tenant is an isolated hospital. Its ID is the short name used in
// subdomains and in the X-Tenant-ID header.
type Tenant struct {
	ID                 string    `db:"id" json:"schema_name"`
	Name               string    `db:"name" json:"name"`
	Address            string    `db:"address" json:"address"`
	RegistrationNumber string    `db:"registration_number" json:"registration_number"`
	CreatedAt          time.Time `db:"created_at" json:"created_on"`
}

// Domain maps a hostname to a tenant.
type Domain struct {
	ID        int64     `db:"id" json:"id"`
	Domain    string    `db:"domain" json:"domain"`
	TenantID  string    `db:"tenant_id" json:"tenant"`
	IsPrimary bool      `db:"is_primary" json:"is_primary"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RegisterInput is the body of POST /tenant.
type RegisterInput struct {
	Username           string `json:"username"`
	Address            string `json:"address"`
	RegistrationNumber string `json:"registration_number"`
	CompanyName        string `json:"company_name"`
	Email              string `json:"email"`
	FirstName          string `json:"first_name"`
	Password           string `json:"password"`
}

// CreateInput is the body of POST /tenants.
type CreateInput struct {
	SchemaName         string `json:"schema_name"`
	Name               string `json:"name"`
	Address            string `json:"address"`
	RegistrationNumber string `json:"registration_number"`
}

type DomainInput struct {
	Domain    string `json:"domain"`
	TenantID  string `json:"tenant"`
	IsPrimary bool   `json:"is_primary"`
}
