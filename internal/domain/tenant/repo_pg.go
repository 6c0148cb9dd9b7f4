package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospitalhq/hms/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) CreateTenant(ctx context.Context, t *Tenant) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO tenants (id, name, address, registration_number)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		t.ID, t.Name, t.Address, t.RegistrationNumber,
	).Scan(&t.CreatedAt)
	if _, ok := db.UniqueViolation(err); ok {
		return ErrTenantTaken
	}
	if err != nil {
		return fmt.Errorf("insert tenant %s: %w", t.ID, err)
	}
	return nil
}

func (r *repoPG) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, address, registration_number, created_at FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Address, &t.RegistrationNumber, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repoPG) TenantExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, int, error) {
	q := db.Conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `
		SELECT id, name, address, registration_number, created_at
		FROM tenants ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Address, &t.RegistrationNumber, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &t)
	}
	return out, total, rows.Err()
}

func (r *repoPG) CreateDomain(ctx context.Context, d *Domain) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO domains (domain, tenant_id, is_primary)
		VALUES (lower($1), $2, $3)
		RETURNING id, domain, created_at`,
		d.Domain, d.TenantID, d.IsPrimary,
	).Scan(&d.ID, &d.Domain, &d.CreatedAt)
	if _, ok := db.UniqueViolation(err); ok {
		return ErrDomainTaken
	}
	if db.ForeignKeyViolation(err) {
		return ErrUnknownOwner
	}
	if err != nil {
		return fmt.Errorf("insert domain %s: %w", d.Domain, err)
	}
	return nil
}

func (r *repoPG) ListDomains(ctx context.Context, limit, offset int) ([]*Domain, int, error) {
	q := db.Conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM domains`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `
		SELECT id, domain, tenant_id, is_primary, created_at
		FROM domains ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Domain
	for rows.Next() {
		var d Domain
		if err := rows.Scan(&d.ID, &d.Domain, &d.TenantID, &d.IsPrimary, &d.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &d)
	}
	return out, total, rows.Err()
}

func (r *repoPG) TenantForHost(ctx context.Context, host string) (string, bool, error) {
	var tenantID string
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT tenant_id FROM domains WHERE domain = lower($1)`, host).Scan(&tenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolve host %s: %w", host, err)
	}
	return tenantID, true, nil
}
