package user

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

const userColumns = `id, tenant_id, email, username, phone, password_hash,
	is_tenant_admin, is_superuser, is_staff, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.Username, &u.Phone, &u.PasswordHash,
		&u.IsTenantAdmin, &u.IsSuperuser, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func mapWriteError(err error) error {
	if _, ok := db.UniqueViolation(err); ok {
		return ErrEmailTaken
	}
	return err
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (tenant_id, email, username, phone, password_hash,
			is_tenant_admin, is_superuser, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		u.TenantID, u.Email, u.Username, u.Phone, u.PasswordHash,
		u.IsTenantAdmin, u.IsSuperuser, u.IsStaff,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapWriteError(err))
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, tenantID *string, email string) (*User, error) {
	if tenantID == nil {
		return scanUser(db.Conn(ctx, r.pool).QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE tenant_id IS NULL AND lower(email) = lower($1)`, email))
	}
	return scanUser(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND lower(email) = lower($2)`, *tenantID, email))
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE users SET email = $2, username = $3, phone = $4, password_hash = $5,
			is_tenant_admin = $6, is_staff = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		u.ID, u.Email, u.Username, u.Phone, u.PasswordHash, u.IsTenantAdmin, u.IsStaff,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, mapWriteError(err))
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*User, int, error) {
	return r.list(ctx, `WHERE tenant_id = $1`, []interface{}{tenantID}, limit, offset)
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return r.list(ctx, ``, nil, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*User, int, error) {
	q := db.Conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	n := len(args)
	rows, err := q.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM users %s ORDER BY id LIMIT $%d OFFSET $%d`, userColumns, where, n+1, n+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
