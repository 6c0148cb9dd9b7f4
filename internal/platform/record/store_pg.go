package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospitalhq/hms/internal/platform/db"
)

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// pgStore keeps one table per kind:
//
//	id bigserial, tenant_id text, created_by bigint, data jsonb,
//	created_at timestamptz, updated_at timestamptz
//
// Unique payload fields are enforced by expression indexes named
// <table>_<field>_uniq on (tenant_id, data->>'<field>').
type pgStore[T any] struct {
	pool   *pgxpool.Pool
	table  string
	title  string
	unique map[string]string // constraint name -> field
}

// NewPGStore returns a PostgreSQL store for def. It panics on table or
// field names that are not plain identifiers.
func NewPGStore[T any](pool *pgxpool.Pool, def Definition[T]) Store[T] {
	if !identPattern.MatchString(def.Table) {
		panic(fmt.Sprintf("record: invalid table name %q", def.Table))
	}
	unique := make(map[string]string, len(def.Unique))
	for _, f := range def.Unique {
		if !identPattern.MatchString(f) {
			panic(fmt.Sprintf("record: invalid unique field %q", f))
		}
		unique[def.Table+"_"+f+"_uniq"] = f
	}
	return &pgStore[T]{pool: pool, table: def.Table, title: def.Title, unique: unique}
}

func (s *pgStore[T]) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, s.pool)
}

const recordCols = `id, tenant_id, created_by, data, created_at, updated_at`

func (s *pgStore[T]) scan(row pgx.Row) (*Record[T], error) {
	var (
		rec Record[T]
		raw []byte
	)
	if err := row.Scan(&rec.ID, &rec.TenantID, &rec.CreatedBy, &raw, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &rec.Data); err != nil {
		return nil, fmt.Errorf("decode %s %d: %w", s.table, rec.ID, err)
	}
	return &rec, nil
}

func (s *pgStore[T]) List(ctx context.Context, tenantID string, f Filter) ([]*Record[T], int, error) {
	where := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}
	if f.CreatedBy != nil {
		args = append(args, *f.CreatedBy)
		where = append(where, fmt.Sprintf("created_by = $%d", len(args)))
	}
	for field, value := range f.Fields {
		args = append(args, field, value)
		where = append(where, fmt.Sprintf("data->>$%d::text = $%d", len(args)-1, len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM `+s.table+` WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", s.table, err)
	}

	query := `SELECT ` + recordCols + ` FROM ` + s.table + ` WHERE ` + cond + ` ORDER BY id`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", s.table, err)
	}
	defer rows.Close()

	var items []*Record[T]
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

func (s *pgStore[T]) Get(ctx context.Context, tenantID string, id int64) (*Record[T], error) {
	rec, err := s.scan(s.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM `+s.table+` WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", s.table, id, err)
	}
	return rec, nil
}

func (s *pgStore[T]) Create(ctx context.Context, rec *Record[T]) error {
	raw, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.table, err)
	}
	err = s.conn(ctx).QueryRow(ctx, `
		INSERT INTO `+s.table+` (tenant_id, created_by, data)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		rec.TenantID, rec.CreatedBy, string(raw),
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return s.mapError("insert", err)
	}
	return nil
}

func (s *pgStore[T]) Update(ctx context.Context, rec *Record[T]) error {
	raw, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.table, err)
	}
	err = s.conn(ctx).QueryRow(ctx, `
		UPDATE `+s.table+` SET data = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at`,
		rec.TenantID, rec.ID, string(raw),
	).Scan(&rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return s.mapError("update", err)
	}
	return nil
}

func (s *pgStore[T]) Delete(ctx context.Context, tenantID string, id int64) error {
	tag, err := s.conn(ctx).Exec(ctx, `DELETE FROM `+s.table+` WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", s.table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgStore[T]) Exists(ctx context.Context, tenantID string, id int64) (bool, error) {
	var ok bool
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+s.table+` WHERE tenant_id = $1 AND id = $2)`, tenantID, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("exists %s %d: %w", s.table, id, err)
	}
	return ok, nil
}

func (s *pgStore[T]) ClearReference(ctx context.Context, tenantID, field string, id int64) (int64, error) {
	tag, err := s.conn(ctx).Exec(ctx, `
		UPDATE `+s.table+`
		SET data = jsonb_set(data, ARRAY[$2::text], 'null'::jsonb), updated_at = NOW()
		WHERE tenant_id = $1 AND data->>$2::text = $3`,
		tenantID, field, strconv.FormatInt(id, 10))
	if err != nil {
		return 0, fmt.Errorf("clear %s.%s: %w", s.table, field, err)
	}
	return tag.RowsAffected(), nil
}

func (s *pgStore[T]) mapError(op string, err error) error {
	if name, ok := db.UniqueViolation(err); ok {
		if field, ok := s.unique[name]; ok {
			return NewConflict(field, s.title)
		}
		return &ValidationError{
			Fields: map[string][]string{NonFieldErrors: {s.title + " already exists."}},
			cause:  ErrConflict,
		}
	}
	return fmt.Errorf("%s %s: %w", op, s.table, err)
}
