package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "patient_email_uniq"}
	name, ok := UniqueViolation(errors.Join(errors.New("insert"), err))
	if !ok || name != "patient_email_uniq" {
		t.Errorf("expected patient_email_uniq, got %q %v", name, ok)
	}
	if _, ok := UniqueViolation(&pgconn.PgError{Code: "23503"}); ok {
		t.Error("foreign key error is not a unique violation")
	}
	if !ForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("expected foreign key violation")
	}
	if _, ok := UniqueViolation(errors.New("plain")); ok {
		t.Error("plain error is not a unique violation")
	}
}

func TestTxFromContext_Empty(t *testing.T) {
	if TxFromContext(context.Background()) != nil {
		t.Error("expected no transaction")
	}
}
