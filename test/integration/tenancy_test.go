package integration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hospitalhq/hms/internal/domain/tenant"
	"github.com/hospitalhq/hms/internal/domain/user"
	"github.com/hospitalhq/hms/internal/platform/db"
	"github.com/hospitalhq/hms/internal/platform/record"
	"github.com/hospitalhq/hms/migrations"
)

func TestMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	m := db.NewMigrator(globalPool, migrations.FS)

	n, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("second up: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no pending migrations, got %d", n)
	}

	statuses, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			t.Errorf("expected %s applied", s.Name)
		}
	}
}

func TestTenant_RegisterResolvesHost(t *testing.T) {
	ctx := context.Background()
	_, tenants, resolver := accounts()
	id := uniqueTenantID("host")

	reg, err := tenants.Register(ctx, tenant.RegisterInput{
		Username:    id,
		CompanyName: "Host Hospital",
		Email:       "admin@hospital.test",
		FirstName:   "Admin",
		Password:    "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Domain.Domain != strings.ToLower(id)+".localhost" {
		t.Errorf("expected domain %s.localhost, got %s", id, reg.Domain.Domain)
	}
	if !reg.Admin.IsTenantAdmin {
		t.Error("expected the first user to be a tenant admin")
	}

	got, found, err := resolver.ResolveHost(ctx, reg.Domain.Domain)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !found || got != id {
		t.Errorf("expected host to resolve to %s, got %q (found=%v)", id, got, found)
	}

	_, err = tenants.Register(ctx, tenant.RegisterInput{
		Username:    id,
		CompanyName: "Again",
		Email:       "other@hospital.test",
		FirstName:   "Other",
		Password:    "s3cret-pass",
	})
	var verr *record.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields["username"]) == 0 {
		t.Errorf("expected username taken error, got %v", err)
	}
}

func TestTenant_RegisterRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	_, tenants, _ := accounts()
	id := uniqueTenantID("rollback")

	// A domain already claimed by another tenant fails the signup after the
	// tenant row was written.
	owner := createTenant(t, ctx, "claim")
	if _, err := tenants.CreateDomain(ctx, tenant.DomainInput{
		Domain:   strings.ToLower(id) + ".localhost",
		TenantID: owner.TenantID,
	}); err != nil {
		t.Fatalf("claim domain: %v", err)
	}

	_, err := tenants.Register(ctx, tenant.RegisterInput{
		Username:    id,
		CompanyName: "Rollback Hospital",
		Email:       "admin@hospital.test",
		FirstName:   "Admin",
		Password:    "s3cret-pass",
	})
	if err == nil {
		t.Fatal("expected registration to fail")
	}

	exists, err := tenants.Exists(ctx, id)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Error("expected the tenant row to be rolled back")
	}
}

func TestUser_EmailUniquePerTenant(t *testing.T) {
	ctx := context.Background()
	users, _, _ := accounts()
	adminA := createTenant(t, ctx, "mail_a")
	adminB := createTenant(t, ctx, "mail_b")

	in := user.RegisterInput{Email: "same@hospital.test", Username: "same", Phone: "9000000001", Password: "pw-123456"}
	if _, err := users.Register(ctx, adminA.TenantID, in); err != nil {
		t.Fatalf("register in A: %v", err)
	}
	_, err := users.Register(ctx, adminA.TenantID, in)
	var verr *record.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields["email"]) == 0 {
		t.Errorf("expected email taken in A, got %v", err)
	}
	if _, err := users.Register(ctx, adminB.TenantID, in); err != nil {
		t.Errorf("expected the email to be free in B, got %v", err)
	}

	u, pair, err := users.Login(ctx, adminB.TenantID, user.LoginInput{Email: in.Email, Password: in.Password})
	if err != nil {
		t.Fatalf("login in B: %v", err)
	}
	if u.OwnerTenant() != adminB.TenantID || pair.Access == "" {
		t.Errorf("expected a B session, got tenant %q", u.OwnerTenant())
	}
	if _, _, err := users.Login(ctx, adminA.TenantID, user.LoginInput{Email: in.Email, Password: "wrong"}); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials, got %v", err)
	}
}
