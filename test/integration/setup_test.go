package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hospitalhq/hms/internal/domain/tenant"
	"github.com/hospitalhq/hms/internal/domain/user"
	"github.com/hospitalhq/hms/internal/platform/access"
	"github.com/hospitalhq/hms/internal/platform/auth"
	"github.com/hospitalhq/hms/internal/platform/db"
	"github.com/hospitalhq/hms/internal/platform/record"
	"github.com/hospitalhq/hms/migrations"
)

// databaseEnv points the suite at an existing database instead of a
// throwaway container.
const databaseEnv = "HMS_TEST_DATABASE_URL"

// globalPool is the shared, fully migrated database, initialized once in
// TestMain.
var globalPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	connStr := os.Getenv(databaseEnv)
	cleanup := func() {}
	if connStr == "" {
		if _, err := exec.LookPath("docker"); err != nil {
			fmt.Fprintf(os.Stderr, "skipping integration tests: set %s or install docker\n", databaseEnv)
			os.Exit(0)
		}
		var err error
		connStr, cleanup, err = startWithTestcontainers(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to setup postgres container: %v\n", err)
			os.Exit(1)
		}
	}

	pool, err := db.NewPool(ctx, connStr, 10, 1)
	if err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	if _, err := db.NewMigrator(pool, migrations.FS).Up(ctx); err != nil {
		pool.Close()
		cleanup()
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	globalPool = pool
	code := m.Run()
	pool.Close()
	cleanup()
	os.Exit(code)
}

// uniqueTenantID generates a tenant id that does not collide across runs.
func uniqueTenantID(prefix string) string {
	short := strings.ReplaceAll(uuid.New().String()[:8], "-", "")
	return fmt.Sprintf("%s_%s", prefix, short)
}

func newTokens() *auth.Tokens {
	return auth.NewTokens(auth.TokenConfig{
		Secret:     []byte("integration-secret-with-enough-bytes"),
		Issuer:     "hms-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	})
}

// accounts returns PostgreSQL backed user and tenant services.
func accounts() (*user.Service, *tenant.Service, *tenant.Resolver) {
	tenantRepo := tenant.NewRepo(globalPool)
	users := user.NewService(user.NewRepo(globalPool), newTokens(), zerolog.Nop())
	resolver := tenant.NewResolver(tenantRepo, 64, 0)
	tenants := tenant.NewService(tenantRepo, users, db.NewTransactor(globalPool), resolver, "localhost", zerolog.Nop())
	return users, tenants, resolver
}

// createTenant registers a tenant through the signup flow and returns the
// admin's scope.
func createTenant(t *testing.T, ctx context.Context, prefix string) access.Scope {
	t.Helper()
	_, tenants, _ := accounts()
	id := uniqueTenantID(prefix)
	reg, err := tenants.Register(ctx, tenant.RegisterInput{
		Username:    id,
		CompanyName: prefix + " Hospital",
		Email:       "admin@hospital.test",
		FirstName:   "Admin",
		Password:    "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("register tenant %s: %v", id, err)
	}
	return scopeOf(reg.Admin)
}

// addMember registers an ordinary user in the tenant of admin.
func addMember(t *testing.T, ctx context.Context, admin access.Scope, email string) access.Scope {
	t.Helper()
	users, _, _ := accounts()
	u, err := users.Register(ctx, admin.TenantID, user.RegisterInput{
		Email:    email,
		Username: strings.Split(email, "@")[0],
		Phone:    "9876543210",
		Password: "member-pass",
	})
	if err != nil {
		t.Fatalf("register member %s: %v", email, err)
	}
	return scopeOf(u)
}

func scopeOf(u *user.User) access.Scope {
	tid := u.OwnerTenant()
	return access.Scope{
		TenantID: tid,
		Principal: access.Principal{
			UserID:        u.ID,
			TenantID:      tid,
			IsTenantAdmin: u.IsTenantAdmin,
			Email:         u.Email,
		},
	}
}

// newBackend returns a record backend over the shared pool with a fresh
// registry.
func newBackend() record.Backend {
	return record.Backend{
		Pool:     globalPool,
		Registry: record.NewRegistry(),
		Tx:       db.NewTransactor(globalPool),
		Logger:   zerolog.Nop(),
	}
}

// serviceFor builds a PostgreSQL backed service for def on b.
func serviceFor[T record.Payload](b record.Backend, def record.Definition[T]) *record.Service[T] {
	return record.NewService(def, record.NewPGStore(b.Pool, def), b.Registry, b.Tx, b.Logger)
}
