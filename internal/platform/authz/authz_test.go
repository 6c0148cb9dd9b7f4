package authz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospitalhq/hms/internal/platform/access"
)

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{"": ModeEnforce, "Shadow": ModeShadow, " disabled ": ModeDisabled, "enforce": ModeEnforce}
	for in, want := range tests {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q): expected %q, got %q (%v)", in, want, got, err)
		}
	}
	if _, err := ParseMode("nope"); err == nil {
		t.Error("expected error for invalid mode")
	}
}

func TestRoleOf(t *testing.T) {
	tests := []struct {
		p    access.Principal
		want string
	}{
		{access.Principal{UserID: 1, IsSuperuser: true}, RoleSuperadmin},
		{access.Principal{UserID: 1, TenantID: "a", IsSuperuser: true, IsTenantAdmin: true}, RoleTenantAdmin},
		{access.Principal{UserID: 2, TenantID: "a", IsTenantAdmin: true}, RoleTenantAdmin},
		{access.Principal{UserID: 3, TenantID: "a"}, RoleUser},
		{access.Principal{}, RoleAnonymous},
	}
	for _, tt := range tests {
		if got := RoleOf(tt.p); got != tt.want {
			t.Errorf("RoleOf(%+v): expected %s, got %s", tt.p, tt.want, got)
		}
	}
}

func TestDefaultPolicy(t *testing.T) {
	a, err := NewAuthorizer("", ModeEnforce, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthorizer: %v", err)
	}
	tests := []struct {
		role, obj, act string
		want           bool
	}{
		{RoleUser, ObjectRecords, ActionRead, true},
		{RoleUser, ObjectRecords, ActionWrite, true},
		{RoleUser, ObjectTenantUsers, ActionAdmin, false},
		{RoleTenantAdmin, ObjectRecords, ActionWrite, true},
		{RoleTenantAdmin, ObjectTenantUsers, ActionAdmin, true},
		{RoleTenantAdmin, ObjectSaaS, ActionRead, false},
		{RoleSuperadmin, ObjectSaaS, ActionWrite, true},
		{RoleSuperadmin, ObjectRecords, ActionRead, false},
		{RoleAnonymous, ObjectRecords, ActionRead, false},
	}
	for _, tt := range tests {
		got, enforced, err := a.Authorize(tt.role, tt.obj, tt.act)
		if err != nil || !enforced {
			t.Fatalf("authorize: %v enforced=%v", err, enforced)
		}
		if got != tt.want {
			t.Errorf("%s %s %s: expected %v, got %v", tt.role, tt.obj, tt.act, tt.want, got)
		}
	}
}

func TestPolicyFile(t *testing.T) {
	policy := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(policy, []byte("p, role:user, records, read\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := NewAuthorizer(policy, ModeEnforce, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthorizer: %v", err)
	}
	if ok, _, _ := a.Authorize(RoleUser, ObjectRecords, ActionRead); !ok {
		t.Error("expected read allowed by file policy")
	}
	if ok, _, _ := a.Authorize(RoleUser, ObjectRecords, ActionWrite); ok {
		t.Error("file policy replaces defaults; write must be denied")
	}
}

func runRequire(t *testing.T, a *Authorizer, p access.Principal, obj, act string) (bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(access.WithScope(context.Background(), access.Scope{TenantID: p.TenantID, Principal: p}))
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := a.Require(obj, act)(func(echo.Context) error {
		called = true
		return nil
	})(c)
	return called, err
}

func TestRequire(t *testing.T) {
	a, _ := NewAuthorizer("", ModeEnforce, zerolog.Nop())

	called, err := runRequire(t, a, access.Principal{UserID: 2, TenantID: "a", IsTenantAdmin: true}, ObjectTenantUsers, ActionAdmin)
	if err != nil || !called {
		t.Errorf("admin should pass: called=%v err=%v", called, err)
	}

	called, err = runRequire(t, a, access.Principal{UserID: 3, TenantID: "a"}, ObjectTenantUsers, ActionAdmin)
	var he *echo.HTTPError
	if called || !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Errorf("user should get 403: called=%v err=%v", called, err)
	}
}

func TestRequire_DisabledMode(t *testing.T) {
	a, _ := NewAuthorizer("", ModeDisabled, zerolog.Nop())
	called, err := runRequire(t, a, access.Principal{UserID: 3, TenantID: "a"}, ObjectSaaS, ActionAdmin)
	if err != nil || !called {
		t.Errorf("disabled mode must not block: called=%v err=%v", called, err)
	}
	if ok, enforced, _ := a.Authorize(RoleUser, ObjectSaaS, ActionAdmin); !ok || enforced {
		t.Errorf("expected allowed and not enforced, got ok=%v enforced=%v", ok, enforced)
	}
}

func TestRequire_ShadowMode(t *testing.T) {
	a, _ := NewAuthorizer("", ModeShadow, zerolog.Nop())
	called, err := runRequire(t, a, access.Principal{UserID: 3, TenantID: "a"}, ObjectSaaS, ActionRead)
	if err != nil || !called {
		t.Errorf("shadow mode must not block: called=%v err=%v", called, err)
	}
}
