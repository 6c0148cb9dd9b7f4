package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospitalhq/hms/internal/config"
	"github.com/hospitalhq/hms/internal/domain/user"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:             "development",
		JWTIssuer:       "hms-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		DefaultTenant:   "public",
		BaseDomain:      "localhost",
		CORSOrigins:     []string{"http://localhost:3000"},
		TenantCacheSize: 16,
		TenantCacheTTL:  time.Minute,
		AuthzMode:       "enforce",
		RateLimitRPS:    1000,
		RateLimitBurst:  1000,
		BodyLimit:       "1M",
	}
}

type testApp struct {
	t   *testing.T
	e   *echo.Echo
	svc *services
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := testConfig()
	svc := newServices(cfg, nil, zerolog.Nop())
	e, err := newServer(cfg, svc, zerolog.Nop())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return &testApp{t: t, e: e, svc: svc}
}

// do sends a JSON request to host with an optional bearer token.
func (a *testApp) do(method, host, path, token, body string) (int, map[string]any) {
	a.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if host != "" {
		req.Host = host
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			a.t.Fatalf("decode %s %s: %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

// signup registers tenant name and returns its admin's access token.
func (a *testApp) signup(name string) string {
	a.t.Helper()
	email := "admin@" + name + ".test"
	code, body := a.do(http.MethodPost, "", "/tenant", "", fmt.Sprintf(
		`{"username":%q,"company_name":"%s Hospital","email":%q,"first_name":"Admin","password":"s3cret-pass"}`,
		name, name, email))
	if code != http.StatusCreated {
		a.t.Fatalf("expected 201 registering %s, got %d: %v", name, code, body)
	}
	if body["tenant_url"] != "http://"+name+".localhost" {
		a.t.Errorf("expected tenant_url http://%s.localhost, got %v", name, body["tenant_url"])
	}

	code, body = a.do(http.MethodPost, name+".localhost", "/login", "", fmt.Sprintf(
		`{"email":%q,"password":"s3cret-pass"}`, email))
	if code != http.StatusOK {
		a.t.Fatalf("expected 200 logging in to %s, got %d: %v", name, code, body)
	}
	if body["is_tenant_admin"] != true {
		a.t.Errorf("expected tenant admin login, got %v", body)
	}
	pair, _ := body["access_token"].(map[string]any)
	access, _ := pair["access"].(string)
	if access == "" {
		a.t.Fatalf("expected access token, got %v", body)
	}
	return access
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	code, body := app.do(http.MethodGet, "", "/health", "", "")
	if code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("expected 200 ok, got %d %v", code, body)
	}
}

func TestModulesRegisterEveryKind(t *testing.T) {
	app := newTestApp(t)
	want := []string{
		"appointment", "billing", "blog", "employees", "ipd", "ipd-bill",
		"leave-request", "leave-type", "medicine", "opd", "pathology",
		"pathology-bill", "patient", "pharmacy-bill", "purchase-medicine",
		"radiology", "radiology-bill", "roles",
	}
	got := app.svc.backend.Registry.Kinds()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected kinds %v, got %v", want, got)
	}
}

func TestCheckTenant(t *testing.T) {
	app := newTestApp(t)
	app.signup("city")

	code, body := app.do(http.MethodGet, "", "/check-tenant?username=city", "", "")
	if code != http.StatusOK || body["msg"] != true {
		t.Errorf("expected 200 true, got %d %v", code, body)
	}
	code, body = app.do(http.MethodGet, "", "/check-tenant?username=nowhere", "", "")
	if code != http.StatusNotFound || body["msg"] != false {
		t.Errorf("expected 404 false, got %d %v", code, body)
	}
}

func TestPatientLifecycleAcrossTenants(t *testing.T) {
	app := newTestApp(t)
	city := app.signup("city")
	rural := app.signup("rural")

	code, body := app.do(http.MethodPost, "city.localhost", "/api/patients/patient", city,
		`{"name":"Ravi","email":"ravi@example.com","phone":"9876543210","address":"12 Lake Road"}`)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", code, body)
	}
	if body["msg"] != "Patient added successfully!" {
		t.Errorf("unexpected create message %v", body["msg"])
	}
	id := int64(body["id"].(float64))
	item := fmt.Sprintf("/api/patients/patient/%d", id)

	code, body = app.do(http.MethodGet, "city.localhost", item, city, "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, body)
	}
	if data, _ := body["data"].(map[string]any); data["name"] != "Ravi" {
		t.Errorf("expected patient Ravi, got %v", body)
	}

	code, body = app.do(http.MethodGet, "rural.localhost", item, rural, "")
	if code != http.StatusNotFound {
		t.Errorf("expected 404 from another tenant, got %d: %v", code, body)
	}
	want := fmt.Sprintf("Patient with ID %d not found.", id)
	if body["msg"] != want {
		t.Errorf("expected %q, got %v", want, body["msg"])
	}

	code, _ = app.do(http.MethodGet, "rural.localhost", item, city, "")
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a token used on another tenant's host, got %d", code)
	}

	code, _ = app.do(http.MethodGet, "city.localhost", item, "", "")
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", code)
	}

	code, body = app.do(http.MethodPatch, "city.localhost", item, city, `{"address":"7 Hill Street"}`)
	if code != http.StatusOK || body["msg"] != "Patient updated successfully!" {
		t.Errorf("expected 200 update, got %d %v", code, body)
	}

	code, body = app.do(http.MethodPost, "city.localhost", "/api/patients/patient", city,
		`{"name":"Other","email":"ravi@example.com"}`)
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate email, got %d: %v", code, body)
	}

	// Uniqueness is per tenant.
	code, body = app.do(http.MethodPost, "rural.localhost", "/api/patients/patient", rural,
		`{"name":"Ravi","email":"ravi@example.com"}`)
	if code != http.StatusCreated {
		t.Errorf("expected 201 in another tenant, got %d: %v", code, body)
	}

	code, body = app.do(http.MethodDelete, "city.localhost", item, city, "")
	if code != http.StatusOK || body["msg"] != "Patient deleted successfully!" {
		t.Errorf("expected 200 delete, got %d %v", code, body)
	}
	code, _ = app.do(http.MethodGet, "city.localhost", item, city, "")
	if code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", code)
	}
}

func TestTenantHeaderSelectsTenant(t *testing.T) {
	app := newTestApp(t)
	city := app.signup("city")

	req := httptest.NewRequest(http.MethodGet, "/api/staff/roles", nil)
	req.Header.Set("X-Tenant-ID", "city")
	req.Header.Set("Authorization", "Bearer "+city)
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 via X-Tenant-ID, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/staff/roles", nil)
	req.Header.Set("X-Tenant-ID", "ghost")
	rec = httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown tenant, got %d", rec.Code)
	}
}

func TestReferenceAcrossModules(t *testing.T) {
	app := newTestApp(t)
	city := app.signup("city")
	host := "city.localhost"

	_, body := app.do(http.MethodPost, host, "/api/patients/patient", city, `{"name":"Meera"}`)
	patientID := int64(body["id"].(float64))

	code, body := app.do(http.MethodPost, host, "/api/appointments/appointment", city,
		fmt.Sprintf(`{"patient":%d,"appointment_date":"2026-03-01","fees":"250.00"}`, patientID))
	if code != http.StatusCreated {
		t.Fatalf("expected 201 appointment, got %d: %v", code, body)
	}

	code, body = app.do(http.MethodPost, host, "/api/appointments/appointment", city, `{"patient":999}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a missing patient, got %d: %v", code, body)
	}
	errs, _ := body["error"].(map[string]any)
	msgs, _ := errs["patient"].([]any)
	if len(msgs) != 1 || msgs[0] != `Invalid pk "999" - object does not exist.` {
		t.Errorf("unexpected patient error %v", body)
	}
}

func TestSaaSRoutesRequireSuperuser(t *testing.T) {
	app := newTestApp(t)
	city := app.signup("city")

	if _, err := app.svc.users.CreateSuperuser(context.Background(), user.RegisterInput{
		Email: "root@hms.test", Username: "root", Password: "root-pass",
	}); err != nil {
		t.Fatalf("CreateSuperuser: %v", err)
	}

	code, body := app.do(http.MethodPost, "", "/api/superadmin-login", "", `{"email":"root@hms.test","password":"root-pass"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200 superadmin login, got %d: %v", code, body)
	}
	root, _ := body["access"].(string)

	code, body = app.do(http.MethodGet, "", "/tenants", root, "")
	if code != http.StatusOK {
		t.Fatalf("expected 200 tenant list, got %d: %v", code, body)
	}
	if body["total"] != float64(1) {
		t.Errorf("expected 1 tenant, got %v", body["total"])
	}

	code, _ = app.do(http.MethodGet, "city.localhost", "/tenants", city, "")
	if code != http.StatusForbidden {
		t.Errorf("expected 403 for a tenant admin, got %d", code)
	}

	code, _ = app.do(http.MethodPost, "", "/api/superadmin-login", "", `{"email":"admin@city.test","password":"s3cret-pass"}`)
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a tenant user, got %d", code)
	}
}

func TestTokenRefresh(t *testing.T) {
	app := newTestApp(t)
	app.signup("city")

	_, body := app.do(http.MethodPost, "city.localhost", "/login", "", `{"email":"admin@city.test","password":"s3cret-pass"}`)
	pair := body["access_token"].(map[string]any)

	code, body := app.do(http.MethodPost, "", "/api/token/refresh", "", fmt.Sprintf(`{"refresh":%q}`, pair["refresh"]))
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, body)
	}
	access, _ := body["access"].(string)
	if access == "" {
		t.Fatalf("expected a new access token, got %v", body)
	}

	code, body = app.do(http.MethodGet, "city.localhost", "/user/detail", access, "")
	if code != http.StatusOK {
		t.Errorf("expected 200 profile with refreshed token, got %d: %v", code, body)
	}
}
