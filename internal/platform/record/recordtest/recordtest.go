// Package recordtest serves resource kinds from in-memory stores for
// handler tests in the domain packages.
package recordtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospitalhq/hms/internal/platform/access"
	"github.com/hospitalhq/hms/internal/platform/record"
)

// ScopeHeader names the scope a test request runs as.
const ScopeHeader = "X-Test-Scope"

// Scopes used by Server. Tenant "a" has an admin and two members; tenant
// "b" has an admin.
var Scopes = map[string]access.Scope{
	"adminA": {TenantID: "a", Principal: access.Principal{UserID: 1, TenantID: "a", IsTenantAdmin: true}},
	"userA2": {TenantID: "a", Principal: access.Principal{UserID: 2, TenantID: "a"}},
	"userA3": {TenantID: "a", Principal: access.Principal{UserID: 3, TenantID: "a"}},
	"adminB": {TenantID: "b", Principal: access.Principal{UserID: 10, TenantID: "b", IsTenantAdmin: true}},
}

// Server is an echo instance whose mount group picks the request scope
// from ScopeHeader.
type Server struct {
	E       *echo.Echo
	Backend record.Backend
	t       *testing.T
}

// NewServer calls mount once per prefix with an in-memory backend shared by
// all of them.
func NewServer(t *testing.T, mount func(b record.Backend, prefix string, g *echo.Group), prefixes ...string) *Server {
	t.Helper()
	e := echo.New()
	b := record.Backend{Registry: record.NewRegistry(), Tx: record.NoTx{}, Logger: zerolog.Nop()}
	for _, p := range prefixes {
		g := e.Group(p, withScope)
		mount(b, p, g)
	}
	return &Server{E: e, Backend: b, t: t}
}

func withScope(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s, ok := Scopes[c.Request().Header.Get(ScopeHeader)]; ok {
			c.SetRequest(c.Request().WithContext(access.WithScope(c.Request().Context(), s)))
		}
		return next(c)
	}
}

// Do sends a request as scope and decodes the JSON response body.
func (s *Server) Do(scope, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set(ScopeHeader, scope)
	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			s.t.Fatalf("decode %s %s response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, out
}

// MustCreate posts body and returns the new record id.
func (s *Server) MustCreate(scope, path, body string) int64 {
	s.t.Helper()
	rec, out := s.Do(scope, http.MethodPost, path, body)
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("create %s: expected 201, got %d: %s", path, rec.Code, rec.Body)
	}
	id, ok := out["id"].(float64)
	if !ok {
		s.t.Fatalf("create %s: no id in %v", path, out)
	}
	return int64(id)
}

// Data returns the "data" member of a response as an object.
func Data(out map[string]any) map[string]any {
	m, _ := out["data"].(map[string]any)
	return m
}

// Items returns the "data" member of a list response.
func Items(out map[string]any) []any {
	items, _ := out["data"].([]any)
	return items
}

// FieldErrors returns the field error map of a 400 response.
func FieldErrors(out map[string]any) map[string]any {
	m, _ := out["error"].(map[string]any)
	return m
}
