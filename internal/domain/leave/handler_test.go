package leave

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/domain/staff"
	"github.com/hospitalhq/hms/internal/platform/record"
	"github.com/hospitalhq/hms/internal/platform/record/recordtest"
)

func newServer(t *testing.T) *recordtest.Server {
	return recordtest.NewServer(t, func(b record.Backend, prefix string, g *echo.Group) {
		if prefix == "/api/staff" {
			staff.Mount(b, g, g)
			return
		}
		Mount(b, g, g)
	}, "/api/staff", "/api/leave-management")
}

func TestLeaveRequest_Lifecycle(t *testing.T) {
	s := newServer(t)
	emp := s.MustCreate("adminA", "/api/staff/employees", `{"name":"Nurse Joy","email":"joy@example.com","date_of_joining":"2023-05-01"}`)
	lt := s.MustCreate("adminA", "/api/leave-management/leave-type", `{"name":"Sick","days":12}`)

	id := s.MustCreate("userA2", "/api/leave-management/leave-request",
		`{"employee":`+strconv.FormatInt(emp, 10)+`,"leave_type":`+strconv.FormatInt(lt, 10)+`,"start_date":"2024-02-01","end_date":"2024-02-03"}`)
	path := "/api/leave-management/leave-request/" + strconv.FormatInt(id, 10)

	_, out := s.Do("userA2", http.MethodGet, path, "")
	if got := recordtest.Data(out)["status"]; got != "Pending" {
		t.Errorf("expected Pending, got %v", got)
	}

	if rec, _ := s.Do("adminA", http.MethodPatch, path, `{"status":"Approved"}`); rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d", rec.Code)
	}
	_, out = s.Do("userA3", http.MethodGet, "/api/leave-management/leave-request?status=Approved", "")
	if n := len(recordtest.Items(out)); n != 1 {
		t.Errorf("expected 1 approved request, got %d", n)
	}

	rec, out := s.Do("userA2", http.MethodPatch, path, `{"end_date":"2024-01-01"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("inverted range: expected 400, got %d", rec.Code)
	}
	if _, ok := recordtest.FieldErrors(out)["end_date"]; !ok {
		t.Errorf("expected end_date error, got %v", out)
	}
}

func TestLeaveRequest_BadDate(t *testing.T) {
	s := newServer(t)
	rec, out := s.Do("adminA", http.MethodPost, "/api/leave-management/leave-request", `{"start_date":"01/02/2024"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	msgs, _ := recordtest.FieldErrors(out)["start_date"].([]any)
	if len(msgs) == 0 || msgs[0] != "Date has wrong format. Use YYYY-MM-DD." {
		t.Errorf("unexpected error body %v", out)
	}
}
