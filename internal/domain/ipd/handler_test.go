package ipd

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/domain/patient"
	"github.com/hospitalhq/hms/internal/domain/staff"
	"github.com/hospitalhq/hms/internal/platform/record"
	"github.com/hospitalhq/hms/internal/platform/record/recordtest"
)

func newServer(t *testing.T) *recordtest.Server {
	return recordtest.NewServer(t, func(b record.Backend, prefix string, g *echo.Group) {
		switch prefix {
		case "/api/patients":
			patient.Mount(b, g, g)
		case "/api/staff":
			staff.Mount(b, g, g)
		default:
			Mount(b, g, g)
		}
	}, "/api/patients", "/api/staff", "/api/ipd")
}

func TestIPDBill_DerivedAmounts(t *testing.T) {
	s := newServer(t)
	pat := s.MustCreate("adminA", "/api/patients/patient", `{"name":"Asha"}`)
	id := s.MustCreate("userA2", "/api/ipd/ipd-bill",
		`{"patient":`+strconv.FormatInt(pat, 10)+`,"cost":"25","qty":"3","net_amount":"75","paid_amount":"50"}`)

	_, out := s.Do("userA2", http.MethodGet, "/api/ipd/ipd-bill/"+strconv.FormatInt(id, 10), "")
	data := recordtest.Data(out)
	if data["amount"] != "75" || data["due_amount"] != "25" {
		t.Errorf("unexpected derived amounts %v", data)
	}
	if data["medicine_category"] != "Tablet" || data["payment_mode"] != "Cash" {
		t.Errorf("unexpected defaults %v", data)
	}
}

func TestIPDBill_UpdateRecomputesAmounts(t *testing.T) {
	s := newServer(t)
	path := "/api/ipd/ipd-bill/" + strconv.FormatInt(s.MustCreate("userA2", "/api/ipd/ipd-bill",
		`{"cost":"25","qty":"3","net_amount":"75","paid_amount":"50"}`), 10)

	if rec, _ := s.Do("userA2", http.MethodPatch, path, `{"qty":"4","net_amount":"100"}`); rec.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d", rec.Code)
	}
	_, out := s.Do("userA2", http.MethodGet, path, "")
	data := recordtest.Data(out)
	if data["amount"] != "100" || data["due_amount"] != "50" {
		t.Errorf("expected amount 100 and due_amount 50, got %v", data)
	}
}

func TestIPD_AdmissionOwnerGated(t *testing.T) {
	s := newServer(t)
	id := s.MustCreate("userA2", "/api/ipd/ipd", `{"bed_no":"12","ward":"B"}`)
	path := "/api/ipd/ipd/" + strconv.FormatInt(id, 10)

	rec, out := s.Do("userA3", http.MethodPatch, path, `{"bed_no":"14"}`)
	if rec.Code != http.StatusNotFound || out["msg"] != "IPD with ID "+strconv.FormatInt(id, 10)+" not found." {
		t.Errorf("non-owner update: expected 404, got %d %v", rec.Code, out)
	}
	if rec, _ := s.Do("adminA", http.MethodPatch, path, `{"bed_no":"14"}`); rec.Code != http.StatusOK {
		t.Errorf("admin update: expected 200, got %d", rec.Code)
	}
	_, out = s.Do("userA2", http.MethodGet, path, "")
	if d := recordtest.Data(out); d["bed_no"] != "14" || d["ward"] != "B" || d["casualty"] != "No" {
		t.Errorf("unexpected admission %v", d)
	}
}
