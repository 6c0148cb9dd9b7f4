package record

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fieldsOfErr(t *testing.T, err error) map[string][]string {
	t.Helper()
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return verr.Fields
}

func TestValidator(t *testing.T) {
	var v Validator
	v.Required("name", "  ")
	v.MaxLen("code", "abcdef", 5)
	v.OneOf("shift", "Night", Choices{"Morning", "Evening"})
	v.OneOf("priority", "", Choices{"Normal"})
	v.Email("email", "not-an-email")
	v.Email("backup_email", "")
	v.Phone("phone", "12ab56789")
	v.Phone("mobile", "+919876543210")
	v.RequiredAmount("amount", Money{})
	v.NonNegative("discount", NewMoney("-1"))
	v.RequiredRef("patient", nil)

	got := fieldsOfErr(t, v.Err())
	for _, f := range []string{"name", "code", "shift", "email", "phone", "amount", "discount", "patient"} {
		if len(got[f]) == 0 {
			t.Errorf("expected error on %s", f)
		}
	}
	for _, f := range []string{"priority", "backup_email", "mobile"} {
		if len(got[f]) != 0 {
			t.Errorf("unexpected error on %s: %v", f, got[f])
		}
	}
}

func TestValidator_NoErrors(t *testing.T) {
	var v Validator
	v.Required("name", "Asha")
	v.Email("email", "asha@example.com")
	if err := v.Err(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestDate_JSON(t *testing.T) {
	var holder struct {
		On Date `json:"on"`
	}
	if err := json.Unmarshal([]byte(`{"on":"2024-02-29"}`), &holder); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !holder.On.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", holder.On)
	}
	out, _ := json.Marshal(holder)
	if string(out) != `{"on":"2024-02-29"}` {
		t.Errorf("unexpected encoding %s", out)
	}

	holder.On = Date{}
	out, _ = json.Marshal(holder)
	if string(out) != `{"on":null}` {
		t.Errorf("zero date should encode null, got %s", out)
	}

	if err := json.Unmarshal([]byte(`{"on":"29/02/2024"}`), &holder); err == nil {
		t.Error("expected error for wrong layout")
	}
	if err := json.Unmarshal([]byte(`{"on":null}`), &holder); err != nil || !holder.On.IsZero() {
		t.Errorf("null should decode to zero date, got %v %v", holder.On, err)
	}
}

func TestDate_String(t *testing.T) {
	if NewDate(2024, time.January, 5).String() != "2024-01-05" {
		t.Error("unexpected date string")
	}
	if (Date{}).String() != "" {
		t.Error("zero date should render empty")
	}
}

func TestMoney_JSON(t *testing.T) {
	var holder struct {
		Fees Money `json:"fees"`
	}
	for in, want := range map[string]string{`"500.50"`: "500.5", `120`: "120", `null`: "", `""`: ""} {
		holder.Fees = NewMoney("1")
		if err := json.Unmarshal([]byte(`{"fees":`+in+`}`), &holder); err != nil {
			t.Fatalf("%s: unexpected error %v", in, err)
		}
		got := ""
		if holder.Fees.Valid {
			got = holder.Fees.Decimal.String()
		}
		if got != want {
			t.Errorf("%s: expected %q, got %q", in, want, got)
		}
	}

	holder.Fees = NewMoney("75.25")
	out, _ := json.Marshal(holder)
	if string(out) != `{"fees":"75.25"}` {
		t.Errorf("unexpected encoding %s", out)
	}

	if err := json.Unmarshal([]byte(`{"fees":"abc"}`), &holder); !errors.Is(err, errInvalidNumber) {
		t.Errorf("expected errInvalidNumber, got %v", err)
	}
}
