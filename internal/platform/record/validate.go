package record

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/samber/lo"
)

// Choices is a closed set of allowed values for a text field.
type Choices []string

func (c Choices) Has(v string) bool { return lo.Contains(c, v) }

// Validator accumulates field errors.
type Validator struct {
	errs ValidationError
}

func (v *Validator) Check(ok bool, field, msg string) {
	if !ok {
		v.errs.Add(field, msg)
	}
}

// Required fails on blank strings.
func (v *Validator) Required(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, "This field may not be blank.")
}

func (v *Validator) MaxLen(field, value string, n int) {
	v.Check(len([]rune(value)) <= n, field, fmt.Sprintf("Ensure this field has no more than %d characters.", n))
}

// OneOf accepts blank values; combine with Required when the field is mandatory.
func (v *Validator) OneOf(field, value string, allowed Choices) {
	if value == "" {
		return
	}
	v.Check(allowed.Has(value), field, fmt.Sprintf("\"%s\" is not a valid choice.", value))
}

func (v *Validator) Email(field, value string) {
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	v.Check(err == nil && addr.Address == value, field, "Enter a valid email address.")
}

// Phone accepts digits with an optional leading +.
func (v *Validator) Phone(field, value string) {
	if value == "" {
		return
	}
	digits := strings.TrimPrefix(value, "+")
	ok := len(digits) >= 6 && len(digits) <= 15 && strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
	v.Check(ok, field, "Enter a valid phone number.")
}

// RequiredAmount fails on null money values.
func (v *Validator) RequiredAmount(field string, d Money) {
	v.Check(d.Valid, field, "This field may not be null.")
}

func (v *Validator) NonNegative(field string, d Money) {
	if !d.Valid {
		return
	}
	v.Check(!d.Decimal.IsNegative(), field, "Ensure this value is greater than or equal to 0.")
}

func (v *Validator) NonNegativeInt(field string, n int) {
	v.Check(n >= 0, field, "Ensure this value is greater than or equal to 0.")
}

func (v *Validator) RequiredDate(field string, d Date) {
	v.Check(!d.IsZero(), field, "This field may not be null.")
}

func (v *Validator) RequiredRef(field string, id *int64) {
	v.Check(id != nil, field, "This field may not be null.")
}

func (v *Validator) Err() error {
	return v.errs.Err()
}

// Date is a calendar date encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

var errDateFormat = errors.New("Date has wrong format. Use YYYY-MM-DD.")

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, errDateFormat
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
