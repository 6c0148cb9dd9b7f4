package record

import (
	"bytes"
	"errors"

	"github.com/shopspring/decimal"
)

var errInvalidNumber = errors.New("A valid number is required.")

// Money is an optional decimal amount. It is written as a JSON string and
// accepts strings or numbers; null and "" mean no value.
type Money struct {
	decimal.NullDecimal
}

func NewMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}
	}
	return Money{decimal.NewNullDecimal(d)}
}

func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*m = Money{}
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return errInvalidNumber
	}
	*m = Money{decimal.NewNullDecimal(d)}
	return nil
}

func MoneyOf(d decimal.Decimal) Money {
	return Money{decimal.NewNullDecimal(d)}
}

// Or returns the amount, or def when unset.
func (m Money) Or(def decimal.Decimal) decimal.Decimal {
	if !m.Valid {
		return def
	}
	return m.Decimal
}
