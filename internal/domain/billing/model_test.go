package billing

import (
	"errors"
	"testing"

	"github.com/hospitalhq/hms/internal/platform/record"
)

func TestBillValidate(t *testing.T) {
	tests := []struct {
		name  string
		bill  Bill
		field string
	}{
		{"defaults", Bill{BillType: "Consultation", PaymentMode: "Cash"}, ""},
		{"partly paid", Bill{Amount: record.NewMoney("1200"), AmountDue: record.NewMoney("200")}, ""},
		{"due above amount", Bill{Amount: record.NewMoney("100"), AmountDue: record.NewMoney("150.5")}, "amount_due"},
		{"negative amount", Bill{Amount: record.NewMoney("-1")}, "amount"},
		{"unknown bill type", Bill{BillType: "Canteen"}, "bill_type"},
		{"unknown payment mode", Bill{PaymentMode: "Cheque"}, "payment_mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bill.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			var verr *record.ValidationError
			if !errors.As(err, &verr) || len(verr.Fields[tt.field]) == 0 {
				t.Errorf("expected error on %s, got %v", tt.field, err)
			}
		})
	}
}
