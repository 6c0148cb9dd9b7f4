package pharmacy

import (
	"errors"
	"testing"

	"github.com/hospitalhq/hms/internal/platform/record"
)

func ptr(n int64) *int64 { return &n }

func TestMedicineValidate(t *testing.T) {
	if err := (Medicine{Name: "Paracetamol 500", Category: "Tablet", ReorderLevel: 20}).Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var verr *record.ValidationError
	if !errors.As(Medicine{Category: "Powder", ReorderLevel: -1}.Validate(), &verr) {
		t.Fatal("expected validation error")
	}
	for _, f := range []string{"name", "category", "reorder_level"} {
		if len(verr.Fields[f]) == 0 {
			t.Errorf("expected error on %s, got %v", f, verr.Fields)
		}
	}
}

func TestPurchaseValidate(t *testing.T) {
	p := Purchase{Medicine: ptr(1), Quantity: 10, PaymentMode: "UPI"}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var verr *record.ValidationError
	if !errors.As(Purchase{}.Validate(), &verr) {
		t.Fatal("expected validation error")
	}
	if len(verr.Fields["medicine"]) == 0 || len(verr.Fields["quantity"]) == 0 {
		t.Errorf("expected medicine and quantity errors, got %v", verr.Fields)
	}
}

func TestDerivePurchase(t *testing.T) {
	p := Purchase{Quantity: 3, PurchasePrice: record.NewMoney("40.25"), Tax: record.NewMoney("6")}
	derivePurchase(&p)
	if p.Amount.Decimal.String() != "126.75" {
		t.Errorf("expected 126.75, got %s", p.Amount.Decimal)
	}
}

func TestDeriveBill(t *testing.T) {
	b := Bill{Amount: record.NewMoney("500"), Discount: record.NewMoney("50")}
	deriveBill(&b)
	if b.NetAmount.Decimal.String() != "450" {
		t.Errorf("expected 450, got %s", b.NetAmount.Decimal)
	}
}
