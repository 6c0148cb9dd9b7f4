package radiology

import (
	"github.com/shopspring/decimal"

	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

// Test is an imaging study ordered for a patient.
type Test struct {
	Patient      *int64       `json:"patient"`
	TestType     string       `json:"test_type"`
	TestName     string       `json:"test_name"`
	Category     string       `json:"category"`
	SubCategory  string       `json:"sub_category"`
	Method       string       `json:"method"`
	ReportTime   string       `json:"report_time"`
	ChargeName   string       `json:"charge_name"`
	ChargeAmount record.Money `json:"charge_amount"`
	Tax          record.Money `json:"tax"`
	TotalAmount  record.Money `json:"total_amount"`
}

func (t Test) Validate() error {
	var v record.Validator
	v.MaxLen("test_type", t.TestType, 50)
	v.MaxLen("test_name", t.TestName, 100)
	for field, value := range map[string]string{
		"category": t.Category, "sub_category": t.SubCategory, "method": t.Method,
		"report_time": t.ReportTime, "charge_name": t.ChargeName,
	} {
		v.MaxLen(field, value, 10)
	}
	v.NonNegative("charge_amount", t.ChargeAmount)
	v.NonNegative("tax", t.Tax)
	v.NonNegative("total_amount", t.TotalAmount)
	return v.Err()
}

func deriveTest(t *Test) {
	if !t.TotalAmount.Valid && t.ChargeAmount.Valid {
		t.TotalAmount = record.MoneyOf(t.ChargeAmount.Decimal.Add(t.Tax.Or(decimal.Zero)))
	}
}

// Bill charges a patient for radiology scans. BillNo is unique per tenant.
type Bill struct {
	Patient       *int64       `json:"patient"`
	Doctor        *int64       `json:"doctor"`
	BillNo        string       `json:"bill_no"`
	TestName      string       `json:"test_name"`
	ReportTime    string       `json:"report_time"`
	Amount        record.Money `json:"amount"`
	Discount      record.Money `json:"discount"`
	Tax           record.Money `json:"tax"`
	NetAmount     record.Money `json:"net_amount"`
	PaymentMode   string       `json:"payment_mode"`
	PaymentAmount record.Money `json:"payment_amount"`
}

func (b Bill) Validate() error {
	var v record.Validator
	v.MaxLen("bill_no", b.BillNo, 50)
	v.MaxLen("test_name", b.TestName, 100)
	v.OneOf("payment_mode", b.PaymentMode, common.PaymentModes)
	v.NonNegative("amount", b.Amount)
	v.NonNegative("discount", b.Discount)
	v.NonNegative("tax", b.Tax)
	v.NonNegative("net_amount", b.NetAmount)
	v.NonNegative("payment_amount", b.PaymentAmount)
	return v.Err()
}

// deriveBill computes net_amount = amount - discount + tax when blank.
func deriveBill(b *Bill) {
	if !b.NetAmount.Valid && b.Amount.Valid {
		b.NetAmount = record.MoneyOf(b.Amount.Decimal.Sub(b.Discount.Or(decimal.Zero)).Add(b.Tax.Or(decimal.Zero)))
	}
}
