package billing

import (
	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

// BillTypes name the department a counter bill is raised for.
var BillTypes = record.Choices{
	"Consultation", "Admission", "OPD", "IPD", "Appointment",
	"Pharmacy", "Pathology", "Radiology", "Operation",
}

// Bill is a billing-counter entry. AmountDue defaults to Amount when the
// counter leaves it blank; once stored it only changes when a request
// sets it.
type Bill struct {
	Patient        *int64       `json:"patient"`
	Doctor         *int64       `json:"doctor"`
	BillType       string       `json:"bill_type"`
	Amount         record.Money `json:"amount"`
	AmountDue      record.Money `json:"amount_due"`
	PaymentMode    string       `json:"payment_mode"`
	BillingAddress string       `json:"billing_address"`
}

func (b Bill) Validate() error {
	var v record.Validator
	v.OneOf("bill_type", b.BillType, BillTypes)
	v.OneOf("payment_mode", b.PaymentMode, common.PaymentModes)
	v.NonNegative("amount", b.Amount)
	v.NonNegative("amount_due", b.AmountDue)
	if b.Amount.Valid && b.AmountDue.Valid {
		v.Check(b.AmountDue.Decimal.LessThanOrEqual(b.Amount.Decimal), "amount_due", "Amount due cannot exceed the bill amount.")
	}
	return v.Err()
}

func fillDue(b *Bill) {
	if !b.AmountDue.Valid && b.Amount.Valid {
		b.AmountDue = b.Amount
	}
}
