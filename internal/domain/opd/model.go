package opd

import (
	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

// ChargeCategories are the billable outpatient services.
var ChargeCategories = record.Choices{"OPD Consultation Fees", "Blood Pressure Check", "Sugar Check", "Other Charges"}

// Visit is one outpatient consultation.
type Visit struct {
	Patient         *int64       `json:"patient"`
	Doctor          *int64       `json:"doctor"`
	AppointmentDate record.Date  `json:"appointment_date"`
	Symptoms        string       `json:"symptoms"`
	ChargeCategory  string       `json:"charge_category"`
	Charge          record.Money `json:"charge"`
	PaymentMode     string       `json:"payment_mode"`
	PaidAmount      record.Money `json:"paid_amount"`
	DueAmount       record.Money `json:"due_amount"`
	LiveConsult     string       `json:"live_consult"`
	Notes           string       `json:"notes"`
}

func (o Visit) Validate() error {
	var v record.Validator
	v.OneOf("charge_category", o.ChargeCategory, ChargeCategories)
	v.OneOf("payment_mode", o.PaymentMode, common.PaymentModes)
	v.OneOf("live_consult", o.LiveConsult, common.YesNo)
	v.NonNegative("charge", o.Charge)
	v.NonNegative("paid_amount", o.PaidAmount)
	v.NonNegative("due_amount", o.DueAmount)
	return v.Err()
}
