package appointment

import (
	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

var (
	Priorities = record.Choices{"Normal", "High", "Very High", "Low"}
	Shifts     = record.Choices{"Morning", "Evening"}
)

type Appointment struct {
	Name            string       `json:"name"`
	Patient         *int64       `json:"patient"`
	Doctor          *int64       `json:"doctor"`
	Fees            record.Money `json:"fees"`
	Shift           string       `json:"shift"`
	AppointmentDate record.Date  `json:"appointment_date"`
	Priority        string       `json:"priority"`
	PaymentMode     string       `json:"payment_mode"`
	LiveConsult     string       `json:"live_consult"`
	Address         string       `json:"address"`
	Message         string       `json:"message"`
}

func (a Appointment) Validate() error {
	var v record.Validator
	v.MaxLen("name", a.Name, 100)
	v.NonNegative("fees", a.Fees)
	v.OneOf("shift", a.Shift, Shifts)
	v.OneOf("priority", a.Priority, Priorities)
	v.OneOf("payment_mode", a.PaymentMode, common.PaymentModes)
	v.OneOf("live_consult", a.LiveConsult, common.YesNo)
	return v.Err()
}

func defaults(a *Appointment) {
	a.Shift = "Morning"
	a.Priority = "Normal"
	a.PaymentMode = common.DefaultPaymentMode
	a.LiveConsult = "No"
}
