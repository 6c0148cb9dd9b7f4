// Package billing serves the billing counter.
package billing

import (
	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

func Definition() record.Definition[Bill] {
	return record.Definition[Bill]{
		Kind:    "billing",
		Table:   "billing_bills",
		Title:   "Billing",
		Filters: map[string]string{"patient": "patient"},
		References: []record.Reference[Bill]{
			record.Ref("patient", common.PatientKind, func(b Bill) *int64 { return b.Patient }),
			record.Ref("doctor", common.EmployeeKind, func(b Bill) *int64 { return b.Doctor }),
		},
		Defaults: func(b *Bill) {
			b.BillType = "Consultation"
			b.PaymentMode = common.DefaultPaymentMode
		},
		Derive: fillDue,
	}
}

func Mount(b record.Backend, read, write *echo.Group) {
	record.Mount(b, Definition(), read, write)
}
