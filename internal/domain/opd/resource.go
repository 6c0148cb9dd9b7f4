// Package opd records outpatient department visits.
package opd

import (
	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

func Definition() record.Definition[Visit] {
	return record.Definition[Visit]{
		Kind:    "opd",
		Table:   "opd_visits",
		Title:   "OPD",
		Filters: map[string]string{"patient": "patient"},
		References: []record.Reference[Visit]{
			record.Ref("patient", common.PatientKind, func(o Visit) *int64 { return o.Patient }),
			record.Ref("doctor", common.EmployeeKind, func(o Visit) *int64 { return o.Doctor }),
		},
		Defaults: func(o *Visit) {
			o.ChargeCategory = "OPD Consultation Fees"
			o.PaymentMode = common.DefaultPaymentMode
			o.LiveConsult = "No"
		},
	}
}

func Mount(b record.Backend, read, write *echo.Group) {
	record.Mount(b, Definition(), read, write)
}
