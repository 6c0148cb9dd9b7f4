// Package appointment books patients in with a doctor.
package appointment

import (
	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

func Definition() record.Definition[Appointment] {
	return record.Definition[Appointment]{
		Kind:    "appointment",
		Table:   "appointments",
		Title:   "Appointment",
		Filters: map[string]string{"patient": "patient"},
		References: []record.Reference[Appointment]{
			record.Ref("patient", common.PatientKind, func(a Appointment) *int64 { return a.Patient }),
			record.Ref("doctor", common.EmployeeKind, func(a Appointment) *int64 { return a.Doctor }),
		},
		Defaults: defaults,
	}
}

func Mount(b record.Backend, read, write *echo.Group) {
	record.Mount(b, Definition(), read, write)
}
