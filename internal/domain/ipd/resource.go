// Package ipd serves inpatient admissions and their bills.
package ipd

import (
	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

func AdmissionDefinition() record.Definition[Admission] {
	return record.Definition[Admission]{
		Kind:    "ipd",
		Table:   "ipd_admissions",
		Title:   "IPD",
		Filters: map[string]string{"patient": "patient"},
		References: []record.Reference[Admission]{
			record.Ref("patient", common.PatientKind, func(a Admission) *int64 { return a.Patient }),
			record.Ref("doctor", common.EmployeeKind, func(a Admission) *int64 { return a.Doctor }),
		},
		Defaults: func(a *Admission) { a.Casualty = "No" },
	}
}

func BillDefinition() record.Definition[Bill] {
	return record.Definition[Bill]{
		Kind:    "ipd-bill",
		Table:   "ipd_bills",
		Title:   "IPD Bill",
		Filters: map[string]string{"patient": "patient"},
		References: []record.Reference[Bill]{
			record.Ref("patient", common.PatientKind, func(b Bill) *int64 { return b.Patient }),
			record.Ref("doctor", common.EmployeeKind, func(b Bill) *int64 { return b.Doctor }),
		},
		Defaults: func(b *Bill) {
			b.MedicineCategory = "Tablet"
			b.PaymentMode = common.DefaultPaymentMode
		},
		Derive:  fillAmounts,
		Derived: []string{"amount", "due_amount"},
	}
}

func Mount(b record.Backend, read, write *echo.Group) {
	record.Mount(b, AdmissionDefinition(), read, write)
	record.Mount(b, BillDefinition(), read, write)
}
