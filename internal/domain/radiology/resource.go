// Package radiology serves radiology tests and bills.
package radiology

import (
	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

func TestDefinition() record.Definition[Test] {
	return record.Definition[Test]{
		Kind:    "radiology",
		Table:   "radiology_tests",
		Title:   "Radiology",
		Filters: map[string]string{"patient": "patient"},
		References: []record.Reference[Test]{
			record.Ref("patient", common.PatientKind, func(t Test) *int64 { return t.Patient }),
		},
		Derive:  deriveTest,
		Derived: []string{"total_amount"},
	}
}

func BillDefinition() record.Definition[Bill] {
	return record.Definition[Bill]{
		Kind:    "radiology-bill",
		Table:   "radiology_bills",
		Title:   "Radiology Bill",
		Unique:  []string{"bill_no"},
		Filters: map[string]string{"patient": "patient"},
		References: []record.Reference[Bill]{
			record.Ref("patient", common.PatientKind, func(b Bill) *int64 { return b.Patient }),
			record.Ref("doctor", common.EmployeeKind, func(b Bill) *int64 { return b.Doctor }),
		},
		Defaults: func(b *Bill) { b.PaymentMode = common.DefaultPaymentMode },
		Derive:   deriveBill,
		Derived:  []string{"net_amount"},
	}
}

func Mount(b record.Backend, read, write *echo.Group) {
	record.Mount(b, TestDefinition(), read, write)
	record.Mount(b, BillDefinition(), read, write)
}
