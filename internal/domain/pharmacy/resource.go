// Package pharmacy serves the medicine list, pharmacy bills and stock
// purchases.
package pharmacy

import (
	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

const MedicineKind = "medicine"

func MedicineDefinition() record.Definition[Medicine] {
	return record.Definition[Medicine]{
		Kind:   MedicineKind,
		Table:  "pharmacy_medicines",
		Title:  "Medicine",
		Unique: []string{"name"},
	}
}

func BillDefinition() record.Definition[Bill] {
	return record.Definition[Bill]{
		Kind:    "pharmacy-bill",
		Table:   "pharmacy_bills",
		Title:   "Pharmacy Bill",
		Unique:  []string{"bill_no"},
		Filters: map[string]string{"patient": "patient"},
		References: []record.Reference[Bill]{
			record.Ref("patient", common.PatientKind, func(b Bill) *int64 { return b.Patient }),
			record.Ref("doctor", common.EmployeeKind, func(b Bill) *int64 { return b.Doctor }),
			record.Ref("medicine", MedicineKind, func(b Bill) *int64 { return b.Medicine }),
		},
		Defaults: func(b *Bill) { b.PaymentMode = common.DefaultPaymentMode },
		Derive:   deriveBill,
		Derived:  []string{"net_amount"},
	}
}

func PurchaseDefinition() record.Definition[Purchase] {
	return record.Definition[Purchase]{
		Kind:    "purchase-medicine",
		Table:   "pharmacy_purchases",
		Title:   "Purchase Medicine",
		Filters: map[string]string{"medicine": "medicine"},
		References: []record.Reference[Purchase]{
			record.Ref("medicine", MedicineKind, func(p Purchase) *int64 { return p.Medicine }),
		},
		Defaults: func(p *Purchase) { p.PaymentMode = common.DefaultPaymentMode },
		Derive:   derivePurchase,
		Derived:  []string{"amount"},
	}
}

func Mount(b record.Backend, read, write *echo.Group) {
	record.Mount(b, MedicineDefinition(), read, write)
	record.Mount(b, BillDefinition(), read, write)
	record.Mount(b, PurchaseDefinition(), read, write)
}
