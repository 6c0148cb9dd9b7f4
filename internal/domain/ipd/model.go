package ipd

import (
	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

// Admission is an inpatient stay with the vitals taken on arrival.
type Admission struct {
	Patient              *int64 `json:"patient"`
	Doctor               *int64 `json:"doctor"`
	Height               string `json:"height"`
	BP                   string `json:"bp"`
	Pulse                string `json:"pulse"`
	Temperature          string `json:"temperature"`
	Respiration          string `json:"respiration"`
	Symptoms             string `json:"symptoms"`
	PreviousMedicalIssue string `json:"previous_medical_issue"`
	BedNo                string `json:"bed_no"`
	Ward                 string `json:"ward"`
	Floor                string `json:"floor"`
	Casualty             string `json:"casualty"`
	Notes                string `json:"notes"`
}

func (a Admission) Validate() error {
	var v record.Validator
	for field, value := range map[string]string{
		"height": a.Height, "bp": a.BP, "pulse": a.Pulse, "temperature": a.Temperature,
		"respiration": a.Respiration, "bed_no": a.BedNo, "ward": a.Ward, "floor": a.Floor,
	} {
		v.MaxLen(field, value, 10)
	}
	v.OneOf("casualty", a.Casualty, common.YesNo)
	return v.Err()
}

// MedicineCategories classify a line on an inpatient bill.
var MedicineCategories = record.Choices{
	"Consultation Charges", "Pathology Charges", "Radiology Charges", "Misc.Charges",
	"Tablet", "Syrup", "Capsule", "Injection", "Ointment", "Cream", "Surgical",
	"Drops", "Inhalers", "Implants / Patches", "Liquid", "Preparations", "Diaper",
}

// Bill is an inpatient bill line.
type Bill struct {
	Patient          *int64       `json:"patient"`
	Doctor           *int64       `json:"doctor"`
	MedicineCategory string       `json:"medicine_category"`
	MedicineName     string       `json:"medicine_name"`
	Cost             record.Money `json:"cost"`
	Qty              record.Money `json:"qty"`
	Amount           record.Money `json:"amount"`
	Tax              record.Money `json:"tax"`
	TaxAmount        record.Money `json:"tax_amount"`
	Discount         record.Money `json:"discount"`
	TotalAmount      record.Money `json:"total_amount"`
	Subtotal         record.Money `json:"subtotal"`
	PaymentMode      string       `json:"payment_mode"`
	NetAmount        record.Money `json:"net_amount"`
	PaidAmount       record.Money `json:"paid_amount"`
	DueAmount        record.Money `json:"due_amount"`
}

func (b Bill) Validate() error {
	var v record.Validator
	v.OneOf("medicine_category", b.MedicineCategory, MedicineCategories)
	v.OneOf("payment_mode", b.PaymentMode, common.PaymentModes)
	v.MaxLen("medicine_name", b.MedicineName, 100)
	for field, m := range map[string]record.Money{
		"cost": b.Cost, "qty": b.Qty, "amount": b.Amount, "tax": b.Tax,
		"tax_amount": b.TaxAmount, "discount": b.Discount, "total_amount": b.TotalAmount,
		"subtotal": b.Subtotal, "net_amount": b.NetAmount, "paid_amount": b.PaidAmount,
		"due_amount": b.DueAmount,
	} {
		v.NonNegative(field, m)
	}
	return v.Err()
}

// fillAmounts derives amount = cost * qty and
// due_amount = net_amount - paid_amount when they were left blank.
func fillAmounts(b *Bill) {
	if !b.Amount.Valid && b.Cost.Valid && b.Qty.Valid {
		b.Amount = record.MoneyOf(b.Cost.Decimal.Mul(b.Qty.Decimal))
	}
	if !b.DueAmount.Valid && b.NetAmount.Valid && b.PaidAmount.Valid {
		b.DueAmount = record.MoneyOf(b.NetAmount.Decimal.Sub(b.PaidAmount.Decimal))
	}
}
