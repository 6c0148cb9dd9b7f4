package pharmacy

import (
	"github.com/shopspring/decimal"

	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

// Categories of stocked medicines.
var Categories = record.Choices{
	"Tablet", "Syrup", "Capsule", "Injection", "Ointment", "Cream", "Surgical",
	"Drops", "Inhalers", "Implants / Patches", "Liquid", "Preparations", "Diaper",
}

// Medicine is an entry in the pharmacy's medicine list.
type Medicine struct {
	Name         string       `json:"name"`
	Category     string       `json:"category"`
	Company      string       `json:"company"`
	Composition  string       `json:"composition"`
	Group        string       `json:"group"`
	Unit         string       `json:"unit"`
	ReorderLevel int          `json:"reorder_level"`
	Price        record.Money `json:"price"`
	Tax          record.Money `json:"tax"`
	Note         string       `json:"note"`
}

func (m Medicine) Validate() error {
	var v record.Validator
	v.Required("name", m.Name)
	v.MaxLen("name", m.Name, 100)
	v.OneOf("category", m.Category, Categories)
	v.NonNegativeInt("reorder_level", m.ReorderLevel)
	v.NonNegative("price", m.Price)
	v.NonNegative("tax", m.Tax)
	return v.Err()
}

// Bill is a pharmacy sale.
type Bill struct {
	BillNo      string       `json:"bill_no"`
	Patient     *int64       `json:"patient"`
	Doctor      *int64       `json:"doctor"`
	Medicine    *int64       `json:"medicine"`
	Quantity    int          `json:"quantity"`
	Amount      record.Money `json:"amount"`
	Discount    record.Money `json:"discount"`
	Tax         record.Money `json:"tax"`
	NetAmount   record.Money `json:"net_amount"`
	PaymentMode string       `json:"payment_mode"`
	PaidAmount  record.Money `json:"paid_amount"`
	Note        string       `json:"note"`
}

func (b Bill) Validate() error {
	var v record.Validator
	v.MaxLen("bill_no", b.BillNo, 50)
	v.NonNegativeInt("quantity", b.Quantity)
	v.OneOf("payment_mode", b.PaymentMode, common.PaymentModes)
	v.NonNegative("amount", b.Amount)
	v.NonNegative("discount", b.Discount)
	v.NonNegative("tax", b.Tax)
	v.NonNegative("net_amount", b.NetAmount)
	v.NonNegative("paid_amount", b.PaidAmount)
	return v.Err()
}

func deriveBill(b *Bill) {
	if !b.NetAmount.Valid && b.Amount.Valid {
		b.NetAmount = record.MoneyOf(b.Amount.Decimal.Sub(b.Discount.Or(decimal.Zero)).Add(b.Tax.Or(decimal.Zero)))
	}
}

// Purchase is stock bought from a supplier.
type Purchase struct {
	Medicine      *int64       `json:"medicine"`
	Supplier      string       `json:"supplier"`
	BatchNo       string       `json:"batch_no"`
	ExpiryDate    record.Date  `json:"expiry_date"`
	Quantity      int          `json:"quantity"`
	PurchasePrice record.Money `json:"purchase_price"`
	Tax           record.Money `json:"tax"`
	Amount        record.Money `json:"amount"`
	PaymentMode   string       `json:"payment_mode"`
	Note          string       `json:"note"`
}

func (p Purchase) Validate() error {
	var v record.Validator
	v.RequiredRef("medicine", p.Medicine)
	v.Check(p.Quantity > 0, "quantity", "Ensure this value is greater than or equal to 1.")
	v.MaxLen("batch_no", p.BatchNo, 50)
	v.OneOf("payment_mode", p.PaymentMode, common.PaymentModes)
	v.NonNegative("purchase_price", p.PurchasePrice)
	v.NonNegative("tax", p.Tax)
	v.NonNegative("amount", p.Amount)
	return v.Err()
}

// derivePurchase computes amount = purchase_price * quantity + tax when blank.
func derivePurchase(p *Purchase) {
	if !p.Amount.Valid && p.PurchasePrice.Valid {
		total := p.PurchasePrice.Decimal.Mul(decimal.NewFromInt(int64(p.Quantity)))
		p.Amount = record.MoneyOf(total.Add(p.Tax.Or(decimal.Zero)))
	}
}
