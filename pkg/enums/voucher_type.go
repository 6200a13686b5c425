package enums

import "fmt"

// VoucherType maps to the voucher_type_enum enum in Postgres.
type VoucherType string

const (
	VoucherTypePayment    VoucherType = "payment"
	VoucherTypeReceipt    VoucherType = "receipt"
	VoucherTypeContra     VoucherType = "contra"
	VoucherTypeJournal    VoucherType = "journal"
	VoucherTypeSales      VoucherType = "sales"
	VoucherTypePurchase   VoucherType = "purchase"
	VoucherTypeDebitNote  VoucherType = "debit_note"
	VoucherTypeCreditNote VoucherType = "credit_note"
)

var validVoucherTypes = []VoucherType{
	VoucherTypePayment,
	VoucherTypeReceipt,
	VoucherTypeContra,
	VoucherTypeJournal,
	VoucherTypeSales,
	VoucherTypePurchase,
	VoucherTypeDebitNote,
	VoucherTypeCreditNote,
}

// IsValid reports whether the value matches the canonical voucher type enum.
func (t VoucherType) IsValid() bool {
	for _, candidate := range validVoucherTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// AffectsInventory reports whether posting a voucher of this type moves stock.
func (t VoucherType) AffectsInventory() bool {
	switch t {
	case VoucherTypeSales, VoucherTypePurchase, VoucherTypeDebitNote, VoucherTypeCreditNote:
		return true
	}
	return false
}

// StockDirection returns the movement type a voucher of this type produces.
// Sales and debit notes ship stock out; purchases and credit notes bring it in.
func (t VoucherType) StockDirection() MovementType {
	switch t {
	case VoucherTypeSales, VoucherTypeDebitNote:
		return MovementTypeOut
	case VoucherTypePurchase, VoucherTypeCreditNote:
		return MovementTypeIn
	}
	return ""
}

// ParseVoucherType converts raw input into VoucherType.
func ParseVoucherType(value string) (VoucherType, error) {
	for _, candidate := range validVoucherTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid voucher type %q", value)
}
