package enums

import "fmt"

// TaxCategory tags an account for the statutory tax registers.
type TaxCategory string

const (
	TaxCategoryNone TaxCategory = "none"
	TaxCategoryGST  TaxCategory = "gst"
	TaxCategoryTDS  TaxCategory = "tds"
	TaxCategoryTCS  TaxCategory = "tcs"
)

var validTaxCategories = []TaxCategory{
	TaxCategoryNone,
	TaxCategoryGST,
	TaxCategoryTDS,
	TaxCategoryTCS,
}

// IsValid reports whether the value matches the canonical tax category enum.
func (c TaxCategory) IsValid() bool {
	for _, candidate := range validTaxCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseTaxCategory converts raw input into TaxCategory.
func ParseTaxCategory(value string) (TaxCategory, error) {
	if value == "" {
		return TaxCategoryNone, nil
	}
	for _, candidate := range validTaxCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tax category %q", value)
}
