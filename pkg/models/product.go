package models

// TaxRates are the GST slabs a catalog product may carry, in percent.
var TaxRates = []float64{0, 5, 12, 18, 28}

// DefaultTaxRate is applied to new GST line items.
const DefaultTaxRate = 18

// ValidTaxRate reports whether rate is one of TaxRates.
func ValidTaxRate(rate float64) bool {
	for _, r := range TaxRates {
		if r == rate {
			return true
		}
	}
	return false
}

// Product is a catalog entry. Stock is informational only.
type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name" validate:"required"`
	HSNSAC       string  `json:"hsnSac"`
	CostPrice    float64 `json:"costPrice" validate:"gte=0"`
	SellingPrice float64 `json:"sellingPrice" validate:"gte=0"`
	TaxRate      float64 `json:"taxRate" validate:"taxrate"`
	Stock        *int    `json:"stock,omitempty"`
}
