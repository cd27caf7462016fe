package domain

import "github.com/shopspring/decimal"

// moneyScale is the number of fractional digits stored for monetary values.
const moneyScale = 2

// Pricing is the pair of components a property's total price is derived from.
type Pricing struct {
	Base decimal.Decimal
	Tax  decimal.Decimal
}

// NewPricing rounds both components to cents and rejects negative values.
func NewPricing(base, tax decimal.Decimal) (Pricing, error) {
	var errs []FieldError
	if base.IsNegative() {
		errs = append(errs, FieldError{Field: "base_price", Message: "must be >= 0"})
	}
	if tax.IsNegative() {
		errs = append(errs, FieldError{Field: "tax_amount", Message: "must be >= 0"})
	}
	if len(errs) > 0 {
		return Pricing{}, NewValidationErrors(errs)
	}
	return Pricing{Base: RoundMoney(base), Tax: RoundMoney(tax)}, nil
}

// Total returns base + tax.
func (p Pricing) Total() decimal.Decimal {
	return p.Base.Add(p.Tax)
}

// Equal reports whether both components match.
func (p Pricing) Equal(other Pricing) bool {
	return p.Base.Equal(other.Base) && p.Tax.Equal(other.Tax)
}

// RoundMoney rounds d half away from zero to two fractional digits.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
