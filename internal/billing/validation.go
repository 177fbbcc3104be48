package billing

import (
	"fmt"
	"math"
	"strings"

	"gstbill/internal/common"
)

// ValidateLineItem checks a resolved row. index is only used to name the
// offending field in the error.
func ValidateLineItem(index int, item LineItem) error {
	prefix := fmt.Sprintf("items[%d]", index)

	if strings.TrimSpace(item.Name) == "" {
		return common.NewValidationError(prefix+".name", "item name is required")
	}
	if !isFinite(item.Quantity) || item.Quantity <= 0 {
		return common.NewValidationError(prefix+".quantity", "quantity must be greater than zero")
	}
	if err := ValidatePrice(prefix+".price", item.UnitPrice); err != nil {
		return err
	}
	if err := ValidatePercent(prefix+".discount", item.DiscountPercent); err != nil {
		return err
	}
	return ValidatePercent(prefix+".gstRate", item.GSTRatePercent)
}

// ValidatePrice rejects negative or non-finite prices.
func ValidatePrice(field string, price float64) error {
	if !isFinite(price) || price < 0 {
		return common.NewValidationError(field, "price cannot be negative")
	}
	return nil
}

// ValidatePercent requires a value in [0, 100].
func ValidatePercent(field string, value float64) error {
	if !isFinite(value) || value < 0 || value > 100 {
		return common.NewValidationError(field, "must be between 0 and 100")
	}
	return nil
}

// ValidateOverallDiscount requires the invoice-level discount to be in [0, 100].
func ValidateOverallDiscount(percent float64) error {
	return ValidatePercent("overallDiscountPercent", percent)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
