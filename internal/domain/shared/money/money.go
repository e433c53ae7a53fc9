package money

import (
	"math"

	"stayflow/internal/domain/shared/fault"
)

// MaxAmount is the ceiling for a single per-date price entry. All amounts are
// plain decimals in the property's own currency; no conversion happens here.
const MaxAmount = 99999.99

// Round2 rounds to two decimal places, the precision carried on the wire.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Finite reports whether v is a usable number.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateAmount enforces the ledger bound 0 < amount <= MaxAmount.
func ValidateAmount(v float64) error {
	if !Finite(v) {
		return fault.InvalidInput("Amount must be a number")
	}
	if v <= 0 {
		return fault.InvalidInput("Amount must be greater than 0")
	}
	if v > MaxAmount {
		return fault.InvalidInput("Amount must not exceed %.2f", MaxAmount)
	}
	return nil
}

// ValidateNonNegative enforces the weekly-base bound amount >= 0.
func ValidateNonNegative(v float64) error {
	if !Finite(v) {
		return fault.InvalidInput("price must be a number")
	}
	if v < 0 {
		return fault.InvalidInput("price cannot be negative")
	}
	return nil
}
