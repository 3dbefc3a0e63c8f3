package budget

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PercentUsed returns spent/limit as a percentage rounded to two decimals.
// Negative spending counts as zero and a non-positive limit yields 0.
func PercentUsed(spent, limit decimal.Decimal) float64 {
	if !limit.IsPositive() || !spent.IsPositive() {
		return 0
	}
	return spent.Div(limit).Mul(hundred).Round(2).InexactFloat64()
}

// PercentUsedFloat is PercentUsed for float inputs. Non-finite values count as zero.
func PercentUsedFloat(spent, limit float64) float64 {
	if !finite(spent) || !finite(limit) {
		return 0
	}
	return PercentUsed(decimal.NewFromFloat(spent), decimal.NewFromFloat(limit))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
