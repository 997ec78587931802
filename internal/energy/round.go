package energy

import "github.com/shopspring/decimal"

// Precision is the number of decimal places every derived value is rounded to.
const Precision = 2

// Round rounds v to Precision places, half away from zero, on its shortest decimal
// representation. Binary rounding would turn 1.005 into 1.00; this returns 1.01.
func Round(v float64) float64 {
	return RoundDecimal(decimal.NewFromFloat(v))
}

// RoundDecimal rounds d to Precision places and converts it back to float64.
func RoundDecimal(d decimal.Decimal) float64 {
	return d.Round(Precision).InexactFloat64()
}
