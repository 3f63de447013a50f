package amortization

import (
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/emi-tracker/pkg/errors"
)

// ratePrecision bounds the decimal places kept for monthly rates and
// compound growth factors.
const ratePrecision = 28

var (
	one                = decimal.NewFromInt(1)
	monthlyRateDivisor = decimal.NewFromInt(12 * 100)
)

// MonthlyRate converts an annual nominal rate in percent to a monthly fraction: R / 12 / 100.
func MonthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.DivRound(monthlyRateDivisor, ratePrecision)
}

// CalculateEMI returns the fixed monthly installment for principal at
// annualRate percent over tenureMonths, rounded half-up to 2 decimal places.
//
//	EMI = P × r × (1+r)^n / ((1+r)^n − 1)
//
// A zero rate degenerates to straight-line repayment P / n.
func CalculateEMI(principal, annualRate decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, customError.WrapInvalidInput("principal must be greater than 0, got %s", principal)
	}
	if tenureMonths <= 0 {
		return decimal.Zero, customError.WrapInvalidInput("tenure must be at least 1 month, got %d", tenureMonths)
	}
	if annualRate.IsNegative() {
		return decimal.Zero, customError.WrapInvalidInput("interest rate must not be negative, got %s", annualRate)
	}

	n := decimal.NewFromInt(int64(tenureMonths))
	r := MonthlyRate(annualRate)
	if r.IsZero() {
		return principal.DivRound(n, 2), nil
	}

	growth := compound(one.Add(r), tenureMonths)
	emi := principal.Mul(r).Mul(growth).DivRound(growth.Sub(one), ratePrecision)

	return emi.Round(2), nil
}

// compound raises base to a positive integer power by squaring, truncating
// intermediates to ratePrecision places.
func compound(base decimal.Decimal, exp int) decimal.Decimal {
	result := one
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base).Truncate(ratePrecision)
		}
		base = base.Mul(base).Truncate(ratePrecision)
		exp >>= 1
	}
	return result
}
