package amortization

import (
	"math"

	"github.com/shopspring/decimal"

	customError "github.com/segyhp/emi-tracker/pkg/errors"
)

// halfMinorUnit is the installment shortfall below straight-line repayment
// that marks a solution as floored.
const halfMinorUnit = 0.005

// RateSolution is the result of inverting the EMI formula.
type RateSolution struct {
	// AnnualRate is the nominal annual rate in percent, 4 decimal places.
	AnnualRate decimal.Decimal
	// MonthlyRate is the final bisection midpoint.
	MonthlyRate float64
	// Saturated reports that the bracket never moved off the upper bound:
	// the true rate is at or beyond Options.SolverUpperBound and AnnualRate
	// is only the ceiling.
	Saturated bool
	// Floored reports that the installment is below straight-line repayment
	// P / n, so no non-negative rate reproduces it and AnnualRate is ~0.
	Floored bool
}

// SolveRate finds the annual rate R such that CalculateEMI(principal, R, tenureMonths)
// is approximately installment. It bisects the monthly rate on
// [0, opts.SolverUpperBound] for opts.SolverIterations steps, relying on the
// installment being strictly increasing in the rate. It never fails on
// non-convergence; see RateSolution.Saturated and RateSolution.Floored.
func SolveRate(principal, installment decimal.Decimal, tenureMonths int, opts Options) (RateSolution, error) {
	if !principal.IsPositive() {
		return RateSolution{}, customError.WrapInvalidInput("principal must be greater than 0, got %s", principal)
	}
	if !installment.IsPositive() {
		return RateSolution{}, customError.WrapInvalidInput("installment must be greater than 0, got %s", installment)
	}
	if tenureMonths <= 0 {
		return RateSolution{}, customError.WrapInvalidInput("tenure must be at least 1 month, got %d", tenureMonths)
	}
	opts = opts.withDefaults()

	p := principal.InexactFloat64()
	e := installment.InexactFloat64()

	low, high := 0.0, opts.SolverUpperBound
	mid := 0.0
	for i := 0; i < opts.SolverIterations; i++ {
		mid = (low + high) / 2
		if installmentGap(p, e, mid, tenureMonths) > 0 {
			high = mid
		} else {
			low = mid
		}
	}

	return RateSolution{
		AnnualRate:  decimal.NewFromFloat(mid * 12 * 100).Round(4),
		MonthlyRate: mid,
		Saturated:   high == opts.SolverUpperBound,
		Floored:     installmentGap(p, e, 0, tenureMonths) >= halfMinorUnit,
	}, nil
}

// installmentGap is f(r) = P·r / (1 − (1+r)^−n) − E, with the removable
// singularity at r = 0 filled by P/n − E. The discount term is computed as
// −expm1(−n·log1p(r)), which stays finite for any tenure and keeps its
// precision as r approaches 0.
func installmentGap(p, e, r float64, n int) float64 {
	if r == 0 {
		return p/float64(n) - e
	}
	discount := -math.Expm1(-float64(n) * math.Log1p(r))
	return p*r/discount - e
}
