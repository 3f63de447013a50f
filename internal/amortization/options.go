// Package amortization is the loan engine: the EMI formula, the bisection
// rate solver, the reducing-balance schedule generator and the installment
// payment lifecycle. It performs no I/O; callers pass records in and persist
// whatever comes back.
package amortization

import "github.com/shopspring/decimal"

const (
	DefaultSolverUpperBound = 1.0 // 100% per month
	DefaultSolverIterations = 100
	DefaultCurrencySymbol   = "₹"
)

// DefaultPenaltyRate is the share of the installment charged once it turns overdue.
var DefaultPenaltyRate = decimal.NewFromFloat(0.02)

// Options carries the engine's tunables.
type Options struct {
	PenaltyRate      decimal.Decimal
	SolverUpperBound float64 // monthly rate
	SolverIterations int
	CurrencySymbol   string
}

func DefaultOptions() Options {
	return Options{
		PenaltyRate:      DefaultPenaltyRate,
		SolverUpperBound: DefaultSolverUpperBound,
		SolverIterations: DefaultSolverIterations,
		CurrencySymbol:   DefaultCurrencySymbol,
	}
}

// withDefaults fills zero solver fields. A zero PenaltyRate is a valid
// setting and is left alone.
func (o Options) withDefaults() Options {
	if o.SolverUpperBound <= 0 {
		o.SolverUpperBound = DefaultSolverUpperBound
	}
	if o.SolverIterations <= 0 {
		o.SolverIterations = DefaultSolverIterations
	}
	if o.CurrencySymbol == "" {
		o.CurrencySymbol = DefaultCurrencySymbol
	}
	return o
}
