package amortization

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/emi-tracker/pkg/errors"
)

func TestSolveRate_KnownInstallment(t *testing.T) {
	solution, err := SolveRate(dec("100000"), dec("3500"), 48, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, solution.AnnualRate.Equal(dec("28.2581")), "got %v", solution.AnnualRate)
	assert.False(t, solution.Saturated)
	assert.False(t, solution.Floored)

	// Feeding the solved rate back reproduces the installment.
	emi, err := CalculateEMI(dec("100000"), solution.AnnualRate, 48)
	require.NoError(t, err)
	assert.True(t, emi.Equal(dec("3500.00")), "got %v", emi)
}

func TestSolveRate_RoundTrip(t *testing.T) {
	principals := []string{"10000", "250000", "600000"}
	rates := []string{"0.5", "7.25", "9", "18", "36", "60"}
	tenures := []int{1, 12, 48, 120, 360}
	tolerance := dec("0.01")

	for _, p := range principals {
		for _, r := range rates {
			for _, n := range tenures {
				t.Run(fmt.Sprintf("P=%s R=%s n=%d", p, r, n), func(t *testing.T) {
					emi, err := CalculateEMI(dec(p), dec(r), n)
					require.NoError(t, err)

					solution, err := SolveRate(dec(p), emi, n, DefaultOptions())
					require.NoError(t, err)

					diff := solution.AnnualRate.Sub(dec(r)).Abs()
					assert.True(t, diff.LessThanOrEqual(tolerance),
						"solved %v, want %v (diff %v)", solution.AnnualRate, r, diff)
					assert.False(t, solution.Saturated)
				})
			}
		}
	}
}

func TestSolveRate_LongTenure(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		tenure    int
	}{
		{name: "200 years at 12%", principal: "100000", rate: "12", tenure: 2400},
		{name: "500 years at 6%", principal: "250000", rate: "6", tenure: 6000},
		{name: "1000 years at 24%", principal: "5000", rate: "24", tenure: 12000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emi, err := CalculateEMI(dec(tt.principal), dec(tt.rate), tt.tenure)
			require.NoError(t, err)

			solution, err := SolveRate(dec(tt.principal), emi, tt.tenure, DefaultOptions())
			require.NoError(t, err)

			assert.InDelta(t, dec(tt.rate).InexactFloat64(), solution.AnnualRate.InexactFloat64(), 0.01)
			assert.False(t, solution.Saturated)
			assert.False(t, solution.Floored)
		})
	}
}

func TestInstallmentGap_FiniteForAnyTenure(t *testing.T) {
	for _, r := range []float64{1e-300, 1e-12, 0.01, 0.5, 1.0} {
		for _, n := range []int{1, 360, 2400, 100000} {
			gap := installmentGap(100000, 1000, r, n)
			assert.False(t, math.IsNaN(gap) || math.IsInf(gap, 0), "r=%g n=%d gap=%g", r, n, gap)
		}
	}
}

func TestSolveRate_ZeroRateLoan(t *testing.T) {
	solution, err := SolveRate(dec("12000"), dec("1000"), 12, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, solution.AnnualRate.IsZero(), "got %v", solution.AnnualRate)
	assert.False(t, solution.Floored)
	assert.False(t, solution.Saturated)
}

func TestSolveRate_Floored(t *testing.T) {
	// 900 a month never repays 12000 in 12 months at any non-negative rate.
	solution, err := SolveRate(dec("12000"), dec("900"), 12, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, solution.Floored)
	assert.True(t, solution.AnnualRate.IsZero())
}

func TestSolveRate_SaturatesAtUpperBound(t *testing.T) {
	// Repaying five times the principal in one month needs 400% a month.
	solution, err := SolveRate(dec("1000"), dec("5000"), 1, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, solution.Saturated)
	assert.InDelta(t, 1200.0, solution.AnnualRate.InexactFloat64(), 0.0001)
}

func TestSolveRate_ConfigurableBound(t *testing.T) {
	opts := DefaultOptions()
	opts.SolverUpperBound = 0.05

	// True monthly rate is 10%, outside a 5% bracket.
	solution, err := SolveRate(dec("1000"), dec("1100"), 1, opts)
	require.NoError(t, err)
	assert.True(t, solution.Saturated)
	assert.InDelta(t, 60.0, solution.AnnualRate.InexactFloat64(), 0.0001)

	opts.SolverUpperBound = 1.0
	solution, err = SolveRate(dec("1000"), dec("1100"), 1, opts)
	require.NoError(t, err)
	assert.False(t, solution.Saturated)
	assert.True(t, solution.AnnualRate.Equal(dec("120")), "got %v", solution.AnnualRate)
}

func TestSolveRate_IterationsControlPrecision(t *testing.T) {
	coarse := DefaultOptions()
	coarse.SolverIterations = 5

	rough, err := SolveRate(dec("100000"), dec("3500"), 48, coarse)
	require.NoError(t, err)
	fine, err := SolveRate(dec("100000"), dec("3500"), 48, DefaultOptions())
	require.NoError(t, err)

	assert.False(t, rough.AnnualRate.Equal(fine.AnnualRate))
	// Five halvings of a 1200% bracket leave at most 37.5 points of error.
	assert.True(t, rough.AnnualRate.Sub(fine.AnnualRate).Abs().LessThanOrEqual(dec("37.5")))
}

func TestInstallmentGap_MonotonicInRate(t *testing.T) {
	for _, n := range []int{1, 12, 48, 360} {
		previous := installmentGap(100000, 3500, 0, n)
		for step := 1; step <= 1000; step++ {
			r := float64(step) / 1000
			current := installmentGap(100000, 3500, r, n)
			assert.Greater(t, current, previous, "n=%d r=%v", n, r)
			previous = current
		}
	}
}

func TestSolveRate_InvalidInput(t *testing.T) {
	tests := []struct {
		name        string
		principal   decimal.Decimal
		installment decimal.Decimal
		months      int
	}{
		{name: "zero principal", principal: decimal.Zero, installment: dec("100"), months: 12},
		{name: "zero installment", principal: dec("1000"), installment: decimal.Zero, months: 12},
		{name: "negative installment", principal: dec("1000"), installment: dec("-100"), months: 12},
		{name: "zero tenure", principal: dec("1000"), installment: dec("100"), months: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SolveRate(tt.principal, tt.installment, tt.months, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, customError.ErrInvalidInput))
		})
	}
}
