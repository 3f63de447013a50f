package amortization

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/emi-tracker/internal/domain"
)

func scheduleFor(t *testing.T) []*domain.Installment {
	t.Helper()
	loan := resolvedLoan(t, "600000", domain.KnownRate{AnnualRate: dec("9")}, 12, date(2024, 1, 31))
	installments, _, err := GenerateSchedule(loan, DefaultOptions())
	require.NoError(t, err)
	return installments
}

func TestPenalty(t *testing.T) {
	assert.True(t, Penalty(dec("52470.89"), dec("0.02")).Equal(dec("1049.42")))
	assert.True(t, Penalty(dec("100.25"), dec("0.02")).Equal(dec("2.01"))) // 2.005 rounds up
	assert.True(t, Penalty(dec("100"), decimal.Zero).IsZero())
}

func TestSweepOverdue(t *testing.T) {
	installments := scheduleFor(t)

	// Periods due Jan 31, Feb 29 and Mar 31 are before Apr 1.
	changed := SweepOverdue(installments, date(2024, 4, 1), DefaultPenaltyRate)
	require.Len(t, changed, 3)

	for i, installment := range installments {
		if i < 3 {
			assert.Equal(t, domain.InstallmentStatusOverdue, installment.Status)
			assert.True(t, installment.PenaltyAmount.Equal(dec("1049.42")))
			assert.True(t, installment.TotalDue.Equal(dec("53520.31")))
			continue
		}
		assert.Equal(t, domain.InstallmentStatusPending, installment.Status)
		assert.True(t, installment.PenaltyAmount.IsZero())
	}
}

func TestSweepOverdue_DueTodayIsNotOverdue(t *testing.T) {
	installments := scheduleFor(t)

	changed := SweepOverdue(installments, date(2024, 1, 31), DefaultPenaltyRate)
	assert.Empty(t, changed)
	assert.Equal(t, domain.InstallmentStatusPending, installments[0].Status)
}

func TestSweepOverdue_Idempotent(t *testing.T) {
	installments := scheduleFor(t)
	today := date(2024, 6, 15)

	first := SweepOverdue(installments, today, DefaultPenaltyRate)
	require.Len(t, first, 5)

	snapshot := make([]domain.Installment, len(installments))
	for i, installment := range installments {
		snapshot[i] = *installment
	}

	second := SweepOverdue(installments, today, DefaultPenaltyRate)
	assert.Empty(t, second)
	for i, installment := range installments {
		assert.Equal(t, snapshot[i], *installment)
	}
}

func TestSweepOverdue_SkipsPaid(t *testing.T) {
	installments := scheduleFor(t)
	outcome := MarkPaid(installments[0], date(2024, 1, 30))
	require.True(t, outcome.Success)

	changed := SweepOverdue(installments, date(2024, 3, 1), DefaultPenaltyRate)
	require.Len(t, changed, 1)
	assert.Equal(t, 2, changed[0].Sequence)
	assert.Equal(t, domain.InstallmentStatusPaid, installments[0].Status)
	assert.True(t, installments[0].PenaltyAmount.IsZero())
}

func TestMarkPaid(t *testing.T) {
	tests := []struct {
		name            string
		setup           func(*domain.Installment)
		expectedSuccess bool
		expectedReason  string
		expectedTotal   string
		expectedPenalty string
	}{
		{
			name:            "pending installment",
			setup:           func(*domain.Installment) {},
			expectedSuccess: true,
			expectedTotal:   "52470.89",
			expectedPenalty: "0",
		},
		{
			name: "overdue installment keeps its penalty",
			setup: func(i *domain.Installment) {
				SweepOverdue([]*domain.Installment{i}, date(2024, 2, 10), DefaultPenaltyRate)
			},
			expectedSuccess: true,
			expectedTotal:   "53520.31",
			expectedPenalty: "1049.42",
		},
		{
			name: "already paid",
			setup: func(i *domain.Installment) {
				MarkPaid(i, date(2024, 1, 20))
			},
			expectedSuccess: false,
			expectedReason:  domain.PaymentReasonAlreadyPaid,
			expectedTotal:   "52470.89",
			expectedPenalty: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			installment := scheduleFor(t)[0]
			tt.setup(installment)

			outcome := MarkPaid(installment, date(2024, 2, 15))

			assert.Equal(t, tt.expectedSuccess, outcome.Success)
			assert.Equal(t, tt.expectedReason, outcome.Reason)
			assert.NotEmpty(t, outcome.Message)
			assert.Equal(t, domain.InstallmentStatusPaid, installment.Status)
			assert.True(t, installment.TotalDue.Equal(dec(tt.expectedTotal)), "total due %v", installment.TotalDue)
			assert.True(t, installment.PenaltyAmount.Equal(dec(tt.expectedPenalty)))
			require.NotNil(t, installment.PaidDate)
		})
	}
}

func TestMarkPaid_AlreadyPaidDoesNotMutate(t *testing.T) {
	installment := scheduleFor(t)[0]
	require.True(t, MarkPaid(installment, date(2024, 1, 20)).Success)
	before := *installment

	outcome := MarkPaid(installment, date(2024, 3, 1))

	assert.False(t, outcome.Success)
	assert.Equal(t, "Installment is already paid.", outcome.Message)
	assert.Equal(t, before, *installment)
	assert.Equal(t, date(2024, 1, 20), *installment.PaidDate)
}

func TestMarkPaid_NotFound(t *testing.T) {
	outcome := MarkPaid(nil, date(2024, 3, 1))

	assert.False(t, outcome.Success)
	assert.Equal(t, domain.PaymentReasonNotFound, outcome.Reason)
	assert.Equal(t, "Installment not found.", outcome.Message)
}

func TestIsFullyPaid(t *testing.T) {
	installments := scheduleFor(t)
	assert.False(t, IsFullyPaid(installments))
	assert.False(t, IsFullyPaid(nil))

	for _, installment := range installments {
		MarkPaid(installment, date(2025, 1, 1))
	}
	assert.True(t, IsFullyPaid(installments))
}

func TestSummarize(t *testing.T) {
	active := &domain.Loan{ID: uuid.New(), Principal: dec("600000"), Status: domain.LoanStatusActive}
	closed := &domain.Loan{ID: uuid.New(), Principal: dec("1000"), Status: domain.LoanStatusClosed}

	installments := []*domain.Installment{
		{LoanID: active.ID, Status: domain.InstallmentStatusPaid, InstallmentAmount: dec("100"), PrincipalComponent: dec("80"), PenaltyAmount: decimal.Zero, TotalDue: dec("100")},
		{LoanID: active.ID, Status: domain.InstallmentStatusPaid, InstallmentAmount: dec("100"), PrincipalComponent: dec("82"), PenaltyAmount: dec("2"), TotalDue: dec("102")},
		{LoanID: active.ID, Status: domain.InstallmentStatusOverdue, InstallmentAmount: dec("100"), PrincipalComponent: dec("84"), PenaltyAmount: dec("2"), TotalDue: dec("102")},
		{LoanID: active.ID, Status: domain.InstallmentStatusPending, InstallmentAmount: dec("100"), PrincipalComponent: dec("86"), PenaltyAmount: decimal.Zero, TotalDue: dec("100")},
		{LoanID: active.ID, Status: domain.InstallmentStatusPending, InstallmentAmount: dec("99.5"), PrincipalComponent: dec("90"), PenaltyAmount: decimal.Zero, TotalDue: dec("99.5")},
		{LoanID: closed.ID, Status: domain.InstallmentStatusPaid, InstallmentAmount: dec("1000"), PrincipalComponent: dec("1000"), PenaltyAmount: decimal.Zero, TotalDue: dec("1000")},
	}

	summary := Summarize([]*domain.Loan{active, closed}, installments)

	assert.True(t, summary.TotalPending.Equal(dec("199.5")), "pending %v", summary.TotalPending)
	assert.True(t, summary.TotalOverdue.Equal(dec("100")), "overdue %v", summary.TotalOverdue)
	assert.True(t, summary.TotalPenalty.Equal(dec("4")), "penalty %v", summary.TotalPenalty)
	assert.True(t, summary.TotalPaid.Equal(dec("1202")), "paid %v", summary.TotalPaid)
	assert.True(t, summary.OutstandingBalance.Equal(dec("599838")), "outstanding %v", summary.OutstandingBalance)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil, nil)

	assert.True(t, summary.TotalPending.IsZero())
	assert.True(t, summary.OutstandingBalance.IsZero())
}
