package amortization

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/emi-tracker/internal/domain"
)

// Summarize projects loans and their installments onto the dashboard
// totals. Outstanding balance only counts active loans: their principal
// minus the principal already repaid through paid installments.
func Summarize(loans []*domain.Loan, installments []*domain.Installment) domain.DashboardSummary {
	summary := domain.DashboardSummary{
		TotalPending:       decimal.Zero,
		TotalOverdue:       decimal.Zero,
		TotalPenalty:       decimal.Zero,
		TotalPaid:          decimal.Zero,
		OutstandingBalance: decimal.Zero,
	}

	active := make(map[uuid.UUID]bool, len(loans))
	for _, loan := range loans {
		if loan.Status != domain.LoanStatusActive {
			continue
		}
		active[loan.ID] = true
		summary.OutstandingBalance = summary.OutstandingBalance.Add(loan.Principal)
	}

	for _, installment := range installments {
		summary.TotalPenalty = summary.TotalPenalty.Add(installment.PenaltyAmount)

		switch installment.Status {
		case domain.InstallmentStatusPending:
			summary.TotalPending = summary.TotalPending.Add(installment.InstallmentAmount)
		case domain.InstallmentStatusOverdue:
			summary.TotalOverdue = summary.TotalOverdue.Add(installment.InstallmentAmount)
		case domain.InstallmentStatusPaid:
			summary.TotalPaid = summary.TotalPaid.Add(installment.TotalDue)
			if active[installment.LoanID] {
				summary.OutstandingBalance = summary.OutstandingBalance.Sub(installment.PrincipalComponent)
			}
		}
	}

	return summary
}
