package amortization

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/emi-tracker/internal/domain"
	"github.com/segyhp/emi-tracker/pkg/utils"
)

// Penalty is the late fee charged on amount at rate, rounded to 2 places.
func Penalty(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(2)
}

// SweepOverdue transitions every pending installment whose due date is
// before today to overdue, charging penaltyRate of its installment amount.
// Records in any other status are left untouched, so running the sweep again
// is a no-op. It returns the installments it changed.
func SweepOverdue(installments []*domain.Installment, today time.Time, penaltyRate decimal.Decimal) []*domain.Installment {
	var changed []*domain.Installment
	for _, installment := range installments {
		if installment.Status != domain.InstallmentStatusPending {
			continue
		}
		if !utils.IsDateOverdue(installment.DueDate, today) {
			continue
		}

		installment.Status = domain.InstallmentStatusOverdue
		installment.PenaltyAmount = Penalty(installment.InstallmentAmount, penaltyRate)
		installment.TotalDue = installment.InstallmentAmount.Add(installment.PenaltyAmount)
		changed = append(changed, installment)
	}
	return changed
}

// MarkPaid settles installment on today. A nil installment reports not
// found; an installment that is already paid is left as is. Neither case is
// an error.
func MarkPaid(installment *domain.Installment, today time.Time) domain.PaymentOutcome {
	if installment == nil {
		return domain.PaymentOutcome{
			Success: false,
			Message: "Installment not found.",
			Reason:  domain.PaymentReasonNotFound,
		}
	}

	if installment.Status == domain.InstallmentStatusPaid {
		return domain.PaymentOutcome{
			Success: false,
			Message: "Installment is already paid.",
			Reason:  domain.PaymentReasonAlreadyPaid,
		}
	}

	paidDate := utils.DateOnly(today)
	installment.Status = domain.InstallmentStatusPaid
	installment.PaidDate = &paidDate
	// Overdue installments keep their penalty in the total.
	if installment.PenaltyAmount.IsZero() {
		installment.TotalDue = installment.InstallmentAmount
	}

	return domain.PaymentOutcome{
		Success: true,
		Message: "Installment marked as paid.",
	}
}

// IsFullyPaid reports whether every installment of a schedule is paid.
func IsFullyPaid(installments []*domain.Installment) bool {
	for _, installment := range installments {
		if installment.Status != domain.InstallmentStatusPaid {
			return false
		}
	}
	return len(installments) > 0
}
