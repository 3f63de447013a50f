package amortization

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/emi-tracker/internal/domain"
	customError "github.com/segyhp/emi-tracker/pkg/errors"
	"github.com/segyhp/emi-tracker/pkg/utils"
)

// ResolveTerms fills whichever of InterestRate and InstallmentAmount the
// application's terms left unknown and returns the new, not yet persisted,
// loan. The returned RateSolution is zero when the rate was supplied.
func ResolveTerms(app *domain.LoanApplication, opts Options) (*domain.Loan, RateSolution, error) {
	if app == nil {
		return nil, RateSolution{}, customError.WrapInvalidInput("loan application is required")
	}
	if !app.Principal.IsPositive() {
		return nil, RateSolution{}, customError.WrapInvalidInput("principal must be greater than 0, got %s", app.Principal)
	}
	if app.TenureMonths <= 0 {
		return nil, RateSolution{}, customError.WrapInvalidInput("tenure must be at least 1 month, got %d", app.TenureMonths)
	}
	if app.StartDate.IsZero() {
		return nil, RateSolution{}, customError.WrapInvalidInput("start date is required")
	}

	loan := &domain.Loan{
		ID:            uuid.New(),
		Name:          app.Name,
		Type:          app.Type,
		BorrowerEmail: app.BorrowerEmail,
		Principal:     app.Principal,
		TenureMonths:  app.TenureMonths,
		StartDate:     utils.DateOnly(app.StartDate),
		Status:        domain.LoanStatusActive,
	}

	var solution RateSolution
	switch terms := app.Terms.(type) {
	case domain.KnownRate:
		emi, err := CalculateEMI(app.Principal, terms.AnnualRate, app.TenureMonths)
		if err != nil {
			return nil, RateSolution{}, err
		}
		loan.InterestRate = terms.AnnualRate
		loan.InstallmentAmount = emi
	case domain.KnownInstallment:
		s, err := SolveRate(app.Principal, terms.Amount, app.TenureMonths, opts)
		if err != nil {
			return nil, RateSolution{}, err
		}
		solution = s
		loan.InterestRate = s.AnnualRate
		loan.InstallmentAmount = terms.Amount.Round(2)
	default:
		return nil, RateSolution{}, customError.WrapInvalidInput("either an interest rate or an installment amount is required")
	}

	return loan, solution, nil
}

// GenerateSchedule builds the full reducing-balance schedule of a resolved
// loan, one Installment per month, each paired with a pending email Reminder.
//
// Interest and principal are rounded to 2 places every period. The final
// period repays whatever principal is left, so its installment absorbs the
// rounding drift and the closing balance is exactly zero.
//
// The loan is not modified. Loan.InstallmentAmount stays the fixed amount of
// periods 1..n-1 even when the last period differs; the adjusted figure lives
// only on the final Installment.
func GenerateSchedule(loan *domain.Loan, opts Options) ([]*domain.Installment, []*domain.Reminder, error) {
	if err := validateResolvedLoan(loan); err != nil {
		return nil, nil, err
	}
	opts = opts.withDefaults()

	monthlyRate := MonthlyRate(loan.InterestRate)
	installments := make([]*domain.Installment, 0, loan.TenureMonths)
	reminders := make([]*domain.Reminder, 0, loan.TenureMonths)
	outstanding := loan.Principal

	for period := 1; period <= loan.TenureMonths; period++ {
		interest := outstanding.Mul(monthlyRate).Round(2)
		amount := loan.InstallmentAmount
		principal := amount.Sub(interest).Round(2)

		if period == loan.TenureMonths {
			principal = outstanding
			amount = principal.Add(interest)
		}

		installment := &domain.Installment{
			ID:                 uuid.New(),
			LoanID:             loan.ID,
			Sequence:           period,
			DueDate:            utils.CalculateDueDate(loan.StartDate, period),
			InstallmentAmount:  amount,
			PrincipalComponent: principal,
			InterestComponent:  interest,
			PenaltyAmount:      decimal.Zero,
			TotalDue:           amount,
			OutstandingBefore:  outstanding,
			OutstandingAfter:   outstanding.Sub(principal),
			Status:             domain.InstallmentStatusPending,
			CreatedAt:          loan.CreatedAt,
		}
		installments = append(installments, installment)
		reminders = append(reminders, NewReminder(loan, installment, opts))

		outstanding = installment.OutstandingAfter
	}

	return installments, reminders, nil
}

func validateResolvedLoan(loan *domain.Loan) error {
	if loan == nil {
		return customError.WrapInvalidInput("loan is required")
	}
	if !loan.Principal.IsPositive() {
		return customError.WrapInvalidInput("principal must be greater than 0, got %s", loan.Principal)
	}
	if loan.TenureMonths <= 0 {
		return customError.WrapInvalidInput("tenure must be at least 1 month, got %d", loan.TenureMonths)
	}
	if loan.InterestRate.IsNegative() {
		return customError.WrapInvalidInput("interest rate must not be negative, got %s", loan.InterestRate)
	}
	if !loan.InstallmentAmount.IsPositive() {
		return customError.WrapInvalidInput("installment amount must be resolved before generating a schedule")
	}
	return nil
}

// NewReminder renders the email reminder for one installment of loan.
func NewReminder(loan *domain.Loan, installment *domain.Installment, opts Options) *domain.Reminder {
	opts = opts.withDefaults()

	return &domain.Reminder{
		ID:            uuid.New(),
		InstallmentID: installment.ID,
		LoanID:        loan.ID,
		Recipient:     loan.BorrowerEmail,
		ReminderDate:  installment.DueDate,
		Subject:       fmt.Sprintf("EMI Payment Reminder - %s", loan.Name),
		Message:       ReminderMessage(loan.Name, installment, opts),
		Channel:       domain.ReminderChannelEmail,
		CreatedAt:     loan.CreatedAt,
	}
}

// ReminderMessage renders the body of a due-date reminder.
func ReminderMessage(loanName string, installment *domain.Installment, opts Options) string {
	symbol := opts.withDefaults().CurrencySymbol
	penaltyPercent := opts.PenaltyRate.Mul(decimal.NewFromInt(100))

	return fmt.Sprintf(
		"Dear User,\n\n"+
			"This is a reminder that your EMI of %s%s for %s is due on %s.\n\n"+
			"Outstanding Loan Balance: %s%s\n\n"+
			"Please make payment before due date to avoid %s%% penalty.\n\n"+
			"Regards,\nEMI Tracker Team",
		symbol, installment.InstallmentAmount.StringFixed(2), loanName, installment.DueDate.Format(utils.DateLayout),
		symbol, installment.OutstandingAfter.StringFixed(2),
		penaltyPercent.String(),
	)
}
