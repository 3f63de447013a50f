package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/emi-tracker/internal/amortization"
	"github.com/segyhp/emi-tracker/internal/cache"
	"github.com/segyhp/emi-tracker/internal/config"
	"github.com/segyhp/emi-tracker/internal/domain"
	"github.com/segyhp/emi-tracker/internal/metrics"
	"github.com/segyhp/emi-tracker/internal/repository"
	customError "github.com/segyhp/emi-tracker/pkg/errors"
	"github.com/segyhp/emi-tracker/pkg/utils"
)

type BillingService struct {
	LoanRepo        repository.LoanRepository
	InstallmentRepo repository.InstallmentRepository
	ReminderRepo    repository.ReminderRepository
	cache           cache.SummaryCache
	metrics         *metrics.Metrics
	options         amortization.Options
	logger          *slog.Logger
	now             func() time.Time
}

func NewBillingService(
	loanRepo repository.LoanRepository,
	installmentRepo repository.InstallmentRepository,
	reminderRepo repository.ReminderRepository,
	summaryCache cache.SummaryCache,
	m *metrics.Metrics,
	cfg *config.Config,
) *BillingService {
	if summaryCache == nil {
		summaryCache = cache.NoopSummaryCache{}
	}

	options := amortization.DefaultOptions()
	if cfg != nil {
		options = cfg.EngineOptions()
	}

	return &BillingService{
		LoanRepo:        loanRepo,
		InstallmentRepo: installmentRepo,
		ReminderRepo:    reminderRepo,
		cache:           summaryCache,
		metrics:         m,
		options:         options,
		logger:          slog.Default().With("component", "billing"),
		now:             time.Now,
	}
}

// CreateLoan resolves the unknown loan term, builds the schedule and its
// reminders and stores everything in one transaction
func (s *BillingService) CreateLoan(ctx context.Context, app *domain.LoanApplication) (*domain.Loan, []*domain.Installment, error) {
	loan, solution, err := amortization.ResolveTerms(app, s.options)
	if err != nil {
		return nil, nil, err
	}

	if solution.Saturated {
		s.metrics.SolverSaturated()
		s.logger.WarnContext(ctx, "rate solver hit its upper bound, rate is only a ceiling",
			"loan_id", loan.ID,
			"principal", loan.Principal,
			"installment", loan.InstallmentAmount,
			"tenure_months", loan.TenureMonths,
			"annual_rate", solution.AnnualRate,
		)
	}
	if solution.Floored {
		s.metrics.SolverFloored()
		s.logger.WarnContext(ctx, "installment is below straight-line repayment, rate floored at zero",
			"loan_id", loan.ID,
			"principal", loan.Principal,
			"installment", loan.InstallmentAmount,
			"tenure_months", loan.TenureMonths,
		)
	}

	now := s.now().UTC()
	loan.CreatedAt = now
	loan.UpdatedAt = now

	installments, reminders, err := amortization.GenerateSchedule(loan, s.options)
	if err != nil {
		return nil, nil, err
	}

	if err := s.LoanRepo.CreateWithSchedule(ctx, loan, installments, reminders); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	s.metrics.LoanCreated()
	s.invalidateDashboard(ctx)
	s.logger.InfoContext(ctx, "loan created",
		"loan_id", loan.ID,
		"borrower", loan.BorrowerEmail,
		"annual_rate", loan.InterestRate,
		"installment", loan.InstallmentAmount,
		"tenure_months", loan.TenureMonths,
	)

	return loan, installments, nil
}

// GetLoan returns one loan
func (s *BillingService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loan, nil
}

// ListLoans returns every loan, or only those of borrowerEmail when set
func (s *BillingService) ListLoans(ctx context.Context, borrowerEmail string) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.List(ctx, borrowerEmail)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loans, nil
}

// GetSchedule returns the installments of a loan ordered by due date
func (s *BillingService) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	if _, err := s.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}

	installments, err := s.InstallmentRepo.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return installments, nil
}

// ListInstallments returns installments matching filter
func (s *BillingService) ListInstallments(ctx context.Context, filter domain.InstallmentFilter) ([]*domain.Installment, error) {
	installments, err := s.InstallmentRepo.List(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return installments, nil
}

// ListReminders returns every reminder, or only those sent to borrowerEmail when set
func (s *BillingService) ListReminders(ctx context.Context, borrowerEmail string) ([]*domain.Reminder, error) {
	reminders, err := s.ReminderRepo.ListByRecipient(ctx, borrowerEmail)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return reminders, nil
}

// SweepOverdue moves every pending installment due before today to overdue
// and charges the penalty. It returns the number of installments changed.
func (s *BillingService) SweepOverdue(ctx context.Context, today time.Time) (int, error) {
	today = utils.DateOnly(today)

	pending, err := s.InstallmentRepo.ListPendingDueBefore(ctx, today)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	changed := amortization.SweepOverdue(pending, today, s.options.PenaltyRate)
	if len(changed) == 0 {
		return 0, nil
	}

	if err := s.InstallmentRepo.UpdateLifecycle(ctx, changed); err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	s.metrics.Overdue(len(changed))
	s.invalidateDashboard(ctx)
	s.logger.InfoContext(ctx, "overdue sweep finished", "date", today.Format(utils.DateLayout), "updated", len(changed))

	return len(changed), nil
}

// MarkPaid settles one installment. Missing and already paid installments
// are reported through the outcome. Paying the last open installment of a
// loan closes the loan.
func (s *BillingService) MarkPaid(ctx context.Context, installmentID uuid.UUID, today time.Time) (domain.PaymentOutcome, error) {
	installment, err := s.InstallmentRepo.GetByID(ctx, installmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return amortization.MarkPaid(nil, today), nil
	}
	if err != nil {
		return domain.PaymentOutcome{}, customError.WrapDatabaseError(err)
	}

	outcome := amortization.MarkPaid(installment, today)
	if !outcome.Success {
		return outcome, nil
	}

	if err := s.InstallmentRepo.UpdateLifecycle(ctx, []*domain.Installment{installment}); err != nil {
		return domain.PaymentOutcome{}, customError.WrapDatabaseError(err)
	}
	s.metrics.Paid()

	if err := s.closeLoanIfPaid(ctx, installment.LoanID); err != nil {
		return domain.PaymentOutcome{}, err
	}

	s.invalidateDashboard(ctx)
	s.logger.InfoContext(ctx, "installment paid",
		"installment_id", installment.ID,
		"loan_id", installment.LoanID,
		"total_due", installment.TotalDue,
	)

	return outcome, nil
}

func (s *BillingService) closeLoanIfPaid(ctx context.Context, loanID uuid.UUID) error {
	schedule, err := s.InstallmentRepo.ListByLoanID(ctx, loanID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if !amortization.IsFullyPaid(schedule) {
		return nil
	}

	if err := s.LoanRepo.UpdateStatus(ctx, loanID, domain.LoanStatusClosed); err != nil {
		return customError.WrapDatabaseError(err)
	}
	s.logger.InfoContext(ctx, "loan closed", "loan_id", loanID)

	return nil
}

// Dashboard returns the payment totals of every loan, or of one borrower.
// Results are cached until the next lifecycle change or the cache TTL. A
// summary computed across an invalidation is returned but never cached.
func (s *BillingService) Dashboard(ctx context.Context, borrowerEmail string) (*domain.DashboardSummary, error) {
	cached, found, err := s.cache.Get(ctx, borrowerEmail)
	if err != nil {
		s.logger.WarnContext(ctx, "dashboard cache read failed", "error", customError.WrapCacheError(err))
	}
	if found {
		return cached, nil
	}

	generation, generationErr := s.cache.Generation(ctx)
	if generationErr != nil {
		s.logger.WarnContext(ctx, "dashboard cache read failed", "error", customError.WrapCacheError(generationErr))
	}

	loans, err := s.LoanRepo.List(ctx, borrowerEmail)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	installments, err := s.InstallmentRepo.ListByBorrower(ctx, borrowerEmail)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	summary := amortization.Summarize(loans, installments)
	if generationErr != nil {
		return &summary, nil
	}
	if err := s.cache.Set(ctx, borrowerEmail, generation, &summary); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache write failed", "error", customError.WrapCacheError(err))
	}

	return &summary, nil
}

func (s *BillingService) invalidateDashboard(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache invalidation failed", "error", customError.WrapCacheError(err))
	}
}
