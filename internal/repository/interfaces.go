package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/emi-tracker/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// CreateWithSchedule stores a loan, its installments and their reminders
	// in a single transaction; a partial schedule is never visible
	CreateWithSchedule(ctx context.Context, loan *domain.Loan, installments []*domain.Installment, reminders []*domain.Reminder) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// List retrieves loans, optionally restricted to one borrower
	List(ctx context.Context, borrowerEmail string) ([]*domain.Loan, error)

	// UpdateStatus updates the lifecycle status of a loan
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// InstallmentRepository defines the interface for installment data operations
type InstallmentRepository interface {
	// GetByID retrieves one installment
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error)

	// ListByLoanID retrieves the schedule of a loan ordered by sequence
	ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error)

	// List retrieves installments matching filter
	List(ctx context.Context, filter domain.InstallmentFilter) ([]*domain.Installment, error)

	// ListByBorrower retrieves every installment of a borrower's loans
	ListByBorrower(ctx context.Context, borrowerEmail string) ([]*domain.Installment, error)

	// ListPendingDueBefore gets pending installments due strictly before date
	ListPendingDueBefore(ctx context.Context, date time.Time) ([]*domain.Installment, error)

	// UpdateLifecycle persists status, penalty, total due and paid date of
	// the given installments in one transaction
	UpdateLifecycle(ctx context.Context, installments []*domain.Installment) error
}

// ReminderRepository defines the interface for reminder data operations
type ReminderRepository interface {
	// ListUnsentDue gets unsent reminders whose reminder date is on or before date
	ListUnsentDue(ctx context.Context, date time.Time) ([]*domain.Reminder, error)

	// ListByRecipient retrieves reminders, optionally restricted to one recipient
	ListByRecipient(ctx context.Context, recipient string) ([]*domain.Reminder, error)

	// MarkSent records a successful delivery
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error

	// MarkFailed records a failed delivery attempt
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}
