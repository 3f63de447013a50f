package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/emi-tracker/internal/domain"
)

const loanColumns = `id, name, loan_type, borrower_email, principal, interest_rate, tenure_months,
		installment_amount, start_date, status, created_at, updated_at`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) CreateWithSchedule(ctx context.Context, loan *domain.Loan, installments []*domain.Installment, reminders []*domain.Reminder) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO loans (`+loanColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		loan.ID,
		loan.Name,
		loan.Type,
		loan.BorrowerEmail,
		loan.Principal,
		loan.InterestRate,
		loan.TenureMonths,
		loan.InstallmentAmount,
		loan.StartDate,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		return err
	}

	installmentQuery := tx.Rebind(`
		INSERT INTO installments (` + installmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, installment := range installments {
		_, err = tx.ExecContext(ctx, installmentQuery,
			installment.ID,
			installment.LoanID,
			installment.Sequence,
			installment.DueDate,
			installment.InstallmentAmount,
			installment.PrincipalComponent,
			installment.InterestComponent,
			installment.PenaltyAmount,
			installment.TotalDue,
			installment.OutstandingBefore,
			installment.OutstandingAfter,
			installment.Status,
			installment.PaidDate,
			installment.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	reminderQuery := tx.Rebind(`
		INSERT INTO reminders (` + reminderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, reminder := range reminders {
		_, err = tx.ExecContext(ctx, reminderQuery,
			reminder.ID,
			reminder.InstallmentID,
			reminder.LoanID,
			reminder.Recipient,
			reminder.ReminderDate,
			reminder.Subject,
			reminder.Message,
			reminder.Channel,
			reminder.IsSent,
			reminder.SentAt,
			reminder.ErrorMessage,
			reminder.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := r.db.Rebind(`
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = ?
	`)

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, id)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context, borrowerEmail string) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans`
	var args []interface{}
	if borrowerEmail != "" {
		query += ` WHERE borrower_email = ?`
		args = append(args, borrowerEmail)
	}
	query += ` ORDER BY created_at, name`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := r.db.Rebind(`
		UPDATE loans
		SET status = ?, updated_at = ?
		WHERE id = ?
	`)

	_, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	return err
}
