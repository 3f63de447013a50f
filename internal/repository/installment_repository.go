package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/emi-tracker/internal/domain"
)

const installmentColumns = `id, loan_id, sequence, due_date, installment_amount, principal_component,
		interest_component, penalty_amount, total_due, outstanding_before, outstanding_after,
		status, paid_date, created_at`

type installmentRepository struct {
	db *sqlx.DB
}

func NewInstallmentRepository(db *sqlx.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error) {
	query := r.db.Rebind(`
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE id = ?
	`)

	var installment domain.Installment
	err := r.db.GetContext(ctx, &installment, query, id)
	if err != nil {
		return nil, err
	}

	return &installment, nil
}

func (r *installmentRepository) ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	return r.List(ctx, domain.InstallmentFilter{LoanID: loanID})
}

func (r *installmentRepository) List(ctx context.Context, filter domain.InstallmentFilter) ([]*domain.Installment, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.LoanID != uuid.Nil {
		conditions = append(conditions, "loan_id = ?")
		args = append(args, filter.LoanID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT ` + installmentColumns + ` FROM installments`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY due_date, sequence`

	var installments []*domain.Installment
	err := r.db.SelectContext(ctx, &installments, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) ListByBorrower(ctx context.Context, borrowerEmail string) ([]*domain.Installment, error) {
	if borrowerEmail == "" {
		return r.List(ctx, domain.InstallmentFilter{})
	}

	query := r.db.Rebind(`
		SELECT ` + qualify("i", installmentColumns) + `
		FROM installments i
		JOIN loans l ON l.id = i.loan_id
		WHERE l.borrower_email = ?
		ORDER BY i.due_date, i.sequence
	`)

	var installments []*domain.Installment
	err := r.db.SelectContext(ctx, &installments, query, borrowerEmail)
	if err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) ListPendingDueBefore(ctx context.Context, date time.Time) ([]*domain.Installment, error) {
	query := r.db.Rebind(`
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE status = ? AND due_date < ?
		ORDER BY due_date, sequence
	`)

	var installments []*domain.Installment
	err := r.db.SelectContext(ctx, &installments, query, domain.InstallmentStatusPending, date)
	if err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) UpdateLifecycle(ctx context.Context, installments []*domain.Installment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		UPDATE installments
		SET status = ?, penalty_amount = ?, total_due = ?, paid_date = ?
		WHERE id = ?
	`)
	for _, installment := range installments {
		_, err = tx.ExecContext(ctx, query,
			installment.Status,
			installment.PenaltyAmount,
			installment.TotalDue,
			installment.PaidDate,
			installment.ID,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// qualify prefixes every column in a comma separated list with alias.
func qualify(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
