package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/emi-tracker/internal/domain"
)

const reminderColumns = `id, installment_id, loan_id, recipient, reminder_date, subject, message,
		channel, is_sent, sent_at, error_message, created_at`

type reminderRepository struct {
	db *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

// ListUnsentDue skips reminders whose installment is already paid.
func (r *reminderRepository) ListUnsentDue(ctx context.Context, date time.Time) ([]*domain.Reminder, error) {
	query := r.db.Rebind(`
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE is_sent = ? AND reminder_date <= ?
			AND installment_id IN (SELECT id FROM installments WHERE status <> ?)
		ORDER BY reminder_date, recipient
	`)

	var reminders []*domain.Reminder
	err := r.db.SelectContext(ctx, &reminders, query, false, date, domain.InstallmentStatusPaid)
	if err != nil {
		return nil, err
	}

	return reminders, nil
}

func (r *reminderRepository) ListByRecipient(ctx context.Context, recipient string) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders`
	var args []interface{}
	if recipient != "" {
		query += ` WHERE recipient = ?`
		args = append(args, recipient)
	}
	query += ` ORDER BY reminder_date`

	var reminders []*domain.Reminder
	err := r.db.SelectContext(ctx, &reminders, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return reminders, nil
}

func (r *reminderRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := r.db.Rebind(`
		UPDATE reminders
		SET is_sent = ?, sent_at = ?, error_message = ''
		WHERE id = ?
	`)

	_, err := r.db.ExecContext(ctx, query, true, sentAt, id)
	return err
}

func (r *reminderRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := r.db.Rebind(`
		UPDATE reminders
		SET error_message = ?
		WHERE id = ?
	`)

	_, err := r.db.ExecContext(ctx, query, reason, id)
	return err
}
