package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// schema is accepted by both postgres and sqlite. Keep scripts/init.sql in sync.
const schema = `
CREATE TABLE IF NOT EXISTS loans (
    id UUID PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    loan_type VARCHAR(100) NOT NULL DEFAULT '',
    borrower_email VARCHAR(255) NOT NULL,
    principal NUMERIC(14, 2) NOT NULL,
    interest_rate NUMERIC(9, 4) NOT NULL,
    tenure_months INTEGER NOT NULL,
    installment_amount NUMERIC(14, 2) NOT NULL,
    start_date DATE NOT NULL,
    status VARCHAR(10) NOT NULL DEFAULT 'active',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS installments (
    id UUID PRIMARY KEY,
    loan_id UUID NOT NULL REFERENCES loans(id) ON DELETE CASCADE,
    sequence INTEGER NOT NULL,
    due_date DATE NOT NULL,
    installment_amount NUMERIC(14, 2) NOT NULL,
    principal_component NUMERIC(14, 2) NOT NULL,
    interest_component NUMERIC(14, 2) NOT NULL,
    penalty_amount NUMERIC(14, 2) NOT NULL DEFAULT 0,
    total_due NUMERIC(14, 2) NOT NULL,
    outstanding_before NUMERIC(14, 2) NOT NULL,
    outstanding_after NUMERIC(14, 2) NOT NULL,
    status VARCHAR(10) NOT NULL DEFAULT 'pending',
    paid_date DATE,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (loan_id, sequence)
);

CREATE TABLE IF NOT EXISTS reminders (
    id UUID PRIMARY KEY,
    installment_id UUID NOT NULL REFERENCES installments(id) ON DELETE CASCADE,
    loan_id UUID NOT NULL REFERENCES loans(id) ON DELETE CASCADE,
    recipient VARCHAR(255) NOT NULL,
    reminder_date DATE NOT NULL,
    subject VARCHAR(255) NOT NULL,
    message TEXT NOT NULL,
    channel VARCHAR(10) NOT NULL DEFAULT 'email',
    is_sent BOOLEAN NOT NULL DEFAULT FALSE,
    sent_at TIMESTAMP,
    error_message TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_loans_borrower ON loans(borrower_email);
CREATE INDEX IF NOT EXISTS idx_installments_status_due ON installments(status, due_date);
CREATE INDEX IF NOT EXISTS idx_reminders_unsent ON reminders(is_sent, reminder_date);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
