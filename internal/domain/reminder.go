package domain

import (
	"time"

	"github.com/google/uuid"
)

const ReminderChannelEmail = "email"

// Reminder is a pending notification paired with one installment
type Reminder struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	InstallmentID uuid.UUID  `json:"installment_id" db:"installment_id"`
	LoanID        uuid.UUID  `json:"loan_id" db:"loan_id"`
	Recipient     string     `json:"recipient" db:"recipient"`
	ReminderDate  time.Time  `json:"reminder_date" db:"reminder_date"`
	Subject       string     `json:"subject" db:"subject"`
	Message       string     `json:"message" db:"message"`
	Channel       string     `json:"channel" db:"channel"`
	IsSent        bool       `json:"is_sent" db:"is_sent"`
	SentAt        *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	ErrorMessage  string     `json:"error_message,omitempty" db:"error_message"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

type DispatchResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}
