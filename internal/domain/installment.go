package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Business logic constants
const (
	InstallmentStatusPending = "pending"
	InstallmentStatusOverdue = "overdue"
	InstallmentStatusPaid    = "paid"
)

// Installment is one period of a loan's amortization schedule
type Installment struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	LoanID             uuid.UUID       `json:"loan_id" db:"loan_id"`
	Sequence           int             `json:"sequence" db:"sequence"`
	DueDate            time.Time       `json:"due_date" db:"due_date"`
	InstallmentAmount  decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	PrincipalComponent decimal.Decimal `json:"principal_component" db:"principal_component"`
	InterestComponent  decimal.Decimal `json:"interest_component" db:"interest_component"`
	PenaltyAmount      decimal.Decimal `json:"penalty_amount" db:"penalty_amount"`
	TotalDue           decimal.Decimal `json:"total_due" db:"total_due"`
	OutstandingBefore  decimal.Decimal `json:"outstanding_before" db:"outstanding_before"`
	OutstandingAfter   decimal.Decimal `json:"outstanding_after" db:"outstanding_after"`
	Status             string          `json:"status" db:"status"` // pending, overdue, paid
	PaidDate           *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// InstallmentFilter narrows installment listings. Zero values match everything.
type InstallmentFilter struct {
	LoanID uuid.UUID
	Status string
}

// PaymentOutcome is the result of a mark-paid request. Not-found and
// already-paid are reported here rather than as errors.
type PaymentOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

const (
	PaymentReasonNotFound    = "not_found"
	PaymentReasonAlreadyPaid = "already_paid"
)

func (o PaymentOutcome) Accepted() bool     { return o.Success }
func (o PaymentOutcome) Summary() string    { return o.Message }
func (o PaymentOutcome) ReasonCode() string { return o.Reason }
