package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/emi-tracker/pkg/errors"
	"github.com/segyhp/emi-tracker/pkg/utils"
)

const (
	LoanStatusActive = "active"
	LoanStatusClosed = "closed"
)

// Loan represents an installment loan. InterestRate is the annual nominal
// rate in percent; InstallmentAmount is the fixed monthly installment.
type Loan struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Type              string          `json:"type" db:"loan_type"`
	BorrowerEmail     string          `json:"borrower_email" db:"borrower_email"`
	Principal         decimal.Decimal `json:"principal" db:"principal"`
	InterestRate      decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TenureMonths      int             `json:"tenure_months" db:"tenure_months"`
	InstallmentAmount decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	StartDate         time.Time       `json:"start_date" db:"start_date"`
	Status            string          `json:"status" db:"status"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// LoanTerms is the variable a borrower knows when applying: either the rate
// or the installment. The other one is derived.
type LoanTerms interface {
	isLoanTerms()
}

// KnownRate carries an annual nominal rate in percent.
type KnownRate struct {
	AnnualRate decimal.Decimal
}

// KnownInstallment carries a fixed monthly installment amount.
type KnownInstallment struct {
	Amount decimal.Decimal
}

func (KnownRate) isLoanTerms()        {}
func (KnownInstallment) isLoanTerms() {}

// LoanApplication is the validated input for loan creation.
type LoanApplication struct {
	Name          string
	Type          string
	BorrowerEmail string
	Principal     decimal.Decimal
	TenureMonths  int
	StartDate     time.Time
	Terms         LoanTerms
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	Name              string           `json:"name" validate:"required,max=255"`
	Type              string           `json:"type" validate:"max=100"`
	BorrowerEmail     string           `json:"borrower_email" validate:"required,email"`
	Principal         decimal.Decimal  `json:"principal" validate:"required,gt=0"`
	InterestRate      *decimal.Decimal `json:"interest_rate,omitempty" validate:"omitempty,gte=0"`
	InstallmentAmount *decimal.Decimal `json:"installment_amount,omitempty" validate:"omitempty,gt=0"`
	TenureMonths      int              `json:"tenure_months" validate:"required,gt=0"`
	StartDate         string           `json:"start_date" validate:"required,datetime=2006-01-02"`
}

// Application converts the request into a LoanApplication. Exactly one of
// InterestRate and InstallmentAmount must be set.
func (r *CreateLoanRequest) Application() (*LoanApplication, error) {
	var terms LoanTerms
	switch {
	case r.InterestRate != nil && r.InstallmentAmount != nil:
		return nil, customError.WrapInvalidInput("provide either interest_rate or installment_amount, not both")
	case r.InterestRate != nil:
		terms = KnownRate{AnnualRate: *r.InterestRate}
	case r.InstallmentAmount != nil:
		terms = KnownInstallment{Amount: *r.InstallmentAmount}
	default:
		return nil, customError.WrapInvalidInput("one of interest_rate or installment_amount is required")
	}

	startDate, err := utils.ParseDate(r.StartDate)
	if err != nil {
		return nil, customError.WrapInvalidInput("start_date %q is not a YYYY-MM-DD date", r.StartDate)
	}

	return &LoanApplication{
		Name:          r.Name,
		Type:          r.Type,
		BorrowerEmail: r.BorrowerEmail,
		Principal:     r.Principal,
		TenureMonths:  r.TenureMonths,
		StartDate:     startDate,
		Terms:         terms,
	}, nil
}

type CreateLoanResponse struct {
	Loan     *Loan          `json:"loan"`
	Schedule []*Installment `json:"schedule"`
}

type ScheduleResponse struct {
	LoanID   uuid.UUID      `json:"loan_id"`
	Schedule []*Installment `json:"schedule"`
}
