package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/emi-tracker/internal/domain"
)

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) CreateLoan(ctx context.Context, app *domain.LoanApplication) (*domain.Loan, []*domain.Installment, error) {
	args := m.Called(ctx, app)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Loan), args.Get(1).([]*domain.Installment), args.Error(2)
}

func (m *MockBillingService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockBillingService) ListLoans(ctx context.Context, borrowerEmail string) ([]*domain.Loan, error) {
	args := m.Called(ctx, borrowerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockBillingService) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockBillingService) ListInstallments(ctx context.Context, filter domain.InstallmentFilter) ([]*domain.Installment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockBillingService) ListReminders(ctx context.Context, borrowerEmail string) ([]*domain.Reminder, error) {
	args := m.Called(ctx, borrowerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reminder), args.Error(1)
}

func (m *MockBillingService) SweepOverdue(ctx context.Context, today time.Time) (int, error) {
	args := m.Called(ctx, today)
	return args.Int(0), args.Error(1)
}

func (m *MockBillingService) MarkPaid(ctx context.Context, installmentID uuid.UUID, today time.Time) (domain.PaymentOutcome, error) {
	args := m.Called(ctx, installmentID, today)
	return args.Get(0).(domain.PaymentOutcome), args.Error(1)
}

func (m *MockBillingService) Dashboard(ctx context.Context, borrowerEmail string) (*domain.DashboardSummary, error) {
	args := m.Called(ctx, borrowerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardSummary), args.Error(1)
}

type MockReminderDispatcher struct {
	mock.Mock
}

func (m *MockReminderDispatcher) DispatchDue(ctx context.Context, today time.Time) (domain.DispatchResult, error) {
	args := m.Called(ctx, today)
	return args.Get(0).(domain.DispatchResult), args.Error(1)
}
