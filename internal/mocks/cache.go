package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/emi-tracker/internal/domain"
)

type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) Get(ctx context.Context, borrowerEmail string) (*domain.DashboardSummary, bool, error) {
	args := m.Called(ctx, borrowerEmail)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.DashboardSummary), args.Bool(1), args.Error(2)
}

func (m *MockSummaryCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSummaryCache) Set(ctx context.Context, borrowerEmail string, generation int64, summary *domain.DashboardSummary) error {
	args := m.Called(ctx, borrowerEmail, generation, summary)
	return args.Error(0)
}

func (m *MockSummaryCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
