package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/emi-tracker/pkg/errors"
)

func TestCreateLoanRequest_Application(t *testing.T) {
	rate := decimal.NewFromFloat(9.5)
	emi := decimal.NewFromInt(3500)

	tests := []struct {
		name          string
		request       CreateLoanRequest
		expectedTerms LoanTerms
		expectedError bool
	}{
		{
			name: "known rate",
			request: CreateLoanRequest{
				Name: "Car", Principal: decimal.NewFromInt(600000), TenureMonths: 12,
				StartDate: "2024-01-31", InterestRate: &rate,
			},
			expectedTerms: KnownRate{AnnualRate: rate},
		},
		{
			name: "known installment",
			request: CreateLoanRequest{
				Name: "Bike", Principal: decimal.NewFromInt(100000), TenureMonths: 48,
				StartDate: "2024-01-01", InstallmentAmount: &emi,
			},
			expectedTerms: KnownInstallment{Amount: emi},
		},
		{
			name: "both supplied",
			request: CreateLoanRequest{
				Principal: decimal.NewFromInt(1000), TenureMonths: 1, StartDate: "2024-01-01",
				InterestRate: &rate, InstallmentAmount: &emi,
			},
			expectedError: true,
		},
		{
			name: "neither supplied",
			request: CreateLoanRequest{
				Principal: decimal.NewFromInt(1000), TenureMonths: 1, StartDate: "2024-01-01",
			},
			expectedError: true,
		},
		{
			name: "bad start date",
			request: CreateLoanRequest{
				Principal: decimal.NewFromInt(1000), TenureMonths: 1, StartDate: "31/01/2024",
				InterestRate: &rate,
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := tt.request.Application()

			if tt.expectedError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, customError.ErrInvalidInput))
				assert.Nil(t, app)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedTerms, app.Terms)
			assert.Equal(t, tt.request.TenureMonths, app.TenureMonths)
			assert.Equal(t, time.UTC, app.StartDate.Location())
		})
	}
}
