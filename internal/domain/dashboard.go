package domain

import "github.com/shopspring/decimal"

// DashboardSummary is a read-only projection over installments and active loans
type DashboardSummary struct {
	TotalPending       decimal.Decimal `json:"total_pending"`
	TotalOverdue       decimal.Decimal `json:"total_overdue"`
	TotalPenalty       decimal.Decimal `json:"total_penalty"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}
