package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/emi-tracker/internal/domain"
	"github.com/segyhp/emi-tracker/pkg/response"
	"github.com/segyhp/emi-tracker/pkg/utils"
)

// BillingService is the loan and installment API the handlers serve
type BillingService interface {
	CreateLoan(ctx context.Context, app *domain.LoanApplication) (*domain.Loan, []*domain.Installment, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)
	ListLoans(ctx context.Context, borrowerEmail string) ([]*domain.Loan, error)
	GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error)
	ListInstallments(ctx context.Context, filter domain.InstallmentFilter) ([]*domain.Installment, error)
	ListReminders(ctx context.Context, borrowerEmail string) ([]*domain.Reminder, error)
	SweepOverdue(ctx context.Context, today time.Time) (int, error)
	MarkPaid(ctx context.Context, installmentID uuid.UUID, today time.Time) (domain.PaymentOutcome, error)
	Dashboard(ctx context.Context, borrowerEmail string) (*domain.DashboardSummary, error)
}

// ReminderDispatcher sends due reminders
type ReminderDispatcher interface {
	DispatchDue(ctx context.Context, today time.Time) (domain.DispatchResult, error)
}

type BillingHandler struct {
	service   BillingService
	reminders ReminderDispatcher
	validator *validator.Validate
	today     func() time.Time
}

func NewBillingHandler(service BillingService, reminders ReminderDispatcher) *BillingHandler {
	return &BillingHandler{
		service:   service,
		reminders: reminders,
		validator: NewValidator(),
		today:     utils.Today,
	}
}

// NewValidator returns a validator that compares decimal.Decimal fields numerically
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// RegisterRoutes mounts the API on router
func (h *BillingHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/loans", h.CreateLoan).Methods(http.MethodPost)
	router.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet)
	router.HandleFunc("/loans/{loanId}", h.GetLoan).Methods(http.MethodGet)
	router.HandleFunc("/loans/{loanId}/schedule", h.GetSchedule).Methods(http.MethodGet)
	router.HandleFunc("/installments", h.ListInstallments).Methods(http.MethodGet)
	router.HandleFunc("/installments/overdue-sweep", h.SweepOverdue).Methods(http.MethodPost)
	router.HandleFunc("/installments/{installmentId}/pay", h.MarkPaid).Methods(http.MethodPost)
	router.HandleFunc("/reminders", h.ListReminders).Methods(http.MethodGet)
	router.HandleFunc("/reminders/dispatch", h.DispatchReminders).Methods(http.MethodPost)
	router.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)
}

// CreateLoan handles POST /loans
func (h *BillingHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	app, err := request.Application()
	if err != nil {
		response.FromError(w, err)
		return
	}

	loan, schedule, err := h.service.CreateLoan(r.Context(), app)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, domain.CreateLoanResponse{
		Loan:     loan,
		Schedule: schedule,
	})
}

// ListLoans handles GET /loans?borrower=
func (h *BillingHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListLoans(r.Context(), r.URL.Query().Get("borrower"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loans)
}

// GetLoan handles GET /loans/{loanId}
func (h *BillingHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	loan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// GetSchedule handles GET /loans/{loanId}/schedule
func (h *BillingHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	schedule, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, domain.ScheduleResponse{
		LoanID:   loanID,
		Schedule: schedule,
	})
}

// ListInstallments handles GET /installments?loan_id=&status=
func (h *BillingHandler) ListInstallments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter domain.InstallmentFilter
	if raw := query.Get("loan_id"); raw != "" {
		loanID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid loan_id", err)
			return
		}
		filter.LoanID = loanID
	}

	filter.Status = query.Get("status")
	if err := h.validator.Var(filter.Status, "omitempty,oneof=pending overdue paid"); err != nil {
		response.BadRequest(w, "Invalid status", err)
		return
	}

	installments, err := h.service.ListInstallments(r.Context(), filter)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, installments)
}

// SweepOverdue handles POST /installments/overdue-sweep
func (h *BillingHandler) SweepOverdue(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.SweepOverdue(r.Context(), h.today())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]int{"updated": updated})
}

// MarkPaid handles POST /installments/{installmentId}/pay
func (h *BillingHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	installmentID, ok := pathUUID(w, r, "installmentId")
	if !ok {
		return
	}

	outcome, err := h.service.MarkPaid(r.Context(), installmentID, h.today())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteOutcome(w, outcome)
}

// ListReminders handles GET /reminders?borrower=
func (h *BillingHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.service.ListReminders(r.Context(), r.URL.Query().Get("borrower"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, reminders)
}

// DispatchReminders handles POST /reminders/dispatch
func (h *BillingHandler) DispatchReminders(w http.ResponseWriter, r *http.Request) {
	result, err := h.reminders.DispatchDue(r.Context(), h.today())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// Dashboard handles GET /dashboard?borrower=
func (h *BillingHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Dashboard(r.Context(), r.URL.Query().Get("borrower"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, summary)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}
