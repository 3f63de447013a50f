package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "emi"

const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Metrics holds the engine counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	LoansCreated        prometheus.Counter
	InstallmentsOverdue prometheus.Counter
	InstallmentsPaid    prometheus.Counter
	Reminders           *prometheus.CounterVec
	RateSolverSaturated prometheus.Counter
	RateSolverFloored   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LoansCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_created_total",
			Help:      "Number of loans created with a generated schedule.",
		}),
		InstallmentsOverdue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "installments_overdue_total",
			Help:      "Number of installments moved from pending to overdue.",
		}),
		InstallmentsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "installments_paid_total",
			Help:      "Number of installments marked as paid.",
		}),
		Reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_total",
			Help:      "Reminder delivery attempts by outcome.",
		}, []string{"outcome"}),
		RateSolverSaturated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_solver_saturated_total",
			Help:      "Rate solutions that hit the solver upper bound.",
		}),
		RateSolverFloored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_solver_floored_total",
			Help:      "Rate solutions clamped to zero because the installment cannot repay the principal.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.LoansCreated,
		m.InstallmentsOverdue,
		m.InstallmentsPaid,
		m.Reminders,
		m.RateSolverSaturated,
		m.RateSolverFloored,
	)

	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) LoanCreated() {
	if m == nil {
		return
	}
	m.LoansCreated.Inc()
}

func (m *Metrics) Overdue(n int) {
	if m == nil {
		return
	}
	m.InstallmentsOverdue.Add(float64(n))
}

func (m *Metrics) Paid() {
	if m == nil {
		return
	}
	m.InstallmentsPaid.Inc()
}

func (m *Metrics) Reminder(outcome string) {
	if m == nil {
		return
	}
	m.Reminders.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SolverSaturated() {
	if m == nil {
		return
	}
	m.RateSolverSaturated.Inc()
}

func (m *Metrics) SolverFloored() {
	if m == nil {
		return
	}
	m.RateSolverFloored.Inc()
}
