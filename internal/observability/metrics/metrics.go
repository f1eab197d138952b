package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "rental_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	leaseTransitions *prometheus.CounterVec

	activationLatency  *prometheus.HistogramVec
	schedulePayments   prometheus.Counter
	settlementTotal    *prometheus.CounterVec
	settlementLatency  *prometheus.HistogramVec
	reminderRunTotal   *prometheus.CounterVec
	reminderRunLatency *prometheus.HistogramVec
	reminderStages     *prometheus.CounterVec
	reminderNotify     *prometheus.CounterVec
	behaviorQueries    *prometheus.CounterVec
	incomeExportTotal  *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		leaseTransitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "lease_transitions_total",
				Help: "Total lease state transitions by action and result",
			},
			[]string{"action", "result"},
		)
		activationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "lease_activation_latency_seconds",
				Help:    "Lease activation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		schedulePayments = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "schedule_payments_generated_total",
				Help: "Total payment obligations generated at activation",
			},
		)
		settlementTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payment_settlements_total",
				Help: "Total payment settlements by result",
			},
			[]string{"result"},
		)
		settlementLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "payment_settlement_latency_seconds",
				Help:    "Payment settlement latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		reminderRunTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reminder_runs_total",
				Help: "Total reminder staging batch runs by result",
			},
			[]string{"result"},
		)
		reminderRunLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "reminder_run_latency_seconds",
				Help:    "Reminder staging batch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		reminderStages = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reminder_stage_advances_total",
				Help: "Total reminder stage advances by notice kind",
			},
			[]string{"kind"},
		)
		reminderNotify = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reminder_notifications_total",
				Help: "Total reminder notification dispatches by kind and result",
			},
			[]string{"kind", "result"},
		)
		behaviorQueries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "behavior_metric_queries_total",
				Help: "Total behavioral metric computations by result",
			},
			[]string{"result"},
		)
		incomeExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "income_export_total",
				Help: "Total income export operations by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			leaseTransitions,
			activationLatency,
			schedulePayments,
			settlementTotal,
			settlementLatency,
			reminderRunTotal,
			reminderRunLatency,
			reminderStages,
			reminderNotify,
			behaviorQueries,
			incomeExportTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func normalizeResult(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// ObserveLeaseTransition records one lease state transition attempt.
func ObserveLeaseTransition(action string, err error) {
	if leaseTransitions != nil {
		leaseTransitions.WithLabelValues(action, normalizeResult(err)).Inc()
	}
}

// ObserveActivation records activation latency and the number of obligations generated.
func ObserveActivation(err error, generated int, duration time.Duration) {
	if activationLatency != nil {
		activationLatency.WithLabelValues(normalizeResult(err)).Observe(duration.Seconds())
	}
	if err == nil && schedulePayments != nil && generated > 0 {
		schedulePayments.Add(float64(generated))
	}
}

// ObserveSettlement records one settlement attempt.
func ObserveSettlement(err error, duration time.Duration) {
	result := normalizeResult(err)
	if settlementTotal != nil {
		settlementTotal.WithLabelValues(result).Inc()
	}
	if settlementLatency != nil {
		settlementLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveReminderRun records one staging batch run.
func ObserveReminderRun(err error, duration time.Duration) {
	result := normalizeResult(err)
	if reminderRunTotal != nil {
		reminderRunTotal.WithLabelValues(result).Inc()
	}
	if reminderRunLatency != nil {
		reminderRunLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveReminderStageAdvance records a persisted stage advance.
func ObserveReminderStageAdvance(kind string) {
	if reminderStages != nil {
		reminderStages.WithLabelValues(kind).Inc()
	}
}

// ObserveReminderNotify records a notification dispatch outcome.
func ObserveReminderNotify(kind string, err error) {
	if reminderNotify != nil {
		reminderNotify.WithLabelValues(kind, normalizeResult(err)).Inc()
	}
}

// ObserveBehaviorQuery records a behavioral metrics computation outcome.
func ObserveBehaviorQuery(err error) {
	if behaviorQueries != nil {
		behaviorQueries.WithLabelValues(normalizeResult(err)).Inc()
	}
}

// ObserveIncomeExport records an income export by format.
func ObserveIncomeExport(format string, err error) {
	if incomeExportTotal != nil {
		incomeExportTotal.WithLabelValues(format, normalizeResult(err)).Inc()
	}
}
