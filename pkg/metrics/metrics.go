package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scheduler metrics
	SchedulerTicks        prometheus.Counter
	SchedulerTickDuration prometheus.Histogram
	RemindersCreated      prometheus.Counter
	RemindersDeduplicated prometheus.Counter
	MedicationScanErrors  prometheus.Counter

	// Dispatch metrics
	RemindersDispatched *prometheus.CounterVec
	DispatchDuration    prometheus.Histogram
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		SchedulerTicks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_ticks_total",
			Help:      "Total number of reminder scheduler ticks",
		}),
		SchedulerTickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduler_tick_duration_seconds",
			Help:      "Time spent scanning medications per tick",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		RemindersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_created_total",
			Help:      "Total number of reminders materialized by the scheduler",
		}),
		RemindersDeduplicated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_deduplicated_total",
			Help:      "Total number of reminder inserts skipped by the uniqueness guard",
		}),
		MedicationScanErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "medication_scan_errors_total",
			Help:      "Total number of per-medication failures during scheduler scans",
		}),
		RemindersDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_dispatched_total",
			Help:      "Total number of reminder dispatch attempts",
		}, []string{"status"}),
		DispatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent delivering due reminders per pass",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
	}
}
