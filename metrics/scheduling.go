package metrics

import "github.com/prometheus/client_golang/prometheus"

// Booking outcomes.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeConflict  = "conflict"
	OutcomeNotFound  = "not_found"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// SchedulingMetrics exposes counters for the slot engine's write paths.
type SchedulingMetrics struct {
	bookingsTotal *prometheus.CounterVec
	slotChanges   *prometheus.CounterVec
	batchFailures *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medislot",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		slotChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medislot",
			Subsystem: "schedule",
			Name:      "slot_changes_total",
			Help:      "Slots created, cancelled or deleted by schedule operation",
		}, []string{"operation", "change"}),
		batchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medislot",
			Subsystem: "schedule",
			Name:      "batch_failures_total",
			Help:      "Schedule batches rejected by the store",
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.slotChanges, m.batchFailures)
	return m
}

func (m *SchedulingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

// ObserveSlotChanges records one committed batch.
func (m *SchedulingMetrics) ObserveSlotChanges(operation string, created, cancelled, deleted int) {
	if m == nil {
		return
	}
	m.slotChanges.WithLabelValues(operation, "created").Add(float64(created))
	m.slotChanges.WithLabelValues(operation, "cancelled").Add(float64(cancelled))
	m.slotChanges.WithLabelValues(operation, "deleted").Add(float64(deleted))
}

func (m *SchedulingMetrics) ObserveBatchFailure(operation string) {
	if m == nil {
		return
	}
	m.batchFailures.WithLabelValues(operation).Inc()
}
