package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks booking outcomes, lifecycle transitions and the duration
// of each service operation.
type Metrics struct {
	AppointmentsBooked prometheus.Counter
	Transitions        *prometheus.CounterVec
	Rejections         *prometheus.CounterVec
	LockContention     prometheus.Counter
	OperationDuration  *prometheus.HistogramVec
}

// New registers the appointment metrics with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AppointmentsBooked: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinic_appointments_booked_total",
			Help: "Total number of appointments booked",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_appointment_transitions_total",
			Help: "Appointment status transitions by target status",
		}, []string{"to"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_appointment_rejections_total",
			Help: "Booking attempts rejected by a scheduling rule, by error code",
		}, []string{"code"}),
		LockContention: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinic_appointment_lock_contention_total",
			Help: "Requests turned away because a slot or patient lock was held",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clinic_appointment_operation_duration_seconds",
			Help:    "Duration of appointment service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementBooked() {
	m.AppointmentsBooked.Inc()
}

func (m *Metrics) IncrementTransition(to string) {
	m.Transitions.WithLabelValues(to).Inc()
}

func (m *Metrics) IncrementRejection(code string) {
	m.Rejections.WithLabelValues(code).Inc()
}

func (m *Metrics) IncrementLockContention() {
	m.LockContention.Inc()
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
