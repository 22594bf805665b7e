package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flow and the
// Sphere API calls behind it.
type BookingMetrics struct {
	transitionsTotal   *prometheus.CounterVec
	flowFailuresTotal  *prometheus.CounterVec
	compensationsTotal prometheus.Counter
	signOutsTotal      *prometheus.CounterVec
	apiLatency         *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sphere",
			Subsystem: "booking",
			Name:      "flow_transitions_total",
			Help:      "Booking flow state transitions",
		}, []string{"from", "to"}),
		flowFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sphere",
			Subsystem: "booking",
			Name:      "flow_failures_total",
			Help:      "Booking flow failures by stage",
		}, []string{"stage"}),
		compensationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sphere",
			Subsystem: "booking",
			Name:      "compensations_total",
			Help:      "Orphaned appointments auto-cancelled after a failed payment intent",
		}),
		signOutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sphere",
			Subsystem: "session",
			Name:      "sign_outs_total",
			Help:      "Forced and voluntary session sign-outs",
		}, []string{"reason"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sphere",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency of Sphere API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitionsTotal, m.flowFailuresTotal, m.compensationsTotal, m.signOutsTotal, m.apiLatency)
	return m
}

func (m *BookingMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *BookingMetrics) ObserveFlowFailure(stage string) {
	if m == nil {
		return
	}
	m.flowFailuresTotal.WithLabelValues(stage).Inc()
}

func (m *BookingMetrics) ObserveCompensation() {
	if m == nil {
		return
	}
	m.compensationsTotal.Inc()
}

func (m *BookingMetrics) ObserveSignOut(reason string) {
	if m == nil {
		return
	}
	m.signOutsTotal.WithLabelValues(reason).Inc()
}

func (m *BookingMetrics) ObserveAPILatency(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.apiLatency.WithLabelValues(operation, status).Observe(seconds)
}
