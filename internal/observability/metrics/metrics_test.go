package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestBookingMetricsObserve(t *testing.T) {
	m := NewBookingMetrics(prometheus.NewRegistry())
	m.ObserveTransition("select", "payment")
	m.ObserveFlowFailure("payment_intent")
	m.ObserveCompensation()
	m.ObserveSignOut("expired")
	m.ObserveAPILatency("list_appointments", "200", 0.05)
}

func TestBookingMetricsGathered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveTransition("select", "payment")
	m.ObserveTransition("payment", "success")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var transitions *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "sphere_booking_flow_transitions_total" {
			transitions = mf
		}
	}
	if transitions == nil {
		t.Fatal("expected flow transitions metric family")
	}
	if len(transitions.GetMetric()) != 2 {
		t.Fatalf("expected 2 labeled series, got %d", len(transitions.GetMetric()))
	}
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveTransition("select", "payment")
	m.ObserveFlowFailure("create_appointment")
	m.ObserveCompensation()
	m.ObserveSignOut("logout")
	m.ObserveAPILatency("cancel", "500", 0.1)
}
