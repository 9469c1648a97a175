package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestChatbotMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatbotMetrics(reg)

	m.ObserveTurn("greeting")
	m.ObserveTurn("greeting")
	m.ObserveTurn("fallback")
	m.ObserveBooking(true, 0.02)
	m.ObserveBooking(false, 0.5)
	m.ObserveEmergency()
	m.SetActiveSessions(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues("greeting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues("confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emergencies))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))
}

func TestChatbotMetricsNilSafe(t *testing.T) {
	var m *ChatbotMetrics
	m.ObserveTurn("greeting")
	m.ObserveBooking(true, 0.1)
	m.ObserveEmergency()
	m.SetActiveSessions(1)
}
