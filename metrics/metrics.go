package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatbotMetrics exposes counters and gauges for conversation turns and
// bookings.
type ChatbotMetrics struct {
	turnsTotal     *prometheus.CounterVec
	bookingsTotal  *prometheus.CounterVec
	emergencies    prometheus.Counter
	activeSessions prometheus.Gauge
	bookingLatency prometheus.Histogram
}

func NewChatbotMetrics(reg prometheus.Registerer) *ChatbotMetrics {
	m := &ChatbotMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "chatbot",
			Name:      "turns_total",
			Help:      "Conversation turns by response type",
		}, []string{"type"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "chatbot",
			Name:      "bookings_total",
			Help:      "Booking confirmation attempts by outcome",
		}, []string{"status"}),
		emergencies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "chatbot",
			Name:      "emergencies_total",
			Help:      "Messages redirected to emergency services",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinic",
			Subsystem: "chatbot",
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory",
		}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "chatbot",
			Name:      "booking_latency_seconds",
			Help:      "Latency of scheduling store booking calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.bookingsTotal, m.emergencies, m.activeSessions, m.bookingLatency)
	return m
}

func (m *ChatbotMetrics) ObserveTurn(responseType string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(responseType).Inc()
}

func (m *ChatbotMetrics) ObserveBooking(success bool, seconds float64) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "confirmed"
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
	m.bookingLatency.Observe(seconds)
}

func (m *ChatbotMetrics) ObserveEmergency() {
	if m == nil {
		return
	}
	m.emergencies.Inc()
}

func (m *ChatbotMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
