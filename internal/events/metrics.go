package events

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics domain counters fed from the bus
type Metrics struct {
	LinesAdded       *prometheus.CounterVec
	OrdersSubmitted  *prometheus.CounterVec
	RelayFallbacks   prometheus.Counter
	AuditFailures    *prometheus.CounterVec
	FavoritesToggled prometheus.Counter
}

// NewMetrics registers the counters on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LinesAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cakeshop_cart_lines_added_total",
			Help: "Cart lines confirmed from a customization session",
		}, []string{"product_id"}),
		OrdersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cakeshop_orders_submitted_total",
			Help: "Orders submitted at checkout",
		}, []string{"delivery_type"}),
		RelayFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cakeshop_relay_fallbacks_total",
			Help: "Orders where every relay transport failed",
		}),
		AuditFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cakeshop_audit_failures_total",
			Help: "Failed order log appends",
		}, []string{"sink"}),
		FavoritesToggled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cakeshop_favorites_toggled_total",
			Help: "Favorite toggles",
		}),
	}
	reg.MustRegister(m.LinesAdded, m.OrdersSubmitted, m.RelayFallbacks, m.AuditFailures, m.FavoritesToggled)
	return m
}

// Attach subscribes the counters to the bus
func (m *Metrics) Attach(b *Bus) {
	b.Subscribe("metrics", TopicLineAdded, func(e Event) {
		m.LinesAdded.WithLabelValues(stringField(e.Payload, "product_id")).Inc()
	})
	b.Subscribe("metrics", TopicOrderSubmitted, func(e Event) {
		m.OrdersSubmitted.WithLabelValues(stringField(e.Payload, "delivery_type")).Inc()
	})
	b.Subscribe("metrics", TopicRelayFallback, func(Event) {
		m.RelayFallbacks.Inc()
	})
	b.Subscribe("metrics", TopicAuditFailed, func(e Event) {
		sink := stringField(e.Payload, "sink")
		if sink == "" {
			sink = "unknown"
		}
		m.AuditFailures.WithLabelValues(sink).Inc()
	})
	b.Subscribe("metrics", TopicFavoriteToggle, func(Event) {
		m.FavoritesToggled.Inc()
	})
}

func stringField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
