package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CourierMetrics records courier bridge and reconciliation activity.
type CourierMetrics struct {
	sends       *prometheus.CounterVec
	syncs       *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewCourierMetrics registers the courier metrics on the provided registerer.
func NewCourierMetrics(reg prometheus.Registerer) *CourierMetrics {
	if reg == nil {
		return &CourierMetrics{}
	}
	sends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_sends_total",
		Help: "Orders handed to the courier, by brand and result.",
	}, []string{"brand", "result"})
	syncs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_syncs_total",
		Help: "Courier status sync attempts, by brand and result.",
	}, []string{"brand", "result"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_status_transitions_total",
		Help: "Order status transitions applied from courier state.",
	}, []string{"from", "to"})
	reg.MustRegister(sends, syncs, transitions)
	return &CourierMetrics{
		sends:       sends,
		syncs:       syncs,
		transitions: transitions,
	}
}

// IncSend increments the send counter for the brand with the given result.
func (c *CourierMetrics) IncSend(brand, result string) {
	if c == nil || c.sends == nil {
		return
	}
	c.sends.WithLabelValues(normalizeLabel(brand), normalizeLabel(result)).Inc()
}

// IncSync increments the sync counter for the brand with the given result.
func (c *CourierMetrics) IncSync(brand, result string) {
	if c == nil || c.syncs == nil {
		return
	}
	c.syncs.WithLabelValues(normalizeLabel(brand), normalizeLabel(result)).Inc()
}

// IncTransition increments the transition counter for a status change.
func (c *CourierMetrics) IncTransition(from, to string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}
