package stream

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opOpen  = "open"
	opRead  = "read"
	opWrite = "write"
	opStat  = "stat"
)

// Metrics counts stream operations per scheme. A nil *Metrics records nothing.
type Metrics struct {
	ops   *prometheus.CounterVec
	bytes *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kvstream",
			Name:      "operations_total",
			Help:      "Stream operations by scheme, operation and result.",
		}, []string{"scheme", "op", "result"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kvstream",
			Name:      "bytes_total",
			Help:      "Bytes moved through streams by scheme and direction.",
		}, []string{"scheme", "op"}),
	}
	if reg != nil {
		reg.MustRegister(m.ops, m.bytes)
	}
	return m
}

func (m *Metrics) observe(scheme, op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ops.WithLabelValues(scheme, op, result).Inc()
}

func (m *Metrics) addBytes(scheme, op string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytes.WithLabelValues(scheme, op).Add(float64(n))
}
