// Package metrics holds the prometheus instrumentation for authdnsd,
// grounded on api/grpc/middleware/middleware.go's CounterVec/HistogramVec
// pair from the teacher (the grpc-specific metrics themselves were
// dropped along with grpc; the counter/histogram registration idiom
// survives here).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters and histogram this server updates per
// query. A fresh instance is safe to register exactly once per
// registry; New leaves registration to the caller, so a private
// registry can be used instead of the package-level default registerer.
type Metrics struct {
	QueriesTotal   *prometheus.CounterVec
	ResponsesTotal *prometheus.CounterVec
	ResponseBytes  prometheus.Histogram
}

// New builds an unregistered Metrics. Call Register to attach it to a
// prometheus.Registerer (typically prometheus.DefaultRegisterer).
func New() *Metrics {
	return &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "authdnsd_queries_total", Help: "Total DNS queries received, by transport"},
			[]string{"transport"},
		),
		ResponsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "authdnsd_responses_total", Help: "Total DNS responses sent, by rcode"},
			[]string{"rcode"},
		),
		ResponseBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "authdnsd_response_bytes",
				Help:    "Size in bytes of serialized DNS responses",
				Buckets: prometheus.ExponentialBuckets(32, 2, 10),
			},
		),
	}
}

// Register attaches m's collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.QueriesTotal, m.ResponsesTotal, m.ResponseBytes} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveQuery records a received query for the given transport ("udp" or
// "tcp").
func (m *Metrics) ObserveQuery(transport string) {
	m.QueriesTotal.WithLabelValues(transport).Inc()
}

// ObserveResponse records a sent response's rcode and wire size.
func (m *Metrics) ObserveResponse(rcode string, size int) {
	m.ResponsesTotal.WithLabelValues(rcode).Inc()
	m.ResponseBytes.Observe(float64(size))
}
