package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GlobalMetricsRegistry is the process-wide Prometheus registry the CLI's
// --metrics-addr endpoint serves. It carries the Go runtime collector in
// addition to whatever VM collectors are registered against it.
var GlobalMetricsRegistry *prometheus.Registry

func init() {
	ResetGlobalMetricsRegistry()
}

// ResetGlobalMetricsRegistry resets GlobalMetricsRegistry to its default
// value. Embedding hosts that construct more than one VM collector per
// process call this between constructions to avoid duplicate-registration
// panics.
func ResetGlobalMetricsRegistry() {
	GlobalMetricsRegistry = prometheus.NewRegistry()
	GlobalMetricsRegistry.MustRegister(prometheus.NewGoCollector())
}
