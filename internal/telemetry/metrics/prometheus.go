package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SetupPrometheus creates the registry served on the metrics port. Runtime and
// process collectors are always present, next to a constant gymplan_build_info
// gauge labeled with the running version.
func SetupPrometheus(version string, extraCollectors ...prometheus.Collector) *prometheus.Registry {
	if version == "" {
		version = "unknown"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: "gymplan"}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "gymplan",
			Name:        "build_info",
			Help:        "Always 1, labeled with the service version.",
			ConstLabels: prometheus.Labels{"version": version},
		}, func() float64 { return 1 }),
	)
	reg.MustRegister(extraCollectors...)
	return reg
}
