// Package coremetrics registers an engine session's prometheus collectors
// against a registry a host supplies, keeping interp.Interp itself free of
// any notion of "where metrics go".
package coremetrics

import "github.com/prometheus/client_golang/prometheus"

// Register adds every collector in collectors to reg, skipping ones already
// registered (e.g. a second engine session sharing one process-wide
// registry) rather than erroring, since each collector's per-session
// ConstLabels already disambiguate them.
func Register(reg *prometheus.Registry, collectors []prometheus.Collector) error {
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// NewRegistry returns a fresh registry pre-populated with the standard Go
// runtime collectors, matching what a production host would wire into its
// own /metrics handler.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return reg
}
