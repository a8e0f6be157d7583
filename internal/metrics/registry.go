// Package metrics provides nil-safe, optional observability for
// stackhaus's storage engine and allocation service. Every New*Metrics
// constructor here returns nil when metrics are disabled, so callers
// that accept the resulting interface pay zero overhead: the nil-safe
// wrappers here and the components holding a Metrics value test it for
// nil before calling into Prometheus.
//
// The Prometheus-backed implementations live in internal/metrics/prometheus
// and register themselves into this package's constructor hooks from an
// init() function, avoiding an import cycle between the two packages.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry creates the process-wide Prometheus registry and enables
// every New*Metrics constructor in this package. Call once at startup
// before constructing any component that accepts metrics.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// GetRegistry returns the process-wide registry. Panics if InitRegistry
// has not been called; callers should gate on IsEnabled first.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	if registry == nil {
		panic("metrics: GetRegistry called before InitRegistry")
	}
	return registry
}
