package stackreader

import "time"

// Metrics provides observability for Reader operations. This is
// optional: a nil Metrics results in zero overhead.
type Metrics interface {
	// ObserveFetch records one Fetch call: the payload size returned and
	// how long the call took.
	ObserveFetch(bytes int, duration time.Duration, err error)

	// ObserveList records one enumeration call (List, ListAl, or
	// ListStack) and how long it took.
	ObserveList(duration time.Duration, err error)
}
