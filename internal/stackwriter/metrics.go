package stackwriter

import "time"

// Metrics provides observability for Writer operations. Implementations
// can use this interface to collect latency and throughput metrics for
// Put and rollover. This is optional: a nil Metrics results in zero
// overhead.
type Metrics interface {
	// ObservePut records one Put call: the payload size written and how
	// long the call took, including any rollover it triggered.
	ObservePut(bytes int, duration time.Duration, err error)

	// RecordRollover records that a fresh stack was opened under a new
	// stack_id, whether because the writer had none open yet or because
	// the previous one reached its size ceiling.
	RecordRollover()
}
