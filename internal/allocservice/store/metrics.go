package store

import "time"

// Metrics provides observability for the allocation service's store
// operations. This is optional: a nil Metrics results in zero overhead.
type Metrics interface {
	// ObserveReconciliation records one PreLoad reconciliation pass
	// (reconcileOnce, including retried attempts) and how long it took.
	ObserveReconciliation(duration time.Duration, err error)

	// RecordAssignmentTransition records a preload assignment entering
	// state.
	RecordAssignmentTransition(state string)
}
