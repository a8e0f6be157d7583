package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for stack storage and allocation-service operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Stack storage attributes (stackwriter, stackreader)
	// ========================================================================
	AttrStackID     = "stackhaus.stack_id"
	AttrIndexID     = "stackhaus.index_id"
	AttrPrefix      = "stackhaus.prefix"
	AttrPayloadSize = "stackhaus.payload_size"
	AttrCheckCRC    = "stackhaus.check_crc"
	AttrRollover    = "stackhaus.rollover"

	// ========================================================================
	// Allocation service attributes
	// ========================================================================
	AttrAssignmentID = "allocservice.assignment_id"
	AttrState        = "allocservice.state"
	AttrReplicas     = "allocservice.replicas"

	// ========================================================================
	// Object storage backend attributes
	// ========================================================================
	AttrBucket = "storage.bucket"
	AttrKey    = "storage.key"
	AttrRegion = "storage.region"

	// ========================================================================
	// RPC attributes (allocclient, REST API)
	// ========================================================================
	AttrRPCMethod     = "rpc.method"
	AttrHTTPStatus    = "http.status_code"
	AttrHTTPRoute     = "http.route"
)

// Span names for stack writer, stack reader, allocation service, and
// object storage operations.
const (
	// ========================================================================
	// Stack writer spans
	// ========================================================================
	SpanWriterPut      = "stackwriter.put"
	SpanWriterRollover = "stackwriter.rollover"
	SpanWriterClose    = "stackwriter.close"

	// ========================================================================
	// Stack reader spans
	// ========================================================================
	SpanReaderFetch = "stackreader.fetch"
	SpanReaderList  = "stackreader.list"

	// ========================================================================
	// Allocation service spans
	// ========================================================================
	SpanAllocReconcile       = "allocservice.reconcile"
	SpanAllocReconcileOnce   = "allocservice.reconcile_once"
	SpanAllocTransition      = "allocservice.update_assignment_state"
	SpanAllocPreload         = "allocservice.preload"
	SpanAllocListAssignments = "allocservice.list_assignments"

	// ========================================================================
	// Object storage spans
	// ========================================================================
	SpanStoreGet    = "store.get"
	SpanStorePut    = "store.put"
	SpanStoreDelete = "store.delete"
	SpanStoreList   = "store.list"
)

// StackID returns an attribute for a stack identifier.
func StackID(id uint64) attribute.KeyValue {
	return attribute.Int64(AttrStackID, int64(id))
}

// IndexID returns an attribute for a record's canonical index identifier.
func IndexID(id string) attribute.KeyValue {
	return attribute.String(AttrIndexID, id)
}

// Prefix returns an attribute for an object-store key prefix under which
// a writer or reader's stacks live.
func Prefix(prefix string) attribute.KeyValue {
	return attribute.String(AttrPrefix, prefix)
}

// PayloadSize returns an attribute for a record's payload size in bytes.
func PayloadSize(bytes int) attribute.KeyValue {
	return attribute.Int(AttrPayloadSize, bytes)
}

// CheckCRC returns an attribute for whether a fetch verified its CRC32C
// checksum against the CRC stored in the record header.
func CheckCRC(check bool) attribute.KeyValue {
	return attribute.Bool(AttrCheckCRC, check)
}

// Rollover returns an attribute for whether a Put call triggered a stack
// rollover.
func Rollover(rolled bool) attribute.KeyValue {
	return attribute.Bool(AttrRollover, rolled)
}

// AssignmentID returns an attribute for a preload assignment identifier.
func AssignmentID(id string) attribute.KeyValue {
	return attribute.String(AttrAssignmentID, id)
}

// State returns an attribute for a preload assignment's lifecycle state.
func State(state string) attribute.KeyValue {
	return attribute.String(AttrState, state)
}

// Replicas returns an attribute for a requested preload replica count.
func Replicas(n int) attribute.KeyValue {
	return attribute.Int(AttrReplicas, n)
}

// Bucket returns an attribute for an S3 bucket name.
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for an object-store key.
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// Region returns an attribute for a cloud region.
func Region(region string) attribute.KeyValue {
	return attribute.String(AttrRegion, region)
}

// RPCMethod returns an attribute for an allocation client RPC method name.
func RPCMethod(method string) attribute.KeyValue {
	return attribute.String(AttrRPCMethod, method)
}

// HTTPStatus returns an attribute for a REST API response status code.
func HTTPStatus(code int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatus, code)
}

// HTTPRoute returns an attribute for the matched REST API route template.
func HTTPRoute(route string) attribute.KeyValue {
	return attribute.String(AttrHTTPRoute, route)
}

// StartWriterSpan starts a span for a stack writer operation, tagging it
// with the writer's key prefix.
func StartWriterSpan(ctx context.Context, name string, prefix string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{Prefix(prefix)}, attrs...)
	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

// StartReaderSpan starts a span for a stack reader operation, tagging it
// with the reader's key prefix.
func StartReaderSpan(ctx context.Context, name string, prefix string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{Prefix(prefix)}, attrs...)
	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

// StartAllocSpan starts a span for an allocation service store operation.
func StartAllocSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(attrs...))
}

// StartStoreSpan starts a span for an object storage backend operation.
func StartStoreSpan(ctx context.Context, operation string, bucket, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Bucket(bucket), StorageKey(key)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "store."+operation, trace.WithAttributes(allAttrs...))
}
