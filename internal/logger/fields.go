package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Stack / Record Identity
	// ========================================================================
	KeyStackID  = "stack_id"  // Stack identifier (uint64)
	KeyIndexID  = "index_id"  // Index identifier string "{stack_id},{offset:hex}{cookie:08hex}"
	KeyCookie   = "cookie"    // Per-record cookie (uint32)
	KeyOrdinal  = "ordinal"   // Record ordinal position within a stack
	KeyFilename = "filename"  // User-supplied filename stored in the meta record
	KeyPrefix   = "prefix"    // Object-store key prefix a stack lives under

	// ========================================================================
	// Object Store Operations
	// ========================================================================
	KeyOperation  = "operation"   // Operation name: put, fetch, list_stack, rollover, ...
	KeyObjectKey  = "key"         // Object-store key (data/idx/meta object name)
	KeyBucket     = "bucket"      // S3 bucket name
	KeyRegion     = "region"      // S3 region
	KeyEndpoint   = "endpoint"    // S3-compatible endpoint URL
	KeyOffset     = "offset"      // Byte offset for a ranged read/append
	KeySize       = "size"        // Payload size in bytes
	KeyAttempt    = "attempt"     // Retry attempt number
	KeyMaxRetries = "max_retries" // Maximum retry attempts

	// ========================================================================
	// Allocation Service
	// ========================================================================
	KeyReplicas    = "replicas"     // Requested preload replica count
	KeyPreloadID   = "preload_id"   // Preload assignment identifier
	KeyLocation    = "location"     // Registered stack source location
	KeyTxnAttempt  = "txn_attempt"  // Transaction retry attempt (preload reconciliation)

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorKind  = "error_kind"  // stackerr.Kind string
	KeyRequestID  = "request_id"  // Control-plane HTTP request ID
	KeyClientIP   = "client_ip"   // REST client IP address
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// StackID returns a slog.Attr for a stack identifier.
func StackID(id uint64) slog.Attr { return slog.Uint64(KeyStackID, id) }

// IndexID returns a slog.Attr for an index identifier string.
func IndexID(id string) slog.Attr { return slog.String(KeyIndexID, id) }

// Cookie returns a slog.Attr for a record cookie.
func Cookie(c uint32) slog.Attr { return slog.Any(KeyCookie, c) }

// Ordinal returns a slog.Attr for a record's ordinal position.
func Ordinal(n int) slog.Attr { return slog.Int(KeyOrdinal, n) }

// Filename returns a slog.Attr for a stored filename.
func Filename(name string) slog.Attr { return slog.String(KeyFilename, name) }

// Prefix returns a slog.Attr for an object-store key prefix.
func Prefix(p string) slog.Attr { return slog.String(KeyPrefix, p) }

// Operation returns a slog.Attr for the operation name.
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

// ObjectKey returns a slog.Attr for an object-store key.
func ObjectKey(key string) slog.Attr { return slog.String(KeyObjectKey, key) }

// Bucket returns a slog.Attr for an S3 bucket name.
func Bucket(name string) slog.Attr { return slog.String(KeyBucket, name) }

// Region returns a slog.Attr for an S3 region.
func Region(r string) slog.Attr { return slog.String(KeyRegion, r) }

// Endpoint returns a slog.Attr for an S3-compatible endpoint.
func Endpoint(e string) slog.Attr { return slog.String(KeyEndpoint, e) }

// Offset returns a slog.Attr for a byte offset.
func Offset(off uint64) slog.Attr { return slog.Uint64(KeyOffset, off) }

// Size returns a slog.Attr for a payload size.
func Size(s uint32) slog.Attr { return slog.Any(KeySize, s) }

// Attempt returns a slog.Attr for a retry attempt number.
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }

// MaxRetries returns a slog.Attr for the maximum retry attempts.
func MaxRetries(n int) slog.Attr { return slog.Int(KeyMaxRetries, n) }

// Replicas returns a slog.Attr for a requested preload replica count.
func Replicas(n int) slog.Attr { return slog.Int(KeyReplicas, n) }

// PreloadID returns a slog.Attr for a preload assignment identifier.
func PreloadID(id string) slog.Attr { return slog.String(KeyPreloadID, id) }

// Location returns a slog.Attr for a registered stack source location.
func Location(loc string) slog.Attr { return slog.String(KeyLocation, loc) }

// TxnAttempt returns a slog.Attr for a transaction retry attempt.
func TxnAttempt(n int) slog.Attr { return slog.Int(KeyTxnAttempt, n) }

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorKind returns a slog.Attr for a stackerr.Kind rendered as a string.
func ErrorKind(kind string) slog.Attr { return slog.String(KeyErrorKind, kind) }

// RequestID returns a slog.Attr for a control-plane HTTP request ID.
func RequestID(id string) slog.Attr { return slog.String(KeyRequestID, id) }

// ClientIP returns a slog.Attr for a REST client IP address.
func ClientIP(ip string) slog.Attr { return slog.String(KeyClientIP, ip) }
