// Package stackwriter implements the single-owner, append-only writer
// that packs small immutable payloads into bounded stacks of three
// sibling objects (data, idx, meta) on an objectstore.ObjectStore.
package stackwriter

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/marmos91/stackhaus/internal/codec"
	"github.com/marmos91/stackhaus/internal/logger"
	"github.com/marmos91/stackhaus/internal/objectstore"
	"github.com/marmos91/stackhaus/internal/stackerr"
	"github.com/marmos91/stackhaus/internal/telemetry"
)

// DefaultMaxStackBytes is the build-time rollover ceiling: once a
// stack's accumulated data size would exceed this, the writer closes it
// and opens a fresh one under a new stack_id.
const DefaultMaxStackBytes = 5 * 1024 * 1024 * 1024 // 5 GiB

// StackIDAllocator issues monotonically increasing, never-reused stack
// identifiers. pkg/allocclient's Client satisfies this.
type StackIDAllocator interface {
	NextStackID(ctx context.Context) (uint64, error)
}

// Options configures a Writer.
type Options struct {
	// MaxStackBytes overrides DefaultMaxStackBytes.
	MaxStackBytes uint64
	// Prefix is prepended to every object key this writer creates.
	Prefix string

	// Metrics collects observability for this writer's operations. Nil
	// disables metrics collection entirely.
	Metrics Metrics
}

func (o Options) maxStackBytes() uint64 {
	if o.MaxStackBytes == 0 {
		return DefaultMaxStackBytes
	}
	return o.MaxStackBytes
}

// Writer packs puts into bounded stacks. A Writer is single-owner: Put
// must not be called concurrently from multiple goroutines. Concurrent
// Writers targeting the same prefix are safe, since each is assigned a
// distinct stack_id.
type Writer struct {
	store objectstore.ObjectStore
	alloc StackIDAllocator
	opts  Options
	mu    sync.Mutex
	inner *innerWriter
}

// New returns a Writer that packs stacks under opts.Prefix.
func New(store objectstore.ObjectStore, alloc StackIDAllocator, opts Options) *Writer {
	return &Writer{store: store, alloc: alloc, opts: opts}
}

// Put packs payload (with filename and optional extra metadata) into the
// currently open stack, rolling over to a fresh stack first if needed.
// It returns the canonical index identifier
// "{stack_id},{offset_data:x}{cookie:08x}" a caller hands to
// stackreader.Fetch.
func (w *Writer) Put(ctx context.Context, payload []byte, filename string, extra []byte) (id string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, span := telemetry.StartWriterSpan(ctx, telemetry.SpanWriterPut, w.opts.Prefix, telemetry.PayloadSize(len(payload)))
	defer span.End()

	start := time.Now()
	defer func() {
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
		if w.opts.Metrics != nil {
			w.opts.Metrics.ObservePut(len(payload), time.Since(start), err)
		}
	}()

	if len(payload) > math.MaxUint32 {
		return "", stackerr.Newf(stackerr.InvalidArgument, "payload length %d overflows u32", len(payload))
	}

	needsRollover := w.inner == nil ||
		w.inner.accumulatedSize+uint64(len(payload)) > w.opts.maxStackBytes()
	if needsRollover {
		if err := w.rollover(ctx); err != nil {
			return "", err
		}
	}

	telemetry.TagStackOperation(ctx, "put", w.inner.stackID, func(ctx context.Context) {
		id, err = w.inner.put(ctx, payload, filename, extra)
	})
	return id, err
}

// Close finalizes the currently open stack, if any. Close is idempotent.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.inner == nil {
		return nil
	}
	err := w.inner.close(ctx)
	w.inner = nil
	return err
}

func (w *Writer) rollover(ctx context.Context) error {
	ctx, span := telemetry.StartWriterSpan(ctx, telemetry.SpanWriterRollover, w.opts.Prefix)
	defer span.End()

	if w.inner != nil {
		if err := w.inner.close(ctx); err != nil {
			return err
		}
		w.inner = nil
	}

	stackID, err := w.alloc.NextStackID(ctx)
	if err != nil {
		return stackerr.Wrap(stackerr.ControllerError, err, "allocate next stack_id")
	}

	inner, err := openInner(ctx, w.store, w.opts.Prefix, stackID)
	if err != nil {
		return err
	}
	logger.Debug("opened stack", logger.StackID(stackID), logger.Prefix(w.opts.Prefix))
	w.inner = inner
	if w.opts.Metrics != nil {
		w.opts.Metrics.RecordRollover()
	}
	return nil
}
