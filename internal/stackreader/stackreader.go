// Package stackreader implements read access to stacks written by
// stackwriter: enumeration (list, list_al, list_stack), random-access
// fetch by index identifier, and the finite forward-only meta/data
// iterators.
package stackreader

import (
	"context"
	"time"

	"github.com/marmos91/stackhaus/internal/codec"
	"github.com/marmos91/stackhaus/internal/objectstore"
	"github.com/marmos91/stackhaus/internal/stackerr"
	"github.com/marmos91/stackhaus/internal/telemetry"
)

// Reader reads stacks under a fixed prefix from an ObjectStore.
type Reader struct {
	store   objectstore.ObjectStore
	prefix  string
	metrics Metrics
}

// New returns a Reader over stacks under prefix.
func New(store objectstore.ObjectStore, prefix string) *Reader {
	return &Reader{store: store, prefix: prefix}
}

// SetMetrics attaches a Metrics collector. Nil detaches it.
func (r *Reader) SetMetrics(m Metrics) {
	r.metrics = m
}

// StackInfo summarizes one stack for list_al.
type StackInfo struct {
	StackID  uint64
	FullSize uint64 // sum of size_data across all records; excludes header, padding, and meta/idx bytes
}

// List enumerates the stack_ids present under the reader's prefix by
// finding every object whose key matches "{prefix}0x{hex}.idx".
func (r *Reader) List(ctx context.Context) (ids map[uint64]struct{}, err error) {
	ctx, span := telemetry.StartReaderSpan(ctx, telemetry.SpanReaderList, r.prefix)
	defer span.End()

	start := time.Now()
	defer func() {
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
		if r.metrics != nil {
			r.metrics.ObserveList(time.Since(start), err)
		}
	}()

	it, err := r.store.List(ctx, r.prefix)
	if err != nil {
		return nil, err
	}

	out := make(map[uint64]struct{})
	for it.Next(ctx) {
		id, ok := codec.ParseStackIDFromIdxKey(r.prefix, it.Entry().Name)
		if !ok {
			continue
		}
		out[id] = struct{}{}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAl enumerates stacks like List, additionally reading each stack's
// idx object to compute FullSize as the sum of size_data across its
// records (payload bytes only, not padding or header overhead).
func (r *Reader) ListAl(ctx context.Context) ([]StackInfo, error) {
	ids, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]StackInfo, 0, len(ids))
	for id := range ids {
		recs, err := r.ListStack(ctx, id)
		if err != nil {
			return nil, err
		}
		var full uint64
		for _, rec := range recs {
			full += uint64(rec.SizeData)
		}
		out = append(out, StackInfo{StackID: id, FullSize: full})
	}
	return out, nil
}

// ListStack reads the idx object for stackID in two phases: a ranged
// read of [0, 16) to validate the magic header and stack_id, then a
// ranged read of [16, end) sliced into 28-byte index records.
func (r *Reader) ListStack(ctx context.Context, stackID uint64) ([]codec.IndexRecord, error) {
	idxKey := codec.ObjectKey(r.prefix, stackID, codec.ExtIndex)

	header, err := r.store.RangeRead(ctx, idxKey, objectstore.Span(0, codec.MagicHeaderLen))
	if err != nil {
		return nil, err
	}
	if _, err := codec.DecodeMagicHeader(header, codec.KindIndex, stackID); err != nil {
		return nil, err
	}

	body, err := r.store.RangeRead(ctx, idxKey, objectstore.From(codec.MagicHeaderLen))
	if err != nil {
		return nil, err
	}
	return codec.DecodeIndexRecords(body)
}

// Fetch resolves indexID to its payload bytes. When checkCRC is true,
// the payload's CRC32C is verified against the record header before
// returning.
func (r *Reader) Fetch(ctx context.Context, indexID string, checkCRC bool) (payload []byte, err error) {
	ctx, span := telemetry.StartReaderSpan(ctx, telemetry.SpanReaderFetch, r.prefix,
		telemetry.IndexID(indexID), telemetry.CheckCRC(checkCRC))
	defer span.End()

	start := time.Now()
	defer func() {
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
		if r.metrics != nil {
			r.metrics.ObserveFetch(len(payload), time.Since(start), err)
		}
	}()

	id, err := codec.ParseIndexID(indexID)
	if err != nil {
		return nil, err
	}

	telemetry.TagStackOperation(ctx, "fetch", id.StackID, func(ctx context.Context) {
		payload, err = r.fetchFromStack(ctx, id, indexID, checkCRC)
	})
	return payload, err
}

func (r *Reader) fetchFromStack(ctx context.Context, id codec.IndexID, indexID string, checkCRC bool) ([]byte, error) {
	dataKey := codec.ObjectKey(r.prefix, id.StackID, codec.ExtData)

	headerBytes, err := r.store.RangeRead(ctx, dataKey, objectstore.Span(int64(id.OffsetData), int64(id.OffsetData)+codec.DataRecordHeaderLen))
	if err != nil {
		return nil, err
	}
	header, err := codec.DecodeDataRecordHeader(headerBytes)
	if err != nil {
		return nil, err
	}

	if header.Cookie != id.Cookie {
		return nil, stackerr.Newf(stackerr.InvalidArgument,
			"cookie mismatch fetching %q: header cookie 0x%x does not match requested cookie 0x%x",
			indexID, header.Cookie, id.Cookie)
	}

	payloadStart := int64(id.OffsetData) + codec.DataRecordHeaderLen
	payload, err := r.store.RangeRead(ctx, dataKey, objectstore.Span(payloadStart, payloadStart+int64(header.Size)))
	if err != nil {
		return nil, err
	}

	if checkCRC {
		if got := codec.ChecksumCRC32C(payload); got != header.CRC {
			return nil, stackerr.Newf(stackerr.CrcMismatch,
				"fetch %q: computed CRC32C 0x%x does not match header CRC 0x%x", indexID, got, header.CRC)
		}
	}

	return payload, nil
}
