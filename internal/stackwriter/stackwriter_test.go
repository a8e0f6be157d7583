package stackwriter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/stackhaus/internal/codec"
	"github.com/marmos91/stackhaus/internal/objectstore"
	"github.com/marmos91/stackhaus/internal/objectstore/memstore"
)

type fakeMetrics struct {
	puts      int
	rollovers int
	lastBytes int
	lastErr   error
}

func (f *fakeMetrics) ObservePut(bytes int, duration time.Duration, err error) {
	f.puts++
	f.lastBytes = bytes
	f.lastErr = err
}

func (f *fakeMetrics) RecordRollover() {
	f.rollovers++
}

type sequentialAllocator struct {
	next uint64
}

func (a *sequentialAllocator) NextStackID(ctx context.Context) (uint64, error) {
	id := a.next
	a.next++
	return id, nil
}

func TestPutWritesAllThreeObjects(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	alloc := &sequentialAllocator{}
	w := New(store, alloc, Options{Prefix: "stacks/"})

	id, err := w.Put(ctx, []byte("hello"), "hello.txt", nil)
	require.NoError(t, err)
	require.NoError(t, w.Close(ctx))

	parsed, err := codec.ParseIndexID(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), parsed.StackID)

	dataKey := codec.ObjectKey("stacks/", 0, codec.ExtData)
	metaKey := codec.ObjectKey("stacks/", 0, codec.ExtMeta)
	idxKey := codec.ObjectKey("stacks/", 0, codec.ExtIndex)

	for _, key := range []string{dataKey, metaKey, idxKey} {
		_, err := store.Metadata(ctx, key)
		assert.NoError(t, err, "expected object %q to exist", key)
	}
}

func TestPutRecordPlacementMatchesInvariants(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	alloc := &sequentialAllocator{}
	w := New(store, alloc, Options{Prefix: "stacks/"})

	id1, err := w.Put(ctx, []byte("first"), "a.txt", nil)
	require.NoError(t, err)
	id2, err := w.Put(ctx, []byte("second-payload"), "b.txt", nil)
	require.NoError(t, err)
	require.NoError(t, w.Close(ctx))

	parsed1, err := codec.ParseIndexID(id1)
	require.NoError(t, err)
	parsed2, err := codec.ParseIndexID(id2)
	require.NoError(t, err)

	// record 0 begins at the reserved header boundary
	assert.Equal(t, uint64(codec.Alignment), parsed1.OffsetData)
	// record 1 begins one full aligned span later
	assert.Equal(t, uint64(codec.RecordSpanLen(5)), parsed2.OffsetData-parsed1.OffsetData)

	idxBytes, err := store.RangeRead(ctx, codec.ObjectKey("stacks/", 0, codec.ExtIndex), objectstore.Open())
	require.NoError(t, err)
	idxBody := idxBytes[codec.MagicHeaderLen:]
	recs, err := codec.DecodeIndexRecords(idxBody)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, parsed1.Cookie, recs[0].Cookie)
	assert.Equal(t, parsed1.OffsetData, recs[0].OffsetData)
	assert.Equal(t, uint32(len("first")), recs[0].SizeData)
}

func TestRolloverOnSizeCeiling(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	alloc := &sequentialAllocator{}
	// A tiny ceiling forces a rollover on the second put.
	w := New(store, alloc, Options{Prefix: "stacks/", MaxStackBytes: uint64(codec.Alignment)})

	id1, err := w.Put(ctx, []byte("x"), "x.txt", nil)
	require.NoError(t, err)
	id2, err := w.Put(ctx, []byte("y"), "y.txt", nil)
	require.NoError(t, err)
	require.NoError(t, w.Close(ctx))

	p1, err := codec.ParseIndexID(id1)
	require.NoError(t, err)
	p2, err := codec.ParseIndexID(id2)
	require.NoError(t, err)
	assert.NotEqual(t, p1.StackID, p2.StackID, "expected rollover to assign a new stack_id")
}

func TestCloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	alloc := &sequentialAllocator{}
	w := New(store, alloc, Options{Prefix: "stacks/"})

	_, err := w.Put(ctx, []byte("x"), "x.txt", nil)
	require.NoError(t, err)
	require.NoError(t, w.Close(ctx))
	require.NoError(t, w.Close(ctx))
}

func TestPutAndRolloverRecordMetrics(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	alloc := &sequentialAllocator{}
	fm := &fakeMetrics{}
	w := New(store, alloc, Options{Prefix: "stacks/", MaxStackBytes: uint64(codec.Alignment), Metrics: fm})

	_, err := w.Put(ctx, []byte("x"), "x.txt", nil)
	require.NoError(t, err)
	_, err = w.Put(ctx, []byte("y"), "y.txt", nil)
	require.NoError(t, err)
	require.NoError(t, w.Close(ctx))

	assert.Equal(t, 2, fm.puts)
	assert.Equal(t, 2, fm.rollovers, "expected one rollover for the initial open and one for the size-ceiling rollover")
	assert.NoError(t, fm.lastErr)
}

func TestPutAcceptsEmptyPayload(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	alloc := &sequentialAllocator{}
	w := New(store, alloc, Options{Prefix: "stacks/"})

	// A payload over 4 GiB cannot be allocated in a test, so the u32
	// overflow branch (a single comparison on len(payload)) is not
	// exercised here; this test confirms a zero-length payload is accepted.
	_, err := w.Put(ctx, []byte{}, "empty", nil)
	require.NoError(t, err)
}
