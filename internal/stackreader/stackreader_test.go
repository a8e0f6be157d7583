package stackreader_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/stackhaus/internal/objectstore/memstore"
	"github.com/marmos91/stackhaus/internal/stackreader"
	"github.com/marmos91/stackhaus/internal/stackwriter"
)

type fakeMetrics struct {
	fetches int
	lists   int
}

func (f *fakeMetrics) ObserveFetch(bytes int, duration time.Duration, err error) { f.fetches++ }
func (f *fakeMetrics) ObserveList(duration time.Duration, err error)             { f.lists++ }

type sequentialAllocator struct{ next uint64 }

func (a *sequentialAllocator) NextStackID(ctx context.Context) (uint64, error) {
	id := a.next
	a.next++
	return id, nil
}

func writeFixture(t *testing.T, store *memstore.Store, prefix string, payloads []string) []string {
	t.Helper()
	ctx := context.Background()
	w := stackwriter.New(store, &sequentialAllocator{}, stackwriter.Options{Prefix: prefix})

	var ids []string
	for _, p := range payloads {
		id, err := w.Put(ctx, []byte(p), "f.bin", []byte("extra"))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, w.Close(ctx))
	return ids
}

func TestListFindsWrittenStack(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	writeFixture(t, store, "s/", []string{"a", "b"})

	r := stackreader.New(store, "s/")
	ids, err := r.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, uint64(0))
}

func TestListAlSumsSizeData(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	writeFixture(t, store, "s/", []string{"aaaa", "bb"})

	r := stackreader.New(store, "s/")
	infos, err := r.ListAl(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, uint64(6), infos[0].FullSize)
}

func TestListStackReturnsRecordsInOrder(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	writeFixture(t, store, "s/", []string{"one", "two", "three"})

	r := stackreader.New(store, "s/")
	recs, err := r.ListStack(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, uint32(3), recs[0].SizeData)
	assert.Equal(t, uint32(3), recs[1].SizeData)
	assert.Equal(t, uint32(5), recs[2].SizeData)
}

func TestFetchReturnsOriginalPayload(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	ids := writeFixture(t, store, "s/", []string{"payload-one"})

	r := stackreader.New(store, "s/")
	got, err := r.Fetch(ctx, ids[0], true)
	require.NoError(t, err)
	assert.Equal(t, "payload-one", string(got))
}

func TestFetchDetectsCookieMismatch(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	ids := writeFixture(t, store, "s/", []string{"x"})

	// flip the last hex digit of the cookie to simulate a guessed offset
	tampered := ids[0][:len(ids[0])-1] + flipHexDigit(ids[0][len(ids[0])-1])

	r := stackreader.New(store, "s/")
	_, err := r.Fetch(ctx, tampered, false)
	require.Error(t, err)
}

func flipHexDigit(b byte) string {
	if b == '0' {
		return "1"
	}
	return "0"
}

func TestMetricsRecordFetchAndList(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	ids := writeFixture(t, store, "s/", []string{"one"})

	r := stackreader.New(store, "s/")
	fm := &fakeMetrics{}
	r.SetMetrics(fm)

	_, err := r.List(ctx)
	require.NoError(t, err)
	_, err = r.Fetch(ctx, ids[0], true)
	require.NoError(t, err)

	assert.Equal(t, 1, fm.lists)
	assert.Equal(t, 1, fm.fetches)
}

func TestMetaIteratorWalksAllRecords(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	writeFixture(t, store, "s/", []string{"one", "two"})

	r := stackreader.New(store, "s/")
	it, err := stackreader.NewMetaIterator(ctx, r, 0)
	require.NoError(t, err)
	defer it.Close()

	var filenames []string
	for it.Next(ctx) {
		_, meta, err := it.Record()
		require.NoError(t, err)
		filenames = append(filenames, meta.Filename)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"f.bin", "f.bin"}, filenames)
}

func TestDataIteratorReturnsPayloads(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	writeFixture(t, store, "s/", []string{"alpha", "beta"})

	r := stackreader.New(store, "s/")
	it, err := stackreader.NewDataIterator(ctx, r, 0)
	require.NoError(t, err)
	defer it.Close()

	var payloads []string
	for it.Next(ctx) {
		_, _, payload, err := it.Record()
		require.NoError(t, err)
		payloads = append(payloads, string(payload))
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"alpha", "beta"}, payloads)
}
