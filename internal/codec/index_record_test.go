package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRecordRoundTrip(t *testing.T) {
	rec := IndexRecord{
		Cookie:     0xdeadbeef,
		OffsetData: 4096,
		SizeData:   128,
		OffsetMeta: 16,
		SizeMeta:   64,
	}
	buf := rec.Encode()
	require.Len(t, buf, IndexRecordLen)

	got, err := DecodeIndexRecord(buf)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestDecodeIndexRecordsMassRead(t *testing.T) {
	recs := []IndexRecord{
		{Cookie: 1, OffsetData: 4096, SizeData: 10, OffsetMeta: 0, SizeMeta: 20},
		{Cookie: 2, OffsetData: 8192, SizeData: 20, OffsetMeta: 20, SizeMeta: 25},
		{Cookie: 3, OffsetData: 12288, SizeData: 30, OffsetMeta: 45, SizeMeta: 30},
	}

	var buf []byte
	for _, r := range recs {
		buf = append(buf, r.Encode()...)
	}

	got, err := DecodeIndexRecords(buf)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestDecodeIndexRecordsRejectsMisalignedBuffer(t *testing.T) {
	_, err := DecodeIndexRecords(make([]byte, IndexRecordLen+1))
	require.Error(t, err)
}

func TestDecodeIndexRecordsEmptyBuffer(t *testing.T) {
	got, err := DecodeIndexRecords(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
