package codec

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumCRC32C(t *testing.T) {
	payload := []byte("hello stackhaus")
	want := crc32.Checksum(payload, crc32.MakeTable(crc32.Castagnoli))
	assert.Equal(t, want, ChecksumCRC32C(payload))
}

func TestDataRecordHeaderRoundTrip(t *testing.T) {
	h := DataRecordHeader{Cookie: 7, Size: 100, CRC: 0x1234abcd}
	buf := h.Encode()
	require.Len(t, buf, DataRecordHeaderLen)

	got, err := DecodeDataRecordHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestDecodeDataRecordHeaderRejectsBadStartMagic(t *testing.T) {
	h := DataRecordHeader{Cookie: 1, Size: 1, CRC: 1}
	buf := h.Encode()
	buf[0] = 0xff
	_, err := DecodeDataRecordHeader(buf)
	require.Error(t, err)
}

func TestDecodeDataRecordHeaderRejectsBadEndMagic(t *testing.T) {
	h := DataRecordHeader{Cookie: 1, Size: 1, CRC: 1}
	buf := h.Encode()
	buf[19] = 0xff
	_, err := DecodeDataRecordHeader(buf)
	require.Error(t, err)
}

func TestPaddingLenZeroPayload(t *testing.T) {
	// header (20 bytes) + 0 payload -> padded up to the next 4096 boundary.
	assert.Equal(t, Alignment-DataRecordHeaderLen, PaddingLen(0))
	assert.Equal(t, Alignment, RecordSpanLen(0))
}

func TestPaddingLenExactMultiple(t *testing.T) {
	// header + payload lands exactly on an alignment boundary: zero padding.
	size := uint32(Alignment - DataRecordHeaderLen)
	assert.Equal(t, 0, PaddingLen(size))
	assert.Equal(t, Alignment, RecordSpanLen(size))
}

func TestPaddingLenSpansMultipleAlignmentUnits(t *testing.T) {
	size := uint32(Alignment + 10)
	span := RecordSpanLen(size)
	assert.Equal(t, 0, span%Alignment)
	assert.True(t, span >= DataRecordHeaderLen+int(size))
}

func TestEncodeDataRecordLayout(t *testing.T) {
	payload := make([]byte, 10)
	for i := range payload {
		payload[i] = byte(i)
	}
	rec := EncodeDataRecord(0xaa, payload)
	assert.Equal(t, RecordSpanLen(10), len(rec))

	header, err := DecodeDataRecordHeader(rec[:DataRecordHeaderLen])
	require.NoError(t, err)
	assert.Equal(t, uint32(0xaa), header.Cookie)
	assert.Equal(t, uint32(10), header.Size)
	assert.Equal(t, ChecksumCRC32C(payload), header.CRC)

	gotPayload := rec[DataRecordHeaderLen : DataRecordHeaderLen+10]
	assert.Equal(t, payload, gotPayload)

	padding := rec[DataRecordHeaderLen+10:]
	for _, b := range padding {
		assert.Equal(t, byte(0), b)
	}
}
