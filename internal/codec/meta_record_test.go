package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaRecordRoundTrip(t *testing.T) {
	m := MetaRecord{
		CreateTime: 1700000000,
		OffsetData: 4096,
		SizeData:   128,
		Cookie:     0xcafef00d,
		Filename:   "report.pdf",
		Extra:      []byte("user-tag"),
	}
	enc, err := m.Encode()
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(enc, []byte("\n")))

	got, err := DecodeMetaRecord(enc)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMetaRecordRoundTripWithoutExtra(t *testing.T) {
	m := MetaRecord{CreateTime: 1, OffsetData: 4096, SizeData: 1, Cookie: 1, Filename: "a"}
	enc, err := m.Encode()
	require.NoError(t, err)

	got, err := DecodeMetaRecord(enc)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMetaMagicLine(t *testing.T) {
	line := MetaMagicLine(55)
	require.Len(t, line, MetaMagicLineLen)
	assert.Equal(t, byte('\n'), line[len(line)-1])

	h, err := DecodeMagicHeader(line[:MagicHeaderLen], KindMeta, 55)
	require.NoError(t, err)
	assert.Equal(t, uint64(55), h.StackID)
}

func TestReadMetaMagicLine(t *testing.T) {
	line := MetaMagicLine(7)
	h, err := ReadMetaMagicLine(bytes.NewReader(line), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), h.StackID)
}

func TestMetaLineReaderSequentialReads(t *testing.T) {
	m1 := MetaRecord{CreateTime: 1, OffsetData: 4096, SizeData: 1, Cookie: 1, Filename: "a"}
	m2 := MetaRecord{CreateTime: 2, OffsetData: 8192, SizeData: 2, Cookie: 2, Filename: "bb"}

	e1, err := m1.Encode()
	require.NoError(t, err)
	e2, err := m2.Encode()
	require.NoError(t, err)

	stream := append(append([]byte{}, e1...), e2...)
	r := NewMetaLineReader(bytes.NewReader(stream))

	got1, err := r.ReadRecord(uint32(len(e1)))
	require.NoError(t, err)
	assert.Equal(t, m1, got1)

	got2, err := r.ReadRecord(uint32(len(e2)))
	require.NoError(t, err)
	assert.Equal(t, m2, got2)
}
