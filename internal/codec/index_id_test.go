package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexIDRoundTrip(t *testing.T) {
	id := IndexID{StackID: 12, OffsetData: 0x1000, Cookie: 0xdeadbeef}
	s := id.String()

	got, err := ParseIndexID(s)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestIndexIDStringFormat(t *testing.T) {
	id := IndexID{StackID: 1, OffsetData: 0x1000, Cookie: 0x000000ff}
	assert.Equal(t, "1,1000000000ff", id.String())
}

func TestParseIndexIDNoComma(t *testing.T) {
	_, err := ParseIndexID("nocommahere")
	require.Error(t, err)
}

func TestParseIndexIDTooShort(t *testing.T) {
	_, err := ParseIndexID("1,abc")
	require.Error(t, err)
}

func TestParseIndexIDBadStackID(t *testing.T) {
	_, err := ParseIndexID("notanumber,100000000ff")
	require.Error(t, err)
}

func TestParseIndexIDZeroOffset(t *testing.T) {
	id := IndexID{StackID: 0, OffsetData: 0, Cookie: 0}
	got, err := ParseIndexID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
