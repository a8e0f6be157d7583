package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/stackhaus/internal/stackerr"
)

func TestMagicHeaderRoundTrip(t *testing.T) {
	for _, kind := range []FileKind{KindData, KindIndex, KindMeta} {
		h := NewMagicHeader(kind, 42)
		buf := h.Encode()
		require.Len(t, buf, MagicHeaderLen)

		got, err := DecodeMagicHeader(buf, kind, 42)
		require.NoError(t, err)
		assert.Equal(t, h, got)
	}
}

func TestMagicHeaderRejectsWrongKind(t *testing.T) {
	h := NewMagicHeader(KindData, 1)
	_, err := DecodeMagicHeader(h.Encode(), KindIndex, 1)
	require.Error(t, err)
	assert.Equal(t, stackerr.MagicMismatch, stackerr.KindOf(err))
}

func TestMagicHeaderRejectsWrongStackID(t *testing.T) {
	h := NewMagicHeader(KindData, 1)
	_, err := DecodeMagicHeader(h.Encode(), KindData, 2)
	require.Error(t, err)
	assert.Equal(t, stackerr.MagicMismatch, stackerr.KindOf(err))
}

func TestDecodeMagicHeaderAny(t *testing.T) {
	h := NewMagicHeader(KindMeta, 99)
	got, err := DecodeMagicHeaderAny(h.Encode(), KindMeta)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), got.StackID)
}

func TestDecodeMagicHeaderShortBuffer(t *testing.T) {
	_, err := DecodeMagicHeader([]byte{1, 2, 3}, KindData, 1)
	require.Error(t, err)
}

func TestFileKindString(t *testing.T) {
	assert.Equal(t, "data", KindData.String())
	assert.Equal(t, "idx", KindIndex.String())
	assert.Equal(t, "meta", KindMeta.String())
}
