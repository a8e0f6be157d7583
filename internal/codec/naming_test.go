package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeyFormat(t *testing.T) {
	assert.Equal(t, "stacks/0x002a.idx", ObjectKey("stacks/", 42, ExtIndex))
	assert.Equal(t, "stacks/0x002a.data", ObjectKey("stacks/", 42, ExtData))
	assert.Equal(t, "stacks/0x002a.meta", ObjectKey("stacks/", 42, ExtMeta))
}

func TestObjectKeyUnboundedWidth(t *testing.T) {
	key := ObjectKey("p/", 0x123456789, ExtIndex)
	assert.Equal(t, "p/0x123456789.idx", key)
}

func TestParseStackIDFromIdxKey(t *testing.T) {
	key := ObjectKey("stacks/", 42, ExtIndex)
	id, ok := ParseStackIDFromIdxKey("stacks/", key)
	require.True(t, ok)
	assert.Equal(t, uint64(42), id)
}

func TestParseStackIDFromIdxKeyRejectsOtherExtensions(t *testing.T) {
	key := ObjectKey("stacks/", 42, ExtData)
	_, ok := ParseStackIDFromIdxKey("stacks/", key)
	assert.False(t, ok)
}

func TestParseStackIDFromIdxKeyRejectsWrongPrefix(t *testing.T) {
	key := ObjectKey("stacks/", 42, ExtIndex)
	_, ok := ParseStackIDFromIdxKey("other/", key)
	assert.False(t, ok)
}

func TestValidatePrefix(t *testing.T) {
	require.NoError(t, ValidatePrefix(""))
	require.NoError(t, ValidatePrefix("stacks/"))
	require.Error(t, ValidatePrefix("stacks"))
}
