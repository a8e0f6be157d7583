package stackerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndError(t *testing.T) {
	err := New(IOError, "disk full")
	assert.Equal(t, "IOError: disk full", err.Error())
}

func TestWrapIncludesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(IOError, cause, "read object")
	assert.Contains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, err, cause)
}

func TestNewfFormats(t *testing.T) {
	err := Newf(InvalidArgument, "bad offset %d", 42)
	assert.Equal(t, "InvalidArgument: bad offset 42", err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, CrcMismatch, KindOf(New(CrcMismatch, "checksum")))
	assert.Equal(t, IOError, KindOf(errors.New("plain error")))
}

func TestIsComparesKind(t *testing.T) {
	err := New(MagicMismatch, "bad header")
	require.True(t, err.Is(New(MagicMismatch, "")))
	require.False(t, err.Is(New(IOError, "")))
}

func TestKindStringAllValues(t *testing.T) {
	cases := map[Kind]string{
		InvalidArgument: "InvalidArgument",
		IOError:         "IOError",
		ConfigError:     "ConfigError",
		CloseError:      "CloseError",
		ControllerError: "ControllerError",
		CrcMismatch:     "CrcMismatch",
		MagicMismatch:   "MagicMismatch",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
}
