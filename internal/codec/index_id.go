package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marmos91/stackhaus/internal/stackerr"
)

// IndexID identifies a single record across the whole system: the stack it
// lives in, its byte offset into that stack's data object, and the cookie
// that guards against offset guessing.
type IndexID struct {
	StackID    uint64
	OffsetData uint64
	Cookie     uint32
}

// String renders the canonical textual form:
// "{stack_id},{offset_data:hex-no-pad}{cookie:08hex}".
func (id IndexID) String() string {
	return fmt.Sprintf("%d,%x%08x", id.StackID, id.OffsetData, id.Cookie)
}

// ParseIndexID parses the canonical textual form produced by String.
// Parsing splits at the first comma; the last eight characters of the
// right-hand half are the cookie, and everything before that is the
// hex-encoded offset, so that an index ID round-trips through any
// external catalog that stores it as an opaque string.
func ParseIndexID(s string) (IndexID, error) {
	commaIdx := strings.IndexByte(s, ',')
	if commaIdx < 0 {
		return IndexID{}, stackerr.Newf(stackerr.InvalidArgument,
			"index identifier %q has no comma separator", s)
	}
	left := s[:commaIdx]
	right := s[commaIdx+1:]

	if len(right) < 8 {
		return IndexID{}, stackerr.Newf(stackerr.InvalidArgument,
			"index identifier %q: offset+cookie part too short", s)
	}

	cookieHex := right[len(right)-8:]
	offsetHex := right[:len(right)-8]

	stackID, err := strconv.ParseUint(left, 10, 64)
	if err != nil {
		return IndexID{}, stackerr.Wrap(stackerr.InvalidArgument, err,
			fmt.Sprintf("index identifier %q: invalid stack_id", s))
	}

	offset, err := strconv.ParseUint(offsetHex, 16, 64)
	if err != nil {
		return IndexID{}, stackerr.Wrap(stackerr.InvalidArgument, err,
			fmt.Sprintf("index identifier %q: invalid offset", s))
	}

	cookie, err := strconv.ParseUint(cookieHex, 16, 32)
	if err != nil {
		return IndexID{}, stackerr.Wrap(stackerr.InvalidArgument, err,
			fmt.Sprintf("index identifier %q: invalid cookie", s))
	}

	return IndexID{StackID: stackID, OffsetData: offset, Cookie: uint32(cookie)}, nil
}
