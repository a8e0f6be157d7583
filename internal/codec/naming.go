package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marmos91/stackhaus/internal/stackerr"
)

// Extension identifies one of the three sibling objects that make up a
// stack on the object store.
type Extension string

const (
	ExtData  Extension = "data"
	ExtIndex Extension = "idx"
	ExtMeta  Extension = "meta"
)

// ObjectKey returns the object-store key for stackID's ext object under
// prefix: "{prefix}0x{stack_id:04x}.{ext}", lower-case hex, zero-padded to
// at least four digits, unbounded upward.
func ObjectKey(prefix string, stackID uint64, ext Extension) string {
	return fmt.Sprintf("%s0x%04x.%s", prefix, stackID, ext)
}

// idxExtSuffix is the ".idx" ending of an idx object's key ("0x{hex}.idx"),
// the form Stack Reader's list() enumerates to discover stack identifiers.
const idxExtSuffix = ".idx"

// ParseStackIDFromIdxKey extracts the stack_id from an idx object's key,
// given the prefix it was listed under. It returns false if key does not
// match the "{prefix}0x{hex}.idx" naming convention.
func ParseStackIDFromIdxKey(prefix, key string) (uint64, bool) {
	if !strings.HasPrefix(key, prefix) {
		return 0, false
	}
	rest := key[len(prefix):]
	if !strings.HasSuffix(rest, idxExtSuffix) {
		return 0, false
	}
	rest = strings.TrimSuffix(rest, idxExtSuffix)
	if !strings.HasPrefix(rest, "0x") {
		return 0, false
	}
	hexPart := rest[2:]
	id, err := strconv.ParseUint(hexPart, 16, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ValidatePrefix enforces the caller-supplied-prefix contract: prefix must
// end in "/".
func ValidatePrefix(prefix string) error {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		return stackerr.Newf(stackerr.ConfigError, "prefix %q must end in \"/\"", prefix)
	}
	return nil
}
