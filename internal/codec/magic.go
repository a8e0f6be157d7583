// Package codec implements the on-disk binary layout shared by the data,
// idx, and meta objects that make up a stack: magic headers, the fixed-size
// index record, the 4096-aligned data record, and the newline-delimited
// JSON meta record.
//
// Everything here is pure encode/decode: no I/O, no object-store
// dependency. stackwriter and stackreader drive these codecs against an
// objectstore.ObjectStore.
package codec

import (
	"encoding/binary"

	"github.com/marmos91/stackhaus/internal/stackerr"
)

// FileKind distinguishes the three sibling objects that make up a stack.
type FileKind int

const (
	KindData FileKind = iota
	KindIndex
	KindMeta
)

// Magic values, one per file kind. A misrouted file is rejected immediately
// because its leading 8 bytes will not match the kind the reader expected.
const (
	MagicData  uint64 = 47494638
	MagicIndex uint64 = 5201314
	MagicMeta  uint64 = 1314920
)

// DataRecordMagicStart and DataRecordMagicEnd delimit each data record's
// 20-byte header so a reader that has lost synchronization can re-align to
// the next 4096-byte boundary.
const (
	DataRecordMagicStart uint32 = 257758
	DataRecordMagicEnd   uint32 = 857752
)

// Alignment is the data-object record alignment in bytes. Record 0 begins
// at offset Alignment (the reserved header region); every subsequent record
// begins on an Alignment-byte boundary.
const Alignment = 4096

// MagicHeaderLen is the encoded length of a MagicHeader: 8 bytes of magic
// followed by 8 bytes of stack_id, both little-endian.
const MagicHeaderLen = 16

func magicFor(kind FileKind) uint64 {
	switch kind {
	case KindData:
		return MagicData
	case KindIndex:
		return MagicIndex
	case KindMeta:
		return MagicMeta
	default:
		return 0
	}
}

func (k FileKind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindIndex:
		return "idx"
	case KindMeta:
		return "meta"
	default:
		return "unknown"
	}
}

// MagicHeader is the fixed preamble written at the start of every data,
// idx, and meta object, tying it to the stack_id it belongs to.
type MagicHeader struct {
	Magic   uint64
	StackID uint64
}

// Encode serializes the header to its 16-byte little-endian wire form.
func (h MagicHeader) Encode() []byte {
	buf := make([]byte, MagicHeaderLen)
	binary.LittleEndian.PutUint64(buf[0:8], h.Magic)
	binary.LittleEndian.PutUint64(buf[8:16], h.StackID)
	return buf
}

// NewMagicHeader builds the magic header for kind and stackID.
func NewMagicHeader(kind FileKind, stackID uint64) MagicHeader {
	return MagicHeader{Magic: magicFor(kind), StackID: stackID}
}

// DecodeMagicHeader parses and validates a magic header against the
// expected kind and stackID. It returns stackerr.MagicMismatch if either
// the magic number or the embedded stack_id disagrees with what the
// caller expected: the three sibling objects of a stack must all embed
// the same stack_id as the one the caller asked for.
func DecodeMagicHeader(buf []byte, kind FileKind, wantStackID uint64) (MagicHeader, error) {
	if len(buf) < MagicHeaderLen {
		return MagicHeader{}, stackerr.Newf(stackerr.MagicMismatch,
			"short magic header: got %d bytes, want %d", len(buf), MagicHeaderLen)
	}
	h := MagicHeader{
		Magic:   binary.LittleEndian.Uint64(buf[0:8]),
		StackID: binary.LittleEndian.Uint64(buf[8:16]),
	}
	want := magicFor(kind)
	if h.Magic != want {
		return MagicHeader{}, stackerr.Newf(stackerr.MagicMismatch,
			"%s file: magic 0x%x does not match expected 0x%x", kind, h.Magic, want)
	}
	if h.StackID != wantStackID {
		return MagicHeader{}, stackerr.Newf(stackerr.MagicMismatch,
			"%s file: embedded stack_id %d does not match requested stack_id %d", kind, h.StackID, wantStackID)
	}
	return h, nil
}

// DecodeMagicHeaderAny parses a magic header without checking the embedded
// stack_id against an expected value, returning the stack_id it carries.
// Used by readers enumerating stacks under a prefix, where the stack_id is
// discovered from the header rather than known in advance.
func DecodeMagicHeaderAny(buf []byte, kind FileKind) (MagicHeader, error) {
	if len(buf) < MagicHeaderLen {
		return MagicHeader{}, stackerr.Newf(stackerr.MagicMismatch,
			"short magic header: got %d bytes, want %d", len(buf), MagicHeaderLen)
	}
	h := MagicHeader{
		Magic:   binary.LittleEndian.Uint64(buf[0:8]),
		StackID: binary.LittleEndian.Uint64(buf[8:16]),
	}
	if h.Magic != magicFor(kind) {
		return MagicHeader{}, stackerr.Newf(stackerr.MagicMismatch,
			"%s file: magic 0x%x does not match expected 0x%x", kind, h.Magic, magicFor(kind))
	}
	return h, nil
}
