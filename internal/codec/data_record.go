package codec

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/marmos91/stackhaus/internal/stackerr"
)

// DataRecordHeaderLen is the fixed encoded length of a DataRecordHeader.
const DataRecordHeaderLen = 20

// crc32cTable is the Castagnoli CRC-32 table used for payload integrity,
// computed once and reused for every checksum.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// ChecksumCRC32C computes the Castagnoli CRC-32 of payload.
func ChecksumCRC32C(payload []byte) uint32 {
	return crc32.Checksum(payload, crc32cTable)
}

// DataRecordHeader precedes every record's payload in the data object.
// Two sentinel magics delimit it so a corrupted reader can re-synchronize
// to the next Alignment-byte boundary.
type DataRecordHeader struct {
	Cookie uint32
	Size   uint32
	CRC    uint32
}

// Encode serializes the header to its 20-byte little-endian wire form:
// magic_start, cookie, size, crc, magic_end.
func (h DataRecordHeader) Encode() []byte {
	buf := make([]byte, DataRecordHeaderLen)
	binary.LittleEndian.PutUint32(buf[0:4], DataRecordMagicStart)
	binary.LittleEndian.PutUint32(buf[4:8], h.Cookie)
	binary.LittleEndian.PutUint32(buf[8:12], h.Size)
	binary.LittleEndian.PutUint32(buf[12:16], h.CRC)
	binary.LittleEndian.PutUint32(buf[16:20], DataRecordMagicEnd)
	return buf
}

// DecodeDataRecordHeader parses and validates both sentinel magics. Both
// magic_start and magic_end are checked — a reader that only validated
// magic_start could walk into an offset that happens to start with the
// right 4 bytes but is not a real record boundary.
func DecodeDataRecordHeader(buf []byte) (DataRecordHeader, error) {
	if len(buf) < DataRecordHeaderLen {
		return DataRecordHeader{}, stackerr.Newf(stackerr.IOError,
			"short data record header: got %d bytes, want %d", len(buf), DataRecordHeaderLen)
	}
	start := binary.LittleEndian.Uint32(buf[0:4])
	if start != DataRecordMagicStart {
		return DataRecordHeader{}, stackerr.Newf(stackerr.MagicMismatch,
			"data record start magic 0x%x does not match expected 0x%x", start, DataRecordMagicStart)
	}
	end := binary.LittleEndian.Uint32(buf[16:20])
	if end != DataRecordMagicEnd {
		return DataRecordHeader{}, stackerr.Newf(stackerr.MagicMismatch,
			"data record end magic 0x%x does not match expected 0x%x", end, DataRecordMagicEnd)
	}
	return DataRecordHeader{
		Cookie: binary.LittleEndian.Uint32(buf[4:8]),
		Size:   binary.LittleEndian.Uint32(buf[8:12]),
		CRC:    binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

// PaddingLen returns the number of zero padding bytes that must follow a
// payload of length size so that DataRecordHeaderLen + size + padding is a
// multiple of Alignment.
func PaddingLen(size uint32) int {
	total := DataRecordHeaderLen + int(size)
	rem := total % Alignment
	if rem == 0 {
		return 0
	}
	return Alignment - rem
}

// EncodeDataRecord serializes a complete 4096-aligned data record: header,
// payload, zero padding.
func EncodeDataRecord(cookie uint32, payload []byte) []byte {
	size := uint32(len(payload))
	header := DataRecordHeader{Cookie: cookie, Size: size, CRC: ChecksumCRC32C(payload)}
	padding := PaddingLen(size)

	out := make([]byte, DataRecordHeaderLen+len(payload)+padding)
	copy(out, header.Encode())
	copy(out[DataRecordHeaderLen:], payload)
	// the tail is already zero-valued by make([]byte, ...)
	return out
}

// RecordSpanLen returns the total on-disk length (header + payload +
// padding) of a data record whose payload is size bytes.
func RecordSpanLen(size uint32) int {
	return DataRecordHeaderLen + int(size) + PaddingLen(size)
}
