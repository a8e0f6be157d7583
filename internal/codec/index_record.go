package codec

import (
	"encoding/binary"

	"github.com/marmos91/stackhaus/internal/stackerr"
)

// IndexRecordLen is the fixed encoded length of an IndexRecord, in bytes.
const IndexRecordLen = 28

// IndexRecord is the authoritative locator for a data record: one fixed
// 28-byte entry per record, written back to back in the idx object. A
// reader that has validated the idx object's magic header may mass-read
// the remainder and slice it into IndexRecordLen chunks without further
// synchronization.
type IndexRecord struct {
	Cookie     uint32
	OffsetData uint64
	SizeData   uint32
	OffsetMeta uint64
	SizeMeta   uint32
}

// Encode serializes the record to its 28-byte little-endian wire form:
// cookie, offset_data, size_data, offset_meta, size_meta.
func (r IndexRecord) Encode() []byte {
	buf := make([]byte, IndexRecordLen)
	binary.LittleEndian.PutUint32(buf[0:4], r.Cookie)
	binary.LittleEndian.PutUint64(buf[4:12], r.OffsetData)
	binary.LittleEndian.PutUint32(buf[12:16], r.SizeData)
	binary.LittleEndian.PutUint64(buf[16:24], r.OffsetMeta)
	binary.LittleEndian.PutUint32(buf[24:28], r.SizeMeta)
	return buf
}

// DecodeIndexRecord parses a single 28-byte index record.
func DecodeIndexRecord(buf []byte) (IndexRecord, error) {
	if len(buf) < IndexRecordLen {
		return IndexRecord{}, stackerr.Newf(stackerr.IOError,
			"short index record: got %d bytes, want %d", len(buf), IndexRecordLen)
	}
	return IndexRecord{
		Cookie:     binary.LittleEndian.Uint32(buf[0:4]),
		OffsetData: binary.LittleEndian.Uint64(buf[4:12]),
		SizeData:   binary.LittleEndian.Uint32(buf[12:16]),
		OffsetMeta: binary.LittleEndian.Uint64(buf[16:24]),
		SizeMeta:   binary.LittleEndian.Uint32(buf[24:28]),
	}, nil
}

// DecodeIndexRecords slices a mass-read buffer of back-to-back index
// records. Trailing bytes shorter than IndexRecordLen are a corrupt idx
// object and surface as an IOError rather than being silently dropped.
func DecodeIndexRecords(buf []byte) ([]IndexRecord, error) {
	if len(buf)%IndexRecordLen != 0 {
		return nil, stackerr.Newf(stackerr.IOError,
			"idx object body length %d is not a multiple of record size %d", len(buf), IndexRecordLen)
	}
	n := len(buf) / IndexRecordLen
	out := make([]IndexRecord, n)
	for i := 0; i < n; i++ {
		rec, err := DecodeIndexRecord(buf[i*IndexRecordLen : (i+1)*IndexRecordLen])
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}
