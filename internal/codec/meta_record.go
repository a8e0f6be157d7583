package codec

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/marmos91/stackhaus/internal/stackerr"
)

// MetaRecord holds the user-visible attributes of a record: filename,
// opaque extra bytes, and creation timestamp. It is serialized as a
// single UTF-8 JSON object terminated by "\n".
type MetaRecord struct {
	CreateTime uint64 `json:"create_time"`
	OffsetData uint64 `json:"offset_data"`
	SizeData   uint32 `json:"size_data"`
	Cookie     uint32 `json:"cookie"`
	Filename   string `json:"filename"`
	Extra      []byte `json:"extra,omitempty"` // encoding/json base64-encodes []byte automatically
}

// Encode serializes the record as a single JSON line (including the
// trailing newline). SizeMeta in the owning IndexRecord must equal
// len(Encode()).
func (m MetaRecord) Encode() ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, "encode meta record")
	}
	return append(body, '\n'), nil
}

// DecodeMetaRecord parses a single JSON meta line. The trailing newline,
// if present, is stripped before unmarshaling.
func DecodeMetaRecord(line []byte) (MetaRecord, error) {
	line = trimTrailingNewline(line)
	var m MetaRecord
	if err := json.Unmarshal(line, &m); err != nil {
		return MetaRecord{}, stackerr.Wrap(stackerr.IOError, err, "decode meta record")
	}
	return m, nil
}

func trimTrailingNewline(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		return b[:n-1]
	}
	return b
}

// MetaMagicLine is the single magic line preceding the newline-delimited
// JSON meta records in a meta object: the MagicHeader, base64-free, encoded
// as raw bytes followed by a newline so the stream stays line-oriented for
// tools that want to `head -1` it away.
func MetaMagicLine(stackID uint64) []byte {
	h := NewMagicHeader(KindMeta, stackID)
	return append(h.Encode(), '\n')
}

// MetaMagicLineLen is the fixed length of MetaMagicLine's output:
// MagicHeaderLen bytes plus the trailing newline.
const MetaMagicLineLen = MagicHeaderLen + 1

// ReadMetaMagicLine reads and validates the magic line at the start of a
// meta stream, returning the MagicHeader it carries.
func ReadMetaMagicLine(r io.Reader, wantStackID uint64) (MagicHeader, error) {
	buf := make([]byte, MetaMagicLineLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return MagicHeader{}, stackerr.Wrap(stackerr.IOError, err, "read meta magic line")
	}
	return DecodeMagicHeader(buf[:MagicHeaderLen], KindMeta, wantStackID)
}

// MetaLineReader reads newline-delimited meta records off of a
// *bufio.Reader positioned immediately after the magic line, given each
// record's known size_meta from the corresponding IndexRecord.
type MetaLineReader struct {
	r *bufio.Reader
}

// NewMetaLineReader wraps r (which must already be positioned past the
// magic line) for sequential meta record reads.
func NewMetaLineReader(r io.Reader) *MetaLineReader {
	return &MetaLineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// ReadRecord reads exactly sizeMeta bytes and decodes them as a MetaRecord.
func (m *MetaLineReader) ReadRecord(sizeMeta uint32) (MetaRecord, error) {
	buf := make([]byte, sizeMeta)
	if _, err := io.ReadFull(m.r, buf); err != nil {
		return MetaRecord{}, stackerr.Wrap(stackerr.IOError, err, "read meta record body")
	}
	return DecodeMetaRecord(buf)
}
