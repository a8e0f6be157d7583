package stackreader

import (
	"context"

	"github.com/marmos91/stackhaus/internal/codec"
	"github.com/marmos91/stackhaus/internal/objectstore"
	"github.com/marmos91/stackhaus/internal/stackerr"
)

// MetaIterator walks a stack's records in ordinal order, yielding each
// record's decoded MetaRecord. It is finite, forward-only, and not
// restartable: a fresh MetaIterator must be opened to walk again.
type MetaIterator struct {
	recs   []codec.IndexRecord
	lineR  *codec.MetaLineReader
	metaR  objectstore.Reader
	idx    int
	err    error
}

// NewMetaIterator opens a MetaIterator over stackID: it reads the full
// idx object up front (so ordinal lookups are O(1)) and positions a
// reader on the meta object immediately after its magic line.
func NewMetaIterator(ctx context.Context, r *Reader, stackID uint64) (*MetaIterator, error) {
	recs, err := r.ListStack(ctx, stackID)
	if err != nil {
		return nil, err
	}

	metaKey := codec.ObjectKey(r.prefix, stackID, codec.ExtMeta)
	metaR, err := r.store.StreamReader(ctx, metaKey, objectstore.Open())
	if err != nil {
		return nil, err
	}
	if _, err := codec.ReadMetaMagicLine(metaR, stackID); err != nil {
		metaR.Close()
		return nil, err
	}

	return &MetaIterator{recs: recs, lineR: codec.NewMetaLineReader(metaR), metaR: metaR}, nil
}

// Next advances to the next record, returning false when the stack is
// exhausted or a read error occurred (check Err).
func (it *MetaIterator) Next(ctx context.Context) bool {
	if it.idx >= len(it.recs) {
		return false
	}
	it.idx++
	return true
}

// Record returns the current record's index entry and decoded meta.
func (it *MetaIterator) Record() (codec.IndexRecord, codec.MetaRecord, error) {
	rec := it.recs[it.idx-1]
	meta, err := it.lineR.ReadRecord(rec.SizeMeta)
	if err != nil {
		it.err = err
		return rec, codec.MetaRecord{}, err
	}
	return rec, meta, nil
}

func (it *MetaIterator) Err() error { return it.err }

// Close releases the underlying meta stream.
func (it *MetaIterator) Close() error { return it.metaR.Close() }

// DataIterator walks a stack's records in ordinal order, yielding each
// record's index entry, decoded meta, and raw payload bytes. It is
// finite, forward-only, and not restartable.
type DataIterator struct {
	recs  []codec.IndexRecord
	lineR *codec.MetaLineReader
	metaR objectstore.Reader
	dataR objectstore.Reader
	idx   int
	err   error
}

// NewDataIterator opens a DataIterator over stackID: idx object read up
// front, meta reader positioned past its magic line, data reader
// positioned at the reserved header boundary (offset 4096).
func NewDataIterator(ctx context.Context, r *Reader, stackID uint64) (*DataIterator, error) {
	recs, err := r.ListStack(ctx, stackID)
	if err != nil {
		return nil, err
	}

	metaKey := codec.ObjectKey(r.prefix, stackID, codec.ExtMeta)
	metaR, err := r.store.StreamReader(ctx, metaKey, objectstore.Open())
	if err != nil {
		return nil, err
	}
	if _, err := codec.ReadMetaMagicLine(metaR, stackID); err != nil {
		metaR.Close()
		return nil, err
	}

	dataKey := codec.ObjectKey(r.prefix, stackID, codec.ExtData)
	dataR, err := r.store.StreamReader(ctx, dataKey, objectstore.From(codec.Alignment))
	if err != nil {
		metaR.Close()
		return nil, err
	}

	return &DataIterator{recs: recs, lineR: codec.NewMetaLineReader(metaR), metaR: metaR, dataR: dataR}, nil
}

// Next advances to the next record.
func (it *DataIterator) Next(ctx context.Context) bool {
	if it.idx >= len(it.recs) {
		return false
	}
	it.idx++
	return true
}

// Record returns the current record's index entry, decoded meta, and
// payload bytes, validating the data record's header along the way.
func (it *DataIterator) Record() (codec.IndexRecord, codec.MetaRecord, []byte, error) {
	rec := it.recs[it.idx-1]

	meta, err := it.lineR.ReadRecord(rec.SizeMeta)
	if err != nil {
		it.err = err
		return rec, codec.MetaRecord{}, nil, err
	}

	span := codec.RecordSpanLen(rec.SizeData)
	buf := make([]byte, span)
	if err := it.dataR.ReadExact(buf); err != nil {
		it.err = err
		return rec, meta, nil, err
	}

	header, err := codec.DecodeDataRecordHeader(buf[:codec.DataRecordHeaderLen])
	if err != nil {
		it.err = err
		return rec, meta, nil, err
	}
	if header.Cookie != rec.Cookie {
		err := stackerr.Newf(stackerr.InvalidArgument, "data iterator: header cookie 0x%x does not match index cookie 0x%x", header.Cookie, rec.Cookie)
		it.err = err
		return rec, meta, nil, err
	}

	payload := buf[codec.DataRecordHeaderLen : codec.DataRecordHeaderLen+rec.SizeData]
	return rec, meta, payload, nil
}

func (it *DataIterator) Err() error { return it.err }

// Close releases the underlying meta and data streams.
func (it *DataIterator) Close() error {
	err1 := it.metaR.Close()
	err2 := it.dataR.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
