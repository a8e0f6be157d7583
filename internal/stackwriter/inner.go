package stackwriter

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/stackhaus/internal/codec"
	"github.com/marmos91/stackhaus/internal/objectstore"
	"github.com/marmos91/stackhaus/internal/stackerr"
)

type innerState int

const (
	stateOpening innerState = iota
	stateAppending
	stateClosing
	stateClosed
)

// innerWriter owns the three open streams for one stack and tracks the
// bookkeeping (offsets, accumulated size) needed to compute each new
// record's placement.
type innerWriter struct {
	stackID uint64

	dataW objectstore.Writer
	metaW objectstore.Writer
	idxW  objectstore.Writer

	state           innerState
	dataOffset      uint64
	metaOffset      uint64
	accumulatedSize uint64
}

// openInner allocates the three sibling objects for stackID, writes all
// three magic headers, and transitions Opening -> Appending.
func openInner(ctx context.Context, store objectstore.ObjectStore, prefix string, stackID uint64) (*innerWriter, error) {
	dataKey := codec.ObjectKey(prefix, stackID, codec.ExtData)
	metaKey := codec.ObjectKey(prefix, stackID, codec.ExtMeta)
	idxKey := codec.ObjectKey(prefix, stackID, codec.ExtIndex)

	dataW, err := store.StreamWriter(ctx, dataKey)
	if err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("open data writer for stack %d", stackID))
	}
	metaW, err := store.StreamWriter(ctx, metaKey)
	if err != nil {
		dataW.Close()
		return nil, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("open meta writer for stack %d", stackID))
	}
	idxW, err := store.StreamWriter(ctx, idxKey)
	if err != nil {
		dataW.Close()
		metaW.Close()
		return nil, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("open idx writer for stack %d", stackID))
	}

	iw := &innerWriter{stackID: stackID, dataW: dataW, metaW: metaW, idxW: idxW, state: stateOpening}

	dataHeader := make([]byte, codec.Alignment)
	copy(dataHeader, codec.NewMagicHeader(codec.KindData, stackID).Encode())
	if _, err := dataW.Write(dataHeader); err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, "write data magic header")
	}

	metaMagic := codec.MetaMagicLine(stackID)
	if _, err := metaW.Write(metaMagic); err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, "write meta magic line")
	}

	idxMagic := codec.NewMagicHeader(codec.KindIndex, stackID).Encode()
	if _, err := idxW.Write(idxMagic); err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, "write idx magic header")
	}

	iw.dataOffset = codec.Alignment
	iw.metaOffset = uint64(len(metaMagic))
	iw.state = stateAppending
	return iw, nil
}

// put writes one record across all three streams in the fixed order
// index -> meta -> data, and advances the bookkeeping offsets.
func (iw *innerWriter) put(ctx context.Context, payload []byte, filename string, extra []byte) (string, error) {
	if iw.state != stateAppending {
		return "", stackerr.Newf(stackerr.IOError, "put on inner writer in state %d", iw.state)
	}

	size := uint32(len(payload))
	cookie := codec.NewCookie()

	meta := codec.MetaRecord{
		CreateTime: uint64(time.Now().Unix()),
		OffsetData: iw.dataOffset,
		SizeData:   size,
		Cookie:     cookie,
		Filename:   filename,
		Extra:      extra,
	}
	metaBytes, err := meta.Encode()
	if err != nil {
		return "", err
	}
	sizeMeta := uint32(len(metaBytes))

	idxRec := codec.IndexRecord{
		Cookie:     cookie,
		OffsetData: iw.dataOffset,
		SizeData:   size,
		OffsetMeta: iw.metaOffset,
		SizeMeta:   sizeMeta,
	}

	indexID := codec.IndexID{StackID: iw.stackID, OffsetData: iw.dataOffset, Cookie: cookie}

	if _, err := iw.idxW.Write(idxRec.Encode()); err != nil {
		return "", stackerr.Wrap(stackerr.IOError, err, "write index record")
	}
	if _, err := iw.metaW.Write(metaBytes); err != nil {
		return "", stackerr.Wrap(stackerr.IOError, err, "write meta record")
	}
	dataRecord := codec.EncodeDataRecord(cookie, payload)
	if _, err := iw.dataW.Write(dataRecord); err != nil {
		return "", stackerr.Wrap(stackerr.IOError, err, "write data record")
	}

	iw.metaOffset += uint64(sizeMeta)
	iw.dataOffset += uint64(len(dataRecord))
	iw.accumulatedSize += uint64(len(dataRecord))

	return indexID.String(), nil
}

// close finalizes the stack: flush order is data, meta, index — the
// reverse of their write order, so a reader never finds an index record
// that points at data which isn't durable yet. Idempotent.
func (iw *innerWriter) close(ctx context.Context) error {
	if iw.state == stateClosed {
		return nil
	}
	iw.state = stateClosing

	var firstErr error
	if err := iw.dataW.Close(); err != nil && firstErr == nil {
		firstErr = stackerr.Wrap(stackerr.CloseError, err, "close data stream")
	}
	if err := iw.metaW.Close(); err != nil && firstErr == nil {
		firstErr = stackerr.Wrap(stackerr.CloseError, err, "close meta stream")
	}
	if err := iw.idxW.Close(); err != nil && firstErr == nil {
		firstErr = stackerr.Wrap(stackerr.CloseError, err, "close idx stream")
	}

	iw.state = stateClosed
	return firstErr
}
