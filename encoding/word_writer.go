package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/scroll-tech/go-ethereum/common"
)

// wordSize is the width of a single EVM memory store. The on-chain codec
// writes every field with one 32-byte MSTORE, so storing a uint64 also zero
// fills the 24 bytes after it:
//
//	storing batchIndex           rewrites bytes [1, 33)
//	storing l1MessagePopped      rewrites bytes [9, 41)
//	storing totalL1MessagePopped rewrites bytes [17, 49)
//
// Fields at offset >= 25 are 32 bytes wide and store exactly their own span.
const wordSize = 32

// PutUint64Word stores v at offset with word-aligned store semantics: the
// value occupies the first 8 bytes of the word and the remaining 24 bytes
// are zeroed. Callers that store several narrow fields must do so in
// ascending offset order or later bytes are silently lost; WordWriter
// enforces that order.
func PutUint64Word(buf []byte, offset int, v uint64) error {
	if offset < 0 || len(buf) < offset+wordSize {
		return fmt.Errorf("%w: word store at [%d, %d), buffer is %d bytes", ErrOutOfBounds, offset, offset+wordSize, len(buf))
	}
	binary.BigEndian.PutUint64(buf[offset:], v)
	for i := offset + u64Width; i < offset+wordSize; i++ {
		buf[i] = 0
	}
	return nil
}

// Field indices used to track assembly progress.
const (
	fieldVersion = iota
	fieldBatchIndex
	fieldL1MessagePopped
	fieldTotalL1MessagePopped
	fieldDataHash
	fieldBlobVersionedHash
	fieldPrevStateHash
	fieldPostStateHash
	fieldWithdrawRootHash
	fieldSequencerSetVerifyHash
	fieldParentBatchHash

	fieldCount
)

const allFieldsWritten = 1<<fieldCount - 1

// WordWriter assembles a batch header with the same word-aligned stores the
// on-chain codec uses, byte for byte. Because the three uint64 stores spill
// zeros over the bytes after them, the narrow fields must be written first
// and in ascending offset order: version, batchIndex, l1MessagePopped,
// totalL1MessagePopped. The 32-byte fields may then be written in any order.
// Writes that would clobber a field already in place are rejected with
// ErrWriteOrderViolation instead of corrupting it silently.
type WordWriter struct {
	buf        BatchHeaderBytes
	narrowNext int
	written    uint16
}

// NewWordWriter returns a writer over a zeroed fixed-length buffer.
func NewWordWriter() *WordWriter {
	return &WordWriter{buf: EmptyBatchHeaderBytes(0)}
}

func (w *WordWriter) narrow(field int, store func() error) error {
	if w.narrowNext != field {
		return fmt.Errorf("%w: narrow fields must be stored in ascending offset order, next expected field index %d", ErrWriteOrderViolation, w.narrowNext)
	}
	if err := store(); err != nil {
		return err
	}
	w.narrowNext++
	w.written |= 1 << field
	return nil
}

func (w *WordWriter) wide(field, offset int, h common.Hash) error {
	if w.narrowNext <= fieldTotalL1MessagePopped {
		return fmt.Errorf("%w: 32-byte fields may only be stored once all narrow fields are in place", ErrWriteOrderViolation)
	}
	copy(w.buf[offset:offset+hashWidth], h[:])
	w.written |= 1 << field
	return nil
}

func (w *WordWriter) WriteVersion(v uint8) error {
	// A single-byte store (MSTORE8) cannot spill, but version leads the
	// mandated order all the same.
	return w.narrow(fieldVersion, func() error {
		w.buf[versionOffset] = v
		return nil
	})
}

func (w *WordWriter) WriteBatchIndex(v uint64) error {
	return w.narrow(fieldBatchIndex, func() error {
		return PutUint64Word(w.buf, batchIndexOffset, v)
	})
}

func (w *WordWriter) WriteL1MessagePopped(v uint64) error {
	return w.narrow(fieldL1MessagePopped, func() error {
		return PutUint64Word(w.buf, l1MessagePoppedOffset, v)
	})
}

func (w *WordWriter) WriteTotalL1MessagePopped(v uint64) error {
	return w.narrow(fieldTotalL1MessagePopped, func() error {
		return PutUint64Word(w.buf, totalL1MessagePoppedOffset, v)
	})
}

func (w *WordWriter) WriteDataHash(h common.Hash) error {
	return w.wide(fieldDataHash, dataHashOffset, h)
}

func (w *WordWriter) WriteBlobVersionedHash(h common.Hash) error {
	return w.wide(fieldBlobVersionedHash, blobVersionedHashOffset, h)
}

func (w *WordWriter) WritePrevStateHash(h common.Hash) error {
	return w.wide(fieldPrevStateHash, prevStateHashOffset, h)
}

func (w *WordWriter) WritePostStateHash(h common.Hash) error {
	return w.wide(fieldPostStateHash, postStateHashOffset, h)
}

func (w *WordWriter) WriteWithdrawRootHash(h common.Hash) error {
	return w.wide(fieldWithdrawRootHash, withdrawRootHashOffset, h)
}

func (w *WordWriter) WriteSequencerSetVerifyHash(h common.Hash) error {
	return w.wide(fieldSequencerSetVerifyHash, sequencerSetVerifyHashOffset, h)
}

func (w *WordWriter) WriteParentBatchHash(h common.Hash) error {
	return w.wide(fieldParentBatchHash, parentBatchHashOffset, h)
}

// Bytes returns the assembled header, with bitmap appended if non-empty. It
// refuses to release a partially assembled buffer.
func (w *WordWriter) Bytes(skippedL1MessageBitmap []byte) (BatchHeaderBytes, error) {
	if w.written != allFieldsWritten {
		return nil, fmt.Errorf("%w: header not fully assembled, field bitmap %011b", ErrWriteOrderViolation, w.written)
	}
	out := make(BatchHeaderBytes, BatchHeaderFixedLength+len(skippedL1MessageBitmap))
	copy(out, w.buf)
	copy(out[BatchHeaderFixedLength:], skippedL1MessageBitmap)
	return out, nil
}
