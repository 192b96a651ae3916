package encoding

import (
	"encoding/binary"

	"github.com/scroll-tech/go-ethereum/common"
	"github.com/scroll-tech/go-ethereum/crypto"
)

// BatchHeader is the decoded form of an encoded batch header. Once built it
// is treated as an immutable value: all fields are set by NewBatchHeader or
// DecodeBatchHeader and read through getters. A BatchHeader is safe to share
// between goroutines; the raw buffer forms are not.
type BatchHeader struct {
	version                uint8
	batchIndex             uint64
	l1MessagePopped        uint64
	totalL1MessagePopped   uint64
	dataHash               common.Hash
	blobVersionedHash      common.Hash
	prevStateHash          common.Hash
	postStateHash          common.Hash
	withdrawRootHash       common.Hash
	sequencerSetVerifyHash common.Hash
	parentBatchHash        common.Hash
	skippedL1MessageBitmap []byte
}

// NewBatchHeader assembles a batch header from its field values in one shot,
// so callers never deal with individual field stores or their ordering.
func NewBatchHeader(version uint8, batchIndex, l1MessagePopped, totalL1MessagePopped uint64,
	dataHash, blobVersionedHash, prevStateHash, postStateHash, withdrawRootHash,
	sequencerSetVerifyHash, parentBatchHash common.Hash, skippedL1MessageBitmap []byte) *BatchHeader {
	return &BatchHeader{
		version:                version,
		batchIndex:             batchIndex,
		l1MessagePopped:        l1MessagePopped,
		totalL1MessagePopped:   totalL1MessagePopped,
		dataHash:               dataHash,
		blobVersionedHash:      blobVersionedHash,
		prevStateHash:          prevStateHash,
		postStateHash:          postStateHash,
		withdrawRootHash:       withdrawRootHash,
		sequencerSetVerifyHash: sequencerSetVerifyHash,
		parentBatchHash:        parentBatchHash,
		skippedL1MessageBitmap: skippedL1MessageBitmap,
	}
}

// DecodeBatchHeader decodes raw header bytes. It returns
// ErrMalformedBatchHeader if data is shorter than the fixed header length.
// Bytes past the fixed portion are kept as the skipped L1 message bitmap.
func DecodeBatchHeader(data []byte) (*BatchHeader, error) {
	buf, err := NewBatchHeaderBytes(data)
	if err != nil {
		return nil, err
	}

	// Accessors cannot fail on a validated buffer; read directly.
	b := &BatchHeader{
		version:                buf[versionOffset],
		batchIndex:             binary.BigEndian.Uint64(buf[batchIndexOffset:]),
		l1MessagePopped:        binary.BigEndian.Uint64(buf[l1MessagePoppedOffset:]),
		totalL1MessagePopped:   binary.BigEndian.Uint64(buf[totalL1MessagePoppedOffset:]),
		dataHash:               common.BytesToHash(buf[dataHashOffset:blobVersionedHashOffset]),
		blobVersionedHash:      common.BytesToHash(buf[blobVersionedHashOffset:prevStateHashOffset]),
		prevStateHash:          common.BytesToHash(buf[prevStateHashOffset:postStateHashOffset]),
		postStateHash:          common.BytesToHash(buf[postStateHashOffset:withdrawRootHashOffset]),
		withdrawRootHash:       common.BytesToHash(buf[withdrawRootHashOffset:sequencerSetVerifyHashOffset]),
		sequencerSetVerifyHash: common.BytesToHash(buf[sequencerSetVerifyHashOffset:parentBatchHashOffset]),
		parentBatchHash:        common.BytesToHash(buf[parentBatchHashOffset:BatchHeaderFixedLength]),
		skippedL1MessageBitmap: buf[BatchHeaderFixedLength:],
	}
	return b, nil
}

func (b *BatchHeader) Version() uint8 {
	return b.version
}

func (b *BatchHeader) BatchIndex() uint64 {
	return b.batchIndex
}

func (b *BatchHeader) L1MessagePopped() uint64 {
	return b.l1MessagePopped
}

func (b *BatchHeader) TotalL1MessagePopped() uint64 {
	return b.totalL1MessagePopped
}

func (b *BatchHeader) DataHash() common.Hash {
	return b.dataHash
}

func (b *BatchHeader) BlobVersionedHash() common.Hash {
	return b.blobVersionedHash
}

func (b *BatchHeader) PrevStateHash() common.Hash {
	return b.prevStateHash
}

func (b *BatchHeader) PostStateHash() common.Hash {
	return b.postStateHash
}

func (b *BatchHeader) WithdrawRootHash() common.Hash {
	return b.withdrawRootHash
}

func (b *BatchHeader) SequencerSetVerifyHash() common.Hash {
	return b.sequencerSetVerifyHash
}

func (b *BatchHeader) ParentBatchHash() common.Hash {
	return b.parentBatchHash
}

func (b *BatchHeader) SkippedL1MessageBitmap() []byte {
	return b.skippedL1MessageBitmap
}

// Encode encodes the batch header into its fixed byte layout followed by the
// skipped L1 message bitmap.
func (b *BatchHeader) Encode() []byte {
	batchBytes := make([]byte, BatchHeaderFixedLength+len(b.skippedL1MessageBitmap))
	batchBytes[versionOffset] = b.version
	binary.BigEndian.PutUint64(batchBytes[batchIndexOffset:], b.batchIndex)
	binary.BigEndian.PutUint64(batchBytes[l1MessagePoppedOffset:], b.l1MessagePopped)
	binary.BigEndian.PutUint64(batchBytes[totalL1MessagePoppedOffset:], b.totalL1MessagePopped)
	copy(batchBytes[dataHashOffset:], b.dataHash[:])
	copy(batchBytes[blobVersionedHashOffset:], b.blobVersionedHash[:])
	copy(batchBytes[prevStateHashOffset:], b.prevStateHash[:])
	copy(batchBytes[postStateHashOffset:], b.postStateHash[:])
	copy(batchBytes[withdrawRootHashOffset:], b.withdrawRootHash[:])
	copy(batchBytes[sequencerSetVerifyHashOffset:], b.sequencerSetVerifyHash[:])
	copy(batchBytes[parentBatchHashOffset:], b.parentBatchHash[:])
	copy(batchBytes[BatchHeaderFixedLength:], b.skippedL1MessageBitmap)
	return batchBytes
}

// Hash calculates the hash of the batch header: the Keccak-256 digest of the
// encoded bytes, trailing bitmap included.
func (b *BatchHeader) Hash() common.Hash {
	return crypto.Keccak256Hash(b.Encode())
}
