package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/scroll-tech/go-ethereum/common"
	"github.com/scroll-tech/go-ethereum/common/hexutil"
	"github.com/scroll-tech/go-ethereum/crypto"
)

// Byte layout of an encoded batch header, matching BatchHeaderCodecV1 of the
// rollup contracts:
//
//	Field                   Bytes   Type        Offset
//	version                 1       uint8       0
//	batchIndex              8       uint64      1
//	l1MessagePopped         8       uint64      9
//	totalL1MessagePopped    8       uint64      17
//	dataHash                32      bytes32     25
//	blobVersionedHash       32      bytes32     57
//	prevStateHash           32      bytes32     89
//	postStateHash           32      bytes32     121
//	withdrawRootHash        32      bytes32     153
//	sequencerSetVerifyHash  32      bytes32     185
//	parentBatchHash         32      bytes32     217
//	skippedL1MessageBitmap  dynamic uint256[]   249
//
// All integers are big-endian.
const (
	versionOffset                = 0
	batchIndexOffset             = 1
	l1MessagePoppedOffset        = 9
	totalL1MessagePoppedOffset   = 17
	dataHashOffset               = 25
	blobVersionedHashOffset      = 57
	prevStateHashOffset          = 89
	postStateHashOffset          = 121
	withdrawRootHashOffset       = 153
	sequencerSetVerifyHashOffset = 185
	parentBatchHashOffset        = 217

	// BatchHeaderFixedLength is the byte length of the fixed portion of an
	// encoded batch header. The skipped L1 message bitmap follows it.
	BatchHeaderFixedLength = 249

	u64Width  = 8
	hashWidth = common.HashLength
)

// BatchHeaderBytes is an encoded batch header held in a buffer the codec
// owns. A value produced by NewBatchHeaderBytes is always at least
// BatchHeaderFixedLength bytes long; any bytes past the fixed portion are
// the dynamic skipped L1 message bitmap and are opaque to the field
// accessors but included in Hash.
type BatchHeaderBytes []byte

// NewBatchHeaderBytes copies data into a buffer owned by the codec. It
// returns ErrMalformedBatchHeader if data is shorter than the fixed header
// length. No field-level validation is performed.
func NewBatchHeaderBytes(data []byte) (BatchHeaderBytes, error) {
	if len(data) < BatchHeaderFixedLength {
		return nil, fmt.Errorf("%w: %d bytes, expected at least %d", ErrMalformedBatchHeader, len(data), BatchHeaderFixedLength)
	}
	buf := make(BatchHeaderBytes, len(data))
	copy(buf, data)
	return buf, nil
}

// EmptyBatchHeaderBytes returns a zeroed fixed-length buffer for the encode
// path, with room for bitmapLen trailing bitmap bytes.
func EmptyBatchHeaderBytes(bitmapLen int) BatchHeaderBytes {
	return make(BatchHeaderBytes, BatchHeaderFixedLength+bitmapLen)
}

func (b BatchHeaderBytes) field(offset, width int) ([]byte, error) {
	if len(b) < offset+width {
		return nil, fmt.Errorf("%w: field at [%d, %d), buffer is %d bytes", ErrOutOfBounds, offset, offset+width, len(b))
	}
	return b[offset : offset+width], nil
}

func (b BatchHeaderBytes) uint64Field(offset int) (uint64, error) {
	s, err := b.field(offset, u64Width)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(s), nil
}

func (b BatchHeaderBytes) hashField(offset int) (common.Hash, error) {
	s, err := b.field(offset, hashWidth)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(s), nil
}

func (b BatchHeaderBytes) Version() (uint8, error) {
	s, err := b.field(versionOffset, 1)
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

func (b BatchHeaderBytes) BatchIndex() (uint64, error) {
	return b.uint64Field(batchIndexOffset)
}

func (b BatchHeaderBytes) L1MessagePopped() (uint64, error) {
	return b.uint64Field(l1MessagePoppedOffset)
}

func (b BatchHeaderBytes) TotalL1MessagePopped() (uint64, error) {
	return b.uint64Field(totalL1MessagePoppedOffset)
}

func (b BatchHeaderBytes) DataHash() (common.Hash, error) {
	return b.hashField(dataHashOffset)
}

func (b BatchHeaderBytes) BlobVersionedHash() (common.Hash, error) {
	return b.hashField(blobVersionedHashOffset)
}

func (b BatchHeaderBytes) PrevStateHash() (common.Hash, error) {
	return b.hashField(prevStateHashOffset)
}

func (b BatchHeaderBytes) PostStateHash() (common.Hash, error) {
	return b.hashField(postStateHashOffset)
}

func (b BatchHeaderBytes) WithdrawRootHash() (common.Hash, error) {
	return b.hashField(withdrawRootHashOffset)
}

func (b BatchHeaderBytes) SequencerSetVerifyHash() (common.Hash, error) {
	return b.hashField(sequencerSetVerifyHashOffset)
}

func (b BatchHeaderBytes) ParentBatchHash() (common.Hash, error) {
	return b.hashField(parentBatchHashOffset)
}

// SkippedL1MessageBitmap returns the dynamic trailing bytes of the header.
// The result aliases the buffer; callers must not modify it.
func (b BatchHeaderBytes) SkippedL1MessageBitmap() ([]byte, error) {
	if len(b) < BatchHeaderFixedLength {
		return nil, fmt.Errorf("%w: buffer is %d bytes", ErrOutOfBounds, len(b))
	}
	return b[BatchHeaderFixedLength:], nil
}

// The setters below write exactly the field's logical byte range. Unlike the
// word-aligned stores of the on-chain codec they never touch neighbouring
// fields, so they may be called in any order. See WordWriter for the
// bit-exact store semantics.

func (b BatchHeaderBytes) SetVersion(v uint8) error {
	s, err := b.field(versionOffset, 1)
	if err != nil {
		return err
	}
	s[0] = v
	return nil
}

func (b BatchHeaderBytes) setUint64Field(offset int, v uint64) error {
	s, err := b.field(offset, u64Width)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint64(s, v)
	return nil
}

func (b BatchHeaderBytes) setHashField(offset int, h common.Hash) error {
	s, err := b.field(offset, hashWidth)
	if err != nil {
		return err
	}
	copy(s, h[:])
	return nil
}

func (b BatchHeaderBytes) SetBatchIndex(v uint64) error {
	return b.setUint64Field(batchIndexOffset, v)
}

func (b BatchHeaderBytes) SetL1MessagePopped(v uint64) error {
	return b.setUint64Field(l1MessagePoppedOffset, v)
}

func (b BatchHeaderBytes) SetTotalL1MessagePopped(v uint64) error {
	return b.setUint64Field(totalL1MessagePoppedOffset, v)
}

func (b BatchHeaderBytes) SetDataHash(h common.Hash) error {
	return b.setHashField(dataHashOffset, h)
}

func (b BatchHeaderBytes) SetBlobVersionedHash(h common.Hash) error {
	return b.setHashField(blobVersionedHashOffset, h)
}

func (b BatchHeaderBytes) SetPrevStateHash(h common.Hash) error {
	return b.setHashField(prevStateHashOffset, h)
}

func (b BatchHeaderBytes) SetPostStateHash(h common.Hash) error {
	return b.setHashField(postStateHashOffset, h)
}

func (b BatchHeaderBytes) SetWithdrawRootHash(h common.Hash) error {
	return b.setHashField(withdrawRootHashOffset, h)
}

func (b BatchHeaderBytes) SetSequencerSetVerifyHash(h common.Hash) error {
	return b.setHashField(sequencerSetVerifyHashOffset, h)
}

func (b BatchHeaderBytes) SetParentBatchHash(h common.Hash) error {
	return b.setHashField(parentBatchHashOffset, h)
}

// Hash computes the batch hash: the Keccak-256 digest of the whole buffer,
// fixed portion and trailing bitmap included. This matches the commitment
// stored by the rollup contract for a committed batch.
func (b BatchHeaderBytes) Hash() common.Hash {
	return crypto.Keccak256Hash(b)
}

// MarshalText returns the hex representation of b.
func (b BatchHeaderBytes) MarshalText() ([]byte, error) {
	return hexutil.Bytes(b).MarshalText()
}

// UnmarshalText parses a hex-encoded batch header and validates its length.
func (b *BatchHeaderBytes) UnmarshalText(input []byte) error {
	var raw hexutil.Bytes
	if err := raw.UnmarshalText(input); err != nil {
		return err
	}
	decoded, err := NewBatchHeaderBytes(raw)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
