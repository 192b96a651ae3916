package encoding

import (
	"fmt"
	"math/big"
)

// bitmapWordBytes is the byte width of one skipped L1 message bitmap entry,
// a uint256 covering 256 queue indices.
const bitmapWordBytes = 32

// DecodeBitmap decodes the skipped L1 message bitmap into its uint256 words.
// totalL1MessagePopped is the number of messages the batch processes; the
// bitmap must be large enough to cover all of them.
func DecodeBitmap(skippedL1MessageBitmap []byte, totalL1MessagePopped int) ([]*big.Int, error) {
	length := len(skippedL1MessageBitmap)
	if length%bitmapWordBytes != 0 {
		return nil, fmt.Errorf("skippedL1MessageBitmap length is not a multiple of %d, length: %d", bitmapWordBytes, length)
	}
	if length*8 < totalL1MessagePopped {
		return nil, fmt.Errorf("skippedL1MessageBitmap covers %d messages, expected at least %d", length*8, totalL1MessagePopped)
	}
	var skippedBitmap []*big.Int
	for index := 0; index < length/bitmapWordBytes; index++ {
		word := new(big.Int).SetBytes(skippedL1MessageBitmap[index*bitmapWordBytes : (index+1)*bitmapWordBytes])
		skippedBitmap = append(skippedBitmap, word)
	}
	return skippedBitmap, nil
}

// EncodeBitmap packs bitmap words into the byte form carried after the fixed
// header portion, each word left-padded to 32 bytes.
func EncodeBitmap(skippedBitmap []*big.Int) []byte {
	bitmapBytes := make([]byte, len(skippedBitmap)*bitmapWordBytes)
	for ii, word := range skippedBitmap {
		bytes := word.Bytes()
		padding := bitmapWordBytes - len(bytes)
		copy(bitmapBytes[bitmapWordBytes*ii+padding:], bytes)
	}
	return bitmapBytes
}

// IsL1MessageSkipped reports whether the message at the given queue index,
// relative to the batch's base index, is marked skipped.
func IsL1MessageSkipped(skippedBitmap []*big.Int, index uint64) bool {
	if index >= uint64(len(skippedBitmap))*256 {
		return false
	}
	quo := index / 256
	rem := index % 256
	return skippedBitmap[quo].Bit(int(rem)) != 0
}
