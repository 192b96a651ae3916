package encoding

import "errors"

var (
	// ErrMalformedBatchHeader is returned when raw header bytes are shorter
	// than the fixed header length.
	ErrMalformedBatchHeader = errors.New("malformed batch header")

	// ErrOutOfBounds is returned when a field accessor or mutator is used on
	// a buffer too short for the field's byte range. This indicates the
	// buffer did not come from NewBatchHeaderBytes.
	ErrOutOfBounds = errors.New("batch header field out of bounds")

	// ErrWriteOrderViolation is returned by WordWriter when a write would
	// zero bytes of a field that was already stored.
	ErrWriteOrderViolation = errors.New("batch header write order violation")
)
