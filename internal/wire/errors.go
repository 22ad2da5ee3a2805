package wire

import "errors"

var (
	ErrTruncated       = errors.New("wire: truncated data")
	ErrOverflow        = errors.New("wire: write past end of buffer")
	ErrRange           = errors.New("wire: value out of range")
	ErrType            = errors.New("wire: invalid value type")
	ErrTooLong         = errors.New("wire: value too long")
	ErrInvalidBool     = errors.New("wire: invalid boolean value")
	ErrInvalidString   = errors.New("wire: invalid string encoding")
	ErrInvalidDataType = errors.New("wire: invalid data type")
	ErrLengthMismatch  = errors.New("wire: encoded length mismatch")
)
