package wire

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

// MaxStringLength is the largest payload a String or ByteArray may carry.
// For ByteArray it bounds the hex text, not the decoded octets.
const MaxStringLength = 4096

// lengthPrefixSize is the width of the String/ByteArray length prefix.
const lengthPrefixSize = 2

// DataType tags a scalar wire type.
type DataType uint8

// Unsigned/signed integer pairs are adjacent: a signed tag minus one is its
// unsigned counterpart.
const (
	Bool DataType = iota
	Uint8
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Uint64
	Int64
	Float32
	Float64
	reserved
	String
	ByteArray
)

var dataTypeNames = [...]string{
	Bool:      "boolean",
	Uint8:     "uint8",
	Int8:      "int8",
	Uint16:    "uint16",
	Int16:     "int16",
	Uint32:    "uint32",
	Int32:     "int32",
	Uint64:    "uint64",
	Int64:     "int64",
	Float32:   "float32",
	Float64:   "float64",
	reserved:  "reserved",
	String:    "string",
	ByteArray: "bytearray",
}

// String returns the lower-case name of the type.
func (t DataType) String() string {
	if int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return fmt.Sprintf("DataType(%d)", uint8(t))
}

// ParseDataType is the inverse of DataType.String.
func ParseDataType(name string) (DataType, error) {
	for i, n := range dataTypeNames {
		if n == name && DataType(i) != reserved {
			return DataType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDataType, name)
}

// MarshalText renders t by name in YAML and JSON documents.
func (t DataType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts a type name or its numeric tag.
func (t *DataType) UnmarshalText(text []byte) error {
	if n, err := strconv.ParseUint(string(text), 10, 8); err == nil {
		if !DataType(n).Valid() {
			return fmt.Errorf("%w: tag %d", ErrInvalidDataType, n)
		}
		*t = DataType(n)
		return nil
	}
	v, err := ParseDataType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Valid reports whether t may appear on the wire.
func (t DataType) Valid() bool {
	return t <= ByteArray && t != reserved
}

// Numeric reports whether t is an integer or floating point type.
func (t DataType) Numeric() bool {
	return t >= Uint8 && t <= Float64
}

// Signed reports whether t is a signed integer type.
func (t DataType) Signed() bool {
	switch t {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// Unsigned returns the unsigned counterpart of a signed integer type.
// Every other type is returned unchanged.
func (t DataType) Unsigned() DataType {
	if t.Signed() {
		return t - 1
	}
	return t
}

// FixedSize returns the encoded width of fixed-size types. Variable-length
// and invalid types report false.
func (t DataType) FixedSize() (int, bool) {
	switch t {
	case Bool, Uint8, Int8:
		return 1, true
	case Uint16, Int16:
		return 2, true
	case Uint32, Int32, Float32:
		return 4, true
	case Uint64, Int64, Float64:
		return 8, true
	}
	return 0, false
}

// Size returns the encoded size of v written as type t.
func (t DataType) Size(v any) (int, error) {
	if n, ok := t.FixedSize(); ok {
		return n, nil
	}
	switch t {
	case String:
		s, ok := v.(string)
		if !ok {
			return 0, fmt.Errorf("%w: %T is not a string", ErrType, v)
		}
		return lengthPrefixSize + len(s), nil
	case ByteArray:
		b, err := byteArrayValue(v)
		if err != nil {
			return 0, err
		}
		return lengthPrefixSize + hex.EncodedLen(len(b)), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidDataType, uint8(t))
}
