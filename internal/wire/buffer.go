package wire

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"unicode/utf8"
)

// Buffer is a fixed-size byte slice with a read/write cursor starting at 0.
type Buffer struct {
	buf []byte
	pos int
}

// NewBuffer wraps b. Decoders pass the received message; the slice is never
// resized.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{buf: b}
}

// Alloc returns a zeroed buffer of exactly n bytes.
func Alloc(n int) *Buffer {
	return &Buffer{buf: make([]byte, n)}
}

// Bytes returns the whole underlying slice.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the buffer size.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Position returns the cursor offset.
func (b *Buffer) Position() int {
	return b.pos
}

// Remaining returns the number of bytes after the cursor.
func (b *Buffer) Remaining() int {
	return len(b.buf) - b.pos
}

// IsEndOfBuffer reports whether the cursor has consumed exactly the whole
// buffer.
func (b *Buffer) IsEndOfBuffer() bool {
	return b.pos == len(b.buf)
}

func (b *Buffer) take(n int) ([]byte, error) {
	if n < 0 || b.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, b.pos, b.Remaining())
	}
	p := b.buf[b.pos : b.pos+n]
	b.pos += n
	return p, nil
}

func (b *Buffer) reserve(n int) ([]byte, error) {
	if b.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrOverflow, n, b.pos, b.Remaining())
	}
	p := b.buf[b.pos : b.pos+n]
	b.pos += n
	return p, nil
}

// ReadBool reads one byte that must be 0x00 or 0x01.
func (b *Buffer) ReadBool() (bool, error) {
	v, err := b.ReadUint8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: 0x%02x", ErrInvalidBool, v)
}

// ReadUint8 reads one byte.
func (b *Buffer) ReadUint8() (uint8, error) {
	p, err := b.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadInt8 reads one two's complement byte.
func (b *Buffer) ReadInt8() (int8, error) {
	v, err := b.ReadUint8()
	return int8(v), err
}

// ReadUint16 reads a big-endian uint16.
func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

// ReadInt16 reads a big-endian int16.
func (b *Buffer) ReadInt16() (int16, error) {
	v, err := b.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a big-endian uint32.
func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p), nil
}

// ReadInt32 reads a big-endian int32.
func (b *Buffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a big-endian uint64.
func (b *Buffer) ReadUint64() (uint64, error) {
	p, err := b.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(p), nil
}

// ReadInt64 reads a big-endian int64.
func (b *Buffer) ReadInt64() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads a big-endian IEEE-754 single.
func (b *Buffer) ReadFloat32() (float32, error) {
	v, err := b.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads a big-endian IEEE-754 double.
func (b *Buffer) ReadFloat64() (float64, error) {
	v, err := b.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (b *Buffer) readPrefixed() ([]byte, error) {
	n, err := b.ReadUint16()
	if err != nil {
		return nil, err
	}
	if err := checkLength(int(n)); err != nil {
		return nil, err
	}
	return b.take(int(n))
}

// ReadString reads a length-prefixed UTF-8 string.
func (b *Buffer) ReadString() (string, error) {
	p, err := b.readPrefixed()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", fmt.Errorf("%w: not UTF-8", ErrInvalidString)
	}
	return string(p), nil
}

// ReadASCII reads a length-prefixed 7-bit ASCII string.
func (b *Buffer) ReadASCII() (string, error) {
	p, err := b.readPrefixed()
	if err != nil {
		return "", err
	}
	if i := nonASCII(p); i >= 0 {
		return "", fmt.Errorf("%w: byte 0x%02x at %d is not ASCII", ErrInvalidString, p[i], i)
	}
	return string(p), nil
}

// ReadByteArray reads a length-prefixed run of hex text and returns the
// decoded octets.
func (b *Buffer) ReadByteArray() ([]byte, error) {
	p, err := b.readPrefixed()
	if err != nil {
		return nil, err
	}
	out := make([]byte, hex.DecodedLen(len(p)))
	if _, err := hex.Decode(out, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidString, err)
	}
	return out, nil
}

// ReadOctets reads exactly n raw bytes. The result is a copy.
func (b *Buffer) ReadOctets(n int) ([]byte, error) {
	p, err := b.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

// ReadByType reads one value of type t. The dynamic type of the result is
// the Go type matching t: bool, uint8 ... float64, string or []byte.
func (b *Buffer) ReadByType(t DataType) (any, error) {
	switch t {
	case Bool:
		return b.ReadBool()
	case Uint8:
		return b.ReadUint8()
	case Int8:
		return b.ReadInt8()
	case Uint16:
		return b.ReadUint16()
	case Int16:
		return b.ReadInt16()
	case Uint32:
		return b.ReadUint32()
	case Int32:
		return b.ReadInt32()
	case Uint64:
		return b.ReadUint64()
	case Int64:
		return b.ReadInt64()
	case Float32:
		return b.ReadFloat32()
	case Float64:
		return b.ReadFloat64()
	case String:
		return b.ReadString()
	case ByteArray:
		return b.ReadByteArray()
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidDataType, uint8(t))
}

// WriteBool writes 0x01 or 0x00.
func (b *Buffer) WriteBool(v bool) error {
	if v {
		return b.WriteUint8(1)
	}
	return b.WriteUint8(0)
}

// WriteUint8 writes one byte.
func (b *Buffer) WriteUint8(v uint8) error {
	p, err := b.reserve(1)
	if err != nil {
		return err
	}
	p[0] = v
	return nil
}

// WriteInt8 writes one two's complement byte.
func (b *Buffer) WriteInt8(v int8) error {
	return b.WriteUint8(uint8(v))
}

// WriteUint16 writes a big-endian uint16.
func (b *Buffer) WriteUint16(v uint16) error {
	p, err := b.reserve(2)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(p, v)
	return nil
}

// WriteInt16 writes a big-endian int16.
func (b *Buffer) WriteInt16(v int16) error {
	return b.WriteUint16(uint16(v))
}

// WriteUint32 writes a big-endian uint32.
func (b *Buffer) WriteUint32(v uint32) error {
	p, err := b.reserve(4)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(p, v)
	return nil
}

// WriteInt32 writes a big-endian int32.
func (b *Buffer) WriteInt32(v int32) error {
	return b.WriteUint32(uint32(v))
}

// WriteUint64 writes a big-endian uint64.
func (b *Buffer) WriteUint64(v uint64) error {
	p, err := b.reserve(8)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint64(p, v)
	return nil
}

// WriteInt64 writes a big-endian int64.
func (b *Buffer) WriteInt64(v int64) error {
	return b.WriteUint64(uint64(v))
}

// WriteFloat32 writes an IEEE-754 single. NaN, subnormal and out of range
// magnitudes are rejected; zero is allowed.
func (b *Buffer) WriteFloat32(v float32) error {
	if err := checkFloat32(float64(v)); err != nil {
		return err
	}
	return b.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes an IEEE-754 double. NaN and infinities are rejected.
func (b *Buffer) WriteFloat64(v float64) error {
	if err := checkFloat64(v); err != nil {
		return err
	}
	return b.WriteUint64(math.Float64bits(v))
}

func (b *Buffer) writePrefixed(p []byte) error {
	if err := checkLength(len(p)); err != nil {
		return err
	}
	out, err := b.reserve(lengthPrefixSize + len(p))
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(out, uint16(len(p)))
	copy(out[lengthPrefixSize:], p)
	return nil
}

// WriteString writes a length-prefixed UTF-8 string.
func (b *Buffer) WriteString(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: string is not UTF-8", ErrType)
	}
	return b.writePrefixed([]byte(s))
}

// WriteASCII writes a length-prefixed 7-bit ASCII string.
func (b *Buffer) WriteASCII(s string) error {
	p := []byte(s)
	if i := nonASCII(p); i >= 0 {
		return fmt.Errorf("%w: byte 0x%02x at %d is not ASCII", ErrType, p[i], i)
	}
	return b.writePrefixed(p)
}

// WriteByteArray writes p as lowercase hex text. The prefix counts hex
// characters, so len(p) may not exceed MaxStringLength/2.
func (b *Buffer) WriteByteArray(p []byte) error {
	text := make([]byte, hex.EncodedLen(len(p)))
	hex.Encode(text, p)
	return b.writePrefixed(text)
}

// WriteOctets writes p without a length prefix.
func (b *Buffer) WriteOctets(p []byte) error {
	out, err := b.reserve(len(p))
	if err != nil {
		return err
	}
	copy(out, p)
	return nil
}

// WriteByType validates v against t and writes it. Integer tags accept any Go
// integer kind that fits; float tags accept floats and integers; ByteArray
// accepts []byte or hex text.
func (b *Buffer) WriteByType(t DataType, v any) error {
	switch t {
	case Bool:
		x, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: %T is not a boolean", ErrType, v)
		}
		return b.WriteBool(x)
	case Uint8:
		x, err := unsignedValue(t, v, math.MaxUint8)
		if err != nil {
			return err
		}
		return b.WriteUint8(uint8(x))
	case Int8:
		x, err := signedValue(t, v, math.MinInt8, math.MaxInt8)
		if err != nil {
			return err
		}
		return b.WriteInt8(int8(x))
	case Uint16:
		x, err := unsignedValue(t, v, math.MaxUint16)
		if err != nil {
			return err
		}
		return b.WriteUint16(uint16(x))
	case Int16:
		x, err := signedValue(t, v, math.MinInt16, math.MaxInt16)
		if err != nil {
			return err
		}
		return b.WriteInt16(int16(x))
	case Uint32:
		x, err := unsignedValue(t, v, math.MaxUint32)
		if err != nil {
			return err
		}
		return b.WriteUint32(uint32(x))
	case Int32:
		x, err := signedValue(t, v, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		return b.WriteInt32(int32(x))
	case Uint64:
		x, err := unsignedValue(t, v, math.MaxUint64)
		if err != nil {
			return err
		}
		return b.WriteUint64(x)
	case Int64:
		x, err := signedValue(t, v, math.MinInt64, math.MaxInt64)
		if err != nil {
			return err
		}
		return b.WriteInt64(x)
	case Float32:
		x, err := floatValue(v)
		if err != nil {
			return err
		}
		if err := checkFloat32(x); err != nil {
			return err
		}
		return b.WriteFloat32(float32(x))
	case Float64:
		x, err := floatValue(v)
		if err != nil {
			return err
		}
		return b.WriteFloat64(x)
	case String:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %T is not a string", ErrType, v)
		}
		return b.WriteString(s)
	case ByteArray:
		p, err := byteArrayValue(v)
		if err != nil {
			return err
		}
		return b.WriteByteArray(p)
	}
	return fmt.Errorf("%w: %d", ErrInvalidDataType, uint8(t))
}

func nonASCII(p []byte) int {
	for i, c := range p {
		if c > 0x7f {
			return i
		}
	}
	return -1
}
