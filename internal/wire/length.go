package wire

import "encoding/hex"

// Length accumulates the encoded size of a sequence of values without
// writing them. The zero value is ready to use. A Length must not be shared
// between concurrent encoders.
type Length struct {
	total int
}

// Add adds the size of v written as type t and returns the running total.
// v is only inspected for String and ByteArray.
func (l *Length) Add(t DataType, v any) (int, error) {
	n, err := t.Size(v)
	if err != nil {
		return l.total, err
	}
	l.total += n
	return l.total, nil
}

// Total returns the running total.
func (l *Length) Total() int {
	return l.total
}

// Build returns the total and resets the accumulator.
func (l *Length) Build() int {
	n := l.total
	l.total = 0
	return n
}

func (l *Length) fixed(n int) error {
	l.total += n
	return nil
}

func (l *Length) WriteBool(bool) error       { return l.fixed(1) }
func (l *Length) WriteUint8(uint8) error     { return l.fixed(1) }
func (l *Length) WriteInt8(int8) error       { return l.fixed(1) }
func (l *Length) WriteUint16(uint16) error   { return l.fixed(2) }
func (l *Length) WriteInt16(int16) error     { return l.fixed(2) }
func (l *Length) WriteUint32(uint32) error   { return l.fixed(4) }
func (l *Length) WriteInt32(int32) error     { return l.fixed(4) }
func (l *Length) WriteUint64(uint64) error   { return l.fixed(8) }
func (l *Length) WriteInt64(int64) error     { return l.fixed(8) }
func (l *Length) WriteFloat32(float32) error { return l.fixed(4) }
func (l *Length) WriteFloat64(float64) error { return l.fixed(8) }

func (l *Length) WriteString(s string) error {
	return l.fixed(lengthPrefixSize + len(s))
}

func (l *Length) WriteASCII(s string) error {
	return l.fixed(lengthPrefixSize + len(s))
}

func (l *Length) WriteByteArray(p []byte) error {
	return l.fixed(lengthPrefixSize + hex.EncodedLen(len(p)))
}

func (l *Length) WriteOctets(p []byte) error {
	return l.fixed(len(p))
}

func (l *Length) WriteByType(t DataType, v any) error {
	_, err := l.Add(t, v)
	return err
}
