package protocol

import (
	"fmt"

	"github.com/muurk/kpowire/internal/wire"
)

// Encoder writes message fields to a wire.Writer and keeps the first error.
// Once an error is recorded every later write is a no-op, so field writers
// can be written without per-call error checks.
type Encoder struct {
	w   wire.Writer
	err error
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w wire.Writer) *Encoder {
	return &Encoder{w: w}
}

// Err returns the first recorded error.
func (e *Encoder) Err() error {
	return e.err
}

// Fail records err unless an error is already recorded.
func (e *Encoder) Fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Encoder) do(write func() error) {
	if e.err == nil {
		e.err = write()
	}
}

func (e *Encoder) U8(v uint8)         { e.do(func() error { return e.w.WriteUint8(v) }) }
func (e *Encoder) U16(v uint16)       { e.do(func() error { return e.w.WriteUint16(v) }) }
func (e *Encoder) U32(v uint32)       { e.do(func() error { return e.w.WriteUint32(v) }) }
func (e *Encoder) U64(v uint64)       { e.do(func() error { return e.w.WriteUint64(v) }) }
func (e *Encoder) F64(v float64)      { e.do(func() error { return e.w.WriteFloat64(v) }) }
func (e *Encoder) Bool(v bool)        { e.do(func() error { return e.w.WriteBool(v) }) }
func (e *Encoder) Text(s string)      { e.do(func() error { return e.w.WriteString(s) }) }
func (e *Encoder) ASCII(s string)     { e.do(func() error { return e.w.WriteASCII(s) }) }
func (e *Encoder) Octets(p []byte)    { e.do(func() error { return e.w.WriteOctets(p) }) }
func (e *Encoder) ByteArray(p []byte) { e.do(func() error { return e.w.WriteByteArray(p) }) }
func (e *Encoder) Value(t wire.DataType, v any) {
	e.do(func() error { return e.w.WriteByType(t, v) })
}

// FixedOctets writes p, which must be exactly n bytes long.
func (e *Encoder) FixedOctets(p []byte, n int) {
	if len(p) != n {
		e.Fail(fmt.Errorf("%w: want %d octets, have %d", wire.ErrRange, n, len(p)))
		return
	}
	e.Octets(p)
}

// DataType writes a data type tag after checking it against types.
func (e *Encoder) DataType(types Types, t wire.DataType) {
	if err := types.Check(t); err != nil {
		e.Fail(err)
		return
	}
	e.U8(uint8(t))
}

// Header writes the opcode and sequence id.
func (e *Encoder) Header(op Opcode, sid uint16) {
	if sid == 0 {
		e.Fail(NewSequenceError())
		return
	}
	e.U8(uint8(op))
	e.U16(sid)
}

// Marshal runs write twice: once against a wire.Length to size the output and
// once against a buffer of exactly that size.
func Marshal(write func(e *Encoder)) ([]byte, error) {
	var length wire.Length
	measure := NewEncoder(&length)
	write(measure)
	if measure.err != nil {
		return nil, measure.err
	}

	buf := wire.Alloc(length.Build())
	enc := NewEncoder(buf)
	write(enc)
	if enc.err != nil {
		return nil, enc.err
	}
	if !buf.IsEndOfBuffer() {
		return nil, fmt.Errorf("%w: %d of %d bytes written", wire.ErrLengthMismatch, buf.Position(), buf.Len())
	}
	return buf.Bytes(), nil
}

// Measure returns the encoded size of whatever write produces.
func Measure(write func(e *Encoder)) (int, error) {
	var length wire.Length
	enc := NewEncoder(&length)
	write(enc)
	if enc.err != nil {
		return 0, enc.err
	}
	return length.Build(), nil
}
