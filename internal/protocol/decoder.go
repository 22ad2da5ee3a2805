package protocol

import (
	"errors"
	"fmt"

	"github.com/muurk/kpowire/internal/wire"
)

// Decoder reads message fields from a wire.Buffer. The first error wins:
// after a failure every read returns the zero value, and Finish reports the
// recorded error.
type Decoder struct {
	buf *wire.Buffer
	err error
}

// NewDecoder returns a Decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{buf: wire.NewBuffer(data)}
}

// Err returns the first recorded error.
func (d *Decoder) Err() error {
	return d.err
}

// Fail records err unless an error is already recorded.
func (d *Decoder) Fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// More reports whether decoding is healthy and unread bytes remain.
func (d *Decoder) More() bool {
	return d.err == nil && !d.buf.IsEndOfBuffer()
}

func read[T any](d *Decoder, fn func() (T, error)) T {
	var zero T
	if d.err != nil {
		return zero
	}
	v, err := fn()
	if err != nil {
		d.err = err
		return zero
	}
	return v
}

func (d *Decoder) U8() uint8         { return read(d, d.buf.ReadUint8) }
func (d *Decoder) U16() uint16       { return read(d, d.buf.ReadUint16) }
func (d *Decoder) U32() uint32       { return read(d, d.buf.ReadUint32) }
func (d *Decoder) U64() uint64       { return read(d, d.buf.ReadUint64) }
func (d *Decoder) F64() float64      { return read(d, d.buf.ReadFloat64) }
func (d *Decoder) Bool() bool        { return read(d, d.buf.ReadBool) }
func (d *Decoder) Text() string      { return read(d, d.buf.ReadString) }
func (d *Decoder) ASCII() string     { return read(d, d.buf.ReadASCII) }
func (d *Decoder) ByteArray() []byte { return read(d, d.buf.ReadByteArray) }
func (d *Decoder) Octets(n int) []byte {
	return read(d, func() ([]byte, error) { return d.buf.ReadOctets(n) })
}

// Value reads one value of type t.
func (d *Decoder) Value(t wire.DataType) any {
	return read(d, func() (any, error) { return d.buf.ReadByType(t) })
}

// DataType reads a data type tag and checks it against types.
func (d *Decoder) DataType(types Types) wire.DataType {
	t := wire.DataType(d.U8())
	if d.err != nil {
		return 0
	}
	if err := types.Check(t); err != nil {
		d.Fail(err)
		return 0
	}
	return t
}

// Header reads the opcode and sequence id. A mismatched opcode is
// InvalidOpcode and a zero sequence id is InvalidSequenceNumber.
func (d *Decoder) Header(op Opcode) Header {
	code := Opcode(d.U8())
	sid := d.U16()
	if d.err != nil {
		return Header{}
	}
	if code != op {
		d.Fail(NewInvalidOpcodeError(fmt.Sprintf("opcode %s does not match codec %s", code, op)))
		return Header{}
	}
	if sid == 0 {
		d.Fail(NewSequenceError())
	}
	return Header{SequenceID: sid}
}

// Finish checks that the whole input was consumed and returns the decode
// result error. Classified errors are returned unchanged; anything else is
// wrapped as ProtocolError.
func (d *Decoder) Finish() error {
	if d.err == nil && !d.buf.IsEndOfBuffer() {
		d.err = NewProtocolError(fmt.Sprintf("%d trailing bytes at offset %d", d.buf.Remaining(), d.buf.Position()), nil)
	}
	if d.err == nil {
		return nil
	}
	var classified *Error
	if errors.As(d.err, &classified) {
		return d.err
	}
	return NewProtocolError("malformed message", d.err)
}
