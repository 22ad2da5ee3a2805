package protocol

import (
	"fmt"

	"github.com/muurk/kpowire/internal/wire"
)

// Codec encodes and decodes one opcode of one protocol version.
type Codec interface {
	Name() string
	Code() Opcode
	Encode(msg Message) ([]byte, error)
	Decode(data []byte) (Message, error)
}

type codec[M Message] struct {
	code  Opcode
	write func(e *Encoder, m M)
	read  func(d *Decoder, h Header) M
}

// NewCodec builds a Codec from one body writer and one body reader. The
// writer serves both the length and the write pass; the reader is only called
// once the header has been read successfully.
func NewCodec[M Message](code Opcode, write func(e *Encoder, m M), read func(d *Decoder, h Header) M) Codec {
	return &codec[M]{code: code, write: write, read: read}
}

func (c *codec[M]) Name() string { return c.code.String() }

func (c *codec[M]) Code() Opcode { return c.code }

// Encode does not classify wire-level failures: range and type errors from
// the wire package are returned as they are.
func (c *codec[M]) Encode(msg Message) ([]byte, error) {
	m, ok := msg.(M)
	if !ok {
		return nil, fmt.Errorf("%w: %T cannot be encoded as %s", wire.ErrType, msg, c.code)
	}
	return Marshal(func(e *Encoder) {
		e.Header(c.code, m.Sequence())
		c.write(e, m)
	})
}

func (c *codec[M]) Decode(data []byte) (Message, error) {
	d := NewDecoder(data)
	h := d.Header(c.code)
	var m M
	if d.Err() == nil {
		m = c.read(d, h)
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return m, nil
}
