// Package registry maps opcode bytes to the codecs of one protocol version and
// runs the version compatibility transform around every encode and decode.
package registry

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/muurk/kpowire/internal/logging"
	"github.com/muurk/kpowire/internal/protocol"
	v1 "github.com/muurk/kpowire/internal/protocol/v1"
	v2 "github.com/muurk/kpowire/internal/protocol/v2"
)

// Registry is immutable after New and safe for concurrent use.
type Registry struct {
	version    protocol.Version
	codecs     map[protocol.Opcode]protocol.Codec
	newMessage func(protocol.Opcode) (protocol.Message, bool)
	transform  Transform
	logger     *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithTransform sets the compatibility transform. The default is Identity.
func WithTransform(t Transform) Option {
	return func(r *Registry) {
		if t != nil {
			r.transform = t
		}
	}
}

// WithLogger sets the logger. The default is the global logging logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New builds the registry for version v.
func New(v protocol.Version, opts ...Option) (*Registry, error) {
	var (
		codecs     []protocol.Codec
		newMessage func(protocol.Opcode) (protocol.Message, bool)
	)
	switch v {
	case protocol.V1:
		codecs, newMessage = v1.Codecs(), v1.NewMessage
	case protocol.V2:
		codecs, newMessage = v2.Codecs(), v2.NewMessage
	default:
		return nil, fmt.Errorf("unsupported protocol version %s", v)
	}

	r := &Registry{
		version:    v,
		codecs:     make(map[protocol.Opcode]protocol.Codec, len(codecs)),
		newMessage: newMessage,
		transform:  Identity,
	}
	for _, c := range codecs {
		if _, dup := r.codecs[c.Code()]; dup {
			return nil, fmt.Errorf("duplicate codec for opcode %s", c.Code())
		}
		r.codecs[c.Code()] = c
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.GetLogger()
	}
	r.logger = r.logger.With(zap.Stringer("protocol", v))
	return r, nil
}

// Version returns the protocol version the registry serves.
func (r *Registry) Version() protocol.Version {
	return r.version
}

// Codec returns the codec for op.
func (r *Registry) Codec(op protocol.Opcode) (protocol.Codec, bool) {
	c, ok := r.codecs[op]
	return c, ok
}

// Decode decodes one message. The first byte selects the codec; the result
// passes through the incoming transform.
func (r *Registry) Decode(data []byte) (protocol.Message, error) {
	if len(data) == 0 {
		err := protocol.NewProtocolError("empty message", nil)
		logging.LogCodecError(r.logger, Incoming.String(), "", data, err)
		return nil, err
	}
	op := protocol.Opcode(data[0])
	c, ok := r.codecs[op]
	if !ok {
		err := protocol.NewInvalidOpcodeError(fmt.Sprintf("unknown opcode 0x%02x", data[0]))
		logging.LogCodecError(r.logger, Incoming.String(), op.String(), data, err)
		return nil, err
	}

	msg, err := c.Decode(data)
	if err != nil {
		logging.LogCodecError(r.logger, Incoming.String(), c.Name(), data, err)
		return nil, err
	}
	msg, err = r.transform(msg, Incoming)
	if err != nil {
		return nil, fmt.Errorf("incoming %s transform: %w", c.Name(), err)
	}
	logging.LogMessage(r.logger, Incoming.String(), c.Name(), msg.Sequence(), data)
	return msg, nil
}

// Encode runs the outgoing transform and encodes the result with the codec
// for its opcode. Codec errors are returned unwrapped.
func (r *Registry) Encode(msg protocol.Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("encode: nil message")
	}
	op := msg.Opcode()
	msg, err := r.transform(msg, Outgoing)
	if err != nil {
		return nil, fmt.Errorf("outgoing %s transform: %w", op, err)
	}
	c, ok := r.codecs[msg.Opcode()]
	if !ok {
		return nil, protocol.NewInvalidOpcodeError(fmt.Sprintf("no %s codec for opcode %s", r.version, msg.Opcode()))
	}

	data, err := c.Encode(msg)
	if err != nil {
		logging.LogCodecError(r.logger, Outgoing.String(), c.Name(), nil, err)
		return nil, err
	}
	logging.LogMessage(r.logger, Outgoing.String(), c.Name(), msg.Sequence(), data)
	return data, nil
}

// NameFromOpcode returns the registered name for code. It is meant for
// logging and diagnostics.
func (r *Registry) NameFromOpcode(code uint8) (string, bool) {
	c, ok := r.codecs[protocol.Opcode(code)]
	if !ok {
		return "", false
	}
	return c.Name(), true
}

// Descriptors lists the registered opcodes in code order.
func (r *Registry) Descriptors() []protocol.Descriptor {
	out := make([]protocol.Descriptor, 0, len(r.codecs))
	for _, c := range r.codecs {
		out = append(out, protocol.Descriptor{Name: c.Name(), Code: c.Code()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// NewMessage returns a zero message of the right type for op.
func (r *Registry) NewMessage(op protocol.Opcode) (protocol.Message, error) {
	msg, ok := r.newMessage(op)
	if !ok {
		return nil, protocol.NewInvalidOpcodeError(fmt.Sprintf("no %s message for opcode %s", r.version, op))
	}
	return msg, nil
}
