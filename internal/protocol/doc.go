// Package protocol implements the message layer of the KPO pub/sub wire
// protocol shared by protocol versions v1 and v2.
//
// # Message Layout
//
// Every message starts with the same three bytes:
//   - Opcode: 1 byte (see Opcode)
//   - Sequence id: 2 bytes, big-endian, never zero
//
// The body layout depends on the opcode and, for Login, GetHashResponse,
// Publish, GetNodePropertiesResponse and CreateModifyNode, on the protocol
// version. Those live in the v1 and v2 subpackages; this package holds the
// opcodes whose layout is identical in both versions.
//
// # Codecs
//
// A Codec is built from a single body writer and a single body reader:
//
//	var CommitCodec = protocol.NewCodec(protocol.OpCommit,
//	    func(e *protocol.Encoder, m *protocol.Commit) { e.U64(m.Timestamp) },
//	    func(d *protocol.Decoder, h protocol.Header) *protocol.Commit {
//	        return &protocol.Commit{Header: h, Timestamp: d.U64()}
//	    },
//	)
//
// The writer runs twice, first against a wire.Length to size the output and
// then against a buffer of exactly that size, so the two passes cannot
// disagree. Encoder and Decoder keep the first error; later calls are
// no-ops.
//
// # Error Handling
//
// Decode errors are always *Error values classified by ErrorKind. Checks that
// raise a specific kind (sequence id, option bits, node type) propagate
// unchanged; every other failure, including truncation, is wrapped as
// ProtocolError with the cause kept in the chain.
//
// Encode does not reclassify: wire range and type errors are returned as they
// are, and the call produces no output.
//
// # Thread Safety
//
// Codecs are stateless and safe for concurrent use.
package protocol
