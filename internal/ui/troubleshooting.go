package ui

import "github.com/muurk/kpowire/internal/protocol"

var tips = map[protocol.ErrorKind][]string{
	protocol.InvalidOpcode: {
		"Compare the first byte with the table from 'kpowire opcodes'",
		"The message may belong to the other protocol version; try --protocol",
	},
	protocol.InvalidSequenceNumber: {
		"Sequence id 0 is reserved; use 1 to 65535",
	},
	protocol.ProtocolError: {
		"The message is truncated or carries trailing bytes",
		"Check string and byte array length prefixes against the payload",
		"Empty write, committed write and unpublish lists are not allowed",
	},
	protocol.InvalidNodeType: {
		"Only point (0x00) and group (0x01) nodes can be created or hashed",
		"Groups cannot carry point-only properties such as data type or scaling",
	},
	protocol.InvalidOption: {
		"Reserved option bits must be clear",
		"The index option needs the modify option",
		"Detailed publish entries need the detailed flag, and the reverse",
	},
	protocol.InvalidDataType: {
		"Data type 11 is reserved",
		"Protocol v1 has no 64-bit integer types",
		"Trigger N and NT need a numeric point data type",
	},
	protocol.InvalidValue: {
		"Trigger N must be finite and fit the data type of the node",
	},
}

// Troubleshooting returns tips for the kind of err.
func Troubleshooting(err error) []string {
	if t, ok := tips[protocol.KindOf(err)]; ok {
		return t
	}
	return []string{"Run with --log-level debug to log a hex dump of the message"}
}

// RenderCodecFailure renders a failure box for a failed encode or decode.
func RenderCodecFailure(title string, err error, width int) string {
	return NewFailureResult(title, err, Troubleshooting(err)).SetWidth(width).Render()
}
