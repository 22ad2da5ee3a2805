package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Opcode is the one-byte message type tag that starts every message.
type Opcode uint8

const (
	OpAck                       Opcode = 0x00
	OpNak                       Opcode = 0x01
	OpLogin                     Opcode = 0x02
	OpGetHash                   Opcode = 0x03
	OpGetHashResponse           Opcode = 0x04
	OpGetTime                   Opcode = 0x05
	OpGetTimeResponse           Opcode = 0x06
	OpEnablePublish             Opcode = 0x07
	OpPublish                   Opcode = 0x08
	OpUnpublish                 Opcode = 0x09
	OpWrite                     Opcode = 0x0a
	OpCommit                    Opcode = 0x0b
	OpGetNodeProperties         Opcode = 0x0c
	OpGetNodePropertiesResponse Opcode = 0x0d
	OpCreateModifyNode          Opcode = 0x0e
	OpDeleteNode                Opcode = 0x0f
	OpEmergency                 Opcode = 0x10
	OpCommittedWrite            Opcode = 0x11
	OpCancel                    Opcode = 0x12
	OpThrottle                  Opcode = 0x13
)

var opcodeNames = [...]string{
	OpAck:                       "ack",
	OpNak:                       "nak",
	OpLogin:                     "login",
	OpGetHash:                   "getHash",
	OpGetHashResponse:           "getHashResponse",
	OpGetTime:                   "getTime",
	OpGetTimeResponse:           "getTimeResponse",
	OpEnablePublish:             "enablePublish",
	OpPublish:                   "publish",
	OpUnpublish:                 "unpublish",
	OpWrite:                     "write",
	OpCommit:                    "commit",
	OpGetNodeProperties:         "getNodeProperties",
	OpGetNodePropertiesResponse: "getNodePropertiesResponse",
	OpCreateModifyNode:          "createModifyNode",
	OpDeleteNode:                "deleteNode",
	OpEmergency:                 "emergency",
	OpCommittedWrite:            "committedWrite",
	OpCancel:                    "cancel",
	OpThrottle:                  "throttle",
}

// Known reports whether o is one of the defined opcodes.
func (o Opcode) Known() bool {
	return int(o) < len(opcodeNames)
}

// String returns the opcode name, or unknown(0xNN).
func (o Opcode) String() string {
	if o.Known() {
		return opcodeNames[o]
	}
	return fmt.Sprintf("unknown(0x%02x)", uint8(o))
}

// ParseOpcode accepts an opcode name (case-insensitive) or a numeric code
// such as "0x0e" or "14".
func ParseOpcode(s string) (Opcode, error) {
	for i, name := range opcodeNames {
		if strings.EqualFold(name, s) {
			return Opcode(i), nil
		}
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err == nil && Opcode(n).Known() {
		return Opcode(n), nil
	}
	return 0, NewInvalidOpcodeError(fmt.Sprintf("unknown opcode %q", s))
}

func (o Opcode) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Opcode) UnmarshalText(text []byte) error {
	v, err := ParseOpcode(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Descriptor is the immutable name/code pair of a registered opcode.
type Descriptor struct {
	Name string
	Code Opcode
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s(0x%02x)", d.Name, uint8(d.Code))
}
