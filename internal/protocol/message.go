package protocol

import (
	"encoding/hex"
	"fmt"
)

// Header is the common prefix of every message. The opcode byte is implied by
// the message type.
type Header struct {
	SequenceID uint16 `yaml:"sequenceId" json:"sequenceId"`
}

// Sequence returns the sequence id.
func (h Header) Sequence() uint16 {
	return h.SequenceID
}

// Message is one decoded or to-be-encoded protocol message. Each opcode has
// its own struct; the registry dispatches on Opcode.
type Message interface {
	Opcode() Opcode
	Sequence() uint16
}

// HexBytes is an octet run rendered as hex text in YAML and JSON documents.
type HexBytes []byte

func (b HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}

func (b *HexBytes) UnmarshalText(text []byte) error {
	p, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	*b = p
	return nil
}
