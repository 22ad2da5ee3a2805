package registry

import (
	"fmt"

	"github.com/muurk/kpowire/internal/protocol"
)

// Direction tells a Transform which side of the codec it runs on.
type Direction int

const (
	// Incoming messages have just been decoded.
	Incoming Direction = iota
	// Outgoing messages are about to be encoded.
	Outgoing
)

func (d Direction) String() string {
	switch d {
	case Incoming:
		return "incoming"
	case Outgoing:
		return "outgoing"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Transform rewrites messages at the protocol version boundary, for example
// converting timestamp units or dropping fields another version lacks. It may
// return msg itself or a replacement.
type Transform func(msg protocol.Message, dir Direction) (protocol.Message, error)

// Identity returns every message unchanged.
func Identity(msg protocol.Message, _ Direction) (protocol.Message, error) {
	return msg, nil
}

// Chain applies transforms in order, stopping at the first error.
func Chain(transforms ...Transform) Transform {
	return func(msg protocol.Message, dir Direction) (protocol.Message, error) {
		var err error
		for _, t := range transforms {
			if msg, err = t(msg, dir); err != nil {
				return nil, err
			}
		}
		return msg, nil
	}
}
