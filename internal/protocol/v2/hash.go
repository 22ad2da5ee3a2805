package v2

import (
	"crypto/sha256"
	"fmt"

	"github.com/muurk/kpowire/internal/protocol"
)

// HashSize is the width of a v2 node tree digest.
const HashSize = sha256.Size

// HashRecord is the node state that feeds the change-detection digest.
type HashRecord struct {
	Path       string            `yaml:"path" json:"path"`
	Type       protocol.NodeType `yaml:"type" json:"type"`
	Properties `yaml:",inline"`
}

func writeHash(e *protocol.Encoder, r *HashRecord) {
	if err := r.Options().Check(r.Type); err != nil {
		e.Fail(err)
		return
	}
	e.ASCII(r.Path)
	writeProperties(e, r.Type, &r.Properties)
}

// HashNode serializes r for hashing: the ASCII path followed by the present
// properties in CreateModifyNode order.
func HashNode(r HashRecord) ([]byte, error) {
	return protocol.Marshal(func(e *protocol.Encoder) { writeHash(e, &r) })
}

// HashLength returns the size HashNode would produce for r.
func HashLength(r HashRecord) (int, error) {
	return protocol.Measure(func(e *protocol.Encoder) { writeHash(e, &r) })
}

// Digest returns the SHA-256 of the concatenated serializations of records.
func Digest(records []HashRecord) ([]byte, error) {
	h := sha256.New()
	for _, r := range records {
		b, err := HashNode(r)
		if err != nil {
			return nil, fmt.Errorf("hash node %q: %w", r.Path, err)
		}
		h.Write(b)
	}
	return h.Sum(nil), nil
}
