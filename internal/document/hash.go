package document

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/muurk/kpowire/internal/protocol"
	v1 "github.com/muurk/kpowire/internal/protocol/v1"
	v2 "github.com/muurk/kpowire/internal/protocol/v2"
)

// NodeHash is the serialization of one node of a hashed tree.
type NodeHash struct {
	Path string            `yaml:"path" json:"path"`
	Data protocol.HexBytes `yaml:"data" json:"data"`
}

// TreeHash is the digest of a node list together with each node's
// serialization.
type TreeHash struct {
	Version protocol.Version  `yaml:"version" json:"version"`
	Digest  protocol.HexBytes `yaml:"digest" json:"digest"`
	Nodes   []NodeHash        `yaml:"nodes" json:"nodes"`
}

// HashNodes reads a YAML or JSON list of nodes, each a path, a type and the
// version's node properties, and computes the change-detection digest.
func HashNodes(data []byte, v protocol.Version) (*TreeHash, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	out := &TreeHash{Version: v}
	var err error
	switch v {
	case protocol.V1:
		var records []v1.HashRecord
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to parse nodes: %w", err)
		}
		for _, r := range records {
			b, err := v1.HashNode(r)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", r.Path, err)
			}
			out.Nodes = append(out.Nodes, NodeHash{Path: r.Path, Data: b})
		}
		out.Digest, err = v1.Digest(records)
	case protocol.V2:
		var records []v2.HashRecord
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to parse nodes: %w", err)
		}
		for _, r := range records {
			b, err := v2.HashNode(r)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", r.Path, err)
			}
			out.Nodes = append(out.Nodes, NodeHash{Path: r.Path, Data: b})
		}
		out.Digest, err = v2.Digest(records)
	default:
		return nil, fmt.Errorf("unsupported protocol version %s", v)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
