package v2

import (
	"github.com/muurk/kpowire/internal/protocol"
	"github.com/muurk/kpowire/internal/wire"
)

var types = protocol.V2.Types()

type Login struct {
	protocol.Header `yaml:",inline"`
	Options         uint8  `yaml:"options" json:"options"`
	User            string `yaml:"user" json:"user"`
	Password        string `yaml:"password" json:"password"`
	Interval        uint16 `yaml:"interval" json:"interval"`
	Timeout         uint8  `yaml:"timeout" json:"timeout"`
	PublishOptions  uint8  `yaml:"publishOptions" json:"publishOptions"`
}

// GetHashResponse carries the SHA-256 digest of the node tree (see Digest).
type GetHashResponse struct {
	protocol.Header `yaml:",inline"`
	Digest          protocol.HexBytes `yaml:"digest" json:"digest"`
}

// Publish announces groups (group flag set) or points. With the detailed
// flag set every node carries its Detail; without it none does.
type Publish struct {
	protocol.Header `yaml:",inline"`
	Flags           protocol.PublishFlags `yaml:"flags" json:"flags"`
	Groups          []PublishGroup        `yaml:"groups,omitempty" json:"groups,omitempty"`
	Points          []PublishPoint        `yaml:"points,omitempty" json:"points,omitempty"`
}

type PublishGroup struct {
	ID     uint16       `yaml:"id" json:"id"`
	Path   string       `yaml:"path" json:"path"`
	Detail *GroupDetail `yaml:"detail,omitempty" json:"detail,omitempty"`
}

type GroupDetail struct {
	Description string           `yaml:"description" json:"description"`
	Flags       uint8            `yaml:"flags" json:"flags"`
	Trigger     protocol.Trigger `yaml:"trigger" json:"trigger"`
	History     uint8            `yaml:"history" json:"history"`
}

type PublishPoint struct {
	ID       uint16           `yaml:"id" json:"id"`
	Path     string           `yaml:"path" json:"path"`
	DataType wire.DataType    `yaml:"dataType" json:"dataType"`
	Flags    uint8            `yaml:"flags" json:"flags"`
	Trigger  protocol.Trigger `yaml:"trigger" json:"trigger"`
	QoS      uint8            `yaml:"qos" json:"qos"`
	Detail   *PointDetail     `yaml:"detail,omitempty" json:"detail,omitempty"`
}

type PointDetail struct {
	Description string           `yaml:"description" json:"description"`
	Format      string           `yaml:"format" json:"format"`
	Scaling     protocol.Scaling `yaml:"scaling" json:"scaling"`
	WriteRange  protocol.Range   `yaml:"writeRange" json:"writeRange"`
}

// PointProperties are present only for POINT nodes.
type PointProperties struct {
	DataType wire.DataType `yaml:"dataType" json:"dataType"`
	QoS      uint8         `yaml:"qos" json:"qos"`
}

// NumericProperties are present only for points with a numeric data type.
type NumericProperties struct {
	Format     string           `yaml:"format" json:"format"`
	Unit       string           `yaml:"unit" json:"unit"`
	Scaling    protocol.Scaling `yaml:"scaling" json:"scaling"`
	WriteRange protocol.Range   `yaml:"writeRange" json:"writeRange"`
}

type GetNodePropertiesResponse struct {
	protocol.Header `yaml:",inline"`
	Type            protocol.NodeType  `yaml:"type" json:"type"`
	ID              uint16             `yaml:"id" json:"id"`
	Path            string             `yaml:"path" json:"path"`
	Description     string             `yaml:"description" json:"description"`
	Flags           uint8              `yaml:"flags" json:"flags"`
	History         uint8              `yaml:"history" json:"history"`
	Point           *PointProperties   `yaml:"point,omitempty" json:"point,omitempty"`
	Trigger         protocol.Trigger   `yaml:"trigger" json:"trigger"`
	TriggerDomain   uint8              `yaml:"triggerDomain" json:"triggerDomain"`
	Numeric         *NumericProperties `yaml:"numeric,omitempty" json:"numeric,omitempty"`
}

// CreateModifyNode creates a node, or modifies one when Modify is set. The
// node is addressed by ID (index addressing, modify only) or by Path.
type CreateModifyNode struct {
	protocol.Header `yaml:",inline"`
	Modify          bool              `yaml:"modify" json:"modify"`
	Type            protocol.NodeType `yaml:"type" json:"type"`
	ID              *uint16           `yaml:"id,omitempty" json:"id,omitempty"`
	Path            string            `yaml:"path,omitempty" json:"path,omitempty"`
	Properties      `yaml:",inline"`
}

// Options returns the option bitmap the message is encoded with.
func (m *CreateModifyNode) Options() Options {
	o := m.Properties.Options()
	if m.Modify {
		o |= OptModify
	}
	if m.ID != nil {
		o |= OptIndex
	}
	return o
}

func (*Login) Opcode() protocol.Opcode                     { return protocol.OpLogin }
func (*GetHashResponse) Opcode() protocol.Opcode           { return protocol.OpGetHashResponse }
func (*Publish) Opcode() protocol.Opcode                   { return protocol.OpPublish }
func (*GetNodePropertiesResponse) Opcode() protocol.Opcode { return protocol.OpGetNodePropertiesResponse }
func (*CreateModifyNode) Opcode() protocol.Opcode          { return protocol.OpCreateModifyNode }

// NewMessage returns a zero v2 message for op.
func NewMessage(op protocol.Opcode) (protocol.Message, bool) {
	switch op {
	case protocol.OpLogin:
		return &Login{}, true
	case protocol.OpGetHashResponse:
		return &GetHashResponse{}, true
	case protocol.OpPublish:
		return &Publish{}, true
	case protocol.OpGetNodePropertiesResponse:
		return &GetNodePropertiesResponse{}, true
	case protocol.OpCreateModifyNode:
		return &CreateModifyNode{}, true
	}
	return protocol.NewSharedMessage(op)
}
