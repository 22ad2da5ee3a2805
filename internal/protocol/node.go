package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeType selects point, group or path addressing.
type NodeType uint8

const (
	NodePoint NodeType = 0x00
	NodeGroup NodeType = 0x01
	// NodePath only appears in addressing requests.
	NodePath NodeType = 0xff
)

func (t NodeType) String() string {
	switch t {
	case NodePoint:
		return "point"
	case NodeGroup:
		return "group"
	case NodePath:
		return "path"
	default:
		return fmt.Sprintf("NodeType(0x%02x)", uint8(t))
	}
}

// ParseNodeType is the inverse of NodeType.String.
func ParseNodeType(s string) (NodeType, error) {
	switch strings.ToLower(s) {
	case "point":
		return NodePoint, nil
	case "group":
		return NodeGroup, nil
	case "path":
		return NodePath, nil
	}
	return 0, NewNodeTypeError(fmt.Sprintf("unknown node type %q", s))
}

func (t NodeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts a node type name or its numeric code.
func (t *NodeType) UnmarshalText(text []byte) error {
	if n, err := strconv.ParseUint(string(text), 0, 8); err == nil {
		*t = NodeType(n)
		return nil
	}
	v, err := ParseNodeType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// CheckEntity returns InvalidNodeType unless t is POINT or GROUP.
func CheckEntity(t NodeType) error {
	if t == NodePoint || t == NodeGroup {
		return nil
	}
	return NewNodeTypeError(fmt.Sprintf("node type %s is not a point or group", t))
}

// Address identifies a node by id (POINT, GROUP) or by path (PATH).
type Address struct {
	Type NodeType `yaml:"type" json:"type"`
	ID   uint16   `yaml:"id,omitempty" json:"id,omitempty"`
	Path string   `yaml:"path,omitempty" json:"path,omitempty"`
}

// Address writes the node type followed by an id or an ASCII path.
func (e *Encoder) Address(a Address) {
	switch a.Type {
	case NodePoint, NodeGroup:
		e.U8(uint8(a.Type))
		e.U16(a.ID)
	case NodePath:
		e.U8(uint8(a.Type))
		e.ASCII(a.Path)
	default:
		e.Fail(NewNodeTypeError(fmt.Sprintf("cannot address node type %s", a.Type)))
	}
}

// Address reads an Address.
func (d *Decoder) Address() Address {
	a := Address{Type: NodeType(d.U8())}
	if d.err != nil {
		return Address{}
	}
	switch a.Type {
	case NodePoint, NodeGroup:
		a.ID = d.U16()
	case NodePath:
		a.Path = d.ASCII()
	default:
		d.Fail(NewNodeTypeError(fmt.Sprintf("cannot address node type %s", a.Type)))
	}
	return a
}

// NodeType reads an entity node type (POINT or GROUP).
func (d *Decoder) NodeType() NodeType {
	t := NodeType(d.U8())
	if d.err != nil {
		return 0
	}
	if err := CheckEntity(t); err != nil {
		d.Fail(err)
	}
	return t
}

// PublishFlags is the publish command bitmap.
type PublishFlags uint8

const (
	PublishGroup    PublishFlags = 1 << 0
	PublishDetailed PublishFlags = 1 << 1
	PublishFinished PublishFlags = 1 << 2

	publishReserved PublishFlags = 0xf8
)

func (f PublishFlags) Group() bool    { return f&PublishGroup != 0 }
func (f PublishFlags) Detailed() bool { return f&PublishDetailed != 0 }
func (f PublishFlags) Finished() bool { return f&PublishFinished != 0 }

// Check returns InvalidOption when reserved bits are set.
func (f PublishFlags) Check() error {
	if f&publishReserved != 0 {
		return NewOptionError(fmt.Sprintf("reserved publish flags set: 0x%02x", uint8(f&publishReserved)))
	}
	return nil
}

func (f PublishFlags) String() string {
	var parts []string
	if f.Group() {
		parts = append(parts, "group")
	} else {
		parts = append(parts, "point")
	}
	if f.Detailed() {
		parts = append(parts, "detailed")
	}
	if f.Finished() {
		parts = append(parts, "finished")
	}
	return strings.Join(parts, "|")
}

// PublishFlags writes the bitmap after checking reserved bits.
func (e *Encoder) PublishFlags(f PublishFlags) {
	if err := f.Check(); err != nil {
		e.Fail(err)
		return
	}
	e.U8(uint8(f))
}

// PublishFlags reads the bitmap; reserved bits are InvalidOption.
func (d *Decoder) PublishFlags() PublishFlags {
	f := PublishFlags(d.U8())
	if d.err == nil {
		if err := f.Check(); err != nil {
			d.Fail(err)
		}
	}
	return f
}

// Scaling maps raw values to engineering values.
type Scaling struct {
	Factor float64 `yaml:"factor" json:"factor"`
	Offset float64 `yaml:"offset" json:"offset"`
}

// Range bounds the values a client may write.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (e *Encoder) Scaling(s Scaling) {
	e.F64(s.Factor)
	e.F64(s.Offset)
}

func (d *Decoder) Scaling() Scaling {
	return Scaling{Factor: d.F64(), Offset: d.F64()}
}

func (e *Encoder) Range(r Range) {
	e.F64(r.Min)
	e.F64(r.Max)
}

func (d *Decoder) Range() Range {
	return Range{Min: d.F64(), Max: d.F64()}
}
