package v2

import (
	"fmt"

	"github.com/muurk/kpowire/internal/protocol"
	"github.com/muurk/kpowire/internal/wire"
)

// Options is the CreateModifyNode option bitmap.
type Options uint16

const (
	OptModify        Options = 1 << 0
	OptIndex         Options = 1 << 1
	OptDescription   Options = 1 << 2
	OptFlags         Options = 1 << 3
	OptDataType      Options = 1 << 4
	OptTriggerMode   Options = 1 << 5
	OptTriggerDomain Options = 1 << 6
	OptQoS           Options = 1 << 7
	// bit 8 held the v1 update URL
	OptHistory    Options = 1 << 9
	OptFormat     Options = 1 << 10
	OptScaling    Options = 1 << 11
	OptWriteRange Options = 1 << 12
	OptUnit       Options = 1 << 13

	optReserved  Options = 0xc100
	optPointOnly         = OptDataType | OptFormat | OptUnit | OptScaling | OptWriteRange
)

// Check validates the bitmap against the node type.
func (o Options) Check(node protocol.NodeType) error {
	if o&optReserved != 0 {
		return protocol.NewOptionError(fmt.Sprintf("reserved option bits set: 0x%04x", uint16(o&optReserved)))
	}
	if o&OptIndex != 0 && o&OptModify == 0 {
		return protocol.NewOptionError("index addressing requires the modify option")
	}
	if err := protocol.CheckEntity(node); err != nil {
		return err
	}
	if node == protocol.NodeGroup && o&optPointOnly != 0 {
		return protocol.NewNodeTypeError(fmt.Sprintf("group node cannot carry options 0x%04x", uint16(o&optPointOnly)))
	}
	return nil
}

// Properties are the optional node properties of CreateModifyNode, in wire
// order. A nil field is absent.
type Properties struct {
	Description   *string           `yaml:"description,omitempty" json:"description,omitempty"`
	Flags         *uint8            `yaml:"flags,omitempty" json:"flags,omitempty"`
	DataType      *wire.DataType    `yaml:"dataType,omitempty" json:"dataType,omitempty"`
	Trigger       *protocol.Trigger `yaml:"trigger,omitempty" json:"trigger,omitempty"`
	TriggerDomain *uint8            `yaml:"triggerDomain,omitempty" json:"triggerDomain,omitempty"`
	QoS           *uint8            `yaml:"qos,omitempty" json:"qos,omitempty"`
	History       *uint8            `yaml:"history,omitempty" json:"history,omitempty"`
	Format        *string           `yaml:"format,omitempty" json:"format,omitempty"`
	Unit          *string           `yaml:"unit,omitempty" json:"unit,omitempty"`
	Scaling       *protocol.Scaling `yaml:"scaling,omitempty" json:"scaling,omitempty"`
	WriteRange    *protocol.Range   `yaml:"writeRange,omitempty" json:"writeRange,omitempty"`
}

// Options returns the option bits for the present properties.
func (p *Properties) Options() Options {
	var o Options
	for _, f := range []struct {
		present bool
		bit     Options
	}{
		{p.Description != nil, OptDescription},
		{p.Flags != nil, OptFlags},
		{p.DataType != nil, OptDataType},
		{p.Trigger != nil, OptTriggerMode},
		{p.TriggerDomain != nil, OptTriggerDomain},
		{p.QoS != nil, OptQoS},
		{p.History != nil, OptHistory},
		{p.Format != nil, OptFormat},
		{p.Unit != nil, OptUnit},
		{p.Scaling != nil, OptScaling},
		{p.WriteRange != nil, OptWriteRange},
	} {
		if f.present {
			o |= f.bit
		}
	}
	return o
}

// writeProperties is shared by CreateModifyNode and the hash serializer.
func writeProperties(e *protocol.Encoder, node protocol.NodeType, p *Properties) {
	if p.Description != nil {
		e.Text(*p.Description)
	}
	if p.Flags != nil {
		e.U8(*p.Flags)
	}
	if p.DataType != nil {
		e.DataType(types, *p.DataType)
	}
	if p.Trigger != nil {
		e.Trigger(*p.Trigger, node, p.DataType)
	}
	if p.TriggerDomain != nil {
		e.U8(*p.TriggerDomain)
	}
	if p.QoS != nil {
		e.U8(*p.QoS)
	}
	if p.History != nil {
		e.U8(*p.History)
	}
	if p.Format != nil {
		e.Text(*p.Format)
	}
	if p.Unit != nil {
		e.Text(*p.Unit)
	}
	if p.Scaling != nil {
		e.Scaling(*p.Scaling)
	}
	if p.WriteRange != nil {
		e.Range(*p.WriteRange)
	}
}

func readProperties(d *protocol.Decoder, node protocol.NodeType, o Options) Properties {
	var p Properties
	p.Description = optional(o&OptDescription != 0, d.Text)
	p.Flags = optional(o&OptFlags != 0, d.U8)
	p.DataType = optional(o&OptDataType != 0, func() wire.DataType { return d.DataType(types) })
	p.Trigger = optional(o&OptTriggerMode != 0, func() protocol.Trigger { return d.Trigger(node, p.DataType) })
	p.TriggerDomain = optional(o&OptTriggerDomain != 0, d.U8)
	p.QoS = optional(o&OptQoS != 0, d.U8)
	p.History = optional(o&OptHistory != 0, d.U8)
	p.Format = optional(o&OptFormat != 0, d.Text)
	p.Unit = optional(o&OptUnit != 0, d.Text)
	p.Scaling = optional(o&OptScaling != 0, d.Scaling)
	p.WriteRange = optional(o&OptWriteRange != 0, d.Range)
	return p
}

func optional[T any](present bool, read func() T) *T {
	if !present {
		return nil
	}
	v := read()
	return &v
}
