package v1

import (
	"fmt"

	"github.com/muurk/kpowire/internal/protocol"
	"github.com/muurk/kpowire/internal/wire"
)

// Codecs returns every v1 codec.
func Codecs() []protocol.Codec {
	return append(protocol.SharedCodecs(protocol.V1),
		LoginCodec,
		GetHashResponseCodec,
		PublishCodec,
		GetNodePropertiesResponseCodec,
		CreateModifyNodeCodec,
	)
}

var LoginCodec = protocol.NewCodec(protocol.OpLogin,
	func(e *protocol.Encoder, m *Login) {
		e.U8(m.Version)
		e.U8(m.Options)
		e.Text(m.User)
		e.FixedOctets(m.PasswordHash, PasswordHashSize)
		e.U16(m.Interval)
		e.U8(m.Timeout)
	},
	func(d *protocol.Decoder, h protocol.Header) *Login {
		return &Login{
			Header:       h,
			Version:      d.U8(),
			Options:      d.U8(),
			User:         d.Text(),
			PasswordHash: d.Octets(PasswordHashSize),
			Interval:     d.U16(),
			Timeout:      d.U8(),
		}
	},
)

var GetHashResponseCodec = protocol.NewCodec(protocol.OpGetHashResponse,
	func(e *protocol.Encoder, m *GetHashResponse) { e.FixedOctets(m.Digest, HashSize) },
	func(d *protocol.Decoder, h protocol.Header) *GetHashResponse {
		return &GetHashResponse{Header: h, Digest: d.Octets(HashSize)}
	},
)

var PublishCodec = protocol.NewCodec(protocol.OpPublish,
	func(e *protocol.Encoder, m *Publish) {
		e.PublishFlags(m.Flags)
		if m.Flags.Group() {
			if len(m.Points) > 0 {
				e.Fail(protocol.NewOptionError("group publish cannot carry points"))
				return
			}
			for _, g := range m.Groups {
				e.U16(g.ID)
				e.ASCII(g.Path)
			}
			return
		}
		if len(m.Groups) > 0 {
			e.Fail(protocol.NewOptionError("point publish cannot carry groups"))
			return
		}
		for i := range m.Points {
			p := &m.Points[i]
			e.U16(p.ID)
			e.ASCII(p.Path)
			e.U8(p.Flags)
			e.DataType(types, p.DataType)
			e.Trigger(p.Trigger, protocol.NodePoint, &p.DataType)
			e.U8(p.TriggerDomain)
			e.U8(p.QoS)
		}
	},
	func(d *protocol.Decoder, h protocol.Header) *Publish {
		m := &Publish{Header: h, Flags: d.PublishFlags()}
		for d.More() {
			if m.Flags.Group() {
				m.Groups = append(m.Groups, PublishGroup{ID: d.U16(), Path: d.ASCII()})
				continue
			}
			var p PublishPoint
			p.ID = d.U16()
			p.Path = d.ASCII()
			p.Flags = d.U8()
			p.DataType = d.DataType(types)
			p.Trigger = d.Trigger(protocol.NodePoint, &p.DataType)
			p.TriggerDomain = d.U8()
			p.QoS = d.U8()
			m.Points = append(m.Points, p)
		}
		return m
	},
)

var GetNodePropertiesResponseCodec = protocol.NewCodec(protocol.OpGetNodePropertiesResponse,
	func(e *protocol.Encoder, m *GetNodePropertiesResponse) {
		if err := protocol.CheckEntity(m.Type); err != nil {
			e.Fail(err)
			return
		}
		e.U8(uint8(m.Type))
		e.U16(m.ID)
		e.ASCII(m.Path)
		e.Text(m.Description)
		e.U8(m.Flags)
		e.U8(m.History)
		e.Text(m.UpdateURL)

		var dt *wire.DataType
		switch {
		case m.Type == protocol.NodePoint && m.Point == nil:
			e.Fail(protocol.NewOptionError("point node without point properties"))
			return
		case m.Type == protocol.NodeGroup && m.Point != nil:
			e.Fail(protocol.NewNodeTypeError("group node with point properties"))
			return
		case m.Point != nil:
			dt = &m.Point.DataType
			e.DataType(types, m.Point.DataType)
			e.U8(m.Point.QoS)
		}
		e.Trigger(m.Trigger, m.Type, dt)
		e.U8(m.TriggerDomain)

		numeric := dt != nil && dt.Numeric()
		if numeric != (m.Numeric != nil) {
			e.Fail(protocol.NewOptionError(fmt.Sprintf("numeric properties must be present exactly for numeric points (data type %v)", dt)))
			return
		}
		if numeric {
			e.Text(m.Numeric.Format)
			e.Scaling(m.Numeric.Scaling)
			e.Range(m.Numeric.WriteRange)
		}
	},
	func(d *protocol.Decoder, h protocol.Header) *GetNodePropertiesResponse {
		m := &GetNodePropertiesResponse{Header: h}
		m.Type = d.NodeType()
		m.ID = d.U16()
		m.Path = d.ASCII()
		m.Description = d.Text()
		m.Flags = d.U8()
		m.History = d.U8()
		m.UpdateURL = d.Text()
		var dt *wire.DataType
		if m.Type == protocol.NodePoint {
			m.Point = &PointProperties{DataType: d.DataType(types), QoS: d.U8()}
			dt = &m.Point.DataType
		}
		m.Trigger = d.Trigger(m.Type, dt)
		m.TriggerDomain = d.U8()
		if dt != nil && dt.Numeric() {
			m.Numeric = &NumericProperties{
				Format:     d.Text(),
				Scaling:    d.Scaling(),
				WriteRange: d.Range(),
			}
		}
		return m
	},
)

var CreateModifyNodeCodec = protocol.NewCodec(protocol.OpCreateModifyNode,
	func(e *protocol.Encoder, m *CreateModifyNode) {
		o := m.Options()
		if err := o.Check(m.Type); err != nil {
			e.Fail(err)
			return
		}
		e.U16(uint16(o))
		e.U8(uint8(m.Type))
		if m.ID != nil {
			e.U16(*m.ID)
		} else {
			e.ASCII(m.Path)
		}
		writeProperties(e, m.Type, &m.Properties)
	},
	func(d *protocol.Decoder, h protocol.Header) *CreateModifyNode {
		m := &CreateModifyNode{Header: h}
		o := Options(d.U16())
		m.Type = protocol.NodeType(d.U8())
		if d.Err() != nil {
			return m
		}
		if err := o.Check(m.Type); err != nil {
			d.Fail(err)
			return m
		}
		m.Modify = o&OptModify != 0
		if o&OptIndex != 0 {
			id := d.U16()
			m.ID = &id
		} else {
			m.Path = d.ASCII()
		}
		m.Properties = readProperties(d, m.Type, o)
		return m
	},
)
