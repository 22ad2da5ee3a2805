package v2

import (
	"fmt"

	"github.com/muurk/kpowire/internal/protocol"
	"github.com/muurk/kpowire/internal/wire"
)

// Codecs returns every v2 codec.
func Codecs() []protocol.Codec {
	return append(protocol.SharedCodecs(protocol.V2),
		LoginCodec,
		GetHashResponseCodec,
		PublishCodec,
		GetNodePropertiesResponseCodec,
		CreateModifyNodeCodec,
	)
}

var LoginCodec = protocol.NewCodec(protocol.OpLogin,
	func(e *protocol.Encoder, m *Login) {
		e.U8(m.Options)
		e.Text(m.User)
		e.Text(m.Password)
		e.U16(m.Interval)
		e.U8(m.Timeout)
		e.U8(m.PublishOptions)
	},
	func(d *protocol.Decoder, h protocol.Header) *Login {
		return &Login{
			Header:         h,
			Options:        d.U8(),
			User:           d.Text(),
			Password:       d.Text(),
			Interval:       d.U16(),
			Timeout:        d.U8(),
			PublishOptions: d.U8(),
		}
	},
)

var GetHashResponseCodec = protocol.NewCodec(protocol.OpGetHashResponse,
	func(e *protocol.Encoder, m *GetHashResponse) { e.FixedOctets(m.Digest, HashSize) },
	func(d *protocol.Decoder, h protocol.Header) *GetHashResponse {
		return &GetHashResponse{Header: h, Digest: d.Octets(HashSize)}
	},
)

func detailError(detailed bool, kind string) error {
	if detailed {
		return protocol.NewOptionError(fmt.Sprintf("detailed publish needs %s detail", kind))
	}
	return protocol.NewOptionError(fmt.Sprintf("simple publish cannot carry %s detail", kind))
}

func writeGroup(e *protocol.Encoder, g *PublishGroup, detailed bool) {
	if (g.Detail != nil) != detailed {
		e.Fail(detailError(detailed, "group"))
		return
	}
	e.U16(g.ID)
	e.ASCII(g.Path)
	if detailed {
		e.U8(uint8(protocol.NodeGroup))
		e.Text(g.Detail.Description)
		e.U8(g.Detail.Flags)
		e.Trigger(g.Detail.Trigger, protocol.NodeGroup, nil)
		e.U8(g.Detail.History)
	}
}

func readGroup(d *protocol.Decoder, detailed bool) PublishGroup {
	g := PublishGroup{ID: d.U16(), Path: d.ASCII()}
	if detailed {
		if t := d.NodeType(); d.Err() == nil && t != protocol.NodeGroup {
			d.Fail(protocol.NewNodeTypeError(fmt.Sprintf("detailed group %q carries node type %s", g.Path, t)))
		}
		g.Detail = &GroupDetail{
			Description: d.Text(),
			Flags:       d.U8(),
			Trigger:     d.Trigger(protocol.NodeGroup, nil),
			History:     d.U8(),
		}
	}
	return g
}

func writePoint(e *protocol.Encoder, p *PublishPoint, detailed bool) {
	if (p.Detail != nil) != detailed {
		e.Fail(detailError(detailed, "point"))
		return
	}
	e.U16(p.ID)
	e.ASCII(p.Path)
	e.DataType(types, p.DataType)
	e.U8(p.Flags)
	e.Trigger(p.Trigger, protocol.NodePoint, &p.DataType)
	e.U8(p.QoS)
	if detailed {
		e.Text(p.Detail.Description)
		e.Text(p.Detail.Format)
		e.Scaling(p.Detail.Scaling)
		e.Range(p.Detail.WriteRange)
	}
}

func readPoint(d *protocol.Decoder, detailed bool) PublishPoint {
	var p PublishPoint
	p.ID = d.U16()
	p.Path = d.ASCII()
	p.DataType = d.DataType(types)
	p.Flags = d.U8()
	p.Trigger = d.Trigger(protocol.NodePoint, &p.DataType)
	p.QoS = d.U8()
	if detailed {
		p.Detail = &PointDetail{
			Description: d.Text(),
			Format:      d.Text(),
			Scaling:     d.Scaling(),
			WriteRange:  d.Range(),
		}
	}
	return p
}

var PublishCodec = protocol.NewCodec(protocol.OpPublish,
	func(e *protocol.Encoder, m *Publish) {
		e.PublishFlags(m.Flags)
		detailed := m.Flags.Detailed()
		if m.Flags.Group() {
			if len(m.Points) > 0 {
				e.Fail(protocol.NewOptionError("group publish cannot carry points"))
				return
			}
			for i := range m.Groups {
				writeGroup(e, &m.Groups[i], detailed)
			}
			return
		}
		if len(m.Groups) > 0 {
			e.Fail(protocol.NewOptionError("point publish cannot carry groups"))
			return
		}
		for i := range m.Points {
			writePoint(e, &m.Points[i], detailed)
		}
	},
	func(d *protocol.Decoder, h protocol.Header) *Publish {
		m := &Publish{Header: h, Flags: d.PublishFlags()}
		detailed := m.Flags.Detailed()
		for d.More() {
			if m.Flags.Group() {
				m.Groups = append(m.Groups, readGroup(d, detailed))
			} else {
				m.Points = append(m.Points, readPoint(d, detailed))
			}
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
			e.Text(m.Numeric.Unit)
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
				Unit:       d.Text(),
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
