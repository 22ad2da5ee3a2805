package protocol

// SharedCodecs returns the codecs whose layout does not depend on the
// protocol version, parameterised by the version's data type set.
func SharedCodecs(v Version) []Codec {
	types := v.Types()
	return []Codec{
		AckCodec,
		NakCodec,
		GetHashCodec,
		GetTimeCodec,
		GetTimeResponseCodec,
		EnablePublishCodec,
		UnpublishCodec,
		NewWriteCodec(types),
		CommitCodec,
		GetNodePropertiesCodec,
		DeleteNodeCodec,
		EmergencyCodec,
		NewCommittedWriteCodec(types),
		CancelCodec,
		ThrottleCodec,
	}
}

var AckCodec = NewCodec(OpAck,
	func(*Encoder, *Ack) {},
	func(_ *Decoder, h Header) *Ack { return &Ack{Header: h} },
)

var NakCodec = NewCodec(OpNak,
	func(e *Encoder, m *Nak) { e.U8(m.Reason) },
	func(d *Decoder, h Header) *Nak { return &Nak{Header: h, Reason: d.U8()} },
)

var GetHashCodec = NewCodec(OpGetHash,
	func(*Encoder, *GetHash) {},
	func(_ *Decoder, h Header) *GetHash { return &GetHash{Header: h} },
)

var GetTimeCodec = NewCodec(OpGetTime,
	func(*Encoder, *GetTime) {},
	func(_ *Decoder, h Header) *GetTime { return &GetTime{Header: h} },
)

var GetTimeResponseCodec = NewCodec(OpGetTimeResponse,
	func(e *Encoder, m *GetTimeResponse) { e.U64(m.Timestamp) },
	func(d *Decoder, h Header) *GetTimeResponse {
		return &GetTimeResponse{Header: h, Timestamp: d.U64()}
	},
)

var EnablePublishCodec = NewCodec(OpEnablePublish,
	func(e *Encoder, m *EnablePublish) { e.Bool(m.Enable) },
	func(d *Decoder, h Header) *EnablePublish {
		return &EnablePublish{Header: h, Enable: d.Bool()}
	},
)

var UnpublishCodec = NewCodec(OpUnpublish,
	func(e *Encoder, m *Unpublish) {
		if len(m.IDs) == 0 {
			e.Fail(NewProtocolError("unpublish needs at least one id", nil))
			return
		}
		for _, id := range m.IDs {
			e.U16(id)
		}
	},
	func(d *Decoder, h Header) *Unpublish {
		m := &Unpublish{Header: h}
		for d.More() {
			m.IDs = append(m.IDs, d.U16())
		}
		if len(m.IDs) == 0 {
			d.Fail(NewProtocolError("unpublish carries no ids", nil))
		}
		return m
	},
)

// NewWriteCodec returns the Write codec for a version's data type set.
func NewWriteCodec(types Types) Codec {
	return NewCodec(OpWrite,
		func(e *Encoder, m *Write) {
			if len(m.Records) == 0 {
				e.Fail(NewProtocolError("write needs at least one record", nil))
				return
			}
			for _, r := range m.Records {
				e.U16(r.ID)
				e.DataType(types, r.Type)
				e.Value(r.Type, r.Value)
			}
		},
		func(d *Decoder, h Header) *Write {
			m := &Write{Header: h}
			for d.More() {
				var r WriteRecord
				r.ID = d.U16()
				r.Type = d.DataType(types)
				r.Value = d.Value(r.Type)
				m.Records = append(m.Records, r)
			}
			if len(m.Records) == 0 {
				d.Fail(NewProtocolError("write carries no records", nil))
			}
			return m
		},
	)
}

var CommitCodec = NewCodec(OpCommit,
	func(e *Encoder, m *Commit) { e.U64(m.Timestamp) },
	func(d *Decoder, h Header) *Commit { return &Commit{Header: h, Timestamp: d.U64()} },
)

var GetNodePropertiesCodec = NewCodec(OpGetNodeProperties,
	func(e *Encoder, m *GetNodeProperties) { e.Address(m.Node) },
	func(d *Decoder, h Header) *GetNodeProperties {
		return &GetNodeProperties{Header: h, Node: d.Address()}
	},
)

var DeleteNodeCodec = NewCodec(OpDeleteNode,
	func(e *Encoder, m *DeleteNode) { e.Address(m.Node) },
	func(d *Decoder, h Header) *DeleteNode {
		return &DeleteNode{Header: h, Node: d.Address()}
	},
)

var EmergencyCodec = NewCodec(OpEmergency,
	func(e *Encoder, m *Emergency) {
		e.U32(m.Bitmap)
		e.U64(m.Timestamp)
	},
	func(d *Decoder, h Header) *Emergency {
		return &Emergency{Header: h, Bitmap: d.U32(), Timestamp: d.U64()}
	},
)

// NewCommittedWriteCodec returns the CommittedWrite codec for a version's
// data type set.
func NewCommittedWriteCodec(types Types) Codec {
	return NewCodec(OpCommittedWrite,
		func(e *Encoder, m *CommittedWrite) {
			if len(m.Records) == 0 {
				e.Fail(NewProtocolError("committed write needs at least one record", nil))
				return
			}
			for _, r := range m.Records {
				e.U16(r.ID)
				e.DataType(types, r.Type)
				e.U64(r.Timestamp)
				e.U8(r.Quality)
				e.Value(r.Type, r.Value)
			}
		},
		func(d *Decoder, h Header) *CommittedWrite {
			m := &CommittedWrite{Header: h}
			for d.More() {
				var r CommittedRecord
				r.ID = d.U16()
				r.Type = d.DataType(types)
				r.Timestamp = d.U64()
				r.Quality = d.U8()
				r.Value = d.Value(r.Type)
				m.Records = append(m.Records, r)
			}
			if len(m.Records) == 0 {
				d.Fail(NewProtocolError("committed write carries no records", nil))
			}
			return m
		},
	)
}

var CancelCodec = NewCodec(OpCancel,
	func(e *Encoder, m *Cancel) {
		for _, id := range m.Transactions {
			e.U16(id)
		}
	},
	func(d *Decoder, h Header) *Cancel {
		m := &Cancel{Header: h}
		for d.More() {
			m.Transactions = append(m.Transactions, d.U16())
		}
		return m
	},
)

var ThrottleCodec = NewCodec(OpThrottle,
	func(e *Encoder, m *Throttle) {
		for _, l := range m.Limits {
			e.U16(l.Limit)
			e.U32(l.Period)
		}
	},
	func(d *Decoder, h Header) *Throttle {
		m := &Throttle{Header: h}
		for d.More() {
			m.Limits = append(m.Limits, ThrottleLimit{Limit: d.U16(), Period: d.U32()})
		}
		return m
	},
)
