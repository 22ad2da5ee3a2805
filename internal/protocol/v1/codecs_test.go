package v1

import (
	"bytes"
	"crypto/sha1"
	"reflect"
	"testing"

	"github.com/muurk/kpowire/internal/protocol"
	"github.com/muurk/kpowire/internal/wire"
)

func ptr[T any](v T) *T { return &v }

func header(sid uint16) protocol.Header { return protocol.Header{SequenceID: sid} }

func samples() []protocol.Message {
	return []protocol.Message{
		&Login{
			Header:       header(1),
			Version:      1,
			Options:      0x03,
			User:         "gateway-7",
			PasswordHash: bytes.Repeat([]byte{0xab}, PasswordHashSize),
			Interval:     30,
			Timeout:      5,
		},
		&GetHashResponse{Header: header(2), Digest: bytes.Repeat([]byte{0x11}, HashSize)},
		&Publish{
			Header: header(3),
			Flags:  protocol.PublishGroup | protocol.PublishFinished,
			Groups: []PublishGroup{{ID: 1, Path: "/plant"}, {ID: 2, Path: "/plant/line1"}},
		},
		&Publish{
			Header: header(4),
			Points: []PublishPoint{
				{ID: 10, Path: "/plant/line1/temp", Flags: 1, DataType: wire.Int16,
					Trigger: protocol.Trigger{Mode: protocol.TriggerNT, N: uint16(2), T: 1000}, TriggerDomain: 1, QoS: 2},
				{ID: 11, Path: "/plant/line1/name", DataType: wire.String,
					Trigger: protocol.Trigger{Mode: protocol.TriggerAnyChange}},
			},
		},
		&GetNodePropertiesResponse{
			Header:      header(5),
			Type:        protocol.NodePoint,
			ID:          10,
			Path:        "/plant/line1/temp",
			Description: "Line temperature °C",
			Flags:       3,
			History:     1,
			UpdateURL:   "http://historian/points/10",
			Point:       &PointProperties{DataType: wire.Float32, QoS: 1},
			Trigger:     protocol.Trigger{Mode: protocol.TriggerR, N: float32(0.1)},
			Numeric: &NumericProperties{
				Format:     "%.1f",
				Scaling:    protocol.Scaling{Factor: 0.1, Offset: -40},
				WriteRange: protocol.Range{Min: -40, Max: 125},
			},
		},
		&GetNodePropertiesResponse{
			Header:  header(6),
			Type:    protocol.NodeGroup,
			ID:      1,
			Path:    "/plant",
			Trigger: protocol.Trigger{Mode: protocol.TriggerT, T: 5000},
		},
		&GetNodePropertiesResponse{
			Header: header(7),
			Type:   protocol.NodePoint,
			ID:     11,
			Path:   "/plant/line1/name",
			Point:  &PointProperties{DataType: wire.String},
		},
		&CreateModifyNode{
			Header: header(8),
			Type:   protocol.NodePoint,
			Path:   "/plant/line1/speed",
			Properties: Properties{
				Description:   ptr("Belt speed"),
				Flags:         ptr(uint8(1)),
				DataType:      ptr(wire.Uint32),
				Trigger:       &protocol.Trigger{Mode: protocol.TriggerN, N: uint32(5)},
				TriggerDomain: ptr(uint8(0)),
				QoS:           ptr(uint8(1)),
				UpdateURL:     ptr("http://historian/points/12"),
				History:       ptr(uint8(2)),
				Format:        ptr("%d"),
				Scaling:       &protocol.Scaling{Factor: 1, Offset: 0},
				WriteRange:    &protocol.Range{Min: 0, Max: 3000},
			},
		},
		&CreateModifyNode{
			Header:     header(9),
			Modify:     true,
			Type:       protocol.NodeGroup,
			ID:         ptr(uint16(1)),
			Properties: Properties{Description: ptr("Plant root")},
		},
	}
}

func codecFor(t *testing.T, op protocol.Opcode) protocol.Codec {
	t.Helper()
	for _, c := range Codecs() {
		if c.Code() == op {
			return c
		}
	}
	t.Fatalf("no v1 codec for %s", op)
	return nil
}

func TestCodecsCoverEveryOpcode(t *testing.T) {
	seen := map[protocol.Opcode]bool{}
	for _, c := range Codecs() {
		if seen[c.Code()] {
			t.Errorf("duplicate codec for %s", c.Code())
		}
		seen[c.Code()] = true
	}
	for op := protocol.OpAck; op <= protocol.OpThrottle; op++ {
		if !seen[op] {
			t.Errorf("missing codec for %s", op)
		}
		if _, ok := NewMessage(op); !ok {
			t.Errorf("NewMessage(%s) not supported", op)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, msg := range samples() {
		t.Run(msg.Opcode().String(), func(t *testing.T) {
			c := codecFor(t, msg.Opcode())
			data, err := c.Encode(msg)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := c.Decode(data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, msg) {
				t.Errorf("round trip = %+v, want %+v", got, msg)
			}

			data[1], data[2] = 0, 0
			if _, err := c.Decode(data); !protocol.IsKind(err, protocol.InvalidSequenceNumber) {
				t.Errorf("Decode(sid 0) error = %v, want InvalidSequenceNumber", err)
			}
		})
	}
}

func TestTrailingByte(t *testing.T) {
	for _, msg := range samples() {
		t.Run(msg.Opcode().String(), func(t *testing.T) {
			c := codecFor(t, msg.Opcode())
			data, err := c.Encode(msg)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if _, err := c.Decode(append(data, 0x01)); !protocol.IsKind(err, protocol.ProtocolError) {
				t.Errorf("Decode(+1 byte) error = %v, want ProtocolError", err)
			}
		})
	}
}

func TestCreateModifyNodeOptionErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want protocol.ErrorKind
	}{
		{
			name: "reserved option bit",
			data: []byte{0x0e, 0x00, 0x01, 0x20, 0x00, 0x00, 0x00, 0x01, 'x'},
			want: protocol.InvalidOption,
		},
		{
			name: "index without modify",
			data: []byte{0x0e, 0x00, 0x01, 0x00, 0x02, 0x00, 0x00, 0x05},
			want: protocol.InvalidOption,
		},
		{
			name: "data type on group",
			data: []byte{0x0e, 0x00, 0x01, 0x00, 0x10, 0x01, 0x00, 0x01, 'g', 0x01},
			want: protocol.InvalidNodeType,
		},
		{
			name: "scaling on group",
			data: []byte{0x0e, 0x00, 0x01, 0x08, 0x00, 0x01, 0x00, 0x01, 'g'},
			want: protocol.InvalidNodeType,
		},
		{
			name: "path node type",
			data: []byte{0x0e, 0x00, 0x01, 0x00, 0x00, 0xff, 0x00, 0x01, 'p'},
			want: protocol.InvalidNodeType,
		},
		{
			name: "delta trigger without data type",
			data: []byte{0x0e, 0x00, 0x01, 0x00, 0x20, 0x00, 0x00, 0x01, 'p', 0x02, 0x05},
			want: protocol.InvalidOption,
		},
		{
			name: "uint64 data type",
			data: []byte{0x0e, 0x00, 0x01, 0x00, 0x10, 0x00, 0x00, 0x01, 'p', 0x07},
			want: protocol.InvalidDataType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateModifyNodeCodec.Decode(tt.data)
			if got := protocol.KindOf(err); got != tt.want {
				t.Errorf("Decode() error = %v (kind %s), want %s", err, got, tt.want)
			}
		})
	}
}

func TestCreateModifyNodeEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  *CreateModifyNode
		want protocol.ErrorKind
	}{
		{
			name: "index without modify",
			msg:  &CreateModifyNode{Header: header(1), Type: protocol.NodePoint, ID: ptr(uint16(4))},
			want: protocol.InvalidOption,
		},
		{
			name: "write range on group",
			msg: &CreateModifyNode{Header: header(1), Type: protocol.NodeGroup, Path: "/g",
				Properties: Properties{WriteRange: &protocol.Range{Max: 1}}},
			want: protocol.InvalidNodeType,
		},
		{
			name: "delta trigger on string point",
			msg: &CreateModifyNode{Header: header(1), Type: protocol.NodePoint, Path: "/p",
				Properties: Properties{DataType: ptr(wire.String), Trigger: &protocol.Trigger{Mode: protocol.TriggerN, N: 1}}},
			want: protocol.InvalidDataType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateModifyNodeCodec.Encode(tt.msg)
			if got := protocol.KindOf(err); got != tt.want {
				t.Errorf("Encode() error = %v (kind %s), want %s", err, got, tt.want)
			}
		})
	}
}

func TestCreateModifyNodeWireLayout(t *testing.T) {
	msg := &CreateModifyNode{
		Header: header(0x0102),
		Modify: true,
		Type:   protocol.NodePoint,
		ID:     ptr(uint16(7)),
		Properties: Properties{
			QoS:     ptr(uint8(2)),
			History: ptr(uint8(1)),
		},
	}
	want := []byte{
		0x0e, 0x01, 0x02,
		0x02, 0x83, // history | qos | index | modify
		0x00,       // point
		0x00, 0x07, // id
		0x02, // qos
		0x01, // history
	}
	got, err := CreateModifyNodeCodec.Encode(msg)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = % x, want % x", got, want)
	}
}

func TestPublishMixedNodesRejected(t *testing.T) {
	msg := &Publish{
		Header: header(1),
		Flags:  protocol.PublishGroup,
		Points: []PublishPoint{{ID: 1, Path: "/p", DataType: wire.Bool}},
	}
	if _, err := PublishCodec.Encode(msg); !protocol.IsKind(err, protocol.InvalidOption) {
		t.Errorf("Encode() error = %v, want InvalidOption", err)
	}
}

func TestGetNodePropertiesResponseShape(t *testing.T) {
	tests := []struct {
		name string
		msg  *GetNodePropertiesResponse
		want protocol.ErrorKind
	}{
		{
			name: "numeric point without numeric properties",
			msg: &GetNodePropertiesResponse{Header: header(1), Type: protocol.NodePoint, Path: "/p",
				Point: &PointProperties{DataType: wire.Int8}},
			want: protocol.InvalidOption,
		},
		{
			name: "group with point properties",
			msg: &GetNodePropertiesResponse{Header: header(1), Type: protocol.NodeGroup, Path: "/g",
				Point: &PointProperties{DataType: wire.Int8}},
			want: protocol.InvalidNodeType,
		},
		{
			name: "path node type",
			msg:  &GetNodePropertiesResponse{Header: header(1), Type: protocol.NodePath},
			want: protocol.InvalidNodeType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetNodePropertiesResponseCodec.Encode(tt.msg)
			if got := protocol.KindOf(err); got != tt.want {
				t.Errorf("Encode() error = %v (kind %s), want %s", err, got, tt.want)
			}
		})
	}
}

func TestLoginPasswordHashWidth(t *testing.T) {
	msg := &Login{Header: header(1), User: "u", PasswordHash: []byte{1, 2, 3}}
	if _, err := LoginCodec.Encode(msg); err == nil {
		t.Error("Encode() accepted a 3 byte password hash")
	}
}

func TestHashNode(t *testing.T) {
	r := HashRecord{
		Path: "/a",
		Type: protocol.NodePoint,
		Properties: Properties{
			DataType: ptr(wire.Uint8),
			Trigger:  &protocol.Trigger{Mode: protocol.TriggerN, N: uint8(1)},
			History:  ptr(uint8(9)),
		},
	}
	want := []byte{
		0x00, 0x02, '/', 'a',
		0x01,       // data type
		0x02, 0x01, // trigger N, delta 1
		0x09, // history
	}
	got, err := HashNode(r)
	if err != nil {
		t.Fatalf("HashNode() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("HashNode() = % x, want % x", got, want)
	}
	if n, err := HashLength(r); err != nil || n != len(want) {
		t.Errorf("HashLength() = %d, %v; want %d", n, err, len(want))
	}

	digest, err := Digest([]HashRecord{r, {Path: "/b", Type: protocol.NodeGroup}})
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	sum := sha1.Sum(append(want, 0x00, 0x02, '/', 'b'))
	if !bytes.Equal(digest, sum[:]) {
		t.Errorf("Digest() = %x, want %x", digest, sum)
	}
}

func TestHashNodeUpdateURL(t *testing.T) {
	with, err := HashNode(HashRecord{Path: "/a"})
	if err != nil {
		t.Fatal(err)
	}
	url := "u"
	withURL, err := HashNode(HashRecord{Path: "/a", Properties: Properties{UpdateURL: &url}})
	if err != nil {
		t.Fatal(err)
	}
	if len(withURL) != len(with)+3 {
		t.Errorf("update URL adds %d bytes, want 3", len(withURL)-len(with))
	}
}
