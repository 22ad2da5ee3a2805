package registry

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muurk/kpowire/internal/protocol"
	v1 "github.com/muurk/kpowire/internal/protocol/v1"
	v2 "github.com/muurk/kpowire/internal/protocol/v2"
	"github.com/muurk/kpowire/internal/wire"
)

func mustNew(t *testing.T, v protocol.Version, opts ...Option) *Registry {
	t.Helper()
	r, err := New(v, opts...)
	if err != nil {
		t.Fatalf("New(%s) error = %v", v, err)
	}
	return r
}

func TestNewUnsupportedVersion(t *testing.T) {
	if _, err := New(protocol.Version(3)); err == nil {
		t.Error("New(v3) succeeded")
	}
}

func TestDescriptors(t *testing.T) {
	for _, v := range protocol.Versions {
		r := mustNew(t, v)
		ds := r.Descriptors()
		if len(ds) != 20 {
			t.Fatalf("%s: %d descriptors, want 20", v, len(ds))
		}
		for i, d := range ds {
			if d.Code != protocol.Opcode(i) {
				t.Errorf("%s: descriptor %d has code %s", v, i, d)
			}
			if name, ok := r.NameFromOpcode(uint8(i)); !ok || name != d.Name {
				t.Errorf("%s: NameFromOpcode(%d) = %q, %v", v, i, name, ok)
			}
		}
		if _, ok := r.NameFromOpcode(0x14); ok {
			t.Errorf("%s: NameFromOpcode(0x14) found a name", v)
		}
	}
}

func TestDecodeDispatch(t *testing.T) {
	r := mustNew(t, protocol.V1)
	tests := []struct {
		name string
		data []byte
		want protocol.Message
	}{
		{"ack", []byte{0x00, 0x05, 0xaf}, &protocol.Ack{Header: protocol.Header{SequenceID: 1455}}},
		{"get time", []byte{0x05, 0x04, 0xd2}, &protocol.GetTime{Header: protocol.Header{SequenceID: 1234}}},
		{"cancel", []byte{0x12, 0x10, 0x59, 0x00, 0x01, 0x00, 0x02, 0x00, 0x03},
			&protocol.Cancel{Header: protocol.Header{SequenceID: 0x1059}, Transactions: []uint16{1, 2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	r := mustNew(t, protocol.V2)
	tests := []struct {
		name string
		data []byte
		want protocol.ErrorKind
	}{
		{"empty", nil, protocol.ProtocolError},
		{"unknown opcode", []byte{0x14, 0x00, 0x01}, protocol.InvalidOpcode},
		{"sid zero", []byte{0x00, 0x00, 0x00}, protocol.InvalidSequenceNumber},
		{"trailing", []byte{0x00, 0x00, 0x01, 0xff}, protocol.ProtocolError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Decode(tt.data)
			if got := protocol.KindOf(err); got != tt.want {
				t.Errorf("Decode() error = %v (kind %s), want %s", err, got, tt.want)
			}
		})
	}
}

// sample returns a valid message for every opcode of v.
func sample(v protocol.Version, op protocol.Opcode) protocol.Message {
	h := protocol.Header{SequenceID: 0x0101}
	hash := func(n int) []byte { return bytes.Repeat([]byte{7}, n) }
	switch op {
	case protocol.OpAck:
		return &protocol.Ack{Header: h}
	case protocol.OpNak:
		return &protocol.Nak{Header: h, Reason: 2}
	case protocol.OpGetHash:
		return &protocol.GetHash{Header: h}
	case protocol.OpGetTime:
		return &protocol.GetTime{Header: h}
	case protocol.OpGetTimeResponse:
		return &protocol.GetTimeResponse{Header: h, Timestamp: 5}
	case protocol.OpEnablePublish:
		return &protocol.EnablePublish{Header: h}
	case protocol.OpUnpublish:
		return &protocol.Unpublish{Header: h, IDs: []uint16{4}}
	case protocol.OpWrite:
		return &protocol.Write{Header: h, Records: []protocol.WriteRecord{{ID: 1, Type: wire.Uint8, Value: uint8(1)}}}
	case protocol.OpCommit:
		return &protocol.Commit{Header: h, Timestamp: 6}
	case protocol.OpGetNodeProperties:
		return &protocol.GetNodeProperties{Header: h, Node: protocol.Address{Type: protocol.NodePath, Path: "/x"}}
	case protocol.OpDeleteNode:
		return &protocol.DeleteNode{Header: h, Node: protocol.Address{Type: protocol.NodePoint, ID: 8}}
	case protocol.OpEmergency:
		return &protocol.Emergency{Header: h, Bitmap: 1, Timestamp: 2}
	case protocol.OpCommittedWrite:
		return &protocol.CommittedWrite{Header: h, Records: []protocol.CommittedRecord{{ID: 1, Type: wire.Bool, Value: false}}}
	case protocol.OpCancel:
		return &protocol.Cancel{Header: h, Transactions: []uint16{9}}
	case protocol.OpThrottle:
		return &protocol.Throttle{Header: h, Limits: []protocol.ThrottleLimit{{Limit: 1, Period: 2}}}
	}
	if v == protocol.V1 {
		switch op {
		case protocol.OpLogin:
			return &v1.Login{Header: h, User: "u", PasswordHash: hash(v1.PasswordHashSize)}
		case protocol.OpGetHashResponse:
			return &v1.GetHashResponse{Header: h, Digest: hash(v1.HashSize)}
		case protocol.OpPublish:
			return &v1.Publish{Header: h, Flags: protocol.PublishGroup, Groups: []v1.PublishGroup{{ID: 1, Path: "/g"}}}
		case protocol.OpGetNodePropertiesResponse:
			return &v1.GetNodePropertiesResponse{Header: h, Type: protocol.NodeGroup, Path: "/g"}
		case protocol.OpCreateModifyNode:
			return &v1.CreateModifyNode{Header: h, Type: protocol.NodeGroup, Path: "/g"}
		}
	}
	switch op {
	case protocol.OpLogin:
		return &v2.Login{Header: h, User: "u", Password: "p"}
	case protocol.OpGetHashResponse:
		return &v2.GetHashResponse{Header: h, Digest: hash(v2.HashSize)}
	case protocol.OpPublish:
		return &v2.Publish{Header: h, Points: []v2.PublishPoint{{ID: 1, Path: "/p", DataType: wire.Int64}}}
	case protocol.OpGetNodePropertiesResponse:
		return &v2.GetNodePropertiesResponse{Header: h, Type: protocol.NodeGroup, Path: "/g"}
	case protocol.OpCreateModifyNode:
		return &v2.CreateModifyNode{Header: h, Type: protocol.NodePoint, Path: "/p"}
	}
	return nil
}

func TestEveryOpcode(t *testing.T) {
	for _, v := range protocol.Versions {
		r := mustNew(t, v)
		for _, d := range r.Descriptors() {
			t.Run(v.String()+"/"+d.Name, func(t *testing.T) {
				msg := sample(v, d.Code)
				data, err := r.Encode(msg)
				if err != nil {
					t.Fatalf("Encode() error = %v", err)
				}
				got, err := r.Decode(data)
				if err != nil {
					t.Fatalf("Decode() error = %v", err)
				}
				if !reflect.DeepEqual(got, msg) {
					t.Errorf("round trip = %+v, want %+v", got, msg)
				}

				if _, err := r.Decode(append(bytes.Clone(data), 0x00)); !protocol.IsKind(err, protocol.ProtocolError) {
					t.Errorf("trailing byte: error = %v, want ProtocolError", err)
				}
				zero := bytes.Clone(data)
				zero[1], zero[2] = 0, 0
				if _, err := r.Decode(zero); !protocol.IsKind(err, protocol.InvalidSequenceNumber) {
					t.Errorf("sid 0: error = %v, want InvalidSequenceNumber", err)
				}

				fresh, err := r.NewMessage(d.Code)
				if err != nil {
					t.Fatalf("NewMessage() error = %v", err)
				}
				if reflect.TypeOf(fresh) != reflect.TypeOf(msg) {
					t.Errorf("NewMessage() = %T, want %T", fresh, msg)
				}
			})
		}
	}
}

func TestEncodeWrongVersionMessage(t *testing.T) {
	r := mustNew(t, protocol.V2)
	_, err := r.Encode(&v1.Login{Header: protocol.Header{SequenceID: 1}})
	if !errors.Is(err, wire.ErrType) {
		t.Errorf("Encode(v1.Login) on v2 error = %v, want wire.ErrType", err)
	}
}

func TestTransforms(t *testing.T) {
	var seen []Direction
	record := func(msg protocol.Message, dir Direction) (protocol.Message, error) {
		seen = append(seen, dir)
		return msg, nil
	}
	// Outgoing commit timestamps are sent in seconds, incoming ones arrive in
	// milliseconds.
	units := func(msg protocol.Message, dir Direction) (protocol.Message, error) {
		c, ok := msg.(*protocol.Commit)
		if !ok {
			return msg, nil
		}
		out := *c
		if dir == Outgoing {
			out.Timestamp /= 1000
		} else {
			out.Timestamp *= 1000
		}
		return &out, nil
	}

	r := mustNew(t, protocol.V1, WithTransform(Chain(record, units)))
	data, err := r.Encode(&protocol.Commit{Header: protocol.Header{SequenceID: 1}, Timestamp: 5000})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if want := []byte{0x0b, 0x00, 0x01, 0, 0, 0, 0, 0, 0, 0, 5}; !bytes.Equal(data, want) {
		t.Errorf("Encode() = % x, want % x", data, want)
	}
	msg, err := r.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := msg.(*protocol.Commit).Timestamp; got != 5000 {
		t.Errorf("decoded timestamp = %d, want 5000", got)
	}
	if !reflect.DeepEqual(seen, []Direction{Outgoing, Incoming}) {
		t.Errorf("transform directions = %v", seen)
	}
}

func TestTransformError(t *testing.T) {
	boom := errors.New("boom")
	fail := func(protocol.Message, Direction) (protocol.Message, error) { return nil, boom }
	r := mustNew(t, protocol.V2, WithTransform(Chain(Identity, fail)))

	if _, err := r.Encode(&protocol.Ack{Header: protocol.Header{SequenceID: 1}}); !errors.Is(err, boom) {
		t.Errorf("Encode() error = %v, want boom", err)
	}
	if _, err := r.Decode([]byte{0x00, 0x00, 0x01}); !errors.Is(err, boom) {
		t.Errorf("Decode() error = %v, want boom", err)
	}
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := mustNew(t, protocol.V1, WithLogger(zap.New(core)))

	if _, err := r.Decode([]byte{0x00, 0x05, 0xaf}); err != nil {
		t.Fatal(err)
	}
	_, _ = r.Decode([]byte{0x99})

	if n := logs.FilterMessage("Codec message").Len(); n != 1 {
		t.Errorf("%d debug entries, want 1", n)
	}
	failures := logs.FilterMessage("Codec failure").All()
	if len(failures) != 1 || failures[0].ContextMap()["protocol"] != "v1" {
		t.Errorf("failure entries = %+v", failures)
	}
}
