package registry

import (
	"errors"
	"testing"

	"github.com/muurk/kpowire/internal/protocol"
)

func fuzzDecode(f *testing.F, v protocol.Version) {
	r, err := New(v)
	if err != nil {
		f.Fatal(err)
	}
	for _, seed := range [][]byte{
		{0x00, 0x00, 0x01},
		{0x01, 0x00, 0x02, 0x03},
		{0x0a, 0x00, 0x07, 0x00, 0x01, 0x00, 0x01, 0x05, 0x00, 0x2a},
		{0x0c, 0x00, 0x01, 0xff, 0x00, 0x02, '/', 'a'},
		{0x13, 0x00, 0x01, 0x00, 0x10},
		{0x7f},
		{},
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		msg, err := r.Decode(data)
		if err != nil {
			var perr *protocol.Error
			if !errors.As(err, &perr) {
				t.Fatalf("Decode(%x) error %v is not classified", data, err)
			}
			return
		}
		if msg.Opcode() != protocol.Opcode(data[0]) {
			t.Fatalf("Decode(%x) opcode = %s", data, msg.Opcode())
		}
		// Re-encoding must not panic.
		_, _ = r.Encode(msg)
	})
}

func FuzzDecodeV1(f *testing.F) { fuzzDecode(f, protocol.V1) }

func FuzzDecodeV2(f *testing.F) { fuzzDecode(f, protocol.V2) }
