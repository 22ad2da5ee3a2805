package capture

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muurk/kpowire/internal/protocol"
	"github.com/muurk/kpowire/internal/registry"
	"github.com/muurk/kpowire/internal/telemetry"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	r, err := registry.New(protocol.V2)
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	return NewValidator(telemetry.NewDispatcher(r))
}

const sample = `# ack, getTime, then failures
0005af
{"message_num": 7, "direction": "in", "payload_hex": "0504d2"}

0x00 00 01
7f0001
000000
{"message_num": 9, "payload_hex": "zz"}
{not json
`

func TestValidate(t *testing.T) {
	v := newValidator(t)
	if err := v.Validate(context.Background(), "sample", strings.NewReader(sample)); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	s := v.Statistics()

	if s.TotalFiles != 1 || s.TotalMessages != 7 {
		t.Errorf("files=%d messages=%d, want 1 and 7", s.TotalFiles, s.TotalMessages)
	}
	if s.Decoded != 3 || s.Failed != 4 {
		t.Errorf("decoded=%d failed=%d, want 3 and 4", s.Decoded, s.Failed)
	}
	if s.Opcodes[protocol.OpAck] != 2 || s.Opcodes[protocol.OpGetTime] != 1 {
		t.Errorf("opcodes = %v", s.Opcodes)
	}
	wantKinds := map[protocol.ErrorKind]int{
		protocol.InvalidOpcode:         1,
		protocol.InvalidSequenceNumber: 1,
		protocol.Unclassified:          2,
	}
	for kind, n := range wantKinds {
		if s.ErrorKinds[kind] != n {
			t.Errorf("ErrorKinds[%s] = %d, want %d", kind, s.ErrorKinds[kind], n)
		}
	}
	if s.PayloadLengths[3] != 5 {
		t.Errorf("PayloadLengths[3] = %d, want 5", s.PayloadLengths[3])
	}

	f := s.Failures[2]
	if f.MessageNum != 9 || f.LineNumber != 8 || !strings.Contains(f.Error, "hex decode") {
		t.Errorf("failure = %+v", f)
	}
	if got := s.SortedOpcodes(); len(got) != 2 || got[0] != protocol.OpAck {
		t.Errorf("SortedOpcodes() = %v", got)
	}
	if got := s.SortedErrorKinds(); got[0] != protocol.Unclassified {
		t.Errorf("SortedErrorKinds() = %v", got)
	}
	if rate := s.SuccessRate(); rate < 42 || rate > 43 {
		t.Errorf("SuccessRate() = %.2f", rate)
	}
}

func TestValidatePathDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.jsonl":   `{"payload_hex": "0005af"}` + "\n",
		"b.hex":     "0100010a\n",
		"notes.txt": "ff\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	v := newValidator(t)
	if err := v.ValidatePath(context.Background(), dir); err != nil {
		t.Fatalf("ValidatePath() error = %v", err)
	}
	s := v.Statistics()
	if s.TotalFiles != 2 || s.Decoded != 2 || s.Failed != 0 {
		t.Errorf("files=%d decoded=%d failed=%d", s.TotalFiles, s.Decoded, s.Failed)
	}
	if s.Opcodes[protocol.OpNak] != 1 {
		t.Errorf("opcodes = %v", s.Opcodes)
	}

	list, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(list) != 2 || filepath.Base(list[0]) != "a.jsonl" || filepath.Base(list[1]) != "b.hex" {
		t.Errorf("ListFiles() = %v", list)
	}
	single := filepath.Join(dir, "notes.txt")
	if list, err := ListFiles(single); err != nil || len(list) != 1 || list[0] != single {
		t.Errorf("ListFiles(file) = %v, %v", list, err)
	}
}

func TestValidatePathErrors(t *testing.T) {
	v := newValidator(t)
	if err := v.ValidatePath(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("ValidatePath(missing) succeeded")
	}
	if err := v.ValidatePath(context.Background(), t.TempDir()); err == nil {
		t.Error("ValidatePath(empty dir) succeeded")
	}
}

func TestValidateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v := newValidator(t)
	if err := v.Validate(ctx, "sample", strings.NewReader("0005af\n")); err == nil {
		t.Error("Validate() with cancelled context succeeded")
	}
}

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0005af", "0005af"},
		{"0x00 05 af", "0005af"},
		{"00:05:AF", "0005af"},
	}
	for _, tt := range tests {
		got, err := DecodeHex(tt.in)
		if err != nil {
			t.Errorf("DecodeHex(%q) error = %v", tt.in, err)
			continue
		}
		if hex.EncodeToString(got) != tt.want {
			t.Errorf("DecodeHex(%q) = %x, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := DecodeHex("0g"); err == nil {
		t.Error("DecodeHex(0g) succeeded")
	}
}
