package protocol

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorKindString(t *testing.T) {
	tests := map[ErrorKind]string{
		InvalidOpcode:         "InvalidOpcode",
		InvalidSequenceNumber: "InvalidSequenceNumber",
		ProtocolError:         "ProtocolError",
		InvalidNodeType:       "InvalidNodeType",
		InvalidOption:         "InvalidOption",
		InvalidDataType:       "InvalidDataType",
		InvalidValue:          "InvalidValue",
		ErrorKind(99):         "ErrorKind(99)",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestErrorChain(t *testing.T) {
	cause := errors.New("short read")
	err := fmt.Errorf("decoding: %w", NewProtocolError("malformed message", cause))

	if !IsKind(err, ProtocolError) {
		t.Errorf("IsKind(ProtocolError) = false for %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("cause is not reachable through errors.Is")
	}
	if !strings.Contains(err.Error(), "short read") {
		t.Errorf("Error() = %q does not mention the cause", err.Error())
	}
	if KindOf(cause) != Unclassified {
		t.Errorf("KindOf(plain error) = %s, want Unclassified", KindOf(cause))
	}
	if IsKind(nil, Unclassified) {
		t.Error("IsKind(nil) must be false")
	}
}

func TestParseOpcode(t *testing.T) {
	tests := map[string]Opcode{
		"ack":              OpAck,
		"CreateModifyNode": OpCreateModifyNode,
		"0x13":             OpThrottle,
		"9":                OpUnpublish,
	}
	for in, want := range tests {
		got, err := ParseOpcode(in)
		if err != nil || got != want {
			t.Errorf("ParseOpcode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseOpcode("0x14"); !IsKind(err, InvalidOpcode) {
		t.Errorf("ParseOpcode(0x14) error = %v, want InvalidOpcode", err)
	}
}
