package main

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/muurk/kpowire/internal/capture"
	"github.com/muurk/kpowire/internal/config"
	"github.com/muurk/kpowire/internal/protocol"
)

func TestHexLines(t *testing.T) {
	in := "# capture\n000007\n\n  0a 00 01  \n#000008\n"
	want := []string{"000007", "0a 00 01"}
	if got := hexLines([]byte(in)); !reflect.DeepEqual(got, want) {
		t.Errorf("hexLines() = %q, want %q", got, want)
	}
}

func TestSummarize(t *testing.T) {
	stats := capture.NewStatistics()
	stats.TotalFiles = 1
	stats.TotalMessages = 3
	stats.Decoded = 2
	stats.Failed = 1
	stats.Opcodes[protocol.OpAck] = 2
	stats.ErrorKinds[protocol.InvalidOpcode] = 1
	stats.Failures = append(stats.Failures, capture.Failure{
		File: "a.hex", LineNumber: 3, MessageNum: 3, PayloadHex: "7f", Kind: protocol.InvalidOpcode, Error: "bad",
	})

	s := summarize(stats)
	if s.Opcodes["ack"] != 2 || s.ErrorKinds[protocol.InvalidOpcode.String()] != 1 {
		t.Errorf("summarize() = %+v", s)
	}
	if len(s.Failures) != 1 || s.Failures[0].Line != 3 || s.Failures[0].Payload != "7f" {
		t.Errorf("summarize() failures = %+v", s.Failures)
	}
}

func TestWriteStructured(t *testing.T) {
	v := map[string]int{"decoded": 2}

	var buf bytes.Buffer
	if err := writeStructured(&buf, config.OutputJSON, v); err != nil {
		t.Fatalf("writeStructured(json) error = %v", err)
	}
	var out map[string]int
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil || out["decoded"] != 2 {
		t.Errorf("writeStructured(json) = %s, %v", buf.String(), err)
	}

	buf.Reset()
	if err := writeStructured(&buf, config.OutputYAML, v); err != nil {
		t.Fatalf("writeStructured(yaml) error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "decoded: 2" {
		t.Errorf("writeStructured(yaml) = %q", buf.String())
	}
}
