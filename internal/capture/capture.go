// Package capture validates recorded traffic against the codecs.
//
// A capture file holds one message per line, either as a JSON record with a
// payload_hex field or as bare hex. Blank lines and lines starting with '#'
// are skipped.
package capture

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/muurk/kpowire/internal/protocol"
)

// Record is one captured message in a JSONL capture.
type Record struct {
	Timestamp  string `json:"timestamp"`
	MessageNum int    `json:"message_num"`
	RemoteAddr string `json:"remote_addr"`
	Direction  string `json:"direction"`
	PayloadLen int    `json:"payload_length"`
	PayloadHex string `json:"payload_hex"`
}

// Decoder decodes one message. *telemetry.Dispatcher satisfies it.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (protocol.Message, error)
}

// Failure describes one message that did not decode.
type Failure struct {
	File       string
	LineNumber int
	MessageNum int
	PayloadHex string
	Kind       protocol.ErrorKind
	Error      string
}

// Statistics tracks validation results across files.
type Statistics struct {
	TotalFiles     int
	TotalMessages  int
	Decoded        int
	Failed         int
	Opcodes        map[protocol.Opcode]int
	ErrorKinds     map[protocol.ErrorKind]int
	PayloadLengths map[int]int
	Failures       []Failure
}

// NewStatistics returns empty statistics.
func NewStatistics() *Statistics {
	return &Statistics{
		Opcodes:        make(map[protocol.Opcode]int),
		ErrorKinds:     make(map[protocol.ErrorKind]int),
		PayloadLengths: make(map[int]int),
	}
}

// SuccessRate returns the decoded share of all messages as a percentage.
func (s *Statistics) SuccessRate() float64 {
	if s.TotalMessages == 0 {
		return 0
	}
	return float64(s.Decoded) / float64(s.TotalMessages) * 100
}

// SortedOpcodes returns the opcodes seen, in code order.
func (s *Statistics) SortedOpcodes() []protocol.Opcode {
	ops := make([]protocol.Opcode, 0, len(s.Opcodes))
	for op := range s.Opcodes {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// SortedErrorKinds returns the error kinds seen, in enum order.
func (s *Statistics) SortedErrorKinds() []protocol.ErrorKind {
	kinds := make([]protocol.ErrorKind, 0, len(s.ErrorKinds))
	for k := range s.ErrorKinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Validator decodes every message of a capture and collects statistics.
type Validator struct {
	decoder Decoder
	stats   *Statistics
}

// NewValidator returns a validator that decodes with d.
func NewValidator(d Decoder) *Validator {
	return &Validator{decoder: d, stats: NewStatistics()}
}

// Statistics returns the results collected so far.
func (v *Validator) Statistics() *Statistics {
	return v.stats
}

// ListFiles returns path itself, or the *.jsonl and *.hex files of a
// directory in name order.
func ListFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	for _, pattern := range []string{"*.jsonl", "*.hex"} {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return nil, fmt.Errorf("error finding capture files: %w", err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no capture files found in %s", path)
	}
	sort.Strings(files)
	return files, nil
}

// ValidatePath validates a capture file, or every capture file in a
// directory.
func (v *Validator) ValidatePath(ctx context.Context, path string) error {
	files, err := ListFiles(path)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := v.ValidateFile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFile validates one capture file.
func (v *Validator) ValidateFile(ctx context.Context, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("error reading file %s: %w", filename, err)
	}
	defer f.Close()
	return v.Validate(ctx, filename, f)
}

// Validate validates the capture read from r. name labels failures.
func (v *Validator) Validate(ctx context.Context, name string, r io.Reader) error {
	v.stats.TotalFiles++

	scanner := bufio.NewScanner(r)
	// Bare hex lines carry up to twice the largest message.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v.validateLine(ctx, name, lineNum, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", name, err)
	}
	return nil
}

func (v *Validator) validateLine(ctx context.Context, name string, lineNum int, line string) {
	v.stats.TotalMessages++

	rec := Record{MessageNum: lineNum, PayloadHex: line}
	if strings.HasPrefix(line, "{") {
		rec = Record{}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			v.fail(name, lineNum, rec, protocol.Unclassified, fmt.Errorf("JSON parse error: %w", err))
			return
		}
	}

	payload, err := DecodeHex(rec.PayloadHex)
	if err != nil {
		v.fail(name, lineNum, rec, protocol.Unclassified, fmt.Errorf("hex decode error: %w", err))
		return
	}
	v.stats.PayloadLengths[len(payload)]++

	msg, err := v.decoder.Decode(ctx, payload)
	if err != nil {
		v.fail(name, lineNum, rec, protocol.KindOf(err), err)
		return
	}
	v.stats.Decoded++
	v.stats.Opcodes[msg.Opcode()]++
}

func (v *Validator) fail(name string, lineNum int, rec Record, kind protocol.ErrorKind, err error) {
	v.stats.Failed++
	v.stats.ErrorKinds[kind]++
	v.stats.Failures = append(v.stats.Failures, Failure{
		File:       name,
		LineNumber: lineNum,
		MessageNum: rec.MessageNum,
		PayloadHex: rec.PayloadHex,
		Kind:       kind,
		Error:      err.Error(),
	})
}

// DecodeHex decodes hex text, ignoring whitespace, ':' separators and a 0x
// prefix.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ':':
			return -1
		}
		return r
	}, s)
	return hex.DecodeString(s)
}
