// Package document converts messages to and from YAML and JSON documents of
// the form
//
//	version: v2
//	opcode: write
//	message:
//	  sequenceId: 7
//	  records:
//	    - {id: 1, type: uint16, value: 42}
//
// Enumerations are written by name, byte arrays as hex text. JSON input is
// read through the YAML parser, so both formats share one code path.
package document

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/muurk/kpowire/internal/protocol"
	"github.com/muurk/kpowire/internal/registry"
)

// Format selects the document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown document format %q (want yaml or json)", s)
}

// Document is one message with the protocol version and opcode that select
// its codec.
type Document struct {
	Version protocol.Version `yaml:"version" json:"version"`
	Opcode  protocol.Opcode  `yaml:"opcode" json:"opcode"`
	Message protocol.Message `yaml:"message" json:"message"`
}

// New wraps msg in a document for version v.
func New(v protocol.Version, msg protocol.Message) Document {
	return Document{Version: v, Opcode: msg.Opcode(), Message: msg}
}

type rawDocument struct {
	Version protocol.Version `yaml:"version"`
	Opcode  *protocol.Opcode `yaml:"opcode"`
	Message yaml.Node        `yaml:"message"`
}

// Parse reads every document in data. A document without a version uses
// fallback. Unknown message fields are rejected.
func Parse(data []byte, fallback protocol.Version) ([]Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	registries := make(map[protocol.Version]*registry.Registry)

	var docs []Document
	for i := 0; ; i++ {
		var raw rawDocument
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		doc, err := resolve(raw, fallback, registries)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found")
	}
	return docs, nil
}

func resolve(raw rawDocument, fallback protocol.Version, registries map[protocol.Version]*registry.Registry) (Document, error) {
	if raw.Version == 0 {
		raw.Version = fallback
	}
	if raw.Opcode == nil {
		return Document{}, fmt.Errorf("missing opcode")
	}

	r, ok := registries[raw.Version]
	if !ok {
		var err error
		if r, err = registry.New(raw.Version); err != nil {
			return Document{}, err
		}
		registries[raw.Version] = r
	}
	msg, err := r.NewMessage(*raw.Opcode)
	if err != nil {
		return Document{}, err
	}

	if raw.Message.Kind != 0 {
		if err := decodeStrict(&raw.Message, msg); err != nil {
			return Document{}, fmt.Errorf("%s message: %w", *raw.Opcode, err)
		}
	}
	return Document{Version: raw.Version, Opcode: *raw.Opcode, Message: msg}, nil
}

// decodeStrict re-reads node with unknown fields rejected, which
// yaml.Node.Decode does not support.
func decodeStrict(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// Marshal renders docs in format. Several YAML documents are separated by
// "---"; several JSON documents form an array. Byte-array values held in
// messages are rendered as hex text, which the codecs accept on encode. The
// messages themselves are not modified.
func Marshal(docs []Document, format Format) ([]byte, error) {
	out := make([]Document, len(docs))
	for i, doc := range docs {
		out[i] = doc
		if doc.Message != nil {
			out[i].Message = hexMessage(doc.Message)
		}
	}
	docs = out

	switch format {
	case FormatJSON:
		var v any = docs
		if len(docs) == 1 {
			v = docs[0]
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		for _, doc := range docs {
			if err := enc.Encode(doc); err != nil {
				return nil, fmt.Errorf("failed to marshal YAML: %w", err)
			}
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown document format %q", format)
}

// MarshalMessage renders msg alone as YAML, the way Marshal renders the
// message field of a document.
func MarshalMessage(msg protocol.Message) ([]byte, error) {
	data, err := yaml.Marshal(hexMessage(msg))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return data, nil
}

func hexMessage(msg protocol.Message) protocol.Message {
	if msg == nil {
		return nil
	}
	c, _ := hexCopy(reflect.ValueOf(msg)).Interface().(protocol.Message)
	return c
}

// hexCopy returns a copy of v in which every []byte held in an interface is
// replaced by its hex text.
func hexCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		c := reflect.New(v.Type().Elem())
		c.Elem().Set(hexCopy(v.Elem()))
		return c
	case reflect.Struct:
		c := reflect.New(v.Type()).Elem()
		c.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				c.Field(i).Set(hexCopy(v.Field(i)))
			}
		}
		return c
	case reflect.Slice:
		if v.IsNil() || v.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		c := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			c.Index(i).Set(hexCopy(v.Index(i)))
		}
		return c
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		c := reflect.New(v.Type()).Elem()
		if b, ok := v.Interface().([]byte); ok {
			c.Set(reflect.ValueOf(hex.EncodeToString(b)))
		} else {
			c.Set(hexCopy(v.Elem()))
		}
		return c
	}
	return v
}
