package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/kpowire/internal/capture"
	"github.com/muurk/kpowire/internal/config"
	"github.com/muurk/kpowire/internal/document"
	"github.com/muurk/kpowire/internal/logging"
	"github.com/muurk/kpowire/internal/protocol"
	"github.com/muurk/kpowire/internal/ui"
)

// Command flags
var (
	inputFile  string
	showNodes  bool
	strictMode bool
)

func init() {
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(opcodesCmd)
	rootCmd.AddCommand(hashCmd)
}

// decodeCmd decodes hex messages
var decodeCmd = &cobra.Command{
	Use:   "decode [hex]...",
	Short: "Decode messages from hex",
	Long: `Decode one or more messages given as hex.

Each argument is one message. With --file, every non-blank line of the file
that does not start with '#' is one message. Spaces, colons and a 0x prefix
are ignored.

Text output shows each message with its hex dump. YAML and JSON output emit
message documents that 'kpowire encode' accepts.`,
	Example: `  # Decode an Ack with sequence id 7
  kpowire decode 000007

  # Decode a v1 capture as YAML documents
  kpowire decode -p v1 -o yaml --file capture.hex`,
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&inputFile, "file", "f", "", "Read hex messages from file ('-' for stdin)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	inputs := append([]string{}, args...)
	if inputFile != "" {
		data, err := readInput(cmd, inputFile)
		if err != nil {
			return err
		}
		inputs = append(inputs, hexLines(data)...)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no messages to decode")
	}

	d, err := current.dispatcher(current.version)
	if err != nil {
		return err
	}
	p := current.printer
	errs := ui.NewPrinter(cmd.ErrOrStderr())

	var (
		docs   []document.Document
		failed int
	)
	for i, in := range inputs {
		title := fmt.Sprintf("Message %d", i+1)
		data, err := capture.DecodeHex(in)
		if err != nil {
			failed++
			errs.PrintCodecFailure(title, err)
			continue
		}
		msg, err := d.Decode(cmd.Context(), data)
		if err != nil {
			failed++
			logging.LogRawBytes("Undecodable message", data)
			errs.PrintCodecFailure(title, err)
			continue
		}

		if current.settings.Output != config.OutputText {
			docs = append(docs, document.New(current.version, msg))
			continue
		}
		body, err := document.MarshalMessage(msg)
		if err != nil {
			return err
		}
		p.PrintMessage(ui.NewMessageView(current.version, msg, data, strings.TrimRight(string(body), "\n")))
	}

	if len(docs) > 0 {
		format, err := document.ParseFormat(current.settings.Output)
		if err != nil {
			return err
		}
		out, err := document.Marshal(docs, format)
		if err != nil {
			return err
		}
		p.Print(string(out))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d messages failed to decode", failed, len(inputs))
	}
	return nil
}

// encodeCmd encodes message documents
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode YAML or JSON message documents",
	Long: `Encode message documents to wire bytes.

The input holds one or more YAML documents separated by '---', or JSON
objects. Each document names an opcode and carries the message fields:

  version: v2
  opcode: write
  message:
    sequenceId: 7
    records:
      - {id: 1, type: uint16, value: 42}

A document without a version uses --protocol. Text output shows each
encoded message; YAML and JSON output print one hex line per message.`,
	Example: `  # Encode the documents in write.yaml
  kpowire encode --file write.yaml

  # Encode from stdin and print bare hex
  kpowire encode -f - -o yaml < messages.yaml`,
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVarP(&inputFile, "file", "f", "", "Document file ('-' for stdin)")
	_ = encodeCmd.MarkFlagRequired("file")
}

func runEncode(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, inputFile)
	if err != nil {
		return err
	}
	docs, err := document.Parse(data, current.version)
	if err != nil {
		return err
	}

	p := current.printer
	for i, doc := range docs {
		d, err := current.dispatcher(doc.Version)
		if err != nil {
			return err
		}
		raw, err := d.Encode(cmd.Context(), doc.Message)
		if err != nil {
			ui.NewPrinter(cmd.ErrOrStderr()).PrintCodecFailure(fmt.Sprintf("Document %d", i+1), err)
			return fmt.Errorf("document %d: %w", i+1, err)
		}

		if current.settings.Output != config.OutputText {
			p.Println(hex.EncodeToString(raw))
			continue
		}
		p.PrintMessage(ui.NewMessageView(doc.Version, doc.Message, raw, ""))
	}
	return nil
}

// opcodesCmd lists the opcodes of a protocol version
var opcodesCmd = &cobra.Command{
	Use:   "opcodes",
	Short: "List the opcodes of a protocol version",
	Example: `  kpowire opcodes -p v1
  kpowire opcodes -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := current.dispatcher(current.version)
		if err != nil {
			return err
		}
		descriptors := d.Registry().Descriptors()

		if current.settings.Output == config.OutputText {
			current.printer.Println(ui.RenderOpcodeTable(current.version, descriptors))
			return nil
		}

		type entry struct {
			Code string `yaml:"code" json:"code"`
			Name string `yaml:"name" json:"name"`
		}
		entries := make([]entry, 0, len(descriptors))
		for _, desc := range descriptors {
			entries = append(entries, entry{Code: fmt.Sprintf("0x%02x", uint8(desc.Code)), Name: desc.Name})
		}
		return writeStructured(cmd.OutOrStdout(), current.settings.Output, entries)
	},
}

// hashCmd computes the node tree digest
var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Compute the node tree hash",
	Long: `Compute the change-detection digest of a node tree.

The input is a YAML or JSON list of nodes. Each node has a path, a type and
the node properties of the selected protocol version:

  - path: /plant
    type: group
    description: Plant
  - path: /plant/flow
    type: point
    dataType: float64
    unit: l/s

Version 1 digests are SHA-1, version 2 digests SHA-256.`,
	Example: `  kpowire hash --file nodes.yaml
  kpowire hash -p v1 --file nodes.yaml --nodes`,
	RunE: runHash,
}

func init() {
	hashCmd.Flags().StringVarP(&inputFile, "file", "f", "", "Node list file ('-' for stdin)")
	hashCmd.Flags().BoolVar(&showNodes, "nodes", false, "Show each node's serialization")
	_ = hashCmd.MarkFlagRequired("file")
}

func runHash(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, inputFile)
	if err != nil {
		return err
	}
	tree, err := document.HashNodes(data, current.version)
	if err != nil {
		ui.NewPrinter(cmd.ErrOrStderr()).PrintCodecFailure("Hash Failed", err)
		return err
	}

	if current.settings.Output != config.OutputText {
		if !showNodes {
			tree.Nodes = nil
		}
		return writeStructured(cmd.OutOrStdout(), current.settings.Output, tree)
	}

	details := []ui.Param{
		{Key: "Protocol", Value: tree.Version.String()},
		{Key: "Nodes", Value: fmt.Sprintf("%d", len(tree.Nodes))},
		{Key: "Digest", Value: hex.EncodeToString(tree.Digest)},
	}
	if showNodes {
		for _, n := range tree.Nodes {
			details = append(details, ui.Param{Key: n.Path, Value: hex.EncodeToString(n.Data)})
		}
	}
	current.printer.PrintSuccess("Node Tree Hash", details...)
	return nil
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// hexLines splits data into lines, skipping blanks and '#' comments.
func hexLines(data []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

func protocolNames() []string {
	return []string{protocol.V1.String(), protocol.V2.String()}
}
