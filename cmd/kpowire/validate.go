package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/kpowire/internal/capture"
	"github.com/muurk/kpowire/internal/config"
	"github.com/muurk/kpowire/internal/logging"
	"github.com/muurk/kpowire/internal/ui"
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&strictMode, "strict", false, "Exit with an error if any message fails to decode")
}

// validateCmd checks recorded traffic against the codecs
var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate captured traffic against the codecs",
	Long: `Decode every message of a capture and report the results.

The path is a capture file or a directory of *.jsonl and *.hex files. JSONL
captures hold one JSON record per line with the payload in payload_hex; hex
captures hold one message per line. Blank lines and lines starting with '#'
are skipped.

The report shows the opcode distribution of decoded messages, failures
grouped by error kind, and the first failing messages.`,
	Example: `  # Validate one capture
  kpowire validate session.jsonl

  # Validate a directory of v1 captures, failing on any decode error
  kpowire validate -p v1 --strict captures/`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	files, err := capture.ListFiles(path)
	if err != nil {
		return err
	}

	d, err := current.dispatcher(current.version)
	if err != nil {
		return err
	}
	validator := capture.NewValidator(d)
	stats := validator.Statistics()

	work := func(ctx context.Context, report func(ui.FileDone)) error {
		for _, file := range files {
			decoded, failed := stats.Decoded, stats.Failed
			if err := validator.ValidateFile(ctx, file); err != nil {
				return err
			}
			logging.Debug("Capture file validated",
				zap.String("file", file),
				zap.Int("decoded", stats.Decoded-decoded),
				zap.Int("failed", stats.Failed-failed),
			)
			report(ui.FileDone{
				Name:    filepath.Base(file),
				Decoded: stats.Decoded - decoded,
				Failed:  stats.Failed - failed,
			})
		}
		return nil
	}

	text := current.settings.Output == config.OutputText
	if text && len(files) > 1 && ui.IsTerminal() {
		err = ui.RunWithProgress(cmd.Context(), cmd.ErrOrStderr(), "Validating captures", len(files), work)
	} else {
		err = work(cmd.Context(), func(ui.FileDone) {})
	}
	if err != nil {
		return err
	}
	logging.Info("Capture validated",
		zap.String("path", path),
		zap.Int("files", len(files)),
		zap.Int("messages", stats.TotalMessages),
		zap.Int("failed", stats.Failed),
	)

	if text {
		p := current.printer
		p.PrintHeader("Capture Validation", "kpowire validate",
			ui.Param{Key: "Path", Value: path},
			ui.Param{Key: "Protocol", Value: current.version.String()},
			ui.Param{Key: "Files", Value: fmt.Sprintf("%d", len(files))},
		)
		p.Newline()
		p.Println(ui.RenderStatistics(stats, p.Width()))
	} else if err := writeStructured(cmd.OutOrStdout(), current.settings.Output, summarize(stats)); err != nil {
		return err
	}

	if strictMode && stats.Failed > 0 {
		return fmt.Errorf("%d of %d messages failed to decode", stats.Failed, stats.TotalMessages)
	}
	return nil
}

type validationSummary struct {
	Files      int               `yaml:"files" json:"files"`
	Messages   int               `yaml:"messages" json:"messages"`
	Decoded    int               `yaml:"decoded" json:"decoded"`
	Failed     int               `yaml:"failed" json:"failed"`
	Success    float64           `yaml:"successRate" json:"successRate"`
	Opcodes    map[string]int    `yaml:"opcodes" json:"opcodes"`
	ErrorKinds map[string]int    `yaml:"errorKinds,omitempty" json:"errorKinds,omitempty"`
	Failures   []validateFailure `yaml:"failures,omitempty" json:"failures,omitempty"`
}

type validateFailure struct {
	File    string `yaml:"file" json:"file"`
	Line    int    `yaml:"line" json:"line"`
	Message int    `yaml:"message" json:"message"`
	Kind    string `yaml:"kind" json:"kind"`
	Error   string `yaml:"error" json:"error"`
	Payload string `yaml:"payload" json:"payload"`
}

func summarize(stats *capture.Statistics) validationSummary {
	s := validationSummary{
		Files:      stats.TotalFiles,
		Messages:   stats.TotalMessages,
		Decoded:    stats.Decoded,
		Failed:     stats.Failed,
		Success:    stats.SuccessRate(),
		Opcodes:    make(map[string]int, len(stats.Opcodes)),
		ErrorKinds: make(map[string]int, len(stats.ErrorKinds)),
	}
	for op, n := range stats.Opcodes {
		s.Opcodes[op.String()] = n
	}
	for kind, n := range stats.ErrorKinds {
		s.ErrorKinds[kind.String()] = n
	}
	for _, f := range stats.Failures {
		s.Failures = append(s.Failures, validateFailure{
			File:    f.File,
			Line:    f.LineNumber,
			Message: f.MessageNum,
			Kind:    f.Kind.String(),
			Error:   f.Error,
			Payload: f.PayloadHex,
		})
	}
	return s
}
