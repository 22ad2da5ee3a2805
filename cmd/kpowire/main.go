// Kpowire encodes, decodes and validates messages of the KPO publish and
// subscribe protocol.
//
// It decodes hex captures into readable messages, encodes YAML or JSON
// message documents to the wire format, computes node tree hashes and
// checks recorded traffic against the codecs.
//
// Usage:
//
//	kpowire [command] [flags]
//
// See 'kpowire --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/muurk/kpowire/internal/config"
	"github.com/muurk/kpowire/internal/logging"
	"github.com/muurk/kpowire/internal/protocol"
	"github.com/muurk/kpowire/internal/registry"
	"github.com/muurk/kpowire/internal/telemetry"
	"github.com/muurk/kpowire/internal/ui"
	"github.com/muurk/kpowire/internal/version"
)

// Global flags
var (
	configPath   string
	protocolFlag string
	logLevel     string
	outputFormat string
	noColor      bool
	showMetrics  bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	reportMetrics()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kpowire",
	Short: "KPO protocol message codec",
	Long: `A codec for the KPO publish/subscribe protocol, versions 1 and 2.

Decodes hex captures into readable messages, encodes YAML or JSON message
documents to wire bytes, computes node tree hashes and validates recorded
traffic.

Defaults are read from the config file (see 'kpowire config path') and can
be overridden per invocation with the global flags.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config directory)")
	rootCmd.PersistentFlags().StringVarP(&protocolFlag, "protocol", "p", "", "Protocol version (v1, v2)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); logs go to stderr")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "o", "", "Output format (text, yaml, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable styled output")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "Print codec metrics to stderr after the command")

	rootCmd.AddCommand(versionCmd)
}

// app holds what every command needs once flags and config are resolved.
type app struct {
	settings    *config.Settings
	version     protocol.Version
	metrics     *telemetry.Metrics
	gatherer    prometheus.Gatherer
	dispatchers map[protocol.Version]*telemetry.Dispatcher
	printer     *ui.Printer
}

var current *app

func setup(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("protocol") {
		settings.Protocol = protocolFlag
	}
	if flags.Changed("log-level") {
		settings.LogLevel = logLevel
	}
	if flags.Changed("format") {
		settings.Output = outputFormat
	}
	if flags.Changed("no-color") {
		settings.Color = !noColor
	}
	if flags.Changed("metrics") {
		settings.Metrics.Enabled = showMetrics
	}
	settings.Output = strings.ToLower(settings.Output)
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := logging.Initialize(settings.LogLevel); err != nil {
		return err
	}
	ui.SetColor(settings.Color && ui.IsTerminal())

	v, err := settings.ProtocolVersion()
	if err != nil {
		return err
	}

	a := &app{
		settings:    settings,
		version:     v,
		dispatchers: make(map[protocol.Version]*telemetry.Dispatcher),
		printer:     ui.NewPrinter(cmd.OutOrStdout()),
	}
	if settings.MetricsEnabled() {
		reg := prometheus.NewRegistry()
		a.metrics = telemetry.NewMetrics(
			telemetry.WithNamespace(settings.Metrics.Namespace),
			telemetry.WithRegistry(reg),
		)
		a.gatherer = reg
	}
	current = a

	logging.Debug("Settings resolved")
	return nil
}

func loadSettings() (*config.Settings, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadSettings()
}

// dispatcher returns the instrumented codec registry for v.
func (a *app) dispatcher(v protocol.Version) (*telemetry.Dispatcher, error) {
	if d, ok := a.dispatchers[v]; ok {
		return d, nil
	}
	r, err := registry.New(v)
	if err != nil {
		return nil, err
	}
	var opts []telemetry.Option
	if a.metrics != nil {
		opts = append(opts, telemetry.WithMetrics(a.metrics))
	}
	d := telemetry.NewDispatcher(r, opts...)
	a.dispatchers[v] = d
	return d, nil
}

func reportMetrics() {
	if current == nil || current.gatherer == nil {
		return
	}
	families, err := current.gatherer.Gather()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to gather metrics: %v\n", err)
		return
	}
	if len(families) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, ui.RenderMetrics(families))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Details(protocolNames()))
	},
}
