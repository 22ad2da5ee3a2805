// Package config manages the kpowire settings file.
//
// Settings hold the default protocol version, log level, output format and
// metrics reporting used by the CLI. Flags override them per invocation.
//
// # Configuration File Location
//
// The default file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/kpowire/config.yaml or $HOME/.config/kpowire/config.yaml
//   - macOS: $HOME/.config/kpowire/config.yaml
//   - Windows: %LOCALAPPDATA%\kpowire\config.yaml
//
// A path given with --config may end in .toml, in which case the file is
// read and written as TOML instead of YAML.
//
// # Usage Example
//
//	settings, err := config.LoadSettings()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, _ := settings.ProtocolVersion()
//
// # Thread Safety
//
// The global settings use sync.Once for safe initialization across goroutines.
// File writes are protected by a mutex and replace the file atomically.
package config
