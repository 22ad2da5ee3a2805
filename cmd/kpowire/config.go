package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/kpowire/internal/config"
	"github.com/muurk/kpowire/internal/ui"
)

var initTOML bool

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configInitCmd.Flags().BoolVar(&initTOML, "toml", false, "Write the default config as TOML")
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the kpowire config file",
	Long: `Manage the kpowire config file.

The config file sets the default protocol version, output format, log
level, color and metrics reporting. Files ending in .toml are read as TOML,
everything else as YAML.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Example: `  kpowire config init
  kpowire config init --toml
  kpowire config init --config ./kpowire.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if initTOML && configPath == "" {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ".toml"
		}
		if err := config.CreateDefaultConfig(path); err != nil {
			return err
		}
		current.printer.PrintSuccess("Config Created", ui.Param{Key: "Location", Value: path})
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long: `Print the settings after the config file and global flags are applied.
Output is TOML with --format text, otherwise YAML or JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if current.settings.Output != config.OutputText {
			return writeStructured(cmd.OutOrStdout(), current.settings.Output, current.settings)
		}
		data, err := current.settings.Marshal(true)
		if err != nil {
			return err
		}
		current.printer.Print(string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}
