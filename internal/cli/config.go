package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/xwlm/internal/config"
)

var printDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect xwlm's own settings",
	Long: `Inspect xwlm's settings file. Monitor layout is never stored here; it lives
in the compositor's config.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := settingsPath
		if path == "" {
			p, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			path = p
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective settings as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		if !printDefaults {
			res, err := loadSettings()
			if err != nil {
				return err
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the settings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadSettings()
		if err != nil {
			return err
		}
		if !res.Exists {
			printWarning(cmd.OutOrStdout(), fmt.Sprintf("%s not found, using defaults", res.File))
			return nil
		}
		printSuccess(cmd.OutOrStdout(), "config: ok")
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [KEY]",
	Short: "Show a setting and where its value came from",
	Long:  "Show a setting and where its value came from. Without KEY, list the known keys.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, k := range config.Keys() {
				fmt.Fprintln(w, k)
			}
			return nil
		}
		res, err := loadSettings()
		if err != nil {
			return err
		}
		value, src, err := config.Explain(res, args[0])
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			return err
		}
		printLabelValue(w, "key", args[0])
		printLabelValue(w, "source", formatSource(src))
		printLabelValue(w, "value", strings.TrimSpace(string(out)))
		return nil
	},
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}

func init() {
	configPrintCmd.Flags().BoolVar(&printDefaults, "defaults", false, "Print built-in defaults instead of the effective settings")
	configCmd.AddCommand(configPathCmd, configPrintCmd, configValidateCmd, configGetCmd)
}
