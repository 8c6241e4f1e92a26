package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts either a Go duration string ("5s") or a bare number of
// seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar")
	}
	if value.Tag == "!!int" || value.Tag == "!!float" {
		var secs float64
		if err := value.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(time.Duration(secs * float64(time.Second)))
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(parsed)
	return nil
}

// RawConfig mirrors Config with optional fields, so absent keys keep
// their defaults.
type RawConfig struct {
	Compositor       *string   `yaml:"compositor"`
	ConfigPath       *string   `yaml:"config_path"`
	WorkspaceCount   *int      `yaml:"workspace_count"`
	MaxIncludeDepth  *int      `yaml:"max_include_depth"`
	ReloadAfterApply *bool     `yaml:"reload_after_apply"`
	ReloadTimeout    *Duration `yaml:"reload_timeout"`
	MoveStep         *int      `yaml:"move_step"`
	LogLevel         *string   `yaml:"log_level"`
	LogFile          *string   `yaml:"log_file"`
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()
	if raw.Compositor != nil {
		cfg.Compositor = *raw.Compositor
	}
	if raw.ConfigPath != nil {
		cfg.ConfigPath = *raw.ConfigPath
	}
	if raw.WorkspaceCount != nil {
		cfg.WorkspaceCount = *raw.WorkspaceCount
	}
	if raw.MaxIncludeDepth != nil {
		cfg.MaxIncludeDepth = *raw.MaxIncludeDepth
	}
	if raw.ReloadAfterApply != nil {
		cfg.ReloadAfterApply = *raw.ReloadAfterApply
	}
	if raw.ReloadTimeout != nil {
		cfg.ReloadTimeout = time.Duration(*raw.ReloadTimeout)
	}
	if raw.MoveStep != nil {
		cfg.MoveStep = *raw.MoveStep
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.LogFile != nil {
		cfg.LogFile = *raw.LogFile
	}
	return cfg
}
