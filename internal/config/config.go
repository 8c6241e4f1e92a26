package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/xwlm/internal/dialect"
)

// CompositorAuto selects the dialect from the session environment.
const CompositorAuto = "auto"

const (
	DefaultWorkspaceCount  = 10
	DefaultMaxIncludeDepth = 16
	DefaultReloadTimeout   = 5 * time.Second
	DefaultMoveStep        = 10
)

// Config holds xwlm's own settings. It never contains monitor layout;
// that lives in the compositor's config.
type Config struct {
	// Compositor is "auto" or a dialect kind.
	Compositor string `yaml:"compositor"`

	// ConfigPath overrides the compositor config file. Empty means the
	// dialect's default locations are searched.
	ConfigPath string `yaml:"config_path,omitempty"`

	// WorkspaceCount is how many workspaces the assignment view offers.
	WorkspaceCount int `yaml:"workspace_count"`

	MaxIncludeDepth int `yaml:"max_include_depth"`

	// ReloadAfterApply asks the compositor to reload once files are written.
	ReloadAfterApply bool          `yaml:"reload_after_apply"`
	ReloadTimeout    time.Duration `yaml:"reload_timeout"`

	// MoveStep is the logical-pixel distance of one keyboard move.
	MoveStep int `yaml:"move_step"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file,omitempty"`
}

// ValidationError reports an invalid setting, with the YAML position it
// came from when known.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func DefaultConfig() *Config {
	return &Config{
		Compositor:       CompositorAuto,
		WorkspaceCount:   DefaultWorkspaceCount,
		MaxIncludeDepth:  DefaultMaxIncludeDepth,
		ReloadAfterApply: true,
		ReloadTimeout:    DefaultReloadTimeout,
		MoveStep:         DefaultMoveStep,
		LogLevel:         "info",
	}
}

func (c *Config) Validate() error {
	if c.Compositor != CompositorAuto {
		if _, err := dialect.ParseKind(c.Compositor); err != nil {
			names := []string{CompositorAuto}
			for _, k := range dialect.Kinds() {
				names = append(names, string(k))
			}
			return &ValidationError{Path: "compositor", Err: fmt.Errorf("compositor must be one of: %s", strings.Join(names, ", "))}
		}
	}
	if c.WorkspaceCount < 1 || c.WorkspaceCount > 100 {
		return &ValidationError{Path: "workspace_count", Err: fmt.Errorf("workspace_count must be between 1 and 100")}
	}
	if c.MaxIncludeDepth < 1 {
		return &ValidationError{Path: "max_include_depth", Err: fmt.Errorf("max_include_depth must be >= 1")}
	}
	if c.ReloadTimeout <= 0 {
		return &ValidationError{Path: "reload_timeout", Err: fmt.Errorf("reload_timeout must be positive")}
	}
	if c.MoveStep < 1 {
		return &ValidationError{Path: "move_step", Err: fmt.Errorf("move_step must be >= 1")}
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// CompositorKind returns the configured dialect kind, or false for auto.
func (c *Config) CompositorKind() (dialect.Kind, bool) {
	if c == nil || c.Compositor == "" || c.Compositor == CompositorAuto {
		return "", false
	}
	k, err := dialect.ParseKind(c.Compositor)
	if err != nil {
		return "", false
	}
	return k, true
}

// SlogLevel maps LogLevel onto slog.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warning", "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// LogFilePath returns LogFile, or the default under the XDG state directory.
func (c *Config) LogFilePath() string {
	if c != nil && c.LogFile != "" {
		return expandHome(c.LogFile)
	}
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "xwlm", "xwlm.log")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".local", "state", "xwlm", "xwlm.log")
}

// ResolvedConfigPath returns ConfigPath with "~" expanded.
func (c *Config) ResolvedConfigPath() string {
	if c == nil {
		return ""
	}
	return expandHome(c.ConfigPath)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
