package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/1broseidon/xwlm/internal/config"
	"github.com/1broseidon/xwlm/internal/dialect"
	"github.com/1broseidon/xwlm/internal/platform"
	"github.com/1broseidon/xwlm/internal/session"
)

// deps are the outside-world collaborators. Tests replace them.
var deps = struct {
	env    dialect.Env
	source platform.Source
	runner platform.Runner
}{
	env: dialect.OSEnv,
}

// loadSettings reads the app settings and applies --compositor.
func loadSettings() (*config.LoadResult, error) {
	var (
		res *config.LoadResult
		err error
	)
	if settingsPath != "" {
		res, err = config.LoadFromPath(settingsPath)
	} else {
		res, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if compositorFlag != "" {
		cfg := *res.Config
		cfg.Compositor = compositorFlag
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		res.Config = &cfg
	}
	return res, nil
}

// stderrLogger logs to the command's error stream.
func stderrLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// fileLogger logs to the configured log file, for commands that own the
// terminal or stdout.
func fileLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	path := cfg.LogFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

// openSession builds a session from settings and the global flags.
func openSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*session.Session, error) {
	return session.Open(ctx, session.Options{
		Settings:   cfg,
		ConfigPath: compositorConfig,
		Env:        deps.env,
		Source:     deps.source,
		Runner:     deps.runner,
		Logger:     logger,
	})
}

// commandSession loads settings and opens a session logging to stderr.
func commandSession(cmd *cobra.Command) (*session.Session, error) {
	res, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return openSession(cmd.Context(), res.Config, stderrLogger(cmd, res.Config))
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
