// Package platform queries the running session for the monitors it
// currently drives and asks compositors to reload their config.
package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/1broseidon/xwlm/internal/dialect"
	"github.com/1broseidon/xwlm/internal/geometry"
)

// ErrUnavailable means a source cannot run in this session.
var ErrUnavailable = errors.New("monitor source unavailable")

// Source lists the monitors known to the running session. Positions are in
// logical layout coordinates and sizes are mode pixels.
type Source interface {
	Name() string
	Monitors(ctx context.Context) ([]geometry.Monitor, error)
}

// Runner runs an external command and returns its stdout.
type Runner interface {
	Output(ctx context.Context, argv []string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrUnavailable, argv[0])
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return nil, fmt.Errorf("%s: %w", argv[0], err)
	}
	return out, nil
}

// Chain tries each source in order and returns the first success.
type Chain struct {
	Sources []Source
	Logger  *slog.Logger
}

func (c Chain) Name() string {
	names := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		names[i] = s.Name()
	}
	return strings.Join(names, ",")
}

func (c Chain) Monitors(ctx context.Context) ([]geometry.Monitor, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var errs []error
	for _, s := range c.Sources {
		monitors, err := s.Monitors(ctx)
		if err == nil {
			logger.Debug("live monitors", "source", s.Name(), "count", len(monitors))
			return monitors, nil
		}
		logger.Debug("monitor source failed", "source", s.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, ErrUnavailable
	}
	return nil, errors.Join(errs...)
}

// ForDialect returns the sources to query for a compositor, native tool
// first, then wlr-randr, then X11 RandR.
func ForDialect(kind dialect.Kind, runner Runner, logger *slog.Logger) Source {
	if runner == nil {
		runner = ExecRunner{}
	}
	var sources []Source
	switch kind {
	case dialect.KindHyprland:
		sources = append(sources, Hyprctl{Runner: runner})
	case dialect.KindSway:
		sources = append(sources, Swaymsg{Runner: runner})
	}
	sources = append(sources, WlrRandr{Runner: runner}, X11{})
	return Chain{Sources: sources, Logger: logger}
}

// Reload runs argv, giving up after timeout.
func Reload(ctx context.Context, runner Runner, argv []string, timeout time.Duration) error {
	if runner == nil {
		runner = ExecRunner{}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if _, err := runner.Output(ctx, argv); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}
