// Package tui is the interactive monitor layout editor.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/xwlm/internal/session"
)

// ErrNotTerminal is returned when stdin or stdout is not a TTY.
var ErrNotTerminal = errors.New("tui requires an interactive terminal (stdin/stdout must be TTYs)")

// Options configures Run and RunSetup.
type Options struct {
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Run starts the editor on sess and blocks until the user quits.
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	if err := requireTerminal(); err != nil {
		return err
	}
	p := tea.NewProgram(newModel(ctx, sess, opts.logger()), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func requireTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}
	return nil
}
