package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/xwlm/internal/config"
	"github.com/1broseidon/xwlm/internal/dialect"
	"github.com/1broseidon/xwlm/internal/extract"
)

// ErrSetupAborted is returned when the user leaves the setup form.
var ErrSetupAborted = errors.New("setup aborted")

// setupModel wraps the first-run form that records which compositor
// config file to edit.
type setupModel struct {
	form    *huh.Form
	aborted bool

	fCompositor string
	fPath       string
}

func newSetupModel(settings *config.Config, env dialect.Env) *setupModel {
	s := &setupModel{
		fCompositor: settings.Compositor,
		fPath:       settings.ConfigPath,
	}
	if s.fCompositor == "" {
		s.fCompositor = config.CompositorAuto
	}
	if s.fPath == "" {
		s.fPath = suggestedPath(s.fCompositor, env)
	}

	opts := []huh.Option[string]{huh.NewOption("auto (detect from session)", config.CompositorAuto)}
	for _, k := range dialect.Kinds() {
		opts = append(opts, huh.NewOption(string(k), string(k)))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("compositor").
				Title("Compositor").
				Description("Which config syntax to read and write").
				Options(opts...).
				Value(&s.fCompositor),

			huh.NewInput().
				Key("config_path").
				Title("Monitor config file").
				Description("File holding your monitor lines; ~ and $VARS are expanded").
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return errors.New("path cannot be empty")
					}
					return nil
				}).
				Value(&s.fPath),
		),
	).WithWidth(72).WithShowHelp(true).WithShowErrors(true)
	return s
}

// suggestedPath returns the first default config location of the chosen
// or detected compositor.
func suggestedPath(compositor string, env dialect.Env) string {
	var d dialect.Dialect
	if k, err := dialect.ParseKind(compositor); err == nil {
		d, _ = dialect.ForKind(k)
	} else {
		d, _, _ = dialect.Detect(env)
	}
	if d == nil {
		return ""
	}
	if paths := d.DefaultConfigPaths(env); len(paths) > 0 {
		return paths[0]
	}
	return ""
}

func (s *setupModel) Init() tea.Cmd {
	return s.form.Init()
}

func (s *setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && (km.String() == "esc" || km.String() == "ctrl+c") {
		s.aborted = true
		return s, tea.Quit
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	switch s.form.State {
	case huh.StateCompleted:
		return s, tea.Quit
	case huh.StateAborted:
		s.aborted = true
		return s, tea.Quit
	}
	return s, cmd
}

func (s *setupModel) View() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("xwlm setup") +
		dimStyle.Render("  (esc to cancel)")
	return lipgloss.NewStyle().Padding(1, 2).Render(header + "\n\n" + s.form.View())
}

// applySetup returns a copy of settings updated with the form answers.
func applySetup(settings *config.Config, compositor, path string, env dialect.Env) (*config.Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("config path cannot be empty")
	}
	cfg := *settings
	cfg.Compositor = compositor
	cfg.ConfigPath = extract.ExpandPath(path, env)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RunSetup shows the first-run form and returns the updated settings.
// Persisting them is left to the caller.
func RunSetup(ctx context.Context, settings *config.Config, env dialect.Env, opts Options) (*config.Config, error) {
	if err := requireTerminal(); err != nil {
		return nil, err
	}
	s := newSetupModel(settings, env)
	if _, err := tea.NewProgram(s, tea.WithContext(ctx)).Run(); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	if s.aborted {
		return nil, ErrSetupAborted
	}
	cfg, err := applySetup(settings, s.fCompositor, s.fPath, env)
	if err != nil {
		return nil, err
	}
	opts.logger().Info("setup completed", "compositor", cfg.Compositor, "config_path", cfg.ConfigPath)
	return cfg, nil
}
