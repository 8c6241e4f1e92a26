// Package session ties one editing session together: it picks the
// dialect, extracts the compositor config, reconciles it with the live
// monitors, owns the layout model and writes changes back.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/xwlm/internal/config"
	"github.com/1broseidon/xwlm/internal/dialect"
	"github.com/1broseidon/xwlm/internal/extract"
	"github.com/1broseidon/xwlm/internal/fsops"
	"github.com/1broseidon/xwlm/internal/generate"
	"github.com/1broseidon/xwlm/internal/geometry"
	"github.com/1broseidon/xwlm/internal/layout"
	"github.com/1broseidon/xwlm/internal/platform"
)

// ErrNoConfig means no compositor config file could be located.
var ErrNoConfig = errors.New("no compositor config found")

// Options configures Open. Only Settings is required.
type Options struct {
	Settings *config.Config

	// Dialect and ConfigPath override the settings and detection.
	Dialect    dialect.Dialect
	ConfigPath string

	Env    dialect.Env
	FS     fsops.FS
	Source platform.Source
	Runner platform.Runner
	Logger *slog.Logger
}

// Session is the single owner of a layout model. Its methods are safe to
// call from several goroutines.
type Session struct {
	mu sync.Mutex

	settings *config.Config
	dialect  dialect.Dialect
	path     string
	env      dialect.Env
	fs       fsops.FS
	source   platform.Source
	runner   platform.Runner
	logger   *slog.Logger

	result  *extract.Result
	model   *layout.Model
	live    []geometry.Monitor
	orphans []geometry.Assignment
	dirty   bool
}

// SaveReport describes a completed save.
type SaveReport struct {
	Plan      *generate.Plan
	Reloaded  bool
	ReloadErr error
}

// ResolveDialect returns the configured dialect, or detects one from env.
func ResolveDialect(settings *config.Config, env dialect.Env) (dialect.Dialect, error) {
	if k, ok := settings.CompositorKind(); ok {
		return dialect.ForKind(k)
	}
	d, _, err := dialect.Detect(env)
	return d, err
}

// ResolveConfigPath returns override, then the configured path, then the
// first default location of d that exists.
func ResolveConfigPath(d dialect.Dialect, settings *config.Config, override string, env dialect.Env, fsys fsops.FS) (string, error) {
	if override != "" {
		return extract.ExpandPath(override, env), nil
	}
	if p := settings.ResolvedConfigPath(); p != "" {
		return p, nil
	}
	candidates := d.DefaultConfigPaths(env)
	for _, p := range candidates {
		if ok, err := fsops.Exists(fsys, p); err == nil && ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w for %s (tried %v)", ErrNoConfig, d.Kind(), candidates)
}

// Open builds a session. Failure to read live monitors is logged and the
// session continues from the config alone.
func Open(ctx context.Context, opts Options) (*Session, error) {
	s := &Session{
		settings: opts.Settings,
		dialect:  opts.Dialect,
		env:      opts.Env,
		fs:       opts.FS,
		source:   opts.Source,
		runner:   opts.Runner,
		logger:   opts.Logger,
	}
	if s.settings == nil {
		s.settings = config.DefaultConfig()
	}
	if s.env == nil {
		s.env = dialect.OSEnv
	}
	if s.fs == nil {
		s.fs = fsops.NewRealFS()
	}
	if s.runner == nil {
		s.runner = platform.ExecRunner{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.dialect == nil {
		d, err := ResolveDialect(s.settings, s.env)
		if err != nil {
			return nil, err
		}
		s.dialect = d
	}
	if s.source == nil {
		s.source = platform.ForDialect(s.dialect.Kind(), s.runner, s.logger)
	}

	path, err := ResolveConfigPath(s.dialect, s.settings, opts.ConfigPath, s.env, s.fs)
	if err != nil {
		return nil, err
	}
	s.path = path

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(ctx context.Context) error {
	res, err := s.extractor().Extract(s.path)
	if err != nil {
		return err
	}
	s.path = res.Source.Root

	live, err := s.queryLive(ctx)
	if err != nil {
		s.logger.Warn("live monitor query failed, using config only", "error", err)
	}

	l, orphans := layout.Reconcile(live, res.Monitors(), res.Assignments())
	for _, a := range orphans {
		s.logger.Warn("workspace assigned to unknown monitor dropped", "workspace", a.Workspace, "monitor", a.Monitor)
	}
	model, err := layout.New(l, layout.Options{Logger: s.logger})
	if err != nil {
		return err
	}

	s.result, s.model, s.live, s.orphans, s.dirty = res, model, live, orphans, false
	s.logger.Info("session loaded",
		"dialect", string(s.dialect.Kind()),
		"config", s.path,
		"files", len(res.Source.Files),
		"monitors", model.Len(),
		"warnings", len(res.Warnings))
	return nil
}

func (s *Session) extractor() *extract.Extractor {
	return extract.New(s.dialect, extract.Options{
		FS:       s.fs,
		Env:      s.env,
		MaxDepth: s.settings.MaxIncludeDepth,
		Logger:   s.logger,
	})
}

func (s *Session) queryLive(ctx context.Context) ([]geometry.Monitor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.settings.ReloadTimeout)
	defer cancel()
	return s.source.Monitors(ctx)
}

func (s *Session) generator() *generate.Generator {
	return generate.New(s.dialect, generate.Options{FS: s.fs, Logger: s.logger})
}

func (s *Session) Dialect() dialect.Dialect { return s.dialect }

func (s *Session) Settings() *config.Config { return s.settings }

// ConfigPath returns the canonical root config file.
func (s *Session) ConfigPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Result returns the latest extraction.
func (s *Session) Result() *extract.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Orphans returns assignments dropped because their monitor is unknown.
func (s *Session) Orphans() []geometry.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]geometry.Assignment(nil), s.orphans...)
}

// Live returns the monitors reported by the session at load time.
func (s *Session) Live() []geometry.Monitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]geometry.Monitor(nil), s.live...)
}

// Dirty reports whether the layout has unsaved edits.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Snapshot returns a copy of the current layout.
func (s *Session) Snapshot() geometry.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Snapshot()
}

// Selected returns the selected monitor.
func (s *Session) Selected() (geometry.Monitor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Selected()
}

// WithModel runs fn with exclusive access to the model. Edits made
// through fn mark the session dirty when fn reports changed.
func (s *Session) WithModel(fn func(m *layout.Model) (changed bool, err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := fn(s.model)
	if changed && err == nil {
		s.dirty = true
	}
	return err
}

// Apply runs one layout operation.
func (s *Session) Apply(op layout.Operation) error {
	return s.WithModel(func(m *layout.Model) (bool, error) {
		return true, m.Apply(op)
	})
}

// Plan computes the file changes for the current layout without writing.
func (s *Session) Plan() (*generate.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generator().Plan(s.model.Snapshot(), s.result)
}

// Save writes the layout and assignments back, re-reads the config so later
// saves target the new text, and reloads the compositor when configured.
// A reload failure is reported in the SaveReport, not as an error.
func (s *Session) Save(ctx context.Context) (*SaveReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Session) saveLocked(ctx context.Context) (*SaveReport, error) {
	return s.commitLocked(ctx, s.generator().Apply)
}

// ConsolidatePlan computes the changes Consolidate would make.
func (s *Session) ConsolidatePlan(target string) (*generate.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generator().Consolidate(s.model.Snapshot(), s.result, target)
}

// Consolidate moves every monitor and workspace declaration into target,
// includes it from the root config, and reloads like Save.
func (s *Session) Consolidate(ctx context.Context, target string) (*SaveReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(ctx, func(snapshot geometry.Layout, res *extract.Result) (*generate.Plan, error) {
		gen := s.generator()
		plan, err := gen.Consolidate(snapshot, res, target)
		if err != nil {
			return nil, err
		}
		return plan, gen.Write(plan)
	})
}

// commitLocked writes the plan built by write, then re-reads the config
// and reloads the compositor.
func (s *Session) commitLocked(ctx context.Context, write func(geometry.Layout, *extract.Result) (*generate.Plan, error)) (*SaveReport, error) {
	plan, err := write(s.model.Snapshot(), s.result)
	if err != nil {
		return nil, err
	}
	report := &SaveReport{Plan: plan}
	for _, a := range plan.Skipped {
		s.logger.Warn("workspace assignment not written", "workspace", a.Workspace, "monitor", a.Monitor, "dialect", string(s.dialect.Kind()))
	}

	res, err := s.extractor().Extract(s.path)
	if err != nil {
		return report, fmt.Errorf("re-read after save: %w", err)
	}
	s.result = res
	s.dirty = false

	if plan.Empty() || !s.settings.ReloadAfterApply {
		return report, nil
	}
	report.ReloadErr = s.reloadLocked(ctx)
	report.Reloaded = report.ReloadErr == nil
	return report, nil
}

// AssignWorkspace moves ws to monitor and writes the change immediately.
func (s *Session) AssignWorkspace(ctx context.Context, ws, monitor string) (*SaveReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.model.AssignWorkspace(ws, monitor); err != nil {
		return nil, err
	}
	return s.saveLocked(ctx)
}

// UnassignWorkspace removes ws from its monitor and writes immediately.
func (s *Session) UnassignWorkspace(ctx context.Context, ws string) (*SaveReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.model.UnassignWorkspace(ws) {
		return &SaveReport{Plan: &generate.Plan{}}, nil
	}
	return s.saveLocked(ctx)
}

// Reload asks the compositor to re-read its config.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *Session) reloadLocked(ctx context.Context) error {
	argv := s.dialect.ReloadCommand(s.path)
	err := platform.Reload(ctx, s.runner, argv, s.settings.ReloadTimeout)
	if err != nil {
		s.logger.Warn("compositor reload failed", "command", argv, "error", err)
		return err
	}
	s.logger.Info("compositor reloaded", "command", argv)
	return nil
}

// Rescan discards unsaved edits and reloads config and live state.
func (s *Session) Rescan(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}
