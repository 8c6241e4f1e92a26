package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/xwlm/internal/config"
	"github.com/1broseidon/xwlm/internal/dialect"
	"github.com/1broseidon/xwlm/internal/generate"
	"github.com/1broseidon/xwlm/internal/geometry"
	"github.com/1broseidon/xwlm/internal/session"
)

type noLive struct{}

func (noLive) Name() string { return "none" }
func (noLive) Monitors(context.Context) ([]geometry.Monitor, error) {
	return nil, errors.New("not connected")
}

type nopRunner struct{ calls int }

func (r *nopRunner) Output(context.Context, []string) ([]byte, error) {
	r.calls++
	return nil, nil
}

const hyprConfig = `monitor = DP-1, 2560x1440@144, 0x0, 1
monitor = eDP-1, 1920x1080@60, 2560x0, 1
workspace = 1, monitor:DP-1
`

func newTestModel(t *testing.T) (model, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hyprland.conf")
	if err := os.WriteFile(path, []byte(hyprConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	sess, err := session.Open(context.Background(), session.Options{
		Settings:   config.DefaultConfig(),
		Dialect:    dialect.Hyprland{},
		ConfigPath: path,
		Env:        dialect.MapEnv(nil),
		Source:     noLive{},
		Runner:     &nopRunner{},
	})
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	return newModel(context.Background(), sess, nil), path
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, keys ...tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(model)
	}
	return m, cmd
}

func readConfig(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	return string(data)
}

func TestRenderCanvas_PanelTooSmall(t *testing.T) {
	l := geometry.NewLayout([]geometry.Monitor{
		{Name: "A", Width: 1920, Height: 1080, Scale: 1, Enabled: true},
		{Name: "B", X: 1920, Width: 1920, Height: 1080, Scale: 1, Enabled: true},
	})
	if _, err := renderCanvas(l, "A", 8, 3); !errors.Is(err, ErrPanelTooSmall) {
		t.Fatalf("expected ErrPanelTooSmall, got %v", err)
	}

	// A tiny monitor next to a huge one cannot get a box of its own.
	l = geometry.NewLayout([]geometry.Monitor{
		{Name: "big", Width: 15360, Height: 8640, Scale: 1, Enabled: true},
		{Name: "tiny", X: 15360, Width: 64, Height: 64, Scale: 1, Enabled: true},
	})
	_, err := renderCanvas(l, "big", 40, 12)
	if !errors.Is(err, ErrPanelTooSmall) {
		t.Fatalf("expected ErrPanelTooSmall, got %v", err)
	}
	if err.Error() != "panel too small to display monitor layout" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestRenderCanvas_NoMonitors(t *testing.T) {
	if _, err := renderCanvas(geometry.Layout{}, "", 80, 20); !errors.Is(err, ErrNoMonitors) {
		t.Fatalf("expected ErrNoMonitors, got %v", err)
	}
	l := geometry.NewLayout([]geometry.Monitor{{Name: "A", Width: 1920, Height: 1080, Scale: 1}})
	if _, err := renderCanvas(l, "A", 80, 20); !errors.Is(err, ErrNoMonitors) {
		t.Fatalf("disabled-only layout: expected ErrNoMonitors, got %v", err)
	}
}

func TestRenderCanvas_DrawsMonitors(t *testing.T) {
	l := geometry.NewLayout([]geometry.Monitor{
		{Name: "DP-1", Width: 1920, Height: 1080, Scale: 1, Enabled: true},
		{Name: "HDMI-A-1", X: 1920, Width: 1920, Height: 1080, Scale: 1, Enabled: true, Workspaces: []string{"3"}},
	})
	lines, err := renderCanvas(l, "HDMI-A-1", 42, 12)
	if err != nil {
		t.Fatalf("renderCanvas: %v", err)
	}
	if len(lines) != 12 {
		t.Fatalf("expected 12 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if n := len([]rune(line)); n != 42 {
			t.Fatalf("line %d has width %d", i, n)
		}
	}
	first := []rune(lines[1])
	if first[0] != '║' || first[1] != '┌' || first[21] != '┏' {
		t.Fatalf("unexpected frame row %q", lines[1])
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"DP-1", "HDMI-A-1", "1920x1080", "ws 3"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("canvas missing %q:\n%s", want, joined)
		}
	}
}

func TestModel_MoveAndSave(t *testing.T) {
	m, path := newTestModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, runes("j"))
	sel, _ := m.sess.Selected()
	if sel.Name != "eDP-1" || sel.Y != 10 {
		t.Fatalf("expected eDP-1 moved down by move_step, got %+v", sel)
	}
	if !m.sess.Dirty() {
		t.Fatalf("expected dirty session")
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.saveOverlay.phase != savePreview {
		t.Fatalf("expected preview phase, got %v (%v)", m.saveOverlay.phase, m.saveOverlay.err)
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.saveOverlay.SaveSucceeded() {
		t.Fatalf("save failed: %v", m.saveOverlay.err)
	}
	if !strings.Contains(readConfig(t, path), "monitor = eDP-1, 1920x1080@60, 2560x10, 1") {
		t.Fatalf("config not written:\n%s", readConfig(t, path))
	}

	// Any key dismisses the result.
	m, _ = press(t, m, runes("x"))
	if m.saveOverlay.Active() {
		t.Fatalf("overlay should be dismissed")
	}
}

func TestModel_SaveWithoutChanges(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.saveOverlay.phase != saveResult || !errors.Is(m.saveOverlay.err, errNothingToSave) {
		t.Fatalf("expected nothing-to-save result, got %v %v", m.saveOverlay.phase, m.saveOverlay.err)
	}
}

func TestModel_QuitGuardsUnsavedEdits(t *testing.T) {
	m, _ := newTestModel(t)
	if _, cmd := press(t, m, runes("q")); cmd == nil {
		t.Fatalf("clean session should quit at once")
	}

	m, _ = press(t, m, runes("+"))
	m, cmd := press(t, m, runes("q"))
	if cmd != nil || !m.quitArmed || !m.statusErr {
		t.Fatalf("first q with edits should warn, got cmd=%v armed=%v", cmd, m.quitArmed)
	}
	_, cmd = press(t, m, runes("q"))
	if cmd == nil {
		t.Fatalf("second q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestModel_WorkspaceKeysWriteImmediately(t *testing.T) {
	m, path := newTestModel(t)

	m, _ = press(t, m, runes("2"))
	if !strings.Contains(readConfig(t, path), "workspace = 2, monitor:DP-1") {
		t.Fatalf("workspace 2 not written:\n%s", readConfig(t, path))
	}

	m, _ = press(t, m, runes("1"))
	if strings.Contains(readConfig(t, path), "workspace = 1,") {
		t.Fatalf("workspace 1 should be unassigned:\n%s", readConfig(t, path))
	}

	m, _ = press(t, m, runes("0"))
	if !strings.Contains(readConfig(t, path), "workspace = 10, monitor:DP-1") {
		t.Fatalf("0 should map to workspace 10:\n%s", readConfig(t, path))
	}

	m.workspaceCount = 3
	m, _ = press(t, m, runes("5"))
	if !m.statusErr {
		t.Fatalf("workspace beyond workspace_count should be rejected")
	}
	if m.sess.Dirty() {
		t.Fatalf("workspace writes should leave the session clean")
	}
}

func TestModel_PlacePrompt(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, runes("p"))
	if !m.prompt.active() || m.prompt.input.Value() != "0,0" {
		t.Fatalf("prompt not opened with current position: %q", m.prompt.input.Value())
	}

	m.prompt.input.SetValue("nonsense")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.prompt.active() || !m.statusErr {
		t.Fatalf("invalid input should keep the prompt open with an error")
	}

	m.prompt.input.SetValue("0, 1440")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.prompt.active() {
		t.Fatalf("prompt should close after a valid entry")
	}
	dp, _ := m.sess.Snapshot().Lookup("DP-1")
	if dp.X != 0 || dp.Y != 1440 {
		t.Fatalf("DP-1 = %d,%d, want 0,1440", dp.X, dp.Y)
	}

	m, _ = press(t, m, runes("s"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.prompt.active() {
		t.Fatalf("esc should cancel the prompt")
	}
}

func TestModel_ToggleLastMonitorRejected(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("t"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, runes("t"))
	if !m.statusErr {
		t.Fatalf("disabling the last enabled monitor should be reported")
	}
	edp, _ := m.sess.Snapshot().Lookup("eDP-1")
	if !edp.Enabled {
		t.Fatalf("eDP-1 should stay enabled")
	}
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := next.(model).View()
	for _, want := range []string{"hyprland", "DP-1", "eDP-1", "2560x1440@144"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestSaveOverlay_Phases(t *testing.T) {
	var s SaveOverlay
	s.Show(nil, errors.New("stale"))
	if s.phase != saveResult || s.SaveSucceeded() {
		t.Fatalf("plan error should show a failed result")
	}

	plan := &generate.Plan{Files: []generate.FileChange{{
		Path:   "/tmp/x.conf",
		Before: []byte("a\nb\n"),
		After:  []byte("a\nc\n"),
	}}}
	s.Show(plan, nil)
	if s.phase != savePreview || len(s.lines) != 4 || s.lines[0].file != "/tmp/x.conf" {
		t.Fatalf("unexpected preview lines: %+v", s.lines)
	}
	s = s.Update(tea.KeyMsg{Type: tea.KeyEsc}, nil)
	if s.Active() {
		t.Fatalf("esc should close the preview")
	}

	s.Show(plan, nil)
	s = s.Update(tea.KeyMsg{Type: tea.KeyEnter}, func() (*session.SaveReport, error) {
		return &session.SaveReport{Plan: plan, ReloadErr: errors.New("no compositor")}, nil
	})
	if !s.SaveSucceeded() {
		t.Fatalf("expected success, got %v", s.err)
	}
	if view := s.View(80, 20); !strings.Contains(view, "Reload failed") {
		t.Fatalf("reload failure not shown:\n%s", view)
	}
}

func TestApplySetup(t *testing.T) {
	env := dialect.MapEnv(map[string]string{"HOME": "/home/me"})
	settings := config.DefaultConfig()

	cfg, err := applySetup(settings, "sway", " ~/.config/sway/outputs ", env)
	if err != nil {
		t.Fatalf("applySetup: %v", err)
	}
	if cfg.ConfigPath != "/home/me/.config/sway/outputs" || cfg.Compositor != "sway" {
		t.Fatalf("unexpected settings: %+v", cfg)
	}
	if settings.ConfigPath != "" {
		t.Fatalf("input settings must not be modified")
	}

	if _, err := applySetup(settings, "sway", "  ", env); err == nil {
		t.Fatalf("expected error for empty path")
	}
	var verr *config.ValidationError
	if _, err := applySetup(settings, "kde", "/x", env); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSuggestedPath(t *testing.T) {
	env := dialect.MapEnv(map[string]string{"HOME": "/home/me", "SWAYSOCK": "/run/sway.sock"})
	if got := suggestedPath("auto", env); got != "/home/me/.config/sway/config" {
		t.Fatalf("auto = %q", got)
	}
	if got := suggestedPath("hyprland", env); got != "/home/me/.config/hypr/hyprland.conf" {
		t.Fatalf("hyprland = %q", got)
	}
	if got := suggestedPath("auto", dialect.MapEnv(nil)); got != "" {
		t.Fatalf("undetected = %q", got)
	}
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		in      string
		sep     string
		a, b    int
		wantErr bool
	}{
		{"100,200", ",", 100, 200, false},
		{" 1920 x 1080 ", "x", 1920, 1080, false},
		{"1920X1080", "x", 1920, 1080, false},
		{"100", ",", 0, 0, true},
		{"a,b", ",", 0, 0, true},
	}
	for _, tt := range tests {
		a, b, err := parsePair(tt.in, tt.sep)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parsePair(%q) err = %v", tt.in, err)
		}
		if !tt.wantErr && (a != tt.a || b != tt.b) {
			t.Fatalf("parsePair(%q) = %d,%d", tt.in, a, b)
		}
	}
}
