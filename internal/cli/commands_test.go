package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/1broseidon/xwlm/internal/config"
	"github.com/1broseidon/xwlm/internal/dialect"
	"github.com/1broseidon/xwlm/internal/geometry"
)

type noMonitors struct{}

func (noMonitors) Name() string                                         { return "none" }
func (noMonitors) Monitors(context.Context) ([]geometry.Monitor, error) { return nil, nil }

type recordingRunner struct{ calls []string }

func (r *recordingRunner) Output(_ context.Context, argv []string) ([]byte, error) {
	r.calls = append(r.calls, strings.Join(argv, " "))
	return nil, nil
}

const swayConfig = `# outputs
output DP-1 mode 2560x1440@60Hz pos 0 0 scale 1
output HDMI-A-1 mode 1920x1080@60Hz pos 2560 0 scale 1
workspace 1 output DP-1
`

// resetFlags restores every flag in the tree to its default so runs do
// not leak state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the command tree with args and returns stdout and
// stderr combined.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

type testEnv struct {
	configPath   string
	settingsPath string
	runner       *recordingRunner
}

// setupTestEnv writes a sway config and points the command tree at it
// with fake collaborators.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		configPath:   filepath.Join(dir, "sway", "config"),
		settingsPath: filepath.Join(dir, "xwlm", "config.yaml"),
		runner:       &recordingRunner{},
	}
	if err := os.MkdirAll(filepath.Dir(env.configPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(env.configPath, []byte(swayConfig), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	saved := deps
	deps.env = dialect.MapEnv(map[string]string{"HOME": dir})
	deps.source = noMonitors{}
	deps.runner = env.runner
	t.Cleanup(func() { deps = saved })
	return env
}

// run executes args against the test environment.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	base := []string{"--config", e.settingsPath, "--compositor", "sway", "-c", e.configPath}
	return executeCommand(t, append(args, base...)...)
}

func (e *testEnv) read(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	return string(data)
}

func TestShowCommand_JSON(t *testing.T) {
	env := setupTestEnv(t)
	out, err := env.run(t, "show", "--json")
	if err != nil {
		t.Fatalf("show: %v\n%s", err, out)
	}

	var v layoutView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if v.Dialect != "sway" || len(v.Monitors) != 2 {
		t.Fatalf("unexpected layout: %+v", v)
	}
	if v.Monitors[0].Name != "DP-1" || len(v.Monitors[0].Workspaces) != 1 || v.Monitors[1].X != 2560 {
		t.Fatalf("unexpected monitors: %+v", v.Monitors)
	}
}

func TestShowCommand_Table(t *testing.T) {
	env := setupTestEnv(t)
	out, err := env.run(t, "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"sway layout", "DP-1", "2560x1440@60", "2560,0"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestExtractCommand(t *testing.T) {
	env := setupTestEnv(t)
	out, err := env.run(t, "extract", "--json")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var v extractView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(v.Files) != 1 || len(v.Records) != 3 || len(v.Warnings) != 0 {
		t.Fatalf("unexpected extraction: %+v", v)
	}
	if v.Records[0].Kind != "monitor" || !strings.HasSuffix(v.Records[0].Location, ":2") {
		t.Fatalf("first record = %+v", v.Records[0])
	}
	if v.Records[2].Kind != "workspace" || v.Records[2].Name != "1" {
		t.Fatalf("workspace record = %+v", v.Records[2])
	}
}

func TestExtractCommand_Consolidate(t *testing.T) {
	env := setupTestEnv(t)
	target := filepath.Join(filepath.Dir(env.configPath), "outputs.conf")

	out, err := env.run(t, "extract", "--consolidate", "--dry-run")
	if err != nil {
		t.Fatalf("extract --consolidate -n: %v\n%s", err, out)
	}
	if !strings.Contains(out, "+ output DP-1 mode 2560x1440@60Hz pos 0 0 scale 1") {
		t.Fatalf("dry run diff missing new file content:\n%s", out)
	}
	if _, err := os.Stat(target); !errors.Is(err, os.ErrNotExist) || env.read(t) != swayConfig {
		t.Fatalf("dry run must not write")
	}

	out, err = env.run(t, "extract", "--consolidate")
	if err != nil {
		t.Fatalf("extract --consolidate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "wrote 2 files") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	for _, want := range []string{
		"output DP-1 mode 2560x1440@60Hz pos 0 0 scale 1",
		"output HDMI-A-1 mode 1920x1080@60Hz pos 2560 0 scale 1",
		"workspace 1 output DP-1",
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("outputs.conf missing %q:\n%s", want, data)
		}
	}
	if got := env.read(t); got != "# outputs\n\n# Added by xwlm\ninclude "+target+"\n" {
		t.Fatalf("root config = %q", got)
	}
	if len(env.runner.calls) != 1 || env.runner.calls[0] != "swaymsg reload" {
		t.Fatalf("reload calls = %v", env.runner.calls)
	}

	if _, err := env.run(t, "extract", "--to", "x.conf"); err == nil {
		t.Fatalf("--to without --consolidate should fail")
	}
}

func TestDiffCommand_UpToDate(t *testing.T) {
	env := setupTestEnv(t)
	out, err := env.run(t, "diff")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.Contains(out, "config is up to date") {
		t.Fatalf("expected up to date, got:\n%s", out)
	}
}

func TestMoveCommand_WritesAndReloads(t *testing.T) {
	env := setupTestEnv(t)
	out, err := env.run(t, "move", "HDMI-A-1", "--dy", "100")
	if err != nil {
		t.Fatalf("move: %v\n%s", err, out)
	}
	if !strings.Contains(out, "wrote 1 file") || !strings.Contains(out, "compositor reloaded") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	got := env.read(t)
	if !strings.Contains(got, "output HDMI-A-1 mode 1920x1080@60Hz pos 2560 100 scale 1") {
		t.Fatalf("move not written:\n%s", got)
	}
	if !strings.HasPrefix(got, "# outputs\n") {
		t.Fatalf("comment lost:\n%s", got)
	}
	if len(env.runner.calls) != 1 || env.runner.calls[0] != "swaymsg reload" {
		t.Fatalf("reload calls = %v", env.runner.calls)
	}
}

func TestMoveCommand_DryRun(t *testing.T) {
	env := setupTestEnv(t)
	out, err := env.run(t, "move", "HDMI-A-1", "--dx=100", "--dry-run")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !strings.Contains(out, "+ output HDMI-A-1 mode 1920x1080@60Hz pos 2660 0 scale 1") {
		t.Fatalf("diff missing new line:\n%s", out)
	}
	if !strings.Contains(out, "- output HDMI-A-1 mode 1920x1080@60Hz pos 2560 0 scale 1") {
		t.Fatalf("diff missing old line:\n%s", out)
	}
	if env.read(t) != swayConfig {
		t.Fatalf("dry run must not write")
	}
	if len(env.runner.calls) != 0 {
		t.Fatalf("dry run must not reload: %v", env.runner.calls)
	}
}

func TestMoveCommand_NoOffset(t *testing.T) {
	env := setupTestEnv(t)
	out, err := env.run(t, "move", "DP-1")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !strings.Contains(out, "nothing to change") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestEditCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"place", []string{"place", "HDMI-A-1", "0", "1440"}, "output HDMI-A-1 mode 1920x1080@60Hz pos 0 1440 scale 1"},
		{"resize", []string{"resize", "DP-1", "1920x1080"}, "output DP-1 mode 1920x1080@60Hz pos 0 0 scale 1"},
		{"scale absolute", []string{"scale", "DP-1", "2"}, "output DP-1 mode 2560x1440@60Hz pos 0 0 scale 2"},
		{"scale relative", []string{"scale", "DP-1", "--by=0.25"}, "output DP-1 mode 2560x1440@60Hz pos 0 0 scale 1.25"},
		{"rotate to", []string{"rotate", "DP-1", "90"}, "transform 90"},
		{"rotate step", []string{"rotate", "HDMI-A-1"}, "output HDMI-A-1 mode 1920x1080@60Hz pos 2560 0 scale 1 transform 90"},
		{"toggle off", []string{"toggle", "HDMI-A-1", "--off"}, "scale 1 disable"},
		{"reset", []string{"reset"}, "output HDMI-A-1 mode 1920x1080@60Hz pos 2560 0 scale 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			out, err := env.run(t, tt.args...)
			if err != nil {
				t.Fatalf("%v: %v\n%s", tt.args, err, out)
			}
			if got := env.read(t); !strings.Contains(got, tt.want) {
				t.Fatalf("%v: config missing %q:\n%s", tt.args, tt.want, got)
			}
		})
	}
}

func TestEditCommands_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown monitor", []string{"place", "nope", "0", "0"}, geometry.ErrUnknownMonitor},
		{"unknown monitor toggle", []string{"toggle", "nope"}, geometry.ErrUnknownMonitor},
		{"bad size", []string{"resize", "DP-1", "big"}, nil},
		{"bad position", []string{"place", "DP-1", "x", "0"}, nil},
		{"scale needs value", []string{"scale", "DP-1"}, nil},
		{"scale value and delta", []string{"scale", "DP-1", "2", "--by", "0.5"}, nil},
		{"unknown transform", []string{"rotate", "DP-1", "sideways"}, nil},
		{"on and off", []string{"toggle", "DP-1", "--on", "--off"}, nil},
		{"zero size", []string{"resize", "DP-1", "0x1080"}, geometry.ErrInvalidOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			_, err := env.run(t, tt.args...)
			if err == nil {
				t.Fatalf("%v: expected error", tt.args)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("%v: error = %v, want %v", tt.args, err, tt.wantErr)
			}
			if env.read(t) != swayConfig {
				t.Fatalf("%v: failed edit must not write", tt.args)
			}
		})
	}
}

func TestScaleCommand_MonitorWithoutScale(t *testing.T) {
	env := setupTestEnv(t)
	if err := os.WriteFile(env.configPath, []byte(swayConfig+"output eDP-1 disable\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := env.run(t, "scale", "eDP-1", "2")
	if err != nil {
		t.Fatalf("scale: %v\n%s", err, out)
	}
	if got := env.read(t); !strings.Contains(got, "output eDP-1 pos 0 0 scale 2 disable") {
		t.Fatalf("scale not written:\n%s", got)
	}
}

func TestToggleCommand_AlreadyInState(t *testing.T) {
	env := setupTestEnv(t)
	out, err := env.run(t, "toggle", "DP-1", "--on")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !strings.Contains(out, "nothing to change") || env.read(t) != swayConfig {
		t.Fatalf("expected no-op, got:\n%s", out)
	}
}

func TestToggleCommand_LastMonitor(t *testing.T) {
	env := setupTestEnv(t)
	if _, err := env.run(t, "toggle", "HDMI-A-1"); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if _, err := env.run(t, "toggle", "DP-1"); !errors.Is(err, geometry.ErrInvalidOperation) {
		t.Fatalf("disabling the last monitor: error = %v", err)
	}
}

func TestApplyCommand_UpToDate(t *testing.T) {
	env := setupTestEnv(t)
	out, err := env.run(t, "apply", "--json")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	var v reportView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(v.FilesWritten) != 0 || v.Reloaded {
		t.Fatalf("nothing should be written: %+v", v)
	}
	if len(env.runner.calls) != 0 {
		t.Fatalf("no reload expected: %v", env.runner.calls)
	}
}

func TestAssignCommands(t *testing.T) {
	env := setupTestEnv(t)
	if out, err := env.run(t, "assign", "2", "HDMI-A-1"); err != nil {
		t.Fatalf("assign: %v\n%s", err, out)
	}
	got := env.read(t)
	if !strings.Contains(got, "workspace 2 output HDMI-A-1") {
		t.Fatalf("assignment not written:\n%s", got)
	}

	if out, err := env.run(t, "unassign", "1"); err != nil {
		t.Fatalf("unassign: %v\n%s", err, out)
	}
	got = env.read(t)
	if strings.Contains(got, "workspace 1 ") {
		t.Fatalf("workspace 1 still assigned:\n%s", got)
	}

	if _, err := env.run(t, "assign", "3", "nope"); !errors.Is(err, geometry.ErrUnknownMonitor) {
		t.Fatalf("assign to unknown monitor: error = %v", err)
	}
}

func TestConfigCommands(t *testing.T) {
	env := setupTestEnv(t)

	out, err := env.run(t, "config", "path")
	if err != nil || strings.TrimSpace(out) != env.settingsPath {
		t.Fatalf("config path = %q, %v", out, err)
	}

	out, err = env.run(t, "config", "validate")
	if err != nil || !strings.Contains(out, "using defaults") {
		t.Fatalf("validate missing file = %q, %v", out, err)
	}

	out, err = env.run(t, "config", "get")
	if err != nil || !strings.Contains(out, "workspace_count") {
		t.Fatalf("config get keys = %q, %v", out, err)
	}

	if err := os.MkdirAll(filepath.Dir(env.settingsPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(env.settingsPath, []byte("workspace_count: 6\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	out, err = env.run(t, "config", "get", "workspace_count")
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if !strings.Contains(out, "value: 6") || !strings.Contains(out, "file:"+env.settingsPath+":1:18") {
		t.Fatalf("unexpected explain output:\n%s", out)
	}

	out, err = env.run(t, "config", "print")
	if err != nil || !strings.Contains(out, "workspace_count: 6") || !strings.Contains(out, "compositor: sway") {
		t.Fatalf("config print = %q, %v", out, err)
	}

	out, err = env.run(t, "config", "print", "--defaults")
	if err != nil || !strings.Contains(out, "workspace_count: 10") {
		t.Fatalf("config print --defaults = %q, %v", out, err)
	}

	if err := os.WriteFile(env.settingsPath, []byte("workspace_count: -1\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	var verr *config.ValidationError
	if _, err := env.run(t, "config", "validate"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCompositorFlag_Invalid(t *testing.T) {
	env := setupTestEnv(t)
	_, err := executeCommand(t, "show", "--config", env.settingsPath, "--compositor", "gnome", "-c", env.configPath)
	if err == nil {
		t.Fatalf("expected error for unknown compositor")
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"1920x1080", 1920, 1080, false},
		{" 2560X1440 ", 2560, 1440, false},
		{"1920", 0, 0, true},
		{"axb", 0, 0, true},
		{"1920x", 0, 0, true},
	}
	for _, tt := range tests {
		w, h, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if w != tt.w || h != tt.h {
			t.Errorf("parseSize(%q) = %d,%d, want %d,%d", tt.in, w, h, tt.w, tt.h)
		}
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceFile, File: "/x.yaml", Line: 3, Column: 1}, "file:/x.yaml:3:1"},
		{config.Source{Kind: config.SourceFile, File: "/x.yaml"}, "file:/x.yaml"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestNeedsSetup(t *testing.T) {
	t.Cleanup(func() { compositorConfig = "" })

	res := &config.LoadResult{Config: config.DefaultConfig()}
	compositorConfig = ""
	if !needsSetup(res) {
		t.Errorf("missing settings with no config path should need setup")
	}

	compositorConfig = "/tmp/hyprland.conf"
	if needsSetup(res) {
		t.Errorf("--compositor-config should skip setup")
	}

	compositorConfig = ""
	res.Exists = true
	if needsSetup(res) {
		t.Errorf("existing settings should skip setup")
	}
}
