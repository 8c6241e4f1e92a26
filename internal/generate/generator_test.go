package generate

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/xwlm/internal/dialect"
	"github.com/1broseidon/xwlm/internal/extract"
	"github.com/1broseidon/xwlm/internal/fsops"
	"github.com/1broseidon/xwlm/internal/geometry"
	"github.com/1broseidon/xwlm/internal/layout"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func extractModel(t *testing.T, d dialect.Dialect, root string, live []geometry.Monitor) (*extract.Result, *layout.Model) {
	t.Helper()
	res, err := extract.New(d, extract.Options{Env: dialect.MapEnv(nil)}).Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	l, _ := layout.Reconcile(live, res.Monitors(), res.Assignments())
	m, err := layout.New(l, layout.Options{})
	if err != nil {
		t.Fatalf("layout.New: %v", err)
	}
	return res, m
}

func sameMonitors(t *testing.T, got, want []geometry.Monitor) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d monitors, want %d", len(got), len(want))
	}
	byName := map[string]geometry.Monitor{}
	for _, m := range got {
		byName[m.Name] = m
	}
	for _, w := range want {
		g, ok := byName[w.Name]
		if !ok {
			t.Fatalf("monitor %s missing after round trip", w.Name)
		}
		if g.X != w.X || g.Y != w.Y || g.Width != w.Width || g.Height != w.Height ||
			g.Refresh != w.Refresh || g.Scale != w.Scale || g.Transform != w.Transform || g.Enabled != w.Enabled {
			t.Fatalf("monitor %s changed:\n got %+v\nwant %+v", w.Name, g, w)
		}
	}
}

func TestPlan_UnchangedHyprlandConfigIsUntouched(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "hyprland.conf"), strings.Join([]string{
		"# displays",
		"monitor = DP-1, 2560x1440@144, 0x0, 1",
		"    monitor = eDP-1, 2880x1800@60, 2560x0, 2, transform, 0",
		"source = ./workspaces.conf",
		"",
		"input {",
		"    kb_layout = us",
		"}",
	}, "\n")+"\n")
	writeFile(t, filepath.Join(dir, "workspaces.conf"), "workspace = 1, monitor:DP-1\nworkspace = 2, monitor:eDP-1, default:true\n")

	res, m := extractModel(t, dialect.Hyprland{}, root, nil)
	plan, err := New(dialect.Hyprland{}, Options{}).Plan(m.Snapshot(), res)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	// The only normalization is dropping the redundant "transform, 0".
	if len(plan.Files) != 1 || plan.Files[0].Path != res.Source.Root {
		t.Fatalf("unexpected plan: %+v", plan.Files)
	}
	want := "    monitor = eDP-1, 2880x1800@60, 2560x0, 2"
	if !strings.Contains(string(plan.Files[0].After), want+"\n") {
		t.Fatalf("after = %s", plan.Files[0].After)
	}
	if !strings.Contains(string(plan.Files[0].After), "input {\n    kb_layout = us\n}\n") {
		t.Fatalf("unrelated content changed: %s", plan.Files[0].After)
	}
}

func TestApply_HyprlandEditsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "hyprland.conf"), strings.Join([]string{
		"monitor = DP-1, 2560x1440@144, 0x0, 1",
		"monitor = eDP-1, 2880x1800@60, 2560x0, 2",
		"source = ./workspaces.conf",
	}, "\n")+"\n")
	wsFile := writeFile(t, filepath.Join(dir, "workspaces.conf"), "workspace = 1, monitor:DP-1\n# keep me\nworkspace = 2, monitor:eDP-1, default:true\n")

	live := []geometry.Monitor{{Name: "HDMI-A-1", Width: 1920, Height: 1080, Refresh: 60, Scale: 1, Enabled: true}}
	res, m := extractModel(t, dialect.Hyprland{}, root, live)

	if err := m.Apply(layout.Move{Monitor: "eDP-1", DX: 0, DY: 100}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := m.AssignWorkspace("1", "eDP-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	m.UnassignWorkspace("2")
	if err := m.AssignWorkspace("3", "HDMI-A-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	gen := New(dialect.Hyprland{}, Options{})
	if _, err := gen.Apply(m.Snapshot(), res); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if got := readFile(t, wsFile); got != "workspace = 1, monitor:eDP-1\n# keep me\n" {
		t.Fatalf("workspaces.conf = %q", got)
	}
	rootText := readFile(t, root)
	if !strings.Contains(rootText, AppendedHeader+"\nmonitor = HDMI-A-1, 1920x1080@60, ") {
		t.Fatalf("new monitor not appended:\n%s", rootText)
	}
	if !strings.Contains(rootText, "workspace = 3, monitor:HDMI-A-1") {
		t.Fatalf("new assignment not appended:\n%s", rootText)
	}

	again, err := extract.New(dialect.Hyprland{}, extract.Options{Env: dialect.MapEnv(nil)}).Extract(root)
	if err != nil {
		t.Fatalf("re-extract: %v", err)
	}
	snap := m.Snapshot()
	sameMonitors(t, again.Monitors(), snap.Monitors)
	if got, want := assignmentMap(again.Assignments()), assignmentMap(snap.Assignments()); !reflect.DeepEqual(got, want) {
		t.Fatalf("assignments = %v, want %v", got, want)
	}

	// A second apply with nothing changed is a no-op.
	_, m2 := extractModel(t, dialect.Hyprland{}, root, live)
	plan, err := gen.Plan(m2.Snapshot(), again)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !plan.Empty() {
		t.Fatalf("expected empty plan, got:\n%s", plan.Diff())
	}
}

func assignmentMap(as []geometry.Assignment) map[string]string {
	out := map[string]string{}
	for _, a := range as {
		out[a.Workspace] = a.Monitor
	}
	return out
}

func TestApply_SwayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "config"), strings.Join([]string{
		"set $mod Mod4",
		"output DP-1 {",
		"    mode 2560x1440@143.912Hz",
		"    pos 0 0",
		"    scale 1.25",
		"}",
		"output HDMI-A-1 mode 1920x1080 pos 2048 0 transform 90",
		`workspace "1: web" output DP-1`,
		"output eDP-1 disable",
	}, "\r\n")+"\r\n")

	res, m := extractModel(t, dialect.Sway{}, root, nil)
	before := m.Snapshot()
	if _, err := New(dialect.Sway{}, Options{}).Apply(before, res); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	text := readFile(t, root)
	if !strings.HasPrefix(text, "set $mod Mod4\r\noutput DP-1 mode 2560x1440@143.912Hz pos 0 0 scale 1.25\r\n") {
		t.Fatalf("unexpected content:\n%q", text)
	}
	if !strings.HasSuffix(text, "\r\n") || strings.Contains(strings.ReplaceAll(text, "\r\n", ""), "\n") {
		t.Fatalf("line endings not preserved: %q", text)
	}

	again, err := extract.New(dialect.Sway{}, extract.Options{Env: dialect.MapEnv(nil)}).Extract(root)
	if err != nil {
		t.Fatalf("re-extract: %v", err)
	}
	sameMonitors(t, again.Monitors(), before.Monitors)
	if got, want := assignmentMap(again.Assignments()), assignmentMap(before.Assignments()); !reflect.DeepEqual(got, want) {
		t.Fatalf("assignments = %v, want %v", got, want)
	}
}

func TestApply_DisabledMonitorKeepsGeometry(t *testing.T) {
	tests := []struct {
		name     string
		dialect  dialect.Dialect
		file     string
		config   string
		disabled string
	}{
		{
			name:    "hyprland",
			dialect: dialect.Hyprland{},
			file:    "hyprland.conf",
			config: "monitor = DP-1, 1920x1080@60, 0x0, 1\n" +
				"monitor = HDMI-A-1, 1280x1024@60, 1920x0, 1\n",
			disabled: "monitor = HDMI-A-1, 1280x1024@60, 1920x0, 1\nmonitor = HDMI-A-1, disable\n",
		},
		{
			name:    "river",
			dialect: dialect.River{},
			file:    "init",
			config: "wlr-randr --output DP-1 --on --mode 1920x1080@60Hz --pos 0,0 --scale 1\n" +
				"wlr-randr --output HDMI-A-1 --on --mode 1280x1024@60Hz --pos 1920,0 --scale 1 &\n",
			disabled: "wlr-randr --output HDMI-A-1 --mode 1280x1024@60Hz --pos 1920,0 --scale 1 --off &\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeFile(t, filepath.Join(t.TempDir(), tt.file), tt.config)
			res, m := extractModel(t, tt.dialect, root, nil)
			if err := m.Apply(layout.Toggle{Monitor: "HDMI-A-1"}); err != nil {
				t.Fatalf("toggle: %v", err)
			}
			gen := New(tt.dialect, Options{})
			if _, err := gen.Apply(m.Snapshot(), res); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got := readFile(t, root); !strings.HasSuffix(got, tt.disabled) {
				t.Fatalf("config = %q, want suffix %q", got, tt.disabled)
			}

			again, m2 := extractModel(t, tt.dialect, root, nil)
			want := geometry.Monitor{Name: "HDMI-A-1", X: 1920, Width: 1280, Height: 1024, Refresh: 60, Scale: 1}
			sameMonitors(t, again.Monitors(), []geometry.Monitor{
				{Name: "DP-1", Width: 1920, Height: 1080, Refresh: 60, Scale: 1, Enabled: true},
				want,
			})

			plan, err := gen.Plan(m2.Snapshot(), again)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if !plan.Empty() {
				t.Fatalf("second apply not a no-op:\n%s", plan.Diff())
			}
		})
	}
}

func TestPlan_SeparateDisableLineIsStable(t *testing.T) {
	content := "monitor = DP-1, 1920x1080@60, 0x0, 1\n" +
		"monitor = HDMI-A-1, 1280x1024@60, 1920x0, 1\n" +
		"monitor = HDMI-A-1, disable\n"
	root := writeFile(t, filepath.Join(t.TempDir(), "hyprland.conf"), content)
	res, m := extractModel(t, dialect.Hyprland{}, root, nil)

	hdmi, _ := m.Snapshot().Lookup("HDMI-A-1")
	if hdmi.Enabled || hdmi.X != 1920 || hdmi.Width != 1280 {
		t.Fatalf("extracted HDMI-A-1 = %+v", hdmi)
	}
	plan, err := New(dialect.Hyprland{}, Options{}).Plan(m.Snapshot(), res)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !plan.Empty() {
		t.Fatalf("expected empty plan, got:\n%s", plan.Diff())
	}
}

func TestApply_PreservesMixedLineEndings(t *testing.T) {
	content := "# displays\r\n" +
		"monitor = DP-1, 1920x1080, 0x0, 1\n" +
		"monitor = DP-2, 1920x1080, 1920x0, 1\r\n" +
		"# tail"
	root := writeFile(t, filepath.Join(t.TempDir(), "hyprland.conf"), content)
	res, m := extractModel(t, dialect.Hyprland{}, root, nil)
	if err := m.Apply(layout.Move{Monitor: "DP-2", DX: 100}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := New(dialect.Hyprland{}, Options{}).Apply(m.Snapshot(), res); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := "# displays\r\n" +
		"monitor = DP-1, 1920x1080, 0x0, 1\n" +
		"monitor = DP-2, 1920x1080, 2020x0, 1\r\n" +
		"# tail"
	if got := readFile(t, root); got != want {
		t.Fatalf("config = %q, want %q", got, want)
	}
}

func TestPlan_RiverSkipsAssignments(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "init"), "#!/bin/sh\nwlr-randr --output DP-1 --on --mode 1920x1080@60Hz --pos 0,0 --scale 1\nriverctl default-layout rivertile\n")

	res, m := extractModel(t, dialect.River{}, root, nil)
	if err := m.AssignWorkspace("1", "DP-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	plan, err := New(dialect.River{}, Options{}).Plan(m.Snapshot(), res)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !plan.Empty() {
		t.Fatalf("expected no file changes, got:\n%s", plan.Diff())
	}
	if len(plan.Skipped) != 1 {
		t.Fatalf("expected 1 skipped assignment, got %v", plan.Skipped)
	}
}

func TestPlan_StaleSource(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "hyprland.conf"), "monitor = DP-1, 1920x1080, 0x0, 1\n")
	res, m := extractModel(t, dialect.Hyprland{}, root, nil)
	if err := m.Apply(layout.Move{Monitor: "DP-1", DX: 10}); err != nil {
		t.Fatalf("move: %v", err)
	}

	writeFile(t, root, "monitor = DP-1, 1920x1080, 500x0, 1\n")
	_, err := New(dialect.Hyprland{}, Options{}).Plan(m.Snapshot(), res)
	if !errors.Is(err, ErrStaleSource) || !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("expected stale source error, got %v", err)
	}
}

func TestWrite_StaleSincePlan(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "hyprland.conf"), "monitor = DP-1, 1920x1080, 0x0, 1\n")
	res, m := extractModel(t, dialect.Hyprland{}, root, nil)
	_ = m.Apply(layout.Move{Monitor: "DP-1", DX: 10})

	gen := New(dialect.Hyprland{}, Options{})
	plan, err := gen.Plan(m.Snapshot(), res)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	writeFile(t, root, "# edited elsewhere\nmonitor = DP-1, 1920x1080, 0x0, 1\n")
	if err := gen.Write(plan); !errors.Is(err, ErrStaleSource) {
		t.Fatalf("expected ErrStaleSource, got %v", err)
	}
	if got := readFile(t, root); !strings.HasPrefix(got, "# edited elsewhere") {
		t.Fatalf("file overwritten: %q", got)
	}
}

type failingFS struct {
	*fsops.RealFS
}

func (failingFS) AtomicWrite(string, []byte, os.FileMode) error {
	return errors.New("disk full")
}

func TestWrite_FailureLeavesFileIntact(t *testing.T) {
	dir := t.TempDir()
	content := "monitor = DP-1, 1920x1080, 0x0, 1\n"
	root := writeFile(t, filepath.Join(dir, "hyprland.conf"), content)
	res, m := extractModel(t, dialect.Hyprland{}, root, nil)
	_ = m.Apply(layout.Move{Monitor: "DP-1", DX: 10})

	gen := New(dialect.Hyprland{}, Options{FS: failingFS{fsops.NewRealFS()}})
	_, err := gen.Apply(m.Snapshot(), res)
	var werr *WriteError
	if !errors.As(err, &werr) || !errors.Is(err, ErrWriteFailed) || werr.Path != res.Source.Root {
		t.Fatalf("expected WriteError for root, got %v", err)
	}
	if got := readFile(t, root); got != content {
		t.Fatalf("file changed: %q", got)
	}
}

func TestLineDiff(t *testing.T) {
	a := []string{"a", "b", "c", "d", "e", "f", "g"}
	b := []string{"a", "b", "c", "X", "e", "f", "g"}
	got := LineDiff(a, b, 1)
	want := []DiffLine{
		{Kind: DiffContext, Text: "..."},
		{Kind: DiffContext, Text: "c"},
		{Kind: DiffRemoved, Text: "d"},
		{Kind: DiffAdded, Text: "X"},
		{Kind: DiffContext, Text: "e"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LineDiff = %+v", got)
	}
	if LineDiff(a, a, 2) != nil {
		t.Fatalf("equal inputs should produce no diff")
	}
}

func TestConsolidate_River(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "init"), "#!/bin/sh\n"+
		"wlr-randr --output DP-1 --on --mode 1920x1080@60Hz --pos 0,0 --scale 1 &\n"+
		"riverctl default-layout rivertile\n"+
		"wlr-randr --output HDMI-A-1 --off\n")
	res, m := extractModel(t, dialect.River{}, root, nil)
	if err := m.AssignWorkspace("1", "DP-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	gen := New(dialect.River{}, Options{})
	plan, err := gen.Consolidate(m.Snapshot(), res, "")
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if len(plan.Skipped) != 1 {
		t.Fatalf("expected the assignment to be skipped, got %v", plan.Skipped)
	}
	if err := gen.Write(plan); err != nil {
		t.Fatalf("Write: %v", err)
	}

	target := filepath.Join(filepath.Dir(res.Source.Root), "outputs")
	want := AppendedHeader + "\n" +
		"wlr-randr --output DP-1 --on --mode 1920x1080@60Hz --pos 0,0 --scale 1 &\n" +
		"wlr-randr --output HDMI-A-1 --off\n"
	if got := readFile(t, target); got != want {
		t.Fatalf("outputs = %q", got)
	}
	wantRoot := "#!/bin/sh\nriverctl default-layout rivertile\n\n" + AppendedHeader + "\n. " + target + "\n"
	if got := readFile(t, res.Source.Root); got != wantRoot {
		t.Fatalf("init = %q", got)
	}

	again, err := extract.New(dialect.River{}, extract.Options{Env: dialect.MapEnv(nil)}).Extract(root)
	if err != nil {
		t.Fatalf("re-extract: %v", err)
	}
	sameMonitors(t, again.Monitors(), m.Snapshot().Monitors)

	if _, err := gen.Consolidate(m.Snapshot(), again, ""); !errors.Is(err, ErrTargetExists) {
		t.Fatalf("target already included: expected ErrTargetExists, got %v", err)
	}
}

func TestConsolidate_RefusesExistingFile(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "hyprland.conf"), "monitor = DP-1, 1920x1080, 0x0, 1\n")
	writeFile(t, filepath.Join(dir, "monitors.conf"), "# mine\n")
	res, m := extractModel(t, dialect.Hyprland{}, root, nil)

	_, err := New(dialect.Hyprland{}, Options{}).Consolidate(m.Snapshot(), res, "monitors.conf")
	if !errors.Is(err, ErrTargetExists) || !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("expected ErrTargetExists, got %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "monitors.conf")); got != "# mine\n" {
		t.Fatalf("existing file changed: %q", got)
	}
}

func TestWrite_CreatedFileAppearedSincePlan(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "hyprland.conf"), "monitor = DP-1, 1920x1080, 0x0, 1\n")
	res, m := extractModel(t, dialect.Hyprland{}, root, nil)

	gen := New(dialect.Hyprland{}, Options{})
	plan, err := gen.Consolidate(m.Snapshot(), res, "")
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	writeFile(t, filepath.Join(dir, "monitors.conf"), "# raced\n")
	if err := gen.Write(plan); !errors.Is(err, ErrStaleSource) {
		t.Fatalf("expected ErrStaleSource, got %v", err)
	}
	if got := readFile(t, root); got != "monitor = DP-1, 1920x1080, 0x0, 1\n" {
		t.Fatalf("root changed: %q", got)
	}
}
