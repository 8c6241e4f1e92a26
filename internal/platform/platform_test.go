package platform

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/xwlm/internal/dialect"
	"github.com/1broseidon/xwlm/internal/geometry"
)

type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   [][]string
}

func (f *fakeRunner) Output(ctx context.Context, argv []string) ([]byte, error) {
	f.calls = append(f.calls, argv)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := strings.Join(argv, " ")
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	out, ok := f.outputs[key]
	if !ok {
		return nil, ErrUnavailable
	}
	return []byte(out), nil
}

const hyprctlJSON = `[
  {"id": 0, "name": "DP-1", "description": "Dell U2720Q", "width": 3840, "height": 2160,
   "refreshRate": 59.99700, "x": 0, "y": 0, "scale": 1.50, "transform": 0, "focused": true, "disabled": false},
  {"id": 1, "name": "HDMI-A-1", "description": "", "width": 1920, "height": 1080,
   "refreshRate": 60.0, "x": 2560, "y": 0, "scale": 1.00, "transform": 1, "focused": false, "disabled": true}
]`

const swayJSON = `[
  {"name": "eDP-1", "make": "Sharp", "model": "LQ134N1", "serial": "Unknown", "active": true, "focused": true,
   "scale": 2.0, "transform": "90",
   "modes": [{"width": 1920, "height": 1200, "refresh": 59950}],
   "current_mode": {"width": 1920, "height": 1200, "refresh": 59950},
   "rect": {"x": 0, "y": 0, "width": 600, "height": 960}},
  {"name": "DP-2", "make": "", "model": "", "serial": "", "active": false, "scale": -1, "transform": "normal",
   "modes": [{"width": 2560, "height": 1440, "refresh": 143912}],
   "rect": {"x": 0, "y": 0, "width": 0, "height": 0}}
]`

const wlrJSON = `[
  {"name": "DP-1", "description": "Some Monitor", "enabled": true,
   "modes": [
     {"width": 1920, "height": 1080, "refresh": 60.0, "preferred": true, "current": false},
     {"width": 1280, "height": 720, "refresh": 75.0, "preferred": false, "current": true}
   ],
   "position": {"x": 100, "y": 200}, "transform": "flipped-90", "scale": 1.25},
  {"name": "HDMI-A-1", "enabled": false,
   "modes": [{"width": 1920, "height": 1080, "refresh": 50.0, "preferred": true, "current": false}],
   "transform": "normal", "scale": 0}
]`

func TestParseHyprctl(t *testing.T) {
	monitors, err := parseHyprctl([]byte(hyprctlJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(monitors) != 2 {
		t.Fatalf("expected 2 monitors, got %d", len(monitors))
	}
	dp := monitors[0]
	if dp.Name != "DP-1" || dp.Width != 3840 || dp.Refresh != 59.997 || dp.Scale != 1.5 || !dp.Enabled || !dp.Primary {
		t.Fatalf("DP-1 = %+v", dp)
	}
	hdmi := monitors[1]
	if hdmi.Enabled || hdmi.Transform != geometry.Transform90 || hdmi.X != 2560 {
		t.Fatalf("HDMI-A-1 = %+v", hdmi)
	}
}

func TestParseSwaymsg(t *testing.T) {
	monitors, err := parseSwaymsg([]byte(swayJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	edp := monitors[0]
	if edp.Description != "Sharp LQ134N1" || edp.Refresh != 59.95 || edp.Transform != geometry.Transform90 || edp.Scale != 2 {
		t.Fatalf("eDP-1 = %+v", edp)
	}
	dp := monitors[1]
	if dp.Enabled || dp.Width != 2560 || dp.Refresh != 143.912 || dp.Scale != 1 {
		t.Fatalf("DP-2 = %+v", dp)
	}
}

func TestParseWlrRandr(t *testing.T) {
	monitors, err := parseWlrRandr([]byte(wlrJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	dp := monitors[0]
	if dp.Width != 1280 || dp.Refresh != 75 || dp.X != 100 || dp.Y != 200 || dp.Transform != geometry.TransformFlipped90 || dp.Scale != 1.25 {
		t.Fatalf("DP-1 = %+v", dp)
	}
	hdmi := monitors[1]
	if hdmi.Enabled || hdmi.Width != 1920 || hdmi.Refresh != 50 || hdmi.Scale != 1 {
		t.Fatalf("HDMI-A-1 = %+v", hdmi)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	for name, parse := range map[string]func([]byte) ([]geometry.Monitor, error){
		"hyprctl":   parseHyprctl,
		"swaymsg":   parseSwaymsg,
		"wlr-randr": parseWlrRandr,
	} {
		if _, err := parse([]byte("not json")); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestChain_FallsBackInOrder(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{"wlr-randr --json": wlrJSON},
		errs:    map[string]error{"hyprctl monitors all -j": errors.New("socket not found")},
	}
	src := ForDialect(dialect.KindHyprland, runner, nil)
	monitors, err := src.Monitors(context.Background())
	if err != nil {
		t.Fatalf("Monitors: %v", err)
	}
	if len(monitors) != 2 || monitors[0].Name != "DP-1" {
		t.Fatalf("unexpected monitors: %+v", monitors)
	}
	if len(runner.calls) != 2 || runner.calls[0][0] != "hyprctl" || runner.calls[1][0] != "wlr-randr" {
		t.Fatalf("calls = %v", runner.calls)
	}
}

type failingSource struct{ name string }

func (f failingSource) Name() string { return f.name }
func (f failingSource) Monitors(context.Context) ([]geometry.Monitor, error) {
	return nil, ErrUnavailable
}

func TestChain_AllFail(t *testing.T) {
	c := Chain{Sources: []Source{failingSource{"a"}, failingSource{"b"}}}
	_, err := c.Monitors(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "a:") || !strings.Contains(err.Error(), "b:") {
		t.Fatalf("expected both source names in %v", err)
	}
	if c.Name() != "a,b" {
		t.Fatalf("name = %s", c.Name())
	}
}

func TestReload(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"swaymsg reload": ""}}
	if err := Reload(context.Background(), runner, []string{"swaymsg", "reload"}, time.Second); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Reload(ctx, runner, []string{"swaymsg", "reload"}, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
