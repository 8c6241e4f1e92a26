package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/1broseidon/xwlm/internal/geometry"
)

// Hyprctl reads `hyprctl monitors all -j`.
type Hyprctl struct {
	Runner Runner
}

func (Hyprctl) Name() string { return "hyprctl" }

func (h Hyprctl) Monitors(ctx context.Context) ([]geometry.Monitor, error) {
	out, err := h.Runner.Output(ctx, []string{"hyprctl", "monitors", "all", "-j"})
	if err != nil {
		return nil, err
	}
	return parseHyprctl(out)
}

type hyprMonitor struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	RefreshRate float64 `json:"refreshRate"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Scale       float64 `json:"scale"`
	Transform   int     `json:"transform"`
	Focused     bool    `json:"focused"`
	Disabled    bool    `json:"disabled"`
}

func parseHyprctl(data []byte) ([]geometry.Monitor, error) {
	var raw []hyprMonitor
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode hyprctl output: %w", err)
	}
	out := make([]geometry.Monitor, 0, len(raw))
	for _, r := range raw {
		t, err := geometry.TransformFromIndex(r.Transform)
		if err != nil {
			t = geometry.TransformNormal
		}
		out = append(out, geometry.Monitor{
			Name:        r.Name,
			Description: r.Description,
			X:           r.X,
			Y:           r.Y,
			Width:       r.Width,
			Height:      r.Height,
			Refresh:     roundRefresh(r.RefreshRate),
			Scale:       r.Scale,
			Transform:   t,
			Enabled:     !r.Disabled,
			Primary:     r.Focused,
		})
	}
	return out, nil
}

// Swaymsg reads `swaymsg -t get_outputs -r`.
type Swaymsg struct {
	Runner Runner
}

func (Swaymsg) Name() string { return "swaymsg" }

func (s Swaymsg) Monitors(ctx context.Context) ([]geometry.Monitor, error) {
	out, err := s.Runner.Output(ctx, []string{"swaymsg", "-t", "get_outputs", "-r"})
	if err != nil {
		return nil, err
	}
	return parseSwaymsg(out)
}

type swayMode struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	Refresh int `json:"refresh"` // mHz
}

type swayOutput struct {
	Name        string     `json:"name"`
	Make        string     `json:"make"`
	Model       string     `json:"model"`
	Serial      string     `json:"serial"`
	Active      bool       `json:"active"`
	Focused     bool       `json:"focused"`
	Scale       float64    `json:"scale"`
	Transform   string     `json:"transform"`
	Modes       []swayMode `json:"modes"`
	CurrentMode *swayMode  `json:"current_mode"`
	Rect        struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"rect"`
}

func parseSwaymsg(data []byte) ([]geometry.Monitor, error) {
	var raw []swayOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode swaymsg output: %w", err)
	}
	out := make([]geometry.Monitor, 0, len(raw))
	for _, r := range raw {
		m := geometry.Monitor{
			Name:        r.Name,
			Description: describe(r.Make, r.Model, r.Serial),
			X:           r.Rect.X,
			Y:           r.Rect.Y,
			Scale:       r.Scale,
			Enabled:     r.Active,
			Primary:     r.Focused,
		}
		mode := r.CurrentMode
		if mode == nil && len(r.Modes) > 0 {
			mode = &r.Modes[0]
		}
		if mode != nil {
			m.Width, m.Height = mode.Width, mode.Height
			m.Refresh = roundRefresh(float64(mode.Refresh) / 1000)
		}
		if t, err := geometry.ParseTransformName(r.Transform); err == nil {
			m.Transform = t
		}
		if !(m.Scale > 0) {
			m.Scale = 1
		}
		out = append(out, m)
	}
	return out, nil
}

// WlrRandr reads `wlr-randr --json`. It works on any wlroots compositor.
type WlrRandr struct {
	Runner Runner
}

func (WlrRandr) Name() string { return "wlr-randr" }

func (w WlrRandr) Monitors(ctx context.Context) ([]geometry.Monitor, error) {
	out, err := w.Runner.Output(ctx, []string{"wlr-randr", "--json"})
	if err != nil {
		return nil, err
	}
	return parseWlrRandr(out)
}

type wlrMode struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Refresh   float64 `json:"refresh"`
	Preferred bool    `json:"preferred"`
	Current   bool    `json:"current"`
}

type wlrOutput struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Enabled     bool      `json:"enabled"`
	Modes       []wlrMode `json:"modes"`
	Position    *struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"position"`
	Transform string  `json:"transform"`
	Scale     float64 `json:"scale"`
}

func parseWlrRandr(data []byte) ([]geometry.Monitor, error) {
	var raw []wlrOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode wlr-randr output: %w", err)
	}
	out := make([]geometry.Monitor, 0, len(raw))
	for _, r := range raw {
		m := geometry.Monitor{
			Name:        r.Name,
			Description: r.Description,
			Scale:       r.Scale,
			Enabled:     r.Enabled,
		}
		if r.Position != nil {
			m.X, m.Y = r.Position.X, r.Position.Y
		}
		if mode, ok := pickMode(r.Modes); ok {
			m.Width, m.Height = mode.Width, mode.Height
			m.Refresh = roundRefresh(mode.Refresh)
		}
		if t, err := geometry.ParseTransformName(r.Transform); err == nil {
			m.Transform = t
		}
		if !(m.Scale > 0) {
			m.Scale = 1
		}
		out = append(out, m)
	}
	return out, nil
}

// pickMode prefers the current mode, then the preferred one.
func pickMode(modes []wlrMode) (wlrMode, bool) {
	for _, m := range modes {
		if m.Current {
			return m, true
		}
	}
	for _, m := range modes {
		if m.Preferred {
			return m, true
		}
	}
	if len(modes) > 0 {
		return modes[0], true
	}
	return wlrMode{}, false
}

func describe(parts ...string) string {
	var kept []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && p != "Unknown" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// roundRefresh keeps three decimals, the precision compositors print.
func roundRefresh(hz float64) float64 {
	return math.Round(hz*1000) / 1000
}
