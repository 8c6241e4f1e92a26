package dialect

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1broseidon/xwlm/internal/geometry"
)

// Hyprland speaks hyprland.conf:
//
//	monitor = DP-1, 2560x1440@144, 0x0, 1, transform, 1
//	monitor = HDMI-A-1, disable
//	workspace = 1, monitor:DP-1, default:true
//	source = ~/.config/hypr/monitors.conf
type Hyprland struct{}

func (Hyprland) Kind() Kind { return KindHyprland }

func (Hyprland) Detect(env Env) Confidence {
	if nonEmpty(env, "HYPRLAND_INSTANCE_SIGNATURE") {
		return ConfidenceCertain
	}
	if desktopHas(env, "Hyprland") {
		return ConfidenceLikely
	}
	return ConfidenceNone
}

func (Hyprland) DefaultConfigPaths(env Env) []string {
	return []string{filepath.Join(configHome(env), "hypr", "hyprland.conf")}
}

// hyprKeyValue splits "key = value". Keys are matched case-sensitively as
// Hyprland does.
func hyprKeyValue(line string) (string, string, bool) {
	line = stripComment(line)
	k, v, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(k), strings.TrimSpace(v), true
}

func hyprArgs(v string) []string {
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (Hyprland) IsMonitorLine(line string) bool {
	k, v, ok := hyprKeyValue(line)
	if !ok || k != "monitor" {
		return false
	}
	args := hyprArgs(v)
	if args[0] == "" {
		// Catch-all rule for unnamed outputs.
		return false
	}
	if len(args) > 1 && args[1] == "addreserved" {
		return false
	}
	return true
}

func (Hyprland) ParseMonitorLine(line string) (geometry.Monitor, error) {
	k, v, ok := hyprKeyValue(line)
	if !ok || k != "monitor" {
		return geometry.Monitor{}, fmt.Errorf("%w: not a monitor line", ErrMalformedLine)
	}
	args := hyprArgs(v)
	m := geometry.Monitor{Name: args[0]}
	if m.Name == "" {
		return m, fmt.Errorf("%w: monitor name is empty", ErrMalformedLine)
	}
	if len(args) == 2 && args[1] == "disable" {
		return m, nil
	}
	if len(args) < 4 {
		return m, fmt.Errorf("%w: monitor %s needs resolution, position and scale", ErrMalformedLine, m.Name)
	}
	m.Enabled = true

	switch mode := args[1]; {
	case mode == "preferred" || mode == "highres" || mode == "highrr" || mode == "maxwidth":
	default:
		w, h, r, err := parseMode(mode)
		if err != nil {
			return m, err
		}
		m.Width, m.Height, m.Refresh = w, h, r
	}

	if pos := args[2]; !strings.HasPrefix(pos, "auto") {
		x, y, err := parsePair(pos, "x")
		if err != nil {
			return m, err
		}
		m.X, m.Y = x, y
	}

	if args[3] == "auto" {
		m.Scale = 1
	} else {
		s, err := parseScale(args[3])
		if err != nil {
			return m, err
		}
		m.Scale = s
	}

	rest := args[4:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == "transform" && i+1 < len(rest) {
			n, err := strconv.Atoi(rest[i+1])
			if err != nil {
				return m, fmt.Errorf("%w: invalid transform %q", ErrMalformedLine, rest[i+1])
			}
			t, err := geometry.TransformFromIndex(n)
			if err != nil {
				return m, fmt.Errorf("%w: %v", ErrMalformedLine, err)
			}
			m.Transform = t
			i++
			continue
		}
		m.Options = append(m.Options, rest[i])
	}
	return m, nil
}

func (Hyprland) IsWorkspaceLine(line string) bool {
	k, v, ok := hyprKeyValue(line)
	if !ok || k != "workspace" {
		return false
	}
	for _, rule := range hyprArgs(v)[1:] {
		if strings.HasPrefix(rule, "monitor:") {
			return true
		}
	}
	return false
}

func (Hyprland) ParseWorkspaceLine(line string) (geometry.Assignment, error) {
	k, v, ok := hyprKeyValue(line)
	if !ok || k != "workspace" {
		return geometry.Assignment{}, fmt.Errorf("%w: not a workspace line", ErrMalformedLine)
	}
	args := hyprArgs(v)
	a := geometry.Assignment{Workspace: args[0]}
	if a.Workspace == "" {
		return a, fmt.Errorf("%w: workspace id is empty", ErrMalformedLine)
	}
	for _, rule := range args[1:] {
		if name, ok := strings.CutPrefix(rule, "monitor:"); ok && a.Monitor == "" {
			a.Monitor = strings.TrimSpace(name)
			continue
		}
		a.Options = append(a.Options, rule)
	}
	if a.Monitor == "" {
		return a, fmt.Errorf("%w: workspace %s has no monitor rule", ErrMalformedLine, a.Workspace)
	}
	return a, nil
}

func (Hyprland) IncludeDirective(line string) (string, bool) {
	k, v, ok := hyprKeyValue(line)
	if !ok || k != "source" || v == "" {
		return "", false
	}
	return v, true
}

func (Hyprland) RenderInclude(path string) string {
	return "source = " + path
}

// RenderMonitor renders a disabled monitor that still has geometry as its
// full rule followed by a disable rule, so the geometry survives on disk.
func (Hyprland) RenderMonitor(m geometry.Monitor) string {
	disable := fmt.Sprintf("monitor = %s, disable", m.Name)
	if !m.Enabled && !m.HasGeometry() {
		return disable
	}
	mode := "preferred"
	if m.Width > 0 && m.Height > 0 {
		mode = fmt.Sprintf("%dx%d", m.Width, m.Height)
		if m.Refresh > 0 {
			mode += "@" + formatRefresh(m.Refresh)
		}
	}
	parts := []string{m.Name, mode, fmt.Sprintf("%dx%d", m.X, m.Y), formatScale(m.Scale)}
	if m.Transform != geometry.TransformNormal && m.Transform.Valid() {
		parts = append(parts, "transform", strconv.Itoa(int(m.Transform)))
	}
	parts = append(parts, m.Options...)
	line := "monitor = " + strings.Join(parts, ", ")
	if !m.Enabled {
		line += "\n" + disable
	}
	return line
}

func (Hyprland) RenderWorkspace(a geometry.Assignment) (string, error) {
	parts := append([]string{a.Workspace, "monitor:" + a.Monitor}, a.Options...)
	return "workspace = " + strings.Join(parts, ", "), nil
}

func (Hyprland) ReloadCommand(string) []string {
	return []string{"hyprctl", "reload"}
}
