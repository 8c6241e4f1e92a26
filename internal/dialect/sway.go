package dialect

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1broseidon/xwlm/internal/geometry"
)

// Sway speaks the sway config language:
//
//	output DP-1 mode 2560x1440@144Hz pos 0 0 scale 1 transform 90
//	output HDMI-A-1 disable
//	output eDP-1 {
//	    mode 2880x1800
//	    pos 2560 0
//	}
//	workspace 1 output DP-1
//	include ~/.config/sway/config.d/*
type Sway struct{}

func (Sway) Kind() Kind { return KindSway }

func (Sway) Detect(env Env) Confidence {
	if nonEmpty(env, "SWAYSOCK") {
		return ConfidenceCertain
	}
	if desktopHas(env, "sway") {
		return ConfidenceLikely
	}
	return ConfidenceNone
}

func (Sway) DefaultConfigPaths(env Env) []string {
	return []string{
		filepath.Join(configHome(env), "sway", "config"),
		filepath.Join(homeDir(env), ".sway", "config"),
		"/etc/sway/config",
	}
}

// Fold joins "output NAME { ... }" blocks into a single statement. Other
// lines, including other kinds of blocks, stay one statement per line.
func (Sway) Fold(lines []string) []Statement {
	var out []Statement
	for i := 0; i < len(lines); i++ {
		text := stripComment(lines[i])
		header, body, open := strings.Cut(text, "{")
		if !open || len(fields(header)) != 2 || fields(header)[0] != "output" {
			out = append(out, Statement{Text: lines[i], Line: i, EndLine: i})
			continue
		}

		parts := []string{strings.TrimSpace(header)}
		end := i
		for {
			if before, _, closed := strings.Cut(body, "}"); closed {
				parts = append(parts, before)
				break
			}
			parts = append(parts, body)
			if end+1 >= len(lines) {
				break
			}
			end++
			body = stripComment(lines[end])
		}
		joined := strings.ReplaceAll(strings.Join(parts, " "), ";", " ")
		out = append(out, Statement{Text: strings.Join(strings.Fields(joined), " "), Line: i, EndLine: end})
		i = end
	}
	return out
}

var swayOutputKeys = map[string]bool{
	"mode": true, "resolution": true, "res": true,
	"pos": true, "position": true,
	"scale": true, "transform": true,
	"enable": true, "disable": true,
}

func (Sway) IsMonitorLine(line string) bool {
	tokens := fields(stripComment(line))
	if len(tokens) < 3 || tokens[0] != "output" || tokens[1] == "*" {
		return false
	}
	for _, t := range tokens[2:] {
		if swayOutputKeys[t] {
			return true
		}
	}
	return false
}

func (Sway) ParseMonitorLine(line string) (geometry.Monitor, error) {
	tokens := fields(stripComment(line))
	if len(tokens) < 3 || tokens[0] != "output" {
		return geometry.Monitor{}, fmt.Errorf("%w: not an output line", ErrMalformedLine)
	}
	m := geometry.Monitor{Name: tokens[1], Enabled: true}
	hasGeometry := false

	next := func(i int, what string) (string, error) {
		if i >= len(tokens) {
			return "", fmt.Errorf("%w: output %s: %s needs a value", ErrMalformedLine, m.Name, what)
		}
		return tokens[i], nil
	}

	for i := 2; i < len(tokens); i++ {
		switch key := tokens[i]; key {
		case "mode", "resolution", "res":
			i++
			if i < len(tokens) && strings.HasPrefix(tokens[i], "--") {
				i++
			}
			v, err := next(i, key)
			if err != nil {
				return m, err
			}
			w, h, r, err := parseMode(v)
			if err != nil {
				return m, err
			}
			m.Width, m.Height, m.Refresh = w, h, r
			hasGeometry = true
		case "pos", "position":
			xs, err := next(i+1, key)
			if err != nil {
				return m, err
			}
			ys, err := next(i+2, key)
			if err != nil {
				return m, err
			}
			x, err1 := strconv.Atoi(xs)
			y, err2 := strconv.Atoi(ys)
			if err1 != nil || err2 != nil {
				return m, fmt.Errorf("%w: output %s: invalid position %s %s", ErrMalformedLine, m.Name, xs, ys)
			}
			m.X, m.Y = x, y
			hasGeometry = true
			i += 2
		case "scale":
			v, err := next(i+1, key)
			if err != nil {
				return m, err
			}
			s, err := parseScale(v)
			if err != nil {
				return m, err
			}
			m.Scale = s
			hasGeometry = true
			i++
		case "transform":
			v, err := next(i+1, key)
			if err != nil {
				return m, err
			}
			t, err := geometry.ParseTransformName(v)
			if err != nil {
				return m, fmt.Errorf("%w: output %s: %v", ErrMalformedLine, m.Name, err)
			}
			m.Transform = t
			hasGeometry = true
			i++
			if i+1 < len(tokens) && (tokens[i+1] == "clockwise" || tokens[i+1] == "anticlockwise") {
				i++
			}
		case "enable":
			m.Enabled = true
		case "disable":
			m.Enabled = false
		default:
			opt := []string{quote(key)}
			for i+1 < len(tokens) && !swayOutputKeys[tokens[i+1]] {
				i++
				opt = append(opt, quote(tokens[i]))
			}
			m.Options = append(m.Options, strings.Join(opt, " "))
		}
	}

	if hasGeometry && m.Scale == 0 {
		m.Scale = 1
	}
	return m, nil
}

func (Sway) IsWorkspaceLine(line string) bool {
	tokens := fields(stripComment(line))
	if len(tokens) < 4 || tokens[0] != "workspace" {
		return false
	}
	for i := 2; i < len(tokens)-1; i++ {
		if tokens[i] == "output" {
			return true
		}
	}
	return false
}

func (Sway) ParseWorkspaceLine(line string) (geometry.Assignment, error) {
	tokens := fields(stripComment(line))
	if len(tokens) < 2 || tokens[0] != "workspace" {
		return geometry.Assignment{}, fmt.Errorf("%w: not a workspace line", ErrMalformedLine)
	}
	idx := -1
	for i := 2; i < len(tokens); i++ {
		if tokens[i] == "output" {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(tokens) {
		return geometry.Assignment{}, fmt.Errorf("%w: workspace line has no output", ErrMalformedLine)
	}
	a := geometry.Assignment{
		Workspace: strings.Join(tokens[1:idx], " "),
		Monitor:   tokens[idx+1],
	}
	a.Options = append(a.Options, tokens[idx+2:]...)
	return a, nil
}

func (Sway) IncludeDirective(line string) (string, bool) {
	tokens := fields(stripComment(line))
	if len(tokens) < 2 || tokens[0] != "include" {
		return "", false
	}
	return strings.Join(tokens[1:], " "), true
}

func (Sway) RenderInclude(path string) string {
	return "include " + quote(path)
}

func (Sway) RenderMonitor(m geometry.Monitor) string {
	var b strings.Builder
	b.WriteString("output ")
	b.WriteString(quote(m.Name))
	if !m.Enabled && !m.HasGeometry() {
		b.WriteString(" disable")
		return b.String()
	}
	if m.Width > 0 && m.Height > 0 {
		fmt.Fprintf(&b, " mode %dx%d", m.Width, m.Height)
		if m.Refresh > 0 {
			b.WriteString("@" + formatRefresh(m.Refresh) + "Hz")
		}
	}
	fmt.Fprintf(&b, " pos %d %d scale %s", m.X, m.Y, formatScale(m.Scale))
	if m.Transform != geometry.TransformNormal && m.Transform.Valid() {
		b.WriteString(" transform " + m.Transform.String())
	}
	for _, opt := range m.Options {
		b.WriteString(" " + opt)
	}
	if !m.Enabled {
		b.WriteString(" disable")
	}
	return b.String()
}

func (Sway) RenderWorkspace(a geometry.Assignment) (string, error) {
	line := "workspace " + quote(a.Workspace) + " output " + quote(a.Monitor)
	for _, o := range a.Options {
		line += " " + quote(o)
	}
	return line, nil
}

func (Sway) ReloadCommand(string) []string {
	return []string{"swaymsg", "reload"}
}
