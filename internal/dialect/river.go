package dialect

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/1broseidon/xwlm/internal/geometry"
)

// River configures outputs from its init script through wlr-randr:
//
//	wlr-randr --output DP-1 --on --mode 2560x1440@144Hz --pos 0,0 --scale 1
//	wlr-randr --output HDMI-A-1 --off
//	wlr-randr --output eDP-1 --mode 2880x1800 --pos 2560,0 --scale 2 --off &
//	. ~/.config/river/monitors.sh
//
// River has no per-output workspace configuration.
type River struct{}

func (River) Kind() Kind { return KindRiver }

func (River) Detect(env Env) Confidence {
	if desktopHas(env, "river") {
		return ConfidenceLikely
	}
	if v, _ := env("XDG_SESSION_DESKTOP"); strings.EqualFold(v, "river") {
		return ConfidencePossible
	}
	return ConfidenceNone
}

func (River) DefaultConfigPaths(env Env) []string {
	return []string{filepath.Join(configHome(env), "river", "init")}
}

// riverTokens returns the wlr-randr arguments of a line and the trailing
// shell separator ("&" or ";"), if any.
func riverTokens(line string) ([]string, string) {
	tokens := fields(stripComment(line))
	sep := ""
	if n := len(tokens); n > 0 && (tokens[n-1] == "&" || tokens[n-1] == ";") {
		sep = tokens[n-1]
		tokens = tokens[:n-1]
	}
	if n := len(tokens); n > 0 {
		last := tokens[n-1]
		if trimmed := strings.TrimRight(last, ";&"); trimmed != last {
			if sep == "" {
				sep = last[len(last)-1:]
			}
			tokens[n-1] = trimmed
		}
	}
	if len(tokens) < 3 || filepath.Base(tokens[0]) != "wlr-randr" {
		return nil, ""
	}
	return tokens[1:], sep
}

func (River) IsMonitorLine(line string) bool {
	args, _ := riverTokens(line)
	for _, t := range args {
		if t == "--output" {
			return true
		}
	}
	return false
}

var riverFlags = map[string]bool{
	"--output": true, "--on": true, "--off": true,
	"--mode": true, "--custom-mode": true, "--preferred": true,
	"--pos": true, "--scale": true, "--transform": true,
}

func (River) ParseMonitorLine(line string) (geometry.Monitor, error) {
	args, sep := riverTokens(line)
	if args == nil {
		return geometry.Monitor{}, fmt.Errorf("%w: not a wlr-randr line", ErrMalformedLine)
	}
	var m geometry.Monitor
	m.Enabled = true
	hasGeometry := false

	value := func(i int, flag string) (string, error) {
		if i >= len(args) || strings.HasPrefix(args[i], "--") {
			return "", fmt.Errorf("%w: %s needs a value", ErrMalformedLine, flag)
		}
		return args[i], nil
	}

	for i := 0; i < len(args); i++ {
		switch flag := args[i]; flag {
		case "--output":
			v, err := value(i+1, flag)
			if err != nil {
				return m, err
			}
			if m.Name != "" {
				return m, fmt.Errorf("%w: more than one --output on a line", ErrMalformedLine)
			}
			m.Name = v
			i++
		case "--on":
			m.Enabled = true
		case "--off":
			m.Enabled = false
		case "--preferred":
			hasGeometry = true
		case "--mode", "--custom-mode":
			v, err := value(i+1, flag)
			if err != nil {
				return m, err
			}
			w, h, r, err := parseMode(v)
			if err != nil {
				return m, err
			}
			m.Width, m.Height, m.Refresh = w, h, r
			hasGeometry = true
			i++
		case "--pos":
			v, err := value(i+1, flag)
			if err != nil {
				return m, err
			}
			x, y, err := parsePair(v, ",")
			if err != nil {
				return m, err
			}
			m.X, m.Y = x, y
			hasGeometry = true
			i++
		case "--scale":
			v, err := value(i+1, flag)
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
		case "--transform":
			v, err := value(i+1, flag)
			if err != nil {
				return m, err
			}
			t, err := geometry.ParseTransformName(v)
			if err != nil {
				return m, fmt.Errorf("%w: %v", ErrMalformedLine, err)
			}
			m.Transform = t
			hasGeometry = true
			i++
		default:
			opt := []string{quote(flag)}
			for i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
				i++
				opt = append(opt, quote(args[i]))
			}
			m.Options = append(m.Options, strings.Join(opt, " "))
		}
	}

	if m.Name == "" {
		return m, fmt.Errorf("%w: wlr-randr line has no --output", ErrMalformedLine)
	}
	if hasGeometry && m.Scale == 0 {
		m.Scale = 1
	}
	if sep != "" {
		// Kept last so rendering puts it back at the end of the line.
		m.Options = append(m.Options, sep)
	}
	return m, nil
}

func (River) IsWorkspaceLine(string) bool { return false }

func (River) ParseWorkspaceLine(string) (geometry.Assignment, error) {
	return geometry.Assignment{}, ErrWorkspacesUnsupported
}

func (River) IncludeDirective(line string) (string, bool) {
	tokens := fields(stripComment(line))
	if len(tokens) != 2 || (tokens[0] != "source" && tokens[0] != ".") {
		return "", false
	}
	return tokens[1], true
}

func (River) RenderInclude(path string) string {
	return ". " + shellQuote(path)
}

// RenderMonitor keeps the geometry of a disabled monitor on its line,
// followed by --off.
func (River) RenderMonitor(m geometry.Monitor) string {
	var b strings.Builder
	b.WriteString("wlr-randr --output ")
	b.WriteString(quote(m.Name))
	if !m.Enabled && !m.HasGeometry() {
		b.WriteString(" --off")
		writeRiverOptions(&b, m.Options)
		return b.String()
	}
	if m.Enabled {
		b.WriteString(" --on")
	}
	if m.Width > 0 && m.Height > 0 {
		fmt.Fprintf(&b, " --mode %dx%d", m.Width, m.Height)
		if m.Refresh > 0 {
			b.WriteString("@" + formatRefresh(m.Refresh) + "Hz")
		}
	} else {
		b.WriteString(" --preferred")
	}
	fmt.Fprintf(&b, " --pos %d,%d --scale %s", m.X, m.Y, formatScale(m.Scale))
	if m.Transform != geometry.TransformNormal && m.Transform.Valid() {
		b.WriteString(" --transform " + m.Transform.String())
	}
	if !m.Enabled {
		b.WriteString(" --off")
	}
	writeRiverOptions(&b, m.Options)
	return b.String()
}

func writeRiverOptions(b *strings.Builder, opts []string) {
	for _, opt := range opts {
		b.WriteString(" " + opt)
	}
}

func (River) RenderWorkspace(geometry.Assignment) (string, error) {
	return "", ErrWorkspacesUnsupported
}

// ReloadCommand re-runs the init script through riverctl, River's control
// utility, so the wlr-randr lines take effect in the running session.
func (River) ReloadCommand(configPath string) []string {
	return []string{"riverctl", "spawn", "sh " + shellQuote(configPath)}
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
