// Package dialect describes how each supported compositor spells monitor,
// workspace and include declarations in its config file. Nothing outside
// this package inspects raw config text.
package dialect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/xwlm/internal/geometry"
)

// Kind names a compositor dialect.
type Kind string

const (
	KindHyprland Kind = "hyprland"
	KindSway     Kind = "sway"
	KindRiver    Kind = "river"
)

var (
	// ErrMalformedLine is wrapped by every parse failure.
	ErrMalformedLine = errors.New("malformed declaration")

	// ErrWorkspacesUnsupported is returned by dialects without per-output
	// workspace configuration.
	ErrWorkspacesUnsupported = errors.New("workspace assignment not supported by this compositor")

	// ErrUnknownKind is returned for an unrecognized compositor name.
	ErrUnknownKind = errors.New("unknown compositor")

	// ErrUndetected is returned when no dialect recognizes the environment.
	ErrUndetected = errors.New("could not detect compositor")
)

// Confidence is how sure a dialect is that it matches the running session.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidencePossible
	ConfidenceLikely
	ConfidenceCertain
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceNone:
		return "none"
	case ConfidencePossible:
		return "possible"
	case ConfidenceLikely:
		return "likely"
	case ConfidenceCertain:
		return "certain"
	}
	return fmt.Sprintf("confidence(%d)", int(c))
}

// Env looks up an environment variable.
type Env func(key string) (string, bool)

// OSEnv reads the process environment.
var OSEnv Env = os.LookupEnv

// MapEnv returns an Env backed by a map.
func MapEnv(m map[string]string) Env {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// Dialect is one compositor's config syntax. Implementations are stateless.
type Dialect interface {
	Kind() Kind
	Detect(env Env) Confidence
	DefaultConfigPaths(env Env) []string

	IsMonitorLine(line string) bool
	ParseMonitorLine(line string) (geometry.Monitor, error)
	IsWorkspaceLine(line string) bool
	ParseWorkspaceLine(line string) (geometry.Assignment, error)

	// IncludeDirective returns the referenced path, as written, when line
	// includes another file.
	IncludeDirective(line string) (string, bool)

	// RenderInclude returns a line that includes path; IncludeDirective
	// parses it back.
	RenderInclude(path string) string

	RenderMonitor(m geometry.Monitor) string
	RenderWorkspace(a geometry.Assignment) (string, error)

	// ReloadCommand returns the argv that makes the running compositor
	// pick up configPath.
	ReloadCommand(configPath string) []string
}

// Statement is one logical declaration spanning lines Line..EndLine
// (0-based, inclusive).
type Statement struct {
	Text    string
	Line    int
	EndLine int
}

// Folder is implemented by dialects whose declarations may span several
// physical lines.
type Folder interface {
	Fold(lines []string) []Statement
}

// Statements splits lines into logical declarations for d.
func Statements(d Dialect, lines []string) []Statement {
	if f, ok := d.(Folder); ok {
		return f.Fold(lines)
	}
	out := make([]Statement, len(lines))
	for i, line := range lines {
		out[i] = Statement{Text: line, Line: i, EndLine: i}
	}
	return out
}

var registry = []Dialect{Hyprland{}, Sway{}, River{}}

// All returns every dialect in detection priority order.
func All() []Dialect {
	return append([]Dialect(nil), registry...)
}

// Kinds lists supported compositor names.
func Kinds() []Kind {
	out := make([]Kind, len(registry))
	for i, d := range registry {
		out[i] = d.Kind()
	}
	return out
}

// ParseKind parses a compositor name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, d := range registry {
		if d.Kind() == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ForKind returns the dialect for k.
func ForKind(k Kind) (Dialect, error) {
	for _, d := range registry {
		if d.Kind() == k {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

// Detect picks the dialect with the highest confidence. Ties go to the
// earlier dialect in All.
func Detect(env Env) (Dialect, Confidence, error) {
	var best Dialect
	bestConf := ConfidenceNone
	for _, d := range registry {
		if c := d.Detect(env); c > bestConf {
			best, bestConf = d, c
		}
	}
	if best == nil {
		return nil, ConfidenceNone, ErrUndetected
	}
	return best, bestConf, nil
}

// desktopHas reports whether XDG_CURRENT_DESKTOP lists name.
func desktopHas(env Env, name string) bool {
	v, _ := env("XDG_CURRENT_DESKTOP")
	for _, part := range strings.Split(v, ":") {
		if strings.EqualFold(strings.TrimSpace(part), name) {
			return true
		}
	}
	return false
}

func nonEmpty(env Env, key string) bool {
	v, ok := env(key)
	return ok && strings.TrimSpace(v) != ""
}

// configHome returns $XDG_CONFIG_HOME or ~/.config.
func configHome(env Env) string {
	if v, ok := env("XDG_CONFIG_HOME"); ok && v != "" {
		return v
	}
	home, _ := env("HOME")
	return filepath.Join(home, ".config")
}

func homeDir(env Env) string {
	home, _ := env("HOME")
	return home
}
