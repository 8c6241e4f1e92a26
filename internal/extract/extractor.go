// Package extract walks a compositor config file and everything it
// includes, collecting monitor and workspace declarations.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/1broseidon/xwlm/internal/dialect"
	"github.com/1broseidon/xwlm/internal/fsops"
)

// DefaultMaxDepth bounds include nesting when Options.MaxDepth is unset.
const DefaultMaxDepth = 16

// ErrDepthExceeded is wrapped when includes nest deeper than allowed.
var ErrDepthExceeded = errors.New("include depth exceeded")

// Options configures an Extractor.
type Options struct {
	FS       fsops.FS
	Env      dialect.Env
	MaxDepth int
	Logger   *slog.Logger
}

// Extractor reads a config tree through one dialect.
type Extractor struct {
	dialect  dialect.Dialect
	fs       fsops.FS
	env      dialect.Env
	maxDepth int
	logger   *slog.Logger
}

// New creates an extractor for d.
func New(d dialect.Dialect, opts Options) *Extractor {
	e := &Extractor{
		dialect:  d,
		fs:       opts.FS,
		env:      opts.Env,
		maxDepth: opts.MaxDepth,
		logger:   opts.Logger,
	}
	if e.fs == nil {
		e.fs = fsops.NewRealFS()
	}
	if e.env == nil {
		e.env = dialect.OSEnv
	}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxDepth
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// pendingInclude is an include target waiting to be visited, together
// with the directive that named it.
type pendingInclude struct {
	path string
	from Location
}

type frame struct {
	file    string
	lines   []string
	stmts   []dialect.Statement
	next    int
	depth   int
	pending []pendingInclude
}

// Extract walks root and its includes depth first, in directive order.
//
// Files already visited are skipped, so include cycles terminate. An
// unreadable root, or includes nested deeper than the configured limit,
// fail the whole extraction. Malformed declarations and unreadable
// includes are recorded as warnings and the walk continues.
func (e *Extractor) Extract(root string) (*Result, error) {
	canon, err := canonicalPath(root)
	if err != nil {
		return nil, &Error{Path: root, Err: err}
	}
	top, err := e.open(canon, 0)
	if err != nil {
		return nil, &Error{Path: canon, Err: err}
	}

	res := &Result{Source: ConfigSource{
		Root:           canon,
		Files:          []string{canon},
		MonitorFiles:   map[string]string{},
		WorkspaceFiles: map[string]string{},
	}}
	visited := map[string]bool{canon: true}
	stack := []*frame{top}

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		if len(f.pending) > 0 {
			inc := f.pending[0]
			f.pending = f.pending[1:]

			path, err := canonicalPath(inc.path)
			if err != nil {
				res.Warnings = append(res.Warnings, ParseWarning{Location: inc.from, Err: err})
				continue
			}
			if visited[path] {
				e.logger.Debug("include already visited", "path", path, "from", inc.from.String())
				continue
			}
			if f.depth+1 > e.maxDepth {
				return nil, &Error{Path: path, Err: fmt.Errorf("%w: %s nests deeper than %d", ErrDepthExceeded, inc.from, e.maxDepth)}
			}
			visited[path] = true
			child, err := e.open(path, f.depth+1)
			if err != nil {
				res.Warnings = append(res.Warnings, ParseWarning{Location: inc.from, Err: err})
				continue
			}
			res.Source.Files = append(res.Source.Files, path)
			stack = append(stack, child)
			continue
		}

		if f.next >= len(f.stmts) {
			stack = stack[:len(stack)-1]
			continue
		}
		stmt := f.stmts[f.next]
		f.next++
		e.visit(res, f, stmt)
	}

	for _, w := range res.Warnings {
		e.logger.Warn("config line skipped", "location", w.Location.String(), "error", w.Err)
	}
	return res, nil
}

func (e *Extractor) open(path string, depth int) (*frame, error) {
	data, err := e.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines, _ := SplitLines(data)
	return &frame{
		file:  path,
		lines: lines,
		stmts: dialect.Statements(e.dialect, lines),
		depth: depth,
	}, nil
}

func (e *Extractor) visit(res *Result, f *frame, stmt dialect.Statement) {
	text := strings.TrimSpace(stmt.Text)
	if text == "" || strings.HasPrefix(text, "#") {
		return
	}
	loc := Location{
		File:    f.file,
		Line:    stmt.Line,
		EndLine: stmt.EndLine,
		Raw:     strings.Join(f.lines[stmt.Line:stmt.EndLine+1], "\n"),
	}

	if ref, ok := e.dialect.IncludeDirective(text); ok {
		paths, err := e.resolveInclude(f.file, ref)
		if err != nil {
			res.Warnings = append(res.Warnings, ParseWarning{Location: loc, Err: err})
			return
		}
		for _, p := range paths {
			f.pending = append(f.pending, pendingInclude{path: p, from: loc})
		}
		return
	}

	if e.dialect.IsMonitorLine(text) {
		m, err := e.dialect.ParseMonitorLine(text)
		if err != nil {
			res.Warnings = append(res.Warnings, ParseWarning{Location: loc, Err: err})
			return
		}
		res.MonitorRecords = append(res.MonitorRecords, MonitorRecord{Monitor: m, Location: loc})
		res.Source.MonitorFiles[m.Name] = f.file
		return
	}

	if e.dialect.IsWorkspaceLine(text) {
		a, err := e.dialect.ParseWorkspaceLine(text)
		if err != nil {
			res.Warnings = append(res.Warnings, ParseWarning{Location: loc, Err: err})
			return
		}
		res.WorkspaceRecords = append(res.WorkspaceRecords, WorkspaceRecord{Assignment: a, Location: loc})
		res.Source.WorkspaceFiles[a.Workspace] = f.file
	}
}

// resolveInclude expands ~ and environment variables in ref, resolves it
// against the including file's directory and expands glob patterns in
// sorted order. A pattern matching nothing yields no paths.
func (e *Extractor) resolveInclude(baseFile, ref string) ([]string, error) {
	path := ExpandPath(ref, e.env)
	if path == "" {
		return nil, fmt.Errorf("include path is empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(baseFile), path)
	}
	if !strings.ContainsAny(path, "*?[") {
		return []string{path}, nil
	}
	matches, err := e.fs.Glob(path)
	if err != nil {
		return nil, fmt.Errorf("include pattern %q: %w", ref, err)
	}
	sort.Strings(matches)
	var files []string
	for _, m := range matches {
		if info, err := e.fs.Stat(m); err == nil && info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	if len(files) == 0 {
		e.logger.Debug("include pattern matched nothing", "pattern", path)
	}
	return files, nil
}

// ExpandPath expands a leading ~ and $VAR or ${VAR} references that are
// set in env. Unset variables are left as written.
func ExpandPath(p string, env dialect.Env) string {
	p = strings.TrimSpace(p)
	if env == nil {
		env = dialect.OSEnv
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, ok := env("HOME"); ok && home != "" {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return os.Expand(p, func(key string) string {
		if v, ok := env(key); ok {
			return v
		}
		return "${" + key + "}"
	})
}

// canonicalPath returns an absolute, symlink-resolved path. Symlink
// resolution is best effort.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, nil
	}
	return real, nil
}
