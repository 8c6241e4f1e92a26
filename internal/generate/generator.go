// Package generate writes a layout back into the compositor config files
// it was extracted from, replacing only the declaration lines.
package generate

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/1broseidon/xwlm/internal/dialect"
	"github.com/1broseidon/xwlm/internal/extract"
	"github.com/1broseidon/xwlm/internal/fsops"
	"github.com/1broseidon/xwlm/internal/geometry"
)

var (
	// ErrWriteFailed is wrapped by every generation failure.
	ErrWriteFailed = errors.New("config write failed")

	// ErrStaleSource means a file no longer holds the text that was
	// extracted from it.
	ErrStaleSource = errors.New("config file changed since it was read")

	// ErrTargetExists means a consolidation target is already on disk or
	// already part of the config tree.
	ErrTargetExists = errors.New("consolidation target already exists")

	// ErrNothingToConsolidate means the layout has no monitors to move.
	ErrNothingToConsolidate = errors.New("no monitors to consolidate")
)

// AppendedHeader precedes declarations appended to the root file.
const AppendedHeader = "# Added by xwlm"

// WriteError is a generation failure for one file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrWriteFailed, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWriteFailed }

// Options configures a Generator.
type Options struct {
	FS     fsops.FS
	Logger *slog.Logger
}

// Generator renders layouts through one dialect.
type Generator struct {
	dialect dialect.Dialect
	fs      fsops.FS
	logger  *slog.Logger
}

// New creates a generator for d.
func New(d dialect.Dialect, opts Options) *Generator {
	g := &Generator{dialect: d, fs: opts.FS, logger: opts.Logger}
	if g.fs == nil {
		g.fs = fsops.NewRealFS()
	}
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}
	return g
}

// FileChange is the new content for one file. Create marks a file that
// did not exist when the plan was made.
type FileChange struct {
	Path   string
	Before []byte
	After  []byte
	Mode   os.FileMode
	Create bool
}

// Diff returns a line diff of the change with two lines of context.
func (c FileChange) Diff() []DiffLine {
	before, _ := extract.SplitLines(c.Before)
	after, _ := extract.SplitLines(c.After)
	return LineDiff(before, after, 2)
}

// Plan is a set of file changes that has not been written yet.
type Plan struct {
	Files []FileChange

	// Skipped lists assignments the dialect cannot express.
	Skipped []geometry.Assignment
}

// Empty reports whether the plan changes nothing.
func (p *Plan) Empty() bool { return len(p.Files) == 0 }

// Diff renders every file's diff as text.
func (p *Plan) Diff() string {
	var b strings.Builder
	for _, f := range p.Files {
		fmt.Fprintf(&b, "--- %s\n", f.Path)
		for _, l := range f.Diff() {
			b.WriteString(l.String())
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// edit replaces lines line..endLine of a file. A nil replacement deletes
// them. line == -1 appends.
type edit struct {
	line, endLine int
	raw           string
	replacement   []string
}

// Plan computes the file contents that persist snapshot. Each monitor's
// last declaration carrying geometry is re-rendered in full, including its
// enabled state. Earlier declarations with geometry are re-rendered
// without the state, and declarations that only toggle the monitor are
// dropped since the full rendering already carries it. Workspace
// declarations follow the current assignment and are dropped when the
// workspace was unassigned from a monitor still in the layout. Monitors
// and assignments with no recorded declaration are appended to the root
// file.
func (g *Generator) Plan(snapshot geometry.Layout, res *extract.Result) (*Plan, error) {
	edits := make(map[string][]edit)
	primary := primaryRecords(res.MonitorRecords)
	recorded := make(map[string]bool)
	for i, rec := range res.MonitorRecords {
		recorded[rec.Monitor.Name] = true
		m, ok := snapshot.Lookup(rec.Monitor.Name)
		if !ok {
			continue
		}
		var replacement []string
		switch {
		case primary[m.Name] == i:
			replacement = renderLines(indentOf(rec.Raw), g.dialect.RenderMonitor(m))
		case !rec.Monitor.HasGeometry():
			// Folded into the primary declaration.
		default:
			shadowed := m.Clone()
			shadowed.Enabled = true
			replacement = renderLines(indentOf(rec.Raw), g.dialect.RenderMonitor(shadowed))
		}
		edits[rec.File] = append(edits[rec.File], edit{rec.Line, rec.EndLine, rec.Raw, replacement})
	}

	assigned := make(map[string]bool)
	for _, rec := range res.WorkspaceRecords {
		ws := rec.Assignment.Workspace
		assigned[ws] = true
		owner, ok := snapshot.Owner(ws)
		if !ok {
			if snapshot.Index(rec.Assignment.Monitor) < 0 {
				continue
			}
			edits[rec.File] = append(edits[rec.File], edit{rec.Line, rec.EndLine, rec.Raw, nil})
			continue
		}
		a := geometry.Assignment{Workspace: ws, Monitor: owner, Options: rec.Assignment.Options}
		line, err := g.dialect.RenderWorkspace(a)
		if err != nil {
			return nil, &WriteError{Path: rec.File, Err: err}
		}
		edits[rec.File] = append(edits[rec.File], edit{rec.Line, rec.EndLine, rec.Raw, renderLines(indentOf(rec.Raw), line)})
	}

	plan := &Plan{}
	var appended []string
	for _, m := range snapshot.Monitors {
		if !recorded[m.Name] {
			appended = append(appended, renderLines("", g.dialect.RenderMonitor(m))...)
		}
	}
	for _, a := range snapshot.Assignments() {
		if assigned[a.Workspace] {
			continue
		}
		line, err := g.dialect.RenderWorkspace(a)
		if errors.Is(err, dialect.ErrWorkspacesUnsupported) {
			plan.Skipped = append(plan.Skipped, a)
			continue
		}
		if err != nil {
			return nil, &WriteError{Path: res.Source.Root, Err: err}
		}
		appended = append(appended, renderLines("", line)...)
	}
	if len(appended) > 0 {
		lines := append([]string{AppendedHeader}, appended...)
		edits[res.Source.Root] = append(edits[res.Source.Root], edit{line: -1, replacement: lines})
	}

	changes, err := g.applyAll(res, edits)
	if err != nil {
		return nil, err
	}
	plan.Files = changes
	if len(plan.Skipped) > 0 {
		g.logger.Debug("assignments not expressible in this dialect", "count", len(plan.Skipped), "dialect", string(g.dialect.Kind()))
	}
	return plan, nil
}

// applyAll applies edits file by file in visit order and returns the files
// whose content changed.
func (g *Generator) applyAll(res *extract.Result, edits map[string][]edit) ([]FileChange, error) {
	paths := make([]string, 0, len(edits))
	for p := range edits {
		paths = append(paths, p)
	}
	sort.SliceStable(paths, func(i, j int) bool {
		return fileRank(res, paths[i]) < fileRank(res, paths[j])
	})

	var out []FileChange
	for _, path := range paths {
		change, err := g.applyEdits(path, edits[path])
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(change.Before, change.After) {
			out = append(out, change)
		}
	}
	return out, nil
}

func (g *Generator) applyEdits(path string, edits []edit) (FileChange, error) {
	before, err := g.fs.ReadFile(path)
	if err != nil {
		return FileChange{}, &WriteError{Path: path, Err: err}
	}
	lines, ends := extract.SplitLines(before)
	dflt := extract.DominantEnding(ends)

	sort.SliceStable(edits, func(i, j int) bool { return edits[i].line > edits[j].line })
	out := append([]string(nil), lines...)
	outEnds := append([]string(nil), ends...)
	for _, e := range edits {
		if e.line < 0 {
			last := ""
			if n := len(out); n > 0 {
				last = outEnds[n-1]
				outEnds[n-1] = dflt
				if strings.TrimSpace(out[n-1]) != "" {
					out = append(out, "")
					outEnds = append(outEnds, dflt)
				}
			} else {
				last = dflt
			}
			for range e.replacement {
				outEnds = append(outEnds, dflt)
			}
			out = append(out, e.replacement...)
			outEnds[len(outEnds)-1] = last
			continue
		}
		if e.endLine >= len(lines) || strings.Join(lines[e.line:e.endLine+1], "\n") != e.raw {
			return FileChange{}, &WriteError{Path: path, Err: fmt.Errorf("%w: line %d", ErrStaleSource, e.line+1)}
		}
		newEnds := make([]string, len(e.replacement))
		for j := range newEnds {
			switch {
			case j == len(newEnds)-1:
				newEnds[j] = outEnds[e.endLine]
			case e.line+j < e.endLine:
				newEnds[j] = outEnds[e.line+j]
			default:
				newEnds[j] = dflt
			}
		}
		if len(e.replacement) == 0 && outEnds[e.endLine] == "" && e.line > 0 {
			// The deleted block closed the file without a newline.
			outEnds[e.line-1] = ""
		}
		out = splice(out, e.line, e.endLine, e.replacement)
		outEnds = splice(outEnds, e.line, e.endLine, newEnds)
	}

	return FileChange{
		Path:   path,
		Before: before,
		After:  extract.JoinLines(out, outEnds),
		Mode:   fsops.FileMode(g.fs, path, 0o644),
	}, nil
}

func splice(s []string, from, to int, with []string) []string {
	tail := append([]string(nil), s[to+1:]...)
	return append(append(s[:from], with...), tail...)
}

// ConsolidatedName returns the default file name monitor declarations are
// consolidated into, next to the root config.
func ConsolidatedName(k dialect.Kind) string {
	switch k {
	case dialect.KindHyprland:
		return "monitors.conf"
	case dialect.KindSway:
		return "outputs.conf"
	default:
		return "outputs"
	}
}

// Consolidate plans moving every monitor and workspace declaration into a
// new file, target, which the root config then includes. A relative
// target is taken from the root config's directory; an empty one uses
// ConsolidatedName. Declarations are rendered from snapshot, so unsaved
// edits are written too. Workspace declarations for monitors no longer in
// the layout stay where they are.
func (g *Generator) Consolidate(snapshot geometry.Layout, res *extract.Result, target string) (*Plan, error) {
	dir := filepath.Dir(res.Source.Root)
	if target == "" {
		target = ConsolidatedName(g.dialect.Kind())
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	target = filepath.Clean(target)

	if fileRank(res, target) < len(res.Source.Files) {
		return nil, &WriteError{Path: target, Err: fmt.Errorf("%w: already included by the config", ErrTargetExists)}
	}
	exists, err := fsops.Exists(g.fs, target)
	if err != nil {
		return nil, &WriteError{Path: target, Err: err}
	}
	if exists {
		return nil, &WriteError{Path: target, Err: ErrTargetExists}
	}
	if len(snapshot.Monitors) == 0 {
		return nil, &WriteError{Path: target, Err: ErrNothingToConsolidate}
	}

	plan := &Plan{}
	content := []string{AppendedHeader}
	for _, m := range snapshot.Monitors {
		content = append(content, renderLines("", g.dialect.RenderMonitor(m))...)
	}
	for _, a := range snapshot.Assignments() {
		line, err := g.dialect.RenderWorkspace(a)
		if errors.Is(err, dialect.ErrWorkspacesUnsupported) {
			plan.Skipped = append(plan.Skipped, a)
			continue
		}
		if err != nil {
			return nil, &WriteError{Path: target, Err: err}
		}
		content = append(content, line)
	}
	plan.Files = append(plan.Files, FileChange{
		Path:   target,
		After:  []byte(strings.Join(content, "\n") + "\n"),
		Mode:   0o644,
		Create: true,
	})

	edits := make(map[string][]edit)
	for _, rec := range res.MonitorRecords {
		if snapshot.Index(rec.Monitor.Name) >= 0 {
			edits[rec.File] = append(edits[rec.File], edit{rec.Line, rec.EndLine, rec.Raw, nil})
		}
	}
	for _, rec := range res.WorkspaceRecords {
		if _, ok := snapshot.Owner(rec.Assignment.Workspace); ok {
			edits[rec.File] = append(edits[rec.File], edit{rec.Line, rec.EndLine, rec.Raw, nil})
		}
	}
	root := res.Source.Root
	edits[root] = append(edits[root], edit{line: -1, replacement: []string{AppendedHeader, g.dialect.RenderInclude(target)}})

	changes, err := g.applyAll(res, edits)
	if err != nil {
		return nil, err
	}
	plan.Files = append(plan.Files, changes...)
	g.logger.Debug("consolidation planned", "target", target, "files", len(plan.Files))
	return plan, nil
}

// Write stores every change atomically. A file that changed on disk
// since the plan was made is not overwritten.
func (g *Generator) Write(p *Plan) error {
	for _, f := range p.Files {
		current, err := g.fs.ReadFile(f.Path)
		switch {
		case f.Create && errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return &WriteError{Path: f.Path, Err: err}
		case f.Create || !bytes.Equal(current, f.Before):
			return &WriteError{Path: f.Path, Err: ErrStaleSource}
		}
		if err := g.fs.AtomicWrite(f.Path, f.After, f.Mode); err != nil {
			return &WriteError{Path: f.Path, Err: err}
		}
		g.logger.Info("config written", "path", f.Path)
	}
	return nil
}

// Apply plans and writes in one step.
func (g *Generator) Apply(snapshot geometry.Layout, res *extract.Result) (*Plan, error) {
	p, err := g.Plan(snapshot, res)
	if err != nil {
		return nil, err
	}
	if err := g.Write(p); err != nil {
		return p, err
	}
	return p, nil
}

// renderLines splits a rendered declaration into lines, each prefixed
// with indent.
func renderLines(indent, rendered string) []string {
	lines := strings.Split(rendered, "\n")
	for i := range lines {
		lines[i] = indent + lines[i]
	}
	return lines
}

// primaryRecords maps each monitor name to the index of its last record
// with geometry, or its last record when none has geometry.
func primaryRecords(recs []extract.MonitorRecord) map[string]int {
	out := make(map[string]int)
	withGeometry := make(map[string]bool)
	for i, rec := range recs {
		name := rec.Monitor.Name
		if rec.Monitor.HasGeometry() {
			out[name] = i
			withGeometry[name] = true
			continue
		}
		if !withGeometry[name] {
			out[name] = i
		}
	}
	return out
}

func indentOf(raw string) string {
	first, _, _ := strings.Cut(raw, "\n")
	return first[:len(first)-len(strings.TrimLeft(first, " \t"))]
}

// fileRank orders files by visit order, so the root comes first.
func fileRank(res *extract.Result, path string) int {
	for i, f := range res.Source.Files {
		if f == path {
			return i
		}
	}
	return len(res.Source.Files)
}
