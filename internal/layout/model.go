package layout

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/xwlm/internal/geometry"
)

// Options configures a Model.
type Options struct {
	Logger *slog.Logger
}

// Model owns the layout for one session. It is not safe for concurrent use.
type Model struct {
	layout   geometry.Layout
	selected int
	logger   *slog.Logger
}

// New builds a model from an initial layout. Overlaps and negative
// positions in the input are normalized; duplicate names or workspaces
// are rejected.
func New(l geometry.Layout, opts Options) (*Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	normalized := geometry.Normalize(l)
	if err := normalized.Validate(); err != nil {
		return nil, err
	}
	return &Model{layout: normalized, logger: logger}, nil
}

// Len returns the number of monitors.
func (m *Model) Len() int { return len(m.layout.Monitors) }

// Selected returns the selected monitor. ok is false when the layout is empty.
func (m *Model) Selected() (geometry.Monitor, bool) {
	if len(m.layout.Monitors) == 0 {
		return geometry.Monitor{}, false
	}
	return m.layout.Monitors[m.selected].Clone(), true
}

// SelectedIndex returns the index of the selected monitor.
func (m *Model) SelectedIndex() int { return m.selected }

// Select makes the named monitor current.
func (m *Model) Select(name string) error {
	i := m.layout.Index(name)
	if i < 0 {
		return &geometry.OpError{Op: "select", Monitor: name, Err: geometry.ErrUnknownMonitor}
	}
	m.selected = i
	return nil
}

// SelectNext moves the selection forward in declaration order, wrapping.
func (m *Model) SelectNext() {
	if n := len(m.layout.Monitors); n > 0 {
		m.selected = (m.selected + 1) % n
	}
}

// SelectPrevious moves the selection backward in declaration order, wrapping.
func (m *Model) SelectPrevious() {
	if n := len(m.layout.Monitors); n > 0 {
		m.selected = (m.selected - 1 + n) % n
	}
}

// SelectDirection moves the selection to the nearest monitor in dir.
func (m *Model) SelectDirection(dir Direction) {
	rects := make([]geometry.Rect, len(m.layout.Monitors))
	for i, mon := range m.layout.Monitors {
		rects[i] = mon.Bounds()
	}
	m.selected = navigate(m.selected, dir, rects)
}

// Apply runs op against the layout. On failure the layout is left as it
// was and the error is returned.
func (m *Model) Apply(op Operation) error {
	next, err := op.apply(m.layout)
	if err != nil {
		m.logger.Warn("layout operation rejected", "op", op.String(), "error", err)
		return err
	}
	if err := next.Validate(); err != nil {
		m.logger.Error("layout operation broke invariant", "op", op.String(), "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	m.layout = next
	m.logger.Debug("layout operation applied", "op", op.String())
	return nil
}

// ApplyToSelected builds an operation for the selected monitor and applies it.
func (m *Model) ApplyToSelected(build func(name string) Operation) error {
	sel, ok := m.Selected()
	if !ok {
		return fmt.Errorf("%w: no monitors", geometry.ErrInvalidOperation)
	}
	return m.Apply(build(sel.Name))
}

// AssignWorkspace moves ws to the named monitor, removing it from any
// other monitor first.
func (m *Model) AssignWorkspace(ws, monitor string) error {
	ws = strings.TrimSpace(ws)
	if ws == "" {
		return &geometry.OpError{Op: "assign", Monitor: monitor, Err: fmt.Errorf("%w: empty workspace", geometry.ErrInvalidOperation)}
	}
	target := m.layout.Index(monitor)
	if target < 0 {
		return &geometry.OpError{Op: "assign", Monitor: monitor, Err: geometry.ErrUnknownMonitor}
	}

	next := m.layout.Clone()
	for i := range next.Monitors {
		next.Monitors[i].Workspaces = without(next.Monitors[i].Workspaces, ws)
	}
	next.Monitors[target].Workspaces = append(next.Monitors[target].Workspaces, ws)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("assign %s: %w", ws, err)
	}
	m.layout = next
	m.logger.Debug("workspace assigned", "workspace", ws, "monitor", monitor)
	return nil
}

// UnassignWorkspace removes ws from whichever monitor holds it and reports
// whether it was assigned.
func (m *Model) UnassignWorkspace(ws string) bool {
	owner, ok := m.layout.Owner(ws)
	if !ok {
		return false
	}
	i := m.layout.Index(owner)
	next := m.layout.Clone()
	next.Monitors[i].Workspaces = without(next.Monitors[i].Workspaces, ws)
	m.layout = next
	return true
}

// Assignments lists current workspace assignments.
func (m *Model) Assignments() []geometry.Assignment {
	return m.layout.Assignments()
}

// Snapshot returns a deep copy of the layout.
func (m *Model) Snapshot() geometry.Layout {
	return m.layout.Clone()
}

func without(list []string, v string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
