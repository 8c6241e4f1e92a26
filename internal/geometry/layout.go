package geometry

import (
	"fmt"
	"sort"
)

// Layout is an ordered set of monitors, unique by name.
type Layout struct {
	Monitors []Monitor
}

// NewLayout copies monitors into a layout.
func NewLayout(monitors []Monitor) Layout {
	l := Layout{Monitors: make([]Monitor, 0, len(monitors))}
	for _, m := range monitors {
		l.Monitors = append(l.Monitors, m.Clone())
	}
	return l
}

// Clone returns a deep copy.
func (l Layout) Clone() Layout {
	return NewLayout(l.Monitors)
}

// Index returns the position of the named monitor, or -1.
func (l Layout) Index(name string) int {
	for i := range l.Monitors {
		if l.Monitors[i].Name == name {
			return i
		}
	}
	return -1
}

// Lookup returns the named monitor.
func (l Layout) Lookup(name string) (Monitor, bool) {
	i := l.Index(name)
	if i < 0 {
		return Monitor{}, false
	}
	return l.Monitors[i], true
}

// EnabledCount returns the number of enabled monitors.
func (l Layout) EnabledCount() int {
	n := 0
	for _, m := range l.Monitors {
		if m.Enabled {
			n++
		}
	}
	return n
}

// Owner returns the monitor a workspace is assigned to.
func (l Layout) Owner(ws string) (string, bool) {
	for _, m := range l.Monitors {
		if m.HasWorkspace(ws) {
			return m.Name, true
		}
	}
	return "", false
}

// Assignments lists workspace assignments in monitor order, then
// assignment order.
func (l Layout) Assignments() []Assignment {
	var out []Assignment
	for _, m := range l.Monitors {
		for _, ws := range m.Workspaces {
			out = append(out, Assignment{Workspace: ws, Monitor: m.Name})
		}
	}
	return out
}

// Extent returns the bounding box of all enabled monitors.
func (l Layout) Extent() Rect {
	var ext Rect
	first := true
	for _, m := range l.Monitors {
		if !m.Enabled {
			continue
		}
		b := m.Bounds()
		if first {
			ext = b
			first = false
			continue
		}
		x1, y1 := min(ext.X, b.X), min(ext.Y, b.Y)
		x2, y2 := max(ext.Right(), b.Right()), max(ext.Bottom(), b.Bottom())
		ext = Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
	}
	return ext
}

// Validate checks name uniqueness, non-overlap and non-negative positions
// of enabled monitors, and workspace uniqueness.
func (l Layout) Validate() error {
	names := make(map[string]struct{}, len(l.Monitors))
	owners := make(map[string]string)
	for _, m := range l.Monitors {
		if m.Name == "" {
			return fmt.Errorf("%w: monitor with empty name", ErrInvariant)
		}
		if _, dup := names[m.Name]; dup {
			return fmt.Errorf("%w: duplicate monitor %q", ErrInvariant, m.Name)
		}
		names[m.Name] = struct{}{}
		for _, ws := range m.Workspaces {
			if prev, ok := owners[ws]; ok {
				return fmt.Errorf("%w: workspace %q assigned to both %s and %s", ErrInvariant, ws, prev, m.Name)
			}
			owners[ws] = m.Name
		}
		if m.Enabled && (m.X < 0 || m.Y < 0) {
			return fmt.Errorf("%w: %s has negative position %d,%d", ErrInvariant, m.Name, m.X, m.Y)
		}
	}

	for i := range l.Monitors {
		a := l.Monitors[i]
		if !a.Enabled {
			continue
		}
		for j := i + 1; j < len(l.Monitors); j++ {
			b := l.Monitors[j]
			if b.Enabled && a.Bounds().Overlaps(b.Bounds()) {
				return fmt.Errorf("%w: %s overlaps %s", ErrInvariant, a.Name, b.Name)
			}
		}
	}
	return nil
}

// nameOrder returns monitor indexes sorted by name. Collision resolution
// walks monitors in this order so simultaneous overlaps are handled the
// same way regardless of declaration order.
func (l Layout) nameOrder() []int {
	idx := make([]int, len(l.Monitors))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return l.Monitors[idx[a]].Name < l.Monitors[idx[b]].Name
	})
	return idx
}
