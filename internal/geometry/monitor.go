// Package geometry holds the monitor data model and the pure layout
// operations (move, resize, rescale, rotate, toggle, reset) together with
// collision resolution. Nothing in this package performs I/O.
package geometry

import (
	"fmt"
	"math"
	"strings"
)

// Transform is a wl_output transform, numbered in protocol order.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
	transformCount
)

var transformNames = [...]string{
	"normal",
	"90",
	"180",
	"270",
	"flipped",
	"flipped-90",
	"flipped-180",
	"flipped-270",
}

// Transforms lists every transform in cycle order.
func Transforms() []Transform {
	out := make([]Transform, 0, transformCount)
	for t := TransformNormal; t < transformCount; t++ {
		out = append(out, t)
	}
	return out
}

func (t Transform) Valid() bool {
	return t >= TransformNormal && t < transformCount
}

func (t Transform) String() string {
	if !t.Valid() {
		return fmt.Sprintf("transform(%d)", int(t))
	}
	return transformNames[t]
}

// Next returns the following transform in the rotation cycle, wrapping
// from flipped-270 back to normal.
func (t Transform) Next() Transform {
	if !t.Valid() {
		return TransformNormal
	}
	return (t + 1) % transformCount
}

// SwapsAxes reports whether the transform exchanges width and height.
func (t Transform) SwapsAxes() bool {
	return t.Valid() && t%2 == 1
}

// ParseTransformName parses the textual names used by sway and wlr-randr.
func ParseTransformName(s string) (Transform, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range transformNames {
		if n == name {
			return Transform(i), nil
		}
	}
	return TransformNormal, fmt.Errorf("unknown transform %q", s)
}

// TransformFromIndex converts a protocol index (0-7) to a Transform.
func TransformFromIndex(i int) (Transform, error) {
	t := Transform(i)
	if !t.Valid() {
		return TransformNormal, fmt.Errorf("transform index %d out of range 0-7", i)
	}
	return t, nil
}

// Rect is an axis-aligned rectangle in logical layout coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Overlaps reports whether two rectangles share a positive area. Touching
// edges do not count.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// overlap returns the overlap depth along each axis. Values are only
// meaningful when Overlaps is true.
func (r Rect) overlap(o Rect) (dx, dy int) {
	dx = min(r.Right(), o.Right()) - max(r.X, o.X)
	dy = min(r.Bottom(), o.Bottom()) - max(r.Y, o.Y)
	return dx, dy
}

// Monitor is one output in the layout.
type Monitor struct {
	Name        string
	Description string

	// X and Y are in logical layout coordinates.
	X int
	Y int

	// Width and Height are the mode size in physical pixels; zero means
	// unknown (the compositor's preferred mode).
	Width   int
	Height  int
	Refresh float64

	Scale     float64
	Transform Transform
	Enabled   bool
	Primary   bool

	// Workspaces assigned to this monitor, in assignment order.
	Workspaces []string

	// Options holds dialect-specific trailing settings that are carried
	// through unchanged when the monitor is rendered back.
	Options []string
}

// Clone returns a deep copy.
func (m Monitor) Clone() Monitor {
	out := m
	if m.Workspaces != nil {
		out.Workspaces = append([]string(nil), m.Workspaces...)
	}
	if m.Options != nil {
		out.Options = append([]string(nil), m.Options...)
	}
	return out
}

// Bounds returns the monitor's effective rectangle: the mode size divided
// by scale, with width and height swapped for 90/270 degree transforms.
// Missing size or scale yields a zero-sized rectangle at the monitor's
// position rather than an error.
func (m Monitor) Bounds() Rect {
	r := Rect{X: m.X, Y: m.Y}
	if m.Width <= 0 || m.Height <= 0 || !(m.Scale > 0) || math.IsInf(m.Scale, 0) {
		return r
	}
	w, h := m.Width, m.Height
	if m.Transform.SwapsAxes() {
		w, h = h, w
	}
	r.Width = int(math.Round(float64(w) / m.Scale))
	r.Height = int(math.Round(float64(h) / m.Scale))
	return r
}

// EffectiveScale returns the scale used for layout math. A missing scale
// counts as 1.
func (m Monitor) EffectiveScale() float64 {
	if !(m.Scale > 0) {
		return 1
	}
	return m.Scale
}

// HasGeometry reports whether the monitor carries a mode or scale, as
// opposed to a bare enable or disable toggle.
func (m Monitor) HasGeometry() bool {
	return m.Width > 0 || m.Height > 0 || m.Scale > 0
}

// HasWorkspace reports whether ws is assigned to the monitor.
func (m Monitor) HasWorkspace(ws string) bool {
	for _, w := range m.Workspaces {
		if w == ws {
			return true
		}
	}
	return false
}

// Assignment binds a workspace to a monitor.
type Assignment struct {
	Workspace string
	Monitor   string

	// Options holds extra dialect rules on the same declaration.
	Options []string
}
