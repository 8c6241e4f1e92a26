package geometry

import (
	"fmt"
	"math"
)

const (
	ScaleStep = 0.1
	MinScale  = 0.1
	MaxScale  = 10.0
)

// ClampScale rounds s to two decimals and clamps it to [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	if math.IsNaN(s) || s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return math.Round(s*100) / 100
}

// Move translates a monitor by dx, dy. Each axis is clamped to zero
// independently before collisions are resolved.
func Move(l Layout, name string, dx, dy int) (Layout, error) {
	i := l.Index(name)
	if i < 0 {
		return l, &OpError{Op: "move", Monitor: name, Err: ErrUnknownMonitor}
	}
	out := l.Clone()
	m := &out.Monitors[i]
	m.X += dx
	m.Y += dy
	clampOrigin(m)
	return settle(l, out, name)
}

// Place moves a monitor to an absolute position.
func Place(l Layout, name string, x, y int) (Layout, error) {
	m, ok := l.Lookup(name)
	if !ok {
		return l, &OpError{Op: "place", Monitor: name, Err: ErrUnknownMonitor}
	}
	return Move(l, name, x-m.X, y-m.Y)
}

// Resize sets a monitor's mode size in pixels.
func Resize(l Layout, name string, width, height int) (Layout, error) {
	i := l.Index(name)
	if i < 0 {
		return l, &OpError{Op: "resize", Monitor: name, Err: ErrUnknownMonitor}
	}
	if width <= 0 || height <= 0 {
		return l, &OpError{Op: "resize", Monitor: name, Err: fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidOperation, width, height)}
	}
	out := l.Clone()
	out.Monitors[i].Width = width
	out.Monitors[i].Height = height
	return settle(l, out, name)
}

// Rescale adds delta to a monitor's scale, clamped to [MinScale, MaxScale].
func Rescale(l Layout, name string, delta float64) (Layout, error) {
	i := l.Index(name)
	if i < 0 {
		return l, &OpError{Op: "rescale", Monitor: name, Err: ErrUnknownMonitor}
	}
	out := l.Clone()
	m := &out.Monitors[i]
	m.Scale = ClampScale(m.EffectiveScale() + delta)
	return settle(l, out, name)
}

// Rotate sets a monitor's transform.
func Rotate(l Layout, name string, t Transform) (Layout, error) {
	i := l.Index(name)
	if i < 0 {
		return l, &OpError{Op: "rotate", Monitor: name, Err: ErrUnknownMonitor}
	}
	if !t.Valid() {
		return l, &OpError{Op: "rotate", Monitor: name, Err: fmt.Errorf("%w: %s", ErrInvalidOperation, t)}
	}
	out := l.Clone()
	out.Monitors[i].Transform = t
	return settle(l, out, name)
}

// Toggle enables or disables a monitor. Disabling the last enabled monitor
// is rejected. A re-enabled monitor keeps its previous geometry and pushes
// others out of its way.
func Toggle(l Layout, name string) (Layout, error) {
	i := l.Index(name)
	if i < 0 {
		return l, &OpError{Op: "toggle", Monitor: name, Err: ErrUnknownMonitor}
	}
	if l.Monitors[i].Enabled && l.EnabledCount() == 1 {
		return l, &OpError{Op: "toggle", Monitor: name, Err: fmt.Errorf("%w: cannot disable the last enabled monitor", ErrInvalidOperation)}
	}
	out := l.Clone()
	m := &out.Monitors[i]
	m.Enabled = !m.Enabled
	if !m.Enabled {
		return out, nil
	}
	clampOrigin(m)
	return settle(l, out, name)
}

// Reset lines enabled monitors up left to right at y=0 in declaration
// order. Disabled monitors keep their geometry.
func Reset(l Layout) Layout {
	out := l.Clone()
	x := 0
	for i := range out.Monitors {
		m := &out.Monitors[i]
		if !m.Enabled {
			continue
		}
		m.X = x
		m.Y = 0
		x += m.Bounds().Width
	}
	return out
}

// Normalize makes an arbitrary layout legal: negative positions are
// clamped and overlaps are resolved pinning monitors in declaration order.
// If that does not converge the layout is Reset.
func Normalize(l Layout) Layout {
	out := l.Clone()
	for i := range out.Monitors {
		if out.Monitors[i].Enabled {
			clampOrigin(&out.Monitors[i])
		}
	}
	for _, m := range l.Monitors {
		if !m.Enabled {
			continue
		}
		next, err := ResolveCollisions(out, m.Name)
		if err != nil {
			return Reset(l)
		}
		out = next
	}
	if err := out.Validate(); err != nil {
		return Reset(out)
	}
	return out
}

// settle resolves collisions for a changed monitor, returning the original
// layout when resolution fails.
func settle(orig, changed Layout, name string) (Layout, error) {
	m, _ := changed.Lookup(name)
	if !m.Enabled {
		return changed, nil
	}
	out, err := ResolveCollisions(changed, name)
	if err != nil {
		return orig, err
	}
	return out, nil
}
