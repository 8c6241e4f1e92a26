package geometry

// minResolveBudget is the smallest number of displacement steps allowed for
// a single resolution pass.
const minResolveBudget = 64

// resolveBudget returns the step budget for resolving collisions in l.
var resolveBudget = func(l Layout) int {
	return max(minResolveBudget, 64*l.EnabledCount())
}

// ResolveCollisions pushes enabled monitors out of the way of the named
// monitor until no two enabled monitors overlap.
//
// The named monitor is pinned. Every other overlapping monitor is displaced
// along the axis with the smaller overlap, then clamped to non-negative
// coordinates and queued so its own collisions are resolved in turn.
// Monitors are examined in name order. When the step budget runs out the
// input layout is returned together with ErrCollisionUnresolvable.
func ResolveCollisions(l Layout, moved string) (Layout, error) {
	pinned := l.Index(moved)
	if pinned < 0 {
		return l, &OpError{Op: "resolve", Monitor: moved, Err: ErrUnknownMonitor}
	}
	out := l.Clone()
	if !out.Monitors[pinned].Enabled {
		return out, nil
	}

	order := out.nameOrder()
	budget := resolveBudget(out)
	steps := 0
	queue := []int{pinned}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, other := range order {
			if other == cur || !out.Monitors[other].Enabled {
				continue
			}
			if !out.Monitors[cur].Bounds().Overlaps(out.Monitors[other].Bounds()) {
				continue
			}
			if steps >= budget {
				return l, &OpError{Op: "resolve", Monitor: moved, Err: ErrCollisionUnresolvable}
			}
			steps++

			target, anchor := other, cur
			if other == pinned {
				target, anchor = cur, other
			}
			displace(&out.Monitors[target], out.Monitors[anchor].Bounds())
			queue = append(queue, target)
			if target == cur {
				// cur moved; it is re-examined from the queue.
				break
			}
		}
	}
	return out, nil
}

// displace moves m so its bounds no longer overlap anchor, travelling along
// the axis of least overlap and away from the anchor's center. A move that
// would leave negative space goes to the far side instead.
func displace(m *Monitor, anchor Rect) {
	r := m.Bounds()
	dx, dy := r.overlap(anchor)
	if dx <= dy {
		if 2*r.X+r.Width < 2*anchor.X+anchor.Width && anchor.X-r.Width >= 0 {
			m.X = anchor.X - r.Width
		} else {
			m.X = anchor.Right()
		}
	} else {
		if 2*r.Y+r.Height < 2*anchor.Y+anchor.Height && anchor.Y-r.Height >= 0 {
			m.Y = anchor.Y - r.Height
		} else {
			m.Y = anchor.Bottom()
		}
	}
	clampOrigin(m)
}

func clampOrigin(m *Monitor) {
	if m.X < 0 {
		m.X = 0
	}
	if m.Y < 0 {
		m.Y = 0
	}
}
