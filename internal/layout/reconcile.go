package layout

import "github.com/1broseidon/xwlm/internal/geometry"

// Reconcile merges monitors reported by the running compositor with the
// monitors declared in its config.
//
// Saved monitors keep their declaration order and their arrangement
// (position, scale, transform, enabled). Fields the config leaves unknown
// are filled from the live record. Live monitors the config never
// mentions are appended in live order. A disabled monitor the config
// declares without geometry stays geometry-less. Assignments naming a
// monitor that is in neither list are returned as orphans.
func Reconcile(live, saved []geometry.Monitor, assignments []geometry.Assignment) (geometry.Layout, []geometry.Assignment) {
	liveByName := make(map[string]geometry.Monitor, len(live))
	for _, m := range live {
		liveByName[m.Name] = m
	}

	out := geometry.Layout{}
	seen := make(map[string]bool)
	for _, s := range saved {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		m := s.Clone()
		m.Workspaces = nil
		if l, ok := liveByName[s.Name]; ok {
			fillFromLive(&m, l)
		}
		if !(m.Scale > 0) && (m.Enabled || m.Width > 0) {
			m.Scale = 1
		}
		out.Monitors = append(out.Monitors, m)
	}
	for _, l := range live {
		if seen[l.Name] {
			continue
		}
		seen[l.Name] = true
		m := l.Clone()
		m.Workspaces = nil
		if !(m.Scale > 0) {
			m.Scale = 1
		}
		out.Monitors = append(out.Monitors, m)
	}

	var orphans []geometry.Assignment
	for _, a := range assignments {
		i := out.Index(a.Monitor)
		if i < 0 {
			orphans = append(orphans, a)
			continue
		}
		for j := range out.Monitors {
			out.Monitors[j].Workspaces = without(out.Monitors[j].Workspaces, a.Workspace)
		}
		out.Monitors[i].Workspaces = append(out.Monitors[i].Workspaces, a.Workspace)
	}
	return out, orphans
}

func fillFromLive(m *geometry.Monitor, l geometry.Monitor) {
	if m.Width <= 0 || m.Height <= 0 {
		m.Width, m.Height = l.Width, l.Height
		if m.Refresh == 0 {
			m.Refresh = l.Refresh
		}
	}
	if m.Description == "" {
		m.Description = l.Description
	}
	if !(m.Scale > 0) {
		m.Scale = l.Scale
	}
	if !m.Primary {
		m.Primary = l.Primary
	}
}
