package x11

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/randr"

	"github.com/1broseidon/xwlm/internal/geometry"
)

// Outputs lists connected RandR outputs. Outputs without a CRTC are
// reported disabled with their preferred mode.
func (c *Connection) Outputs() ([]geometry.Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}
	modes := make(map[randr.Mode]randr.ModeInfo, len(resources.Modes))
	for _, mi := range resources.Modes {
		modes[randr.Mode(mi.Id)] = mi
	}

	var primary randr.Output
	if p, err := randr.GetOutputPrimary(conn, c.Root).Reply(); err == nil {
		primary = p.Output
	}

	var monitors []geometry.Monitor
	for _, output := range resources.Outputs {
		info, err := randr.GetOutputInfo(conn, output, resources.ConfigTimestamp).Reply()
		if err != nil || info.Connection != randr.ConnectionConnected {
			continue
		}
		m := geometry.Monitor{
			Name:    string(info.Name),
			Scale:   1,
			Primary: output == primary,
		}

		if info.Crtc == 0 {
			if int(info.NumPreferred) > 0 && len(info.Modes) > 0 {
				if mi, ok := modes[info.Modes[0]]; ok {
					m.Width, m.Height, m.Refresh = int(mi.Width), int(mi.Height), RefreshRate(mi)
				}
			}
			monitors = append(monitors, m)
			continue
		}

		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		m.Enabled = true
		m.X, m.Y = int(crtc.X), int(crtc.Y)
		m.Transform = TransformFromRotation(crtc.Rotation)
		if mi, ok := modes[crtc.Mode]; ok {
			m.Width, m.Height, m.Refresh = int(mi.Width), int(mi.Height), RefreshRate(mi)
		} else {
			// The CRTC size is already rotated.
			m.Width, m.Height = int(crtc.Width), int(crtc.Height)
			if m.Transform.SwapsAxes() {
				m.Width, m.Height = m.Height, m.Width
			}
		}
		monitors = append(monitors, m)
	}

	return monitors, nil
}

// TransformFromRotation maps a RandR rotation bitmask to an output
// transform. RandR reflects before rotating, like wl_output.
func TransformFromRotation(rotation uint16) geometry.Transform {
	var t geometry.Transform
	switch {
	case rotation&randr.RotationRotate90 != 0:
		t = geometry.Transform90
	case rotation&randr.RotationRotate180 != 0:
		t = geometry.Transform180
	case rotation&randr.RotationRotate270 != 0:
		t = geometry.Transform270
	}
	reflectX := rotation&randr.RotationReflectX != 0
	reflectY := rotation&randr.RotationReflectY != 0
	switch {
	case reflectX && reflectY:
		// Both reflections are a half turn.
		t = (t + 2) % 4
	case reflectX:
		t += geometry.TransformFlipped
	case reflectY:
		t = (t+2)%4 + geometry.TransformFlipped
	}
	return t
}

// RefreshRate derives the vertical refresh in Hz from a mode's timings.
func RefreshRate(mi randr.ModeInfo) float64 {
	if mi.Htotal == 0 || mi.Vtotal == 0 {
		return 0
	}
	hz := float64(mi.DotClock) / (float64(mi.Htotal) * float64(mi.Vtotal))
	return math.Round(hz*1000) / 1000
}
