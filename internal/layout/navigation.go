package layout

import (
	"fmt"
	"strings"

	"github.com/1broseidon/xwlm/internal/geometry"
)

// Direction is a spatial selection direction.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection parses left/right/up/down.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "h":
		return DirLeft, nil
	case "right", "l":
		return DirRight, nil
	case "up", "k":
		return DirUp, nil
	case "down", "j":
		return DirDown, nil
	}
	return DirLeft, fmt.Errorf("unknown direction %q", s)
}

// navigate picks the monitor closest to current in dir by center Manhattan
// distance. With nothing in that direction it wraps to the far edge,
// preferring the same row or column.
func navigate(current int, dir Direction, rects []geometry.Rect) int {
	if current < 0 || current >= len(rects) {
		return 0
	}
	cx, cy := center(rects[current])

	best, bestDist := -1, 0
	for i, r := range rects {
		if i == current {
			continue
		}
		x, y := center(r)
		var ahead bool
		switch dir {
		case DirUp:
			ahead = y < cy
		case DirDown:
			ahead = y > cy
		case DirLeft:
			ahead = x < cx
		case DirRight:
			ahead = x > cx
		}
		if !ahead {
			continue
		}
		dist := abs(x-cx) + abs(y-cy)
		if best == -1 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best >= 0 {
		return best
	}

	best, bestScore := -1, 0
	for i, r := range rects {
		if i == current {
			continue
		}
		x, y := center(r)
		var score int
		switch dir {
		case DirUp:
			score = y*10000 - abs(x-cx)
		case DirDown:
			score = -y*10000 - abs(x-cx)
		case DirLeft:
			score = x*10000 - abs(y-cy)
		case DirRight:
			score = -x*10000 - abs(y-cy)
		}
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		return best
	}
	return current
}

func center(r geometry.Rect) (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
