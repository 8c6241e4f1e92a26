package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/1broseidon/xwlm/internal/geometry"
)

var (
	// ErrPanelTooSmall means the layout exists but cannot be drawn in the
	// space available.
	ErrPanelTooSmall = errors.New("panel too small to display monitor layout")

	// ErrNoMonitors means there is nothing enabled to draw.
	ErrNoMonitors = errors.New("no monitors")
)

const (
	minCanvasWidth  = 12
	minCanvasHeight = 5

	// cellAspect is the height of a terminal cell in units of its width.
	cellAspect = 2.0
)

type boxStyle struct {
	h, v, tl, tr, bl, br rune
}

var (
	thinBox  = boxStyle{'─', '│', '┌', '┐', '└', '┘'}
	heavyBox = boxStyle{'━', '┃', '┏', '┓', '┗', '┛'}
)

type cellRect struct {
	x1, y1, x2, y2 int
}

// renderCanvas draws the enabled monitors of l scaled into a width×height
// character grid with a double-line frame. The selected monitor is drawn
// with heavy lines.
func renderCanvas(l geometry.Layout, selected string, width, height int) ([]string, error) {
	var monitors []geometry.Monitor
	for _, m := range l.Monitors {
		if m.Enabled && !m.Bounds().Empty() {
			monitors = append(monitors, m)
		}
	}
	if len(monitors) == 0 {
		return nil, ErrNoMonitors
	}
	if width < minCanvasWidth || height < minCanvasHeight {
		return nil, ErrPanelTooSmall
	}

	ext := l.Extent()
	innerW, innerH := float64(width-2), float64(height-2)
	scale := math.Min(innerW/float64(ext.Width), innerH*cellAspect/float64(ext.Height))

	rects := make([]cellRect, len(monitors))
	for i, m := range monitors {
		b := m.Bounds()
		r := cellRect{
			x1: 1 + int(math.Round(float64(b.X-ext.X)*scale)),
			y1: 1 + int(math.Round(float64(b.Y-ext.Y)*scale/cellAspect)),
			x2: int(math.Round(float64(b.Right()-ext.X)*scale)),
			y2: int(math.Round(float64(b.Bottom()-ext.Y)*scale/cellAspect)),
		}
		r.x2 = min(r.x2, width-2)
		r.y2 = min(r.y2, height-2)
		// A box needs two corners on each axis.
		if r.x2-r.x1 < 1 || r.y2-r.y1 < 1 {
			return nil, ErrPanelTooSmall
		}
		rects[i] = r
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	drawBorder(canvas, width, height)

	// The selection is drawn last so its frame wins on shared edges.
	sel := -1
	for i, m := range monitors {
		if m.Name == selected {
			sel = i
			continue
		}
		drawMonitor(canvas, rects[i], m, thinBox)
	}
	if sel >= 0 {
		drawMonitor(canvas, rects[sel], monitors[sel], heavyBox)
	}

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines, nil
}

func drawMonitor(canvas [][]rune, r cellRect, m geometry.Monitor, st boxStyle) {
	for x := r.x1; x <= r.x2; x++ {
		canvas[r.y1][x] = st.h
		canvas[r.y2][x] = st.h
	}
	for y := r.y1; y <= r.y2; y++ {
		canvas[y][r.x1] = st.v
		canvas[y][r.x2] = st.v
	}
	canvas[r.y1][r.x1] = st.tl
	canvas[r.y1][r.x2] = st.tr
	canvas[r.y2][r.x1] = st.bl
	canvas[r.y2][r.x2] = st.br

	labels := []string{m.Name, fmt.Sprintf("%dx%d", m.Width, m.Height)}
	if len(m.Workspaces) > 0 {
		labels = append(labels, "ws "+strings.Join(m.Workspaces, ","))
	}
	rows := r.y2 - r.y1 - 1
	if rows < 1 {
		return
	}
	labels = labels[:min(len(labels), rows)]
	top := r.y1 + 1 + (rows-len(labels))/2
	for i, label := range labels {
		writeCentered(canvas[top+i], label, r.x1+1, r.x2-1)
	}
}

// writeCentered writes s centered in row[from..to], truncating it to fit.
func writeCentered(row []rune, s string, from, to int) {
	span := to - from + 1
	if span < 1 {
		return
	}
	text := []rune(s)
	if len(text) > span {
		text = text[:span]
	}
	start := from + (span-len(text))/2
	copy(row[start:], text)
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}
