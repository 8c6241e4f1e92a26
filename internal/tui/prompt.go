package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/xwlm/internal/layout"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptPlace
	promptResize
)

func (k promptKind) title() string {
	switch k {
	case promptPlace:
		return "Position (X,Y)"
	case promptResize:
		return "Mode (WIDTHxHEIGHT)"
	}
	return ""
}

// prompt is a one-line input for values that are awkward to reach with
// single keys.
type prompt struct {
	kind    promptKind
	monitor string
	input   textinput.Model
}

func newPrompt() prompt {
	ti := textinput.New()
	ti.CharLimit = 32
	return prompt{input: ti}
}

func (p prompt) active() bool { return p.kind != promptNone }

func (p *prompt) open(kind promptKind, monitor, initial string) tea.Cmd {
	p.kind = kind
	p.monitor = monitor
	p.input.Reset()
	p.input.Placeholder = initial
	p.input.SetValue(initial)
	p.input.CursorEnd()
	p.input.Focus()
	return textinput.Blink
}

func (p *prompt) close() {
	p.kind = promptNone
	p.input.Blur()
}

// operation parses the entered text into the operation it describes.
func (p prompt) operation() (layout.Operation, error) {
	value := p.input.Value()
	switch p.kind {
	case promptPlace:
		x, y, err := parsePair(value, ",")
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		return layout.Place{Monitor: p.monitor, X: x, Y: y}, nil
	case promptResize:
		w, h, err := parsePair(value, "x")
		if err != nil {
			return nil, fmt.Errorf("mode: %w", err)
		}
		return layout.Resize{Monitor: p.monitor, Width: w, Height: h}, nil
	}
	return nil, fmt.Errorf("no prompt open")
}

func (p prompt) View() string {
	return labelStyle.Render(p.kind.title()+" for "+p.monitor+": ") + p.input.View() +
		dimStyle.Render("  enter: apply  esc: cancel")
}

func parsePair(s, sep string) (int, int, error) {
	a, b, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), sep)
	if !ok {
		return 0, 0, fmt.Errorf("expected two numbers separated by %q, got %q", sep, s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", a)
	}
	y, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", b)
	}
	return x, y, nil
}
