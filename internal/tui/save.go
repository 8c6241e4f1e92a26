package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/xwlm/internal/generate"
	"github.com/1broseidon/xwlm/internal/session"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // showing diff, awaiting confirm
	saveResult            // showing outcome message
)

var errNothingToSave = errors.New("no changes to save")

// overlayLine is one row of the preview: a file header when file is set,
// otherwise a diff line.
type overlayLine struct {
	file string
	diff generate.DiffLine
}

// SaveOverlay shows the pending config diff and runs the save on confirm.
type SaveOverlay struct {
	phase        savePhase
	lines        []overlayLine
	report       *session.SaveReport
	err          error
	scrollOffset int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show opens the preview for plan. A failed or empty plan goes straight to
// the result view.
func (s *SaveOverlay) Show(plan *generate.Plan, err error) {
	s.report = nil
	s.err = err
	s.scrollOffset = 0
	s.lines = nil
	if err == nil && plan.Empty() {
		s.err = errNothingToSave
	}
	if s.err != nil {
		s.phase = saveResult
		return
	}
	for _, f := range plan.Files {
		s.lines = append(s.lines, overlayLine{file: f.Path})
		for _, d := range f.Diff() {
			s.lines = append(s.lines, overlayLine{diff: d})
		}
	}
	s.phase = savePreview
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil && s.report != nil
}

// Update handles input while the overlay is active. save runs when the
// preview is confirmed.
func (s SaveOverlay) Update(msg tea.Msg, save func() (*session.SaveReport, error)) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	switch s.phase {
	case savePreview:
		switch km.String() {
		case "esc", "n":
			s.phase = saveHidden
		case "enter", "y":
			s.report, s.err = save()
			s.phase = saveResult
		case "up", "k":
			if s.scrollOffset > 0 {
				s.scrollOffset--
			}
		case "down", "j":
			if s.scrollOffset < len(s.lines)-1 {
				s.scrollOffset++
			}
		}
	case saveResult:
		s.phase = saveHidden
	}
	return s
}

// View renders the overlay for the given content area dimensions.
func (s SaveOverlay) View(width, height int) string {
	switch s.phase {
	case savePreview:
		return s.viewPreview(width, height)
	case saveResult:
		return s.viewResult(width, height)
	}
	return ""
}

func (s SaveOverlay) viewPreview(areaW, areaH int) string {
	boxW := min(max(areaW-8, 30), 100)

	title := titleStyle.Render("Write Monitor Config: Pending Changes")

	// Title, blank lines, footer, border and padding take ten rows.
	diffH := max(areaH-10, 3)
	off := min(s.scrollOffset, max(len(s.lines)-diffH, 0))
	end := min(off+diffH, len(s.lines))
	innerW := max(boxW-6, 10)

	var rows []string
	for _, ol := range s.lines[off:end] {
		if ol.file != "" {
			rows = append(rows, fileStyle.Render(truncate(ol.file, innerW)))
			continue
		}
		t := truncate(ol.diff.String(), innerW)
		switch ol.diff.Kind {
		case generate.DiffAdded:
			rows = append(rows, addStyle.Render(t))
		case generate.DiffRemoved:
			rows = append(rows, rmStyle.Render(t))
		default:
			rows = append(rows, ctxStyle.Render(t))
		}
	}

	footer := dimStyle.Render("enter: write  esc: cancel  j/k: scroll")
	content := title + "\n\n" + strings.Join(rows, "\n") + "\n\n" + footer
	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, overlayBox.Width(boxW).Render(content))
}

func (s SaveOverlay) viewResult(areaW, areaH int) string {
	boxW := min(max(areaW-8, 30), 70)

	var msg string
	switch {
	case s.err != nil:
		msg = errStyle.Render("Error: " + s.err.Error())
	case s.report != nil:
		msg = okStyle.Render(fmt.Sprintf("Wrote %d file(s)", len(s.report.Plan.Files)))
		if s.report.Reloaded {
			msg += "\n" + okStyle.Render("Compositor reloaded")
		} else if s.report.ReloadErr != nil {
			msg += "\n" + warnStyle.Render("Reload failed: "+s.report.ReloadErr.Error())
		}
		if n := len(s.report.Plan.Skipped); n > 0 {
			msg += "\n" + warnStyle.Render(fmt.Sprintf("%d workspace assignment(s) cannot be expressed in this config", n))
		}
	}

	footer := dimStyle.Render("press any key to dismiss")
	content := msg + "\n\n" + footer
	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, overlayBox.Width(boxW).Render(content))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
