package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/xwlm/internal/geometry"
	"github.com/1broseidon/xwlm/internal/layout"
	"github.com/1broseidon/xwlm/internal/session"
)

const (
	listWidth = 24

	// farMoveFactor multiplies the move step for shifted arrows.
	farMoveFactor = 10
)

// model is the root bubbletea model of the layout editor.
type model struct {
	ctx    context.Context
	sess   *session.Session
	logger *slog.Logger

	keys keyMap
	help help.Model

	moveStep       int
	workspaceCount int

	prompt      prompt
	saveOverlay SaveOverlay

	status    string
	statusErr bool

	// quitArmed is set after a first "q" with unsaved edits.
	quitArmed bool

	width  int
	height int
}

func newModel(ctx context.Context, sess *session.Session, logger *slog.Logger) model {
	settings := sess.Settings()
	m := model{
		ctx:            ctx,
		sess:           sess,
		logger:         logger,
		keys:           defaultKeyMap(),
		help:           help.New(),
		moveStep:       settings.MoveStep,
		workspaceCount: settings.WorkspaceCount,
		prompt:         newPrompt(),
	}
	if m.moveStep < 1 {
		m.moveStep = 1
	}
	if orphans := sess.Orphans(); len(orphans) > 0 {
		m.setError(fmt.Errorf("%d workspace assignment(s) reference unknown monitors and were dropped", len(orphans)))
	}
	if res := sess.Result(); res != nil && len(res.Warnings) > 0 {
		m.setError(fmt.Errorf("%d config line(s) could not be parsed; first: %v", len(res.Warnings), res.Warnings[0]))
	}
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = ws.Width
		m.height = ws.Height
		m.help.Width = ws.Width
		return m, nil
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.saveOverlay = m.saveOverlay.Update(msg, func() (*session.SaveReport, error) {
			return m.sess.Save(m.ctx)
		})
		if m.saveOverlay.SaveSucceeded() {
			m.setStatus("config written")
		}
		return m, nil
	}

	if m.prompt.active() {
		return m.updatePrompt(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if !key.Matches(km, m.keys.Quit) {
		m.quitArmed = false
	}

	step := m.moveStep
	far := m.moveStep * farMoveFactor

	switch {
	case key.Matches(km, m.keys.Quit):
		if km.String() == "q" && m.sess.Dirty() && !m.quitArmed {
			m.quitArmed = true
			m.setError(errors.New("unsaved changes; press q again to discard them"))
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(km, m.keys.Left):
		m.moveSelected(-step, 0)
	case key.Matches(km, m.keys.Right):
		m.moveSelected(step, 0)
	case key.Matches(km, m.keys.Up):
		m.moveSelected(0, -step)
	case key.Matches(km, m.keys.Down):
		m.moveSelected(0, step)
	case key.Matches(km, m.keys.LeftFar):
		m.moveSelected(-far, 0)
	case key.Matches(km, m.keys.RightFar):
		m.moveSelected(far, 0)
	case key.Matches(km, m.keys.UpFar):
		m.moveSelected(0, -far)
	case key.Matches(km, m.keys.DownFar):
		m.moveSelected(0, far)

	case key.Matches(km, m.keys.Next):
		m.selectWith(func(md *layout.Model) { md.SelectNext() })
	case key.Matches(km, m.keys.Prev):
		m.selectWith(func(md *layout.Model) { md.SelectPrevious() })
	case key.Matches(km, m.keys.FocusLeft):
		m.selectWith(func(md *layout.Model) { md.SelectDirection(layout.DirLeft) })
	case key.Matches(km, m.keys.FocusRight):
		m.selectWith(func(md *layout.Model) { md.SelectDirection(layout.DirRight) })
	case key.Matches(km, m.keys.FocusUp):
		m.selectWith(func(md *layout.Model) { md.SelectDirection(layout.DirUp) })
	case key.Matches(km, m.keys.FocusDown):
		m.selectWith(func(md *layout.Model) { md.SelectDirection(layout.DirDown) })

	case key.Matches(km, m.keys.ScaleUp):
		m.applySelected(func(name string) layout.Operation {
			return layout.Rescale{Monitor: name, Delta: geometry.ScaleStep}
		})
	case key.Matches(km, m.keys.ScaleDown):
		m.applySelected(func(name string) layout.Operation {
			return layout.Rescale{Monitor: name, Delta: -geometry.ScaleStep}
		})
	case key.Matches(km, m.keys.Rotate):
		m.applySelected(func(name string) layout.Operation { return layout.Rotate{Monitor: name} })
	case key.Matches(km, m.keys.Toggle):
		m.applySelected(func(name string) layout.Operation { return layout.Toggle{Monitor: name} })
	case key.Matches(km, m.keys.Reset):
		m.apply(layout.Reset{})

	case key.Matches(km, m.keys.Place):
		if sel, ok := m.sess.Selected(); ok {
			return m, m.prompt.open(promptPlace, sel.Name, fmt.Sprintf("%d,%d", sel.X, sel.Y))
		}
	case key.Matches(km, m.keys.Resize):
		if sel, ok := m.sess.Selected(); ok {
			return m, m.prompt.open(promptResize, sel.Name, fmt.Sprintf("%dx%d", sel.Width, sel.Height))
		}

	case key.Matches(km, m.keys.Workspace):
		m.toggleWorkspace(km.String())

	case key.Matches(km, m.keys.Save):
		plan, err := m.sess.Plan()
		m.saveOverlay.Show(plan, err)
	case key.Matches(km, m.keys.Rescan):
		if err := m.sess.Rescan(m.ctx); err != nil {
			m.setError(err)
		} else {
			m.setStatus("reloaded config and live monitors")
		}
	case key.Matches(km, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m model) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.prompt.close()
			return m, nil
		case "enter":
			op, err := m.prompt.operation()
			if err != nil {
				m.setError(err)
				return m, nil
			}
			m.prompt.close()
			m.apply(op)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.prompt.input, cmd = m.prompt.input.Update(msg)
	return m, cmd
}

func (m *model) moveSelected(dx, dy int) {
	m.applySelected(func(name string) layout.Operation {
		return layout.Move{Monitor: name, DX: dx, DY: dy}
	})
}

func (m *model) applySelected(build func(name string) layout.Operation) {
	var applied layout.Operation
	err := m.sess.WithModel(func(md *layout.Model) (bool, error) {
		return true, md.ApplyToSelected(func(name string) layout.Operation {
			applied = build(name)
			return applied
		})
	})
	m.report(applied, err)
}

func (m *model) apply(op layout.Operation) {
	m.report(op, m.sess.Apply(op))
}

func (m *model) report(op layout.Operation, err error) {
	if err != nil {
		m.setError(err)
		return
	}
	m.logger.Debug("editor operation", "op", op.String())
	m.setStatus(op.String())
}

func (m *model) selectWith(fn func(md *layout.Model)) {
	_ = m.sess.WithModel(func(md *layout.Model) (bool, error) {
		fn(md)
		return false, nil
	})
	m.status = ""
}

// toggleWorkspace assigns the workspace bound to digit to the selected
// monitor, or unassigns it when the monitor already has it. The change is
// written immediately.
func (m *model) toggleWorkspace(digit string) {
	n, err := strconv.Atoi(digit)
	if err != nil {
		return
	}
	if n == 0 {
		n = 10
	}
	if n > m.workspaceCount {
		m.setError(fmt.Errorf("workspace %d is beyond workspace_count (%d)", n, m.workspaceCount))
		return
	}
	sel, ok := m.sess.Selected()
	if !ok {
		return
	}
	ws := strconv.Itoa(n)

	var report *session.SaveReport
	var verb string
	if sel.HasWorkspace(ws) {
		report, err = m.sess.UnassignWorkspace(m.ctx, ws)
		verb = fmt.Sprintf("workspace %s unassigned from %s", ws, sel.Name)
	} else {
		report, err = m.sess.AssignWorkspace(m.ctx, ws, sel.Name)
		verb = fmt.Sprintf("workspace %s assigned to %s", ws, sel.Name)
	}
	switch {
	case err != nil:
		m.setError(err)
	case report != nil && len(report.Plan.Skipped) > 0:
		m.setError(fmt.Errorf("%s, but %s configs cannot express it", verb, m.sess.Dialect().Kind()))
	case report != nil && report.ReloadErr != nil:
		m.setError(fmt.Errorf("%s; reload failed: %w", verb, report.ReloadErr))
	default:
		m.setStatus(verb)
	}
}

func (m *model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	snap := m.sess.Snapshot()
	sel, hasSel := m.sess.Selected()
	selIdx := -1
	if hasSel {
		selIdx = snap.Index(sel.Name)
	}

	statusBar := renderStatusBar(string(m.sess.Dialect().Kind()), m.sess.ConfigPath(), m.sess.Dirty(), m.width)
	helpBar := lipgloss.NewStyle().Padding(0, 1).Render(m.help.View(m.keys))

	var bottom string
	switch {
	case m.prompt.active():
		bottom = m.prompt.View()
	case m.statusErr:
		bottom = warnStyle.Render(m.status)
	default:
		bottom = dimStyle.Render(m.status)
	}
	bottom = lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(bottom)

	var details string
	if hasSel {
		details = renderDetails(sel, m.width)
	}

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(helpBar) + lipgloss.Height(bottom) + lipgloss.Height(details)
	contentHeight := max(m.height-usedHeight, 1)

	if m.saveOverlay.Active() {
		content := m.saveOverlay.View(m.width, contentHeight+lipgloss.Height(details))
		return lipgloss.JoinVertical(lipgloss.Left, statusBar, content, bottom, helpBar)
	}

	list := renderMonitorList(snap.Monitors, selIdx, listWidth, contentHeight)
	canvasW := max(m.width-listWidth, 1)
	canvas := m.viewCanvas(snap, sel.Name, canvasW, contentHeight)
	body := lipgloss.JoinHorizontal(lipgloss.Top, list, canvas)

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, body, details, bottom, helpBar)
}

func (m model) viewCanvas(snap geometry.Layout, selected string, width, height int) string {
	lines, err := renderCanvas(snap, selected, width, height)
	if err != nil {
		style := lipgloss.NewStyle().
			Width(width).
			Height(height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render(err.Error())
	}
	return strings.Join(lines, "\n")
}
