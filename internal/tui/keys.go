package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the editor bindings. It implements help.KeyMap.
type keyMap struct {
	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	LeftFar    key.Binding
	RightFar   key.Binding
	UpFar      key.Binding
	DownFar    key.Binding
	Next       key.Binding
	Prev       key.Binding
	FocusLeft  key.Binding
	FocusRight key.Binding
	FocusUp    key.Binding
	FocusDown  key.Binding
	ScaleUp    key.Binding
	ScaleDown  key.Binding
	Rotate     key.Binding
	Toggle     key.Binding
	Reset      key.Binding
	Place      key.Binding
	Resize     key.Binding
	Workspace  key.Binding
	Save       key.Binding
	Rescan     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "move left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "move right")),
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),

		LeftFar:  key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("shift+←", "move left ×10")),
		RightFar: key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("shift+→", "move right ×10")),
		UpFar:    key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("shift+↑", "move up ×10")),
		DownFar:  key.NewBinding(key.WithKeys("shift+down"), key.WithHelp("shift+↓", "move down ×10")),

		Next: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next monitor")),
		Prev: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous monitor")),

		FocusLeft:  key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "select left")),
		FocusRight: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "select right")),
		FocusUp:    key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "select above")),
		FocusDown:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "select below")),

		ScaleUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "scale up")),
		ScaleDown: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "scale down")),
		Rotate:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rotate")),
		Toggle:    key.NewBinding(key.WithKeys("t", " "), key.WithHelp("t", "enable/disable")),
		Reset:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset layout")),
		Place:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "set position")),
		Resize:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "set mode")),

		Workspace: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("0-9", "toggle workspace"),
		),

		Save:   key.NewBinding(key.WithKeys("ctrl+s", "enter"), key.WithHelp("enter", "review & save")),
		Rescan: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "rescan")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Left, k.ScaleUp, k.Rotate, k.Toggle, k.Workspace, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.LeftFar, k.RightFar, k.UpFar, k.DownFar},
		{k.Next, k.Prev, k.FocusLeft, k.FocusRight, k.FocusUp, k.FocusDown},
		{k.ScaleUp, k.ScaleDown, k.Rotate, k.Toggle, k.Reset, k.Place, k.Resize},
		{k.Workspace, k.Save, k.Rescan, k.Help, k.Quit},
	}
}
