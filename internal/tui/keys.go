package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Move      key.Binding
	Primary   key.Binding
	Secondary key.Binding
	ShiftMove key.Binding
	Double    key.Binding
	Drag      key.Binding
	Use       key.Binding
	SwitchPen key.Binding
	Command   key.Binding
	CloseGrid key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Move:      key.NewBinding(key.WithKeys("up", "down", "left", "right"), key.WithHelp("↑↓←→", "move")),
		Primary:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick up/place")),
		Secondary: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "place one")),
		ShiftMove: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shift-move")),
		Double:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "collect all")),
		Drag:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "drag")),
		Use:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "use held item")),
		SwitchPen: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Command:   key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		CloseGrid: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close satchel")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Primary, k.Secondary, k.Use, k.Command, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move, k.Primary, k.Secondary, k.ShiftMove},
		{k.Double, k.Drag, k.Use, k.SwitchPen},
		{k.Command, k.CloseGrid, k.Quit},
	}
}
