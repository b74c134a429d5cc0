package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left, Right, Up, Down key.Binding

	AddCard, AddList       key.Binding
	RenameCard, RenameList key.Binding
	DeleteCard, DeleteList key.Binding

	// Grab picks up the selected card; GrabList picks up the selected list. Either
	// key again drops it at the cursor.
	Grab, GrabList key.Binding
	Cancel         key.Binding

	Submit key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),

		AddCard:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add card")),
		AddList:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add list")),
		RenameCard: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename card")),
		RenameList: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "rename list")),
		DeleteCard: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete card")),
		DeleteList: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "delete list")),

		Grab:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "grab/drop card")),
		GrabList: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "grab/drop list")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) helpLine() []key.Binding {
	return []key.Binding{k.Left, k.Down, k.AddCard, k.AddList, k.RenameCard, k.DeleteCard, k.Grab, k.GrabList, k.Quit}
}
