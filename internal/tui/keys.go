package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Expand   key.Binding
	Favorite key.Binding
	Ping     key.Binding
	Remove   key.Binding
	Edit     key.Binding
	Add      key.Binding
	Category key.Binding
	Move     key.Binding
	Copy     key.Binding
	Settings key.Binding
	Help     key.Binding
	Reload   key.Binding
	Quit     key.Binding

	// Grab mode.
	Drop   key.Binding
	Cancel key.Binding

	// Settings.
	Home        key.Binding
	NewCategory key.Binding
	Delete      key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Expand:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand")),
		Favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		Ping:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "ping")),
		Remove:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Category: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		Move:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy time")),
		Settings: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Drop:   key.NewBinding(key.WithKeys("enter", "m"), key.WithHelp("enter", "drop")),
		Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "cancel")),

		Home:        key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home timezone")),
		NewCategory: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new category")),
		Delete:      key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		MoveUp:      key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown:    key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
	}
}

// boardKeys is the help.KeyMap for the main board.
type boardKeys struct{ keyMap }

func (k boardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Expand, k.Ping, k.Favorite, k.Add, k.Move, k.Settings, k.Help, k.Quit}
}

func (k boardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Expand},
		{k.Ping, k.Favorite, k.Edit, k.Remove, k.Category, k.Copy},
		{k.Add, k.Move, k.Settings, k.Reload, k.Help, k.Quit},
	}
}

type grabKeys struct{ keyMap }

func (k grabKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Drop, k.Cancel}
}

func (k grabKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

type settingsKeys struct{ keyMap }

func (k settingsKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Home, k.NewCategory, k.Edit, k.Delete, k.MoveUp, k.MoveDown, k.Cancel}
}

func (k settingsKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }
