package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding the screens react to. Screens pick the subset
// they show in the help footer through Keys.
type KeyMap struct {
	Up, Down      key.Binding
	Enter, Escape key.Binding
	CtrlC, Quit   key.Binding

	// dashboard
	OpenLink, TogglePause key.Binding

	// reflection
	Bypass, Skip key.Binding
}

var DefaultKeyMap = KeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Escape: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	CtrlC:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "exit")),
	Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),

	OpenLink:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open link")),
	TogglePause: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume reflections")),

	Bypass: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "I have a specific purpose")),
	Skip:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "skip question")),
}

// helpKeys adapts a list of bindings to help.KeyMap.
type helpKeys []key.Binding

func (h helpKeys) ShortHelp() []key.Binding  { return h }
func (h helpKeys) FullHelp() [][]key.Binding { return [][]key.Binding{h} }
