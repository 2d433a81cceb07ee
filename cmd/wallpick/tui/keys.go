package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jamesainslie/wallpick/pkg/wallpick/navigator"
)

// keyMap holds the browser key bindings. It satisfies help.KeyMap.
type keyMap struct {
	Down    key.Binding
	Up      key.Binding
	Ascend  key.Binding
	Descend key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Refresh key.Binding
	Logs    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Down:    key.NewBinding(key.WithKeys("j", "down", "ctrl+n"), key.WithHelp("j/↓", "down")),
		Up:      key.NewBinding(key.WithKeys("k", "up", "ctrl+p"), key.WithHelp("k/↑", "up")),
		Ascend:  key.NewBinding(key.WithKeys("h", "left", "backspace"), key.WithHelp("h/←", "parent")),
		Descend: key.NewBinding(key.WithKeys("l", "right", "enter"), key.WithHelp("l/→/enter", "open/apply")),
		Top:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Logs:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logs")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns the bindings shown in the collapsed footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Ascend, k.Descend, k.Help, k.Quit}
}

// FullHelp returns the bindings shown when help is expanded.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.Top, k.Bottom},
		{k.Ascend, k.Descend, k.Refresh},
		{k.Logs, k.Help, k.Quit},
	}
}

// navigatorKey maps a key press to the navigator input it stands for.
func (k keyMap) navigatorKey(msg tea.KeyMsg) navigator.Key {
	switch {
	case key.Matches(msg, k.Down):
		return navigator.KeyMoveDown
	case key.Matches(msg, k.Up):
		return navigator.KeyMoveUp
	case key.Matches(msg, k.Ascend):
		return navigator.KeyAscend
	case key.Matches(msg, k.Descend):
		return navigator.KeyDescend
	case key.Matches(msg, k.Top):
		return navigator.KeyTop
	case key.Matches(msg, k.Bottom):
		return navigator.KeyBottom
	case key.Matches(msg, k.Refresh):
		return navigator.KeyRefresh
	case key.Matches(msg, k.Quit):
		return navigator.KeyQuit
	default:
		return navigator.KeyNone
	}
}
