package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/jamesainslie/wallpick/pkg/wallpick/navigator"
)

func TestNavigatorKey(t *testing.T) {
	keys := defaultKeyMap()

	tests := []struct {
		msg  tea.KeyMsg
		want navigator.Key
	}{
		{runes("j"), navigator.KeyMoveDown},
		{tea.KeyMsg{Type: tea.KeyDown}, navigator.KeyMoveDown},
		{tea.KeyMsg{Type: tea.KeyCtrlN}, navigator.KeyMoveDown},
		{runes("k"), navigator.KeyMoveUp},
		{tea.KeyMsg{Type: tea.KeyUp}, navigator.KeyMoveUp},
		{tea.KeyMsg{Type: tea.KeyCtrlP}, navigator.KeyMoveUp},
		{runes("h"), navigator.KeyAscend},
		{tea.KeyMsg{Type: tea.KeyLeft}, navigator.KeyAscend},
		{tea.KeyMsg{Type: tea.KeyBackspace}, navigator.KeyAscend},
		{runes("l"), navigator.KeyDescend},
		{tea.KeyMsg{Type: tea.KeyRight}, navigator.KeyDescend},
		{tea.KeyMsg{Type: tea.KeyEnter}, navigator.KeyDescend},
		{runes("g"), navigator.KeyTop},
		{tea.KeyMsg{Type: tea.KeyHome}, navigator.KeyTop},
		{runes("G"), navigator.KeyBottom},
		{tea.KeyMsg{Type: tea.KeyEnd}, navigator.KeyBottom},
		{runes("r"), navigator.KeyRefresh},
		{runes("q"), navigator.KeyQuit},
		{tea.KeyMsg{Type: tea.KeyEsc}, navigator.KeyQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, navigator.KeyQuit},
		{runes("L"), navigator.KeyNone},
		{runes("?"), navigator.KeyNone},
		{runes("x"), navigator.KeyNone},
	}

	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, keys.navigatorKey(tt.msg))
		})
	}
}

func TestHelpBindings(t *testing.T) {
	keys := defaultKeyMap()

	assert.NotEmpty(t, keys.ShortHelp())

	count := 0
	for _, group := range keys.FullHelp() {
		count += len(group)
	}
	assert.Equal(t, 10, count, "every binding appears in the full help")
}
