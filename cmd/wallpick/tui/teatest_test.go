package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/jamesainslie/wallpick/pkg/wallpick/navigator"
)

func TestProgramBrowseAndQuit(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"dawn.png", "dusk.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fs, err := navigator.NewOSFS(nil)
	if err != nil {
		t.Fatal(err)
	}
	nav, err := navigator.New(fs, dir, navigator.Options{
		Formats:   navigator.NewFormats(navigator.DefaultFormats, false),
		CanCommit: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	tm := teatest.NewTestModel(t, NewModel(Options{Navigator: nav, Committer: &fakeCommitter{}, HasCommand: true}),
		teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("dawn.png")) && bytes.Contains(out, []byte("dusk.png"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	if !ok {
		t.Fatal("final model has the wrong type")
	}
	if !final.nav.Done() {
		t.Error("navigator should be done after quit")
	}
	if got := final.nav.State().Selection; got != 1 {
		t.Errorf("Selection = %d, want 1", got)
	}
}
