package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// collectMsgs runs cmd, expanding batches, and returns every message produced.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// deliver runs cmd and feeds the fetch results it produces back into model.
func deliver(model tea.Model, cmd tea.Cmd) {
	for _, msg := range collectMsgs(cmd) {
		switch msg.(type) {
		case walletLoadedMsg, volumeLoadedMsg:
			model.Update(msg)
		}
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyType(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}
