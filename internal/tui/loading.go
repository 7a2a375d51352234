package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// LoadingState tracks a spinner and the message shown next to it.
type LoadingState struct {
	spinner spinner.Model
	message string
}

// NewLoadingState creates a loading indicator with message.
func NewLoadingState(message string) *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &LoadingState{spinner: s, message: message}
}

// Init starts the spinner.
func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner on its tick messages.
func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// SetMessage replaces the text next to the spinner.
func (l *LoadingState) SetMessage(message string) {
	l.message = message
}

// RenderLoading renders the spinner line.
func RenderLoading(l *LoadingState, theme Theme) string {
	if l == nil {
		return ""
	}
	return l.spinner.View() + " " + theme.Info.Render(l.message)
}
