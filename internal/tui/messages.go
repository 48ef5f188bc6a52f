package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg is one countdown second for the session it names. Ticks for any
// other session are stale and dropped.
type tickMsg struct {
	SessionID string
}

func tickCmd(sessionID string) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{SessionID: sessionID}
	})
}

// CtrlCResetMsg clears a pending Ctrl+C confirmation.
type CtrlCResetMsg struct{}

// LinkMsg delivers a deep link to the running shell.
type LinkMsg struct {
	URL string
}
