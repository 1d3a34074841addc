package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/tasks"
)

var (
	_ tea.Msg = flashMsg{}
	_ tea.Msg = opDoneMsg{}
)

// flashMsg carries a notification raised by the controller.
type flashMsg models.Flash

// hideMsg clears the notification line.
type hideMsg struct{}

// reloadMsg asks the page to re-render from server state.
type reloadMsg struct{}

// navigateMsg reports that the controller left the page.
type navigateMsg struct {
	location string
	err      error
}

// promptMsg asks the user for a line of text; the answer goes to reply.
type promptMsg struct {
	message string
	reply   chan<- promptReply
}

type promptReply struct {
	answer string
	ok     bool
}

// pollMsg carries a poller transition.
type pollMsg tasks.PollUpdate

// propertiesMsg carries refreshed result-property options.
type propertiesMsg struct {
	names []string
	err   error
}

// opDoneMsg reports the end of a remote operation started from a key press.
type opDoneMsg struct {
	op     string
	output string
	err    error
}
