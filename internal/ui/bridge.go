package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/tasks"
)

var (
	_ tasks.Notifier  = (*Bridge)(nil)
	_ tasks.Navigator = (*Bridge)(nil)
	_ tasks.Prompter  = (*Bridge)(nil)
)

const bridgeBuffer = 64

// Bridge carries controller callbacks, which run on command and poller goroutines, into the bubbletea loop.
//
// Notifications never block the sender; a full buffer drops them. Prompts block until the user answers.
type Bridge struct {
	events chan tea.Msg
	polls  chan tasks.PollUpdate
	next   tasks.Navigator
}

// NewBridge creates a bridge that forwards navigation to next when it is non-nil.
func NewBridge(next tasks.Navigator) *Bridge {
	return &Bridge{
		events: make(chan tea.Msg, bridgeBuffer),
		polls:  make(chan tasks.PollUpdate, bridgeBuffer),
		next:   next,
	}
}

// PollUpdates is the channel to pass as [tasks.ControllerOpts.Updates].
func (b *Bridge) PollUpdates() chan<- tasks.PollUpdate { return b.polls }

func (b *Bridge) emit(msg tea.Msg) {
	select {
	case b.events <- msg:
	default:
	}
}

func (b *Bridge) Flash(kind models.FlashKind, message string) {
	b.emit(flashMsg{Kind: kind, Message: message})
}

func (b *Bridge) Hide() { b.emit(hideMsg{}) }

func (b *Bridge) Reload(ctx context.Context) error {
	var err error
	if b.next != nil {
		err = b.next.Reload(ctx)
	}
	b.emit(reloadMsg{})
	return err
}

func (b *Bridge) Navigate(ctx context.Context, location string) error {
	var err error
	if b.next != nil {
		err = b.next.Navigate(ctx, location)
	}
	b.emit(navigateMsg{location: location, err: err})
	return err
}

// Prompt shows message in the input line and waits for enter (ok) or esc (cancelled).
func (b *Bridge) Prompt(ctx context.Context, message string) (string, bool) {
	reply := make(chan promptReply, 1)

	select {
	case b.events <- promptMsg{message: message, reply: reply}:
	case <-ctx.Done():
		return "", false
	}

	select {
	case r := <-reply:
		return r.answer, r.ok
	case <-ctx.Done():
		return "", false
	}
}

// waitForEvent delivers the next controller callback to the model.
func (b *Bridge) waitForEvent() tea.Cmd {
	return func() tea.Msg { return <-b.events }
}

// waitForPoll delivers the next poller transition to the model.
func (b *Bridge) waitForPoll() tea.Cmd {
	return func() tea.Msg { return pollMsg(<-b.polls) }
}
