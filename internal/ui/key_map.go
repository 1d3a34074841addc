package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the task page.
type keyMap struct {
	save          key.Binding
	schedule      key.Binding
	test          key.Binding
	deleteResults key.Binding
	deleteTask    key.Binding
	stopPoll      key.Binding
	toggle        key.Binding
	newTask       key.Binding
	refresh       key.Binding
	addURL        key.Binding
	removeURL     key.Binding
	addContent    key.Binding
	removeContent key.Binding
	confirm       key.Binding
	cancel        key.Binding
	help          key.Binding
	quit          key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		save:          key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		schedule:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "schedule")),
		test:          key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "test")),
		deleteResults: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete results")),
		deleteTask:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "delete task")),
		stopPoll:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop polling")),
		toggle:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "Advanced View")),
		newTask:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh properties")),
		addURL:        key.NewBinding(key.WithKeys("+"), key.WithHelp("+/-", "url selector")),
		removeURL:     key.NewBinding(key.WithKeys("-")),
		addContent:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]/[", "content selector")),
		removeContent: key.NewBinding(key.WithKeys("[")),
		confirm:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.save, k.schedule, k.test, k.toggle, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.save, k.schedule, k.test, k.stopPoll},
		{k.deleteResults, k.deleteTask, k.newTask},
		{k.toggle, k.refresh, k.addURL, k.addContent},
		{k.help, k.quit},
	}
}
