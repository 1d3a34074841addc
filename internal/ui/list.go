package ui

import (
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = propertyItem("")
)

// propertyItem is one option of the results-properties dropdown.
type propertyItem string

func (i propertyItem) FilterValue() string { return string(i) }
func (i propertyItem) Title() string       { return string(i) }
func (i propertyItem) Description() string { return "" }

func newPropertyList(names []string, width, height int) list.Model {
	items := make([]list.Item, len(names))
	for i, name := range names {
		items[i] = propertyItem(name)
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(items, delegate, width, height)
	l.Title = "Result Properties"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return l
}
