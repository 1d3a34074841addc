package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/wsctl/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title   lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	help    lipgloss.Style
	section lipgloss.Style
	region  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:   NewBold(t).MarginBottom(1),
		ok:      NewBold(s),
		err:     NewBold(e),
		warn:    NewStyle(w),
		help:    NewEm(h),
		section: NewBold(t),
		region:  lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color(h)).PaddingLeft(1),
	}
}

// Flash renders a notification in the style of its kind.
func (p *Palette) Flash(f models.Flash) string {
	switch f.Kind {
	case models.FlashError:
		return p.err.Render("✗ " + f.Message)
	case models.FlashWarn:
		return p.warn.Render("! " + f.Message)
	default:
		return p.ok.Render(f.Message)
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
