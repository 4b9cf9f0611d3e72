package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/mlcc/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title     lipgloss.Style
	heading   lipgloss.Style
	ok        lipgloss.Style
	err       lipgloss.Style
	warn      lipgloss.Style
	help      lipgloss.Style
	muted     lipgloss.Style
	selected  lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
	dialog    lipgloss.Style
	okColor   lipgloss.Color
	errColor  lipgloss.Color
	warnColor lipgloss.Color
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:     NewBold(t).MarginBottom(1),
		heading:   NewBold(t),
		ok:        NewBold(s),
		err:       NewBold(e),
		warn:      NewStyle(w),
		help:      NewEm(h),
		muted:     NewStyle(h),
		selected:  NewBold(t).Reverse(true),
		tab:       NewStyle(h).Padding(0, 1),
		activeTab: NewBold(t).Padding(0, 1).Underline(true),
		dialog:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(1, 2),
		okColor:   lipgloss.Color(s),
		errColor:  lipgloss.Color(e),
		warnColor: lipgloss.Color(w),
	}
}

// On renders s on a bg background.
func (p *Palette) On(s string, bg lipgloss.Color) string {
	return lipgloss.NewStyle().Background(bg).Render(s)
}

// As renders s in fg.
func (p *Palette) As(s string, fg lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(fg).Render(s)
}

// StateColor is red for IDLE, green for RUNNING and amber for everything else.
func (p *Palette) StateColor(state models.ChannelState) lipgloss.Color {
	switch state {
	case models.StateIdle:
		return p.errColor
	case models.StateRunning:
		return p.okColor
	default:
		return p.warnColor
	}
}

// Badge renders the channel state with a colored dot.
func (p *Palette) Badge(state models.ChannelState) string {
	return "STATE: " + p.As("●", p.StateColor(state)) + " " + string(state)
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

var _ Painter = (*Palette)(nil)
