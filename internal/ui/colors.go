package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = newRoomStyles(roomColors{
	Title: "#7D56F4", Study: "#04B575", Rest: "#FFA500", Error: "#FF0000", Muted: "#626262",
})

// roomColors names the colors of the room view by what they mark.
type roomColors struct {
	Title string
	Study string
	Rest  string
	Error string
	Muted string
}

type roomStyles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	rest  lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func newRoomStyles(c roomColors) *roomStyles {
	fg := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	return &roomStyles{
		title: fg(c.Title).Bold(true).MarginBottom(1),
		ok:    fg(c.Study).Bold(true),
		rest:  fg(c.Rest).Bold(true),
		err:   fg(c.Error).Bold(true),
		warn:  fg(c.Rest),
		help:  fg(c.Muted).Italic(true),
	}
}

// badge renders the local study/rest indicator.
func (s *roomStyles) badge(studying bool) string {
	if studying {
		return s.ok.Render("● studying")
	}
	return s.rest.Render("● resting")
}
