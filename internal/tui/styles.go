package tui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	Background lipgloss.Color
	Sidebar    lipgloss.Color
	Bubble     lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color
	Border     lipgloss.Color
}

var (
	darkPalette = palette{
		Background: lipgloss.Color("#252525"),
		Sidebar:    lipgloss.Color("#171717"),
		Bubble:     lipgloss.Color("#303030"),
		Foreground: lipgloss.Color("#f5f5f4"),
		Muted:      lipgloss.Color("#8a8a8a"),
		Accent:     lipgloss.Color("#60a5fa"),
		Border:     lipgloss.Color("#404040"),
	}
	lightPalette = palette{
		Background: lipgloss.Color("#f4f5f6"),
		Sidebar:    lipgloss.Color("#e1e4e8"),
		Bubble:     lipgloss.Color("#dce0e5"),
		Foreground: lipgloss.Color("#101F38"),
		Muted:      lipgloss.Color("#6b7280"),
		Accent:     lipgloss.Color("#2563eb"),
		Border:     lipgloss.Color("#d6dae0"),
	}

	destructive = lipgloss.Color("#e53935")
)

type styles struct {
	Header        lipgloss.Style
	Sidebar       lipgloss.Style
	SidebarTitle  lipgloss.Style
	Item          lipgloss.Style
	ItemActive    lipgloss.Style
	ItemCursor    lipgloss.Style
	Muted         lipgloss.Style
	UserBubble    lipgloss.Style
	Assistant     lipgloss.Style
	Greeting      lipgloss.Style
	Banner        lipgloss.Style
	Status        lipgloss.Style
	Composer      lipgloss.Style
	ComposerFocus lipgloss.Style
}

func newStyles(theme string) styles {
	p := darkPalette
	if theme == "light" {
		p = lightPalette
	}
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return styles{
		Header:        lipgloss.NewStyle().Bold(true).Foreground(p.Foreground).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(p.Border),
		Sidebar:       lipgloss.NewStyle().Background(p.Sidebar).Foreground(p.Foreground).Padding(1, 1),
		SidebarTitle:  lipgloss.NewStyle().Bold(true),
		Item:          lipgloss.NewStyle().Padding(0, 1),
		ItemActive:    lipgloss.NewStyle().Padding(0, 1).Bold(true).Background(p.Bubble),
		ItemCursor:    lipgloss.NewStyle().Padding(0, 1).Foreground(p.Accent),
		Muted:         lipgloss.NewStyle().Foreground(p.Muted),
		UserBubble:    lipgloss.NewStyle().Background(p.Bubble).Foreground(p.Foreground).Padding(0, 2),
		Assistant:     lipgloss.NewStyle().Foreground(p.Foreground),
		Greeting:      lipgloss.NewStyle().Bold(true).Foreground(p.Foreground),
		Banner:        lipgloss.NewStyle().Foreground(destructive),
		Status:        lipgloss.NewStyle().Foreground(p.Muted),
		Composer:      box.BorderForeground(p.Border),
		ComposerFocus: box.BorderForeground(p.Accent),
	}
}
