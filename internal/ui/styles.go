package ui

import "github.com/charmbracelet/lipgloss"

const sidebarWidth = 26

type palette struct {
	background lipgloss.Color
	text       lipgloss.Color
	accent     lipgloss.Color
	info       lipgloss.Color
	muted      lipgloss.Color
	border     lipgloss.Color
	danger     lipgloss.Color
	me         lipgloss.Color
	bot        lipgloss.Color
	attachment lipgloss.Color
}

var (
	darkPalette = palette{
		background: "235",
		text:       "255",
		accent:     "213",
		info:       "117",
		muted:      "243",
		border:     "238",
		danger:     "196",
		me:         "111",
		bot:        "120",
		attachment: "180",
	}

	lightPalette = palette{
		background: "255",
		text:       "235",
		accent:     "127",
		info:       "25",
		muted:      "245",
		border:     "250",
		danger:     "160",
		me:         "26",
		bot:        "28",
		attachment: "130",
	}
)

// theme holds every style the client renders with.
type theme struct {
	dark bool

	frame       lipgloss.Style
	title       lipgloss.Style
	sidebar     lipgloss.Style
	selected    lipgloss.Style
	active      lipgloss.Style
	normal      lipgloss.Style
	help        lipgloss.Style
	err         lipgloss.Style
	status      lipgloss.Style
	fromMe      lipgloss.Style
	fromBot     lipgloss.Style
	meta        lipgloss.Style
	attachment  lipgloss.Style
	picker      lipgloss.Style
	input       lipgloss.Style
	themeToggle string
}

func newTheme(dark bool) theme {
	p, toggle := lightPalette, "🌙"
	if dark {
		p, toggle = darkPalette, "🌞"
	}

	return theme{
		dark:  dark,
		frame: lipgloss.NewStyle().Background(p.background).Foreground(p.text),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),
		sidebar: lipgloss.NewStyle().
			Width(sidebarWidth).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(p.border),
		selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),
		active: lipgloss.NewStyle().
			Foreground(p.info).
			Bold(true),
		normal: lipgloss.NewStyle().Foreground(p.text),
		help: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true),
		err: lipgloss.NewStyle().
			Foreground(p.danger).
			Bold(true),
		status:     lipgloss.NewStyle().Foreground(p.info),
		fromMe:     lipgloss.NewStyle().Foreground(p.me),
		fromBot:    lipgloss.NewStyle().Foreground(p.bot),
		meta:       lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		attachment: lipgloss.NewStyle().Foreground(p.attachment),
		picker: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(0, 1),
		input: lipgloss.NewStyle().
			Foreground(p.info).
			Bold(true),
		themeToggle: toggle,
	}
}
