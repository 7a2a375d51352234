package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme names.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Theme is the set of styles a model renders with. Models hold a Theme value
// and swap it on toggle; nothing reads styles from package state.
type Theme struct {
	Name string

	Title         lipgloss.Style
	Header        lipgloss.Style
	Label         lipgloss.Style
	Value         lipgloss.Style
	Subtle        lipgloss.Style
	Info          lipgloss.Style
	Error         lipgloss.Style
	Help          lipgloss.Style
	Box           lipgloss.Style
	Bar           lipgloss.Style
	TableHeader   lipgloss.Style
	TableSelected lipgloss.Style
	ActiveTab     lipgloss.Style
	InactiveTab   lipgloss.Style
}

type palette struct {
	accent, text, muted, border, errFg, errBg, selFg, selBg, bar lipgloss.Color
}

func newTheme(name string, p palette) Theme {
	return Theme{
		Name:   name,
		Title:  lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Header: lipgloss.NewStyle().Bold(true).Foreground(p.accent).MarginBottom(1),
		Label:  lipgloss.NewStyle().Foreground(p.muted),
		Value:  lipgloss.NewStyle().Foreground(p.text).Bold(true),
		Subtle: lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		Info:   lipgloss.NewStyle().Foreground(p.muted),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.errFg).
			Background(p.errBg).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(p.muted),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),
		Bar: lipgloss.NewStyle().Foreground(p.bar),
		TableHeader: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.border).
			BorderBottom(true).
			Bold(true),
		TableSelected: lipgloss.NewStyle().Foreground(p.selFg).Background(p.selBg),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.selFg).
			Background(p.selBg).
			Padding(0, 1),
		InactiveTab: lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
	}
}

// LightTheme is tuned for light terminal backgrounds.
func LightTheme() Theme {
	return newTheme(ThemeLight, palette{
		accent: lipgloss.Color("25"),
		text:   lipgloss.Color("235"),
		muted:  lipgloss.Color("243"),
		border: lipgloss.Color("250"),
		errFg:  lipgloss.Color("160"),
		errBg:  lipgloss.Color("224"),
		selFg:  lipgloss.Color("231"),
		selBg:  lipgloss.Color("25"),
		bar:    lipgloss.Color("33"),
	})
}

// DarkTheme is tuned for dark terminal backgrounds.
func DarkTheme() Theme {
	return newTheme(ThemeDark, palette{
		accent: lipgloss.Color("86"),
		text:   lipgloss.Color("252"),
		muted:  lipgloss.Color("245"),
		border: lipgloss.Color("240"),
		errFg:  lipgloss.Color("203"),
		errBg:  lipgloss.Color("52"),
		selFg:  lipgloss.Color("229"),
		selBg:  lipgloss.Color("57"),
		bar:    lipgloss.Color("212"),
	})
}

// ThemeByName returns the named theme, falling back to light.
func ThemeByName(name string) Theme {
	if name == ThemeDark {
		return DarkTheme()
	}
	return LightTheme()
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t.Name == ThemeDark {
		return LightTheme()
	}
	return DarkTheme()
}
