package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette + symbols + box borders.
// All renderers take one explicitly; CLI helpers use Current.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Done, Help, Banner                  lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	BoxUnchecked, BoxChecked string
	BarFull, BarEmpty        string
	SymOK, SymFail, SymWarn  string
}

var themes = map[string]Theme{
	"classic": {
		Name:         "classic",
		Title:        lipgloss.NewStyle().Bold(true),
		Muted:        lipgloss.NewStyle().Faint(true),
		Accent:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Selected:     lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:         lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:         lipgloss.NewStyle().Faint(true),
		Banner:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Border(lipgloss.ThickBorder(), false, false, false, true).BorderForeground(lipgloss.Color("9")).PaddingLeft(1),
		Border:       lipgloss.RoundedBorder(),
		BorderColor:  lipgloss.Color("8"),
		BoxUnchecked: "☐", BoxChecked: "☑",
		BarFull: "█", BarEmpty: "░",
		SymOK: "✔", SymFail: "✖", SymWarn: "⚠",
	},
	"neon": {
		Name:         "neon",
		Title:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Accent:       lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Selected:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13")),
		Done:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true),
		Help:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Banner:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Border(lipgloss.ThickBorder(), false, false, false, true).BorderForeground(lipgloss.Color("13")).PaddingLeft(1),
		Border:       lipgloss.RoundedBorder(),
		BorderColor:  lipgloss.Color("13"),
		BoxUnchecked: "◻", BoxChecked: "◼",
		BarFull: "█", BarEmpty: "·",
		SymOK: "✔", SymFail: "✖", SymWarn: "⚠",
	},
	"mono": {
		Name:         "mono",
		Title:        lipgloss.NewStyle().Bold(true),
		Muted:        lipgloss.NewStyle(),
		Accent:       lipgloss.NewStyle(),
		Success:      lipgloss.NewStyle(),
		Error:        lipgloss.NewStyle().Bold(true),
		Pending:      lipgloss.NewStyle(),
		Selected:     lipgloss.NewStyle().Reverse(true),
		Done:         lipgloss.NewStyle().Strikethrough(true),
		Help:         lipgloss.NewStyle(),
		Banner:       lipgloss.NewStyle().Bold(true),
		Border:       lipgloss.ASCIIBorder(),
		BorderColor:  lipgloss.NoColor{},
		BoxUnchecked: "[ ]", BoxChecked: "[x]",
		BarFull: "#", BarEmpty: "-",
		SymOK: "ok", SymFail: "error:", SymWarn: "!",
	},
}

var current = themes["classic"]

// LookupTheme finds a theme by case-insensitive name.
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// ThemeNames lists the known themes, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetTheme switches the theme the CLI helpers use. Unknown names fall back
// to classic.
func SetTheme(name string) {
	if t, ok := LookupTheme(name); ok {
		current = t
		return
	}
	current = themes["classic"]
}

// Current returns the theme set by SetTheme.
func Current() Theme { return current }
