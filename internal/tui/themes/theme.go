package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the dashboard.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Selected      lipgloss.Style
	Cleared       lipgloss.Style
	DueSoon       lipgloss.Style
	Amount        lipgloss.Style
	Negative      lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusInfo    lipgloss.Style

	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Border        lipgloss.Color
	CoverageStart string
	CoverageEnd   string
}

// Default is the default theme.
var Default = Theme{
	Primary:       lipgloss.Color("#0F766E"),
	Secondary:     lipgloss.Color("#5EEAD4"),
	Border:        lipgloss.Color("#404040"),
	CoverageStart: "#F59E0B",
	CoverageEnd:   "#10B981",

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5EEAD4")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Selected: lipgloss.NewStyle().
		Background(lipgloss.Color("#0F766E")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	Cleared: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Strikethrough(true),
	DueSoon: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")).
		Bold(true),
	Amount: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	Negative: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),

	RoundedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),

	StatusSuccess: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")).
		Bold(true),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	StatusInfo: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3b82f6")),
}

// Mono renders without colors, for logs and golden tests.
var Mono = Theme{
	Primary:       lipgloss.Color(""),
	Secondary:     lipgloss.Color(""),
	Border:        lipgloss.Color(""),
	CoverageStart: "#ffffff",
	CoverageEnd:   "#ffffff",

	Title:         lipgloss.NewStyle().Bold(true),
	Subtitle:      lipgloss.NewStyle(),
	Normal:        lipgloss.NewStyle(),
	Bold:          lipgloss.NewStyle().Bold(true),
	Muted:         lipgloss.NewStyle(),
	Selected:      lipgloss.NewStyle().Reverse(true),
	Cleared:       lipgloss.NewStyle(),
	DueSoon:       lipgloss.NewStyle().Bold(true),
	Amount:        lipgloss.NewStyle(),
	Negative:      lipgloss.NewStyle(),
	RoundedBox:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
	StatusSuccess: lipgloss.NewStyle(),
	StatusError:   lipgloss.NewStyle(),
	StatusInfo:    lipgloss.NewStyle(),
}

// ByName returns the named theme, falling back to Default.
func ByName(name string) Theme {
	if name == "mono" {
		return Mono
	}
	return Default
}
