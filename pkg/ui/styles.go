package ui

import "github.com/charmbracelet/lipgloss"

// Color palette, severity colors follow the common scanner convention.
var (
	Primary   = lipgloss.Color("#7D56F4")
	Secondary = lipgloss.Color("#00D4AA")

	Critical = lipgloss.Color("#FF0000")
	High     = lipgloss.Color("#FF6B6B")
	Medium   = lipgloss.Color("#FFD93D")
	Low      = lipgloss.Color("#6BCB77")
	Info     = lipgloss.Color("#4D96FF")

	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")
)

var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	DividerStyle = lipgloss.NewStyle().
			Foreground(Muted)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	PassStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Warning)

	FailStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)
)

var severityStyles = map[string]lipgloss.Style{
	"critical": lipgloss.NewStyle().Foreground(Critical).Bold(true),
	"high":     lipgloss.NewStyle().Foreground(High).Bold(true),
	"medium":   lipgloss.NewStyle().Foreground(Medium),
	"low":      lipgloss.NewStyle().Foreground(Low),
	"info":     lipgloss.NewStyle().Foreground(Info),
}

// SeverityStyle returns the style for a severity slug, defaulting to
// the info style for unknown values.
func SeverityStyle(severity string) lipgloss.Style {
	if s, ok := severityStyles[severity]; ok {
		return s
	}
	return severityStyles["info"]
}
