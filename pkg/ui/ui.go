// Package ui renders terminal output for the CLI: banner, section
// headers, bracketed finding lines and summary tables. All decoration
// goes to stderr so stdout stays clean for piped data.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/olekukonko/tablewriter"
)

// Version can be overridden at build time via ldflags.
var Version = "0.4.0"

// UserAgent is sent on every probe request.
func UserAgent() string {
	return fmt.Sprintf("seclab/%s", Version)
}

var (
	uiMu       sync.RWMutex
	silentMode bool
)

// SetSilent suppresses decorative output.
func SetSilent(v bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = v
}

// IsSilent reports whether decorative output is suppressed.
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor forces the ASCII color profile.
func SetNoColor(v bool) {
	if v {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

const bannerArt = `
   ________  _____/ /___ _/ /_
  / ___/ _ \/ ___/ / __ '/ __ \
 (__  )  __/ /__/ / /_/ / /_/ /
/____/\___/\___/_/\__,_/_.___/
`

const divider = "________________________________________________"

// PrintBanner prints the application banner with version info.
func PrintBanner() {
	if IsSilent() {
		return
	}
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			fmt.Fprintln(os.Stderr, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(os.Stderr, "                 v%s\n\n", VersionStyle.Render(Version))
}

// PrintSection prints a section header.
func PrintSection(title string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, SectionStyle.Render("> "+title))
	fmt.Fprintln(os.Stderr, DividerStyle.Render(divider))
}

// PrintConfigLine prints one "key : value" configuration line.
func PrintConfigLine(key, value string) {
	if IsSilent() || value == "" {
		return
	}
	fmt.Fprintf(os.Stderr, " :: %-16s : %s\n", LabelStyle.Render(key), ValueStyle.Render(value))
}

// PrintSuccess prints a success line.
func PrintSuccess(msg string) {
	fmt.Fprintln(os.Stderr, PassStyle.Render("  [+] "+msg))
}

// PrintWarning prints a warning line.
func PrintWarning(msg string) {
	fmt.Fprintln(os.Stderr, WarnStyle.Render("  [!] "+msg))
}

// PrintError prints an error line.
func PrintError(msg string) {
	fmt.Fprintln(os.Stderr, FailStyle.Render("  [X] "+msg))
}

// PrintFinding prints a nuclei-style bracketed finding line:
// [severity] [class] title url
func PrintFinding(severity, class, title, url string) {
	var b strings.Builder
	b.WriteString("[" + SeverityStyle(severity).Render(severity) + "] ")
	if class != "" {
		b.WriteString("[" + LabelStyle.Render(class) + "] ")
	}
	b.WriteString(ValueStyle.Render(title))
	if url != "" {
		b.WriteString(" " + HelpStyle.Render(url))
	}
	fmt.Fprintln(os.Stderr, b.String())
}

// Table renders rows with a header to w.
func Table(w io.Writer, header []string, rows [][]string) error {
	t := tablewriter.NewWriter(w)
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	t.Header(cells...)
	for _, row := range rows {
		if err := t.Append(row); err != nil {
			return err
		}
	}
	return t.Render()
}
