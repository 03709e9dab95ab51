// Package report renders scan results as deterministic text, used both
// for display and export.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/seclab/seclab/pkg/finding"
)

// ScanReport carries everything the text renderer needs.
type ScanReport struct {
	Target      string
	Mode        string
	StartedAt   time.Time
	CompletedAt time.Time
	Summary     finding.Summary
	Findings    []finding.Vulnerability
}

const timeLayout = "2006-01-02 15:04:05 MST"

// Text renders the report: target, timing, severity summary, then one
// section per finding in discovery order. Output is deterministic for
// identical input.
func (r ScanReport) Text() string {
	var b strings.Builder

	b.WriteString("Security Scan Report\n")
	b.WriteString("====================\n\n")
	fmt.Fprintf(&b, "Target:    %s\n", r.Target)
	if r.Mode != "" {
		fmt.Fprintf(&b, "Mode:      %s\n", r.Mode)
	}
	fmt.Fprintf(&b, "Started:   %s\n", r.StartedAt.Format(timeLayout))
	if !r.CompletedAt.IsZero() {
		fmt.Fprintf(&b, "Completed: %s\n", r.CompletedAt.Format(timeLayout))
		fmt.Fprintf(&b, "Duration:  %s\n", r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}

	fmt.Fprintf(&b, "\nSummary: %d critical, %d high, %d medium, %d low, %d info\n",
		r.Summary.Critical, r.Summary.High, r.Summary.Medium, r.Summary.Low, r.Summary.Info)

	if len(r.Findings) == 0 {
		b.WriteString("\nNo findings.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "\nFindings (%d)\n", len(r.Findings))
	b.WriteString(strings.Repeat("-", 40) + "\n")

	for i, v := range r.Findings {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, v.Title)
		fmt.Fprintf(&b, "    Severity: %s", v.Severity)
		if v.FalsePositive {
			b.WriteString(" (false positive)")
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "    Type:     %s\n", v.Type)
		if v.CWE != "" {
			fmt.Fprintf(&b, "    CWE:      %s\n", v.CWE)
		}
		if v.CVSS > 0 {
			fmt.Fprintf(&b, "    CVSS:     %.1f\n", v.CVSS)
		}
		fmt.Fprintf(&b, "    URL:      %s\n", v.URL)
		if v.Parameter != "" {
			fmt.Fprintf(&b, "    Param:    %s\n", v.Parameter)
		}
		if v.Description != "" {
			fmt.Fprintf(&b, "    %s\n", v.Description)
		}
		if v.Evidence != "" {
			fmt.Fprintf(&b, "    Evidence: %s\n", v.Evidence)
		}
		if v.Remediation != "" {
			fmt.Fprintf(&b, "    Fix:      %s\n", v.Remediation)
		}
	}

	return b.String()
}
