package report

import (
	"strings"
	"testing"
	"time"

	"github.com/seclab/seclab/pkg/finding"
)

func sampleReport() ScanReport {
	started := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	vulns := []finding.Vulnerability{
		{
			Title:       "SQL injection in search parameter",
			Type:        finding.ClassSQLi,
			Severity:    finding.High,
			URL:         "https://example.com/search",
			Parameter:   "q",
			CWE:         "CWE-89",
			CVSS:        8.6,
			Evidence:    "error in your SQL syntax",
			Remediation: "Use parameterized queries.",
		},
		{
			Title:         "Noise from staging data",
			Type:          finding.ClassXSS,
			Severity:      finding.Medium,
			URL:           "https://example.com/preview",
			FalsePositive: true,
		},
	}
	return ScanReport{
		Target:      "https://example.com",
		Mode:        "delegated",
		StartedAt:   started,
		CompletedAt: started.Add(90 * time.Second),
		Summary:     finding.Summarize(vulns),
		Findings:    vulns,
	}
}

func TestText_ContainsCoreSections(t *testing.T) {
	text := sampleReport().Text()

	for _, want := range []string{
		"Security Scan Report",
		"Target:    https://example.com",
		"Mode:      delegated",
		"Duration:  1m30s",
		"Summary: 0 critical, 1 high, 0 medium, 0 low, 0 info",
		"Findings (2)",
		"[1] SQL injection in search parameter",
		"CWE:      CWE-89",
		"CVSS:     8.6",
		"Param:    q",
		"Evidence: error in your SQL syntax",
		"Fix:      Use parameterized queries.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q\n%s", want, text)
		}
	}
}

func TestText_MarksFalsePositives(t *testing.T) {
	text := sampleReport().Text()
	if !strings.Contains(text, "medium (false positive)") {
		t.Errorf("false positive tag missing:\n%s", text)
	}
}

func TestText_SummaryExcludesFalsePositivesButListsThem(t *testing.T) {
	r := sampleReport()
	if r.Summary.Medium != 0 {
		t.Errorf("medium bucket = %d, want 0 (false positive excluded)", r.Summary.Medium)
	}
	if !strings.Contains(r.Text(), "[2] Noise from staging data") {
		t.Error("false positive must still appear in the findings list")
	}
}

func TestText_NoFindings(t *testing.T) {
	r := ScanReport{Target: "https://example.com", StartedAt: time.Now()}
	text := r.Text()
	if !strings.Contains(text, "No findings.") {
		t.Errorf("expected empty-scan message:\n%s", text)
	}
}

func TestText_Deterministic(t *testing.T) {
	r := sampleReport()
	if r.Text() != r.Text() {
		t.Error("identical input must render identical output")
	}
}
