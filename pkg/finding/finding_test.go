package finding

import "testing"

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"critical", Critical},
		{"high", High},
		{"medium", Medium},
		{"low", Low},
		{"info", Info},
		{"informational", Info},
		{"bogus", Info},
		{"", Info},
	}
	for _, tt := range tests {
		if got := ParseSeverity(tt.in); got != tt.want {
			t.Errorf("ParseSeverity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSeverity_Score(t *testing.T) {
	if Critical.Score() <= High.Score() {
		t.Error("critical must outrank high")
	}
	if Info.Score() != 1 {
		t.Errorf("info score = %d, want 1", Info.Score())
	}
	if Severity("weird").Score() != 0 {
		t.Error("unknown severity must score 0")
	}
}

func TestClass_IsValid(t *testing.T) {
	for _, c := range []Class{ClassSQLi, ClassXSS, ClassCSRF, ClassSSRF,
		ClassLFI, ClassRCE, ClassOpenRedirect, ClassSecurityHeaders, ClassIDOR} {
		if !c.IsValid() {
			t.Errorf("expected %q to be valid", c)
		}
	}
	if Class("buffer-overflow").IsValid() {
		t.Error("unexpected valid class")
	}
}

func TestSummarize_BucketsBySeverity(t *testing.T) {
	vulns := []Vulnerability{
		{Severity: Critical},
		{Severity: High},
		{Severity: High},
		{Severity: Medium},
		{Severity: Low},
		{Severity: Info},
		{Severity: Severity("unknown")}, // defaults to info bucket
	}
	s := Summarize(vulns)
	if s.Critical != 1 || s.High != 2 || s.Medium != 1 || s.Low != 1 || s.Info != 2 {
		t.Errorf("unexpected buckets: %+v", s)
	}
	if s.Total() != 7 {
		t.Errorf("total = %d, want 7", s.Total())
	}
}

func TestSummarize_ExcludesFalsePositives(t *testing.T) {
	vulns := []Vulnerability{
		{Severity: High},
		{Severity: High, FalsePositive: true},
		{Severity: Critical, FalsePositive: true},
	}
	s := Summarize(vulns)
	if s.High != 1 {
		t.Errorf("high = %d, want 1", s.High)
	}
	if s.Critical != 0 {
		t.Errorf("critical = %d, want 0", s.Critical)
	}
	if s.Total() != 1 {
		t.Errorf("total = %d, want 1; false positives stay out of every bucket", s.Total())
	}
}
