// Package finding provides the shared vulnerability finding types used
// across the interception, fuzzing, and scanning components.
//
// There is deliberately one Vulnerability type with optional fields
// rather than a rich and a lean variant; every producer fills what it
// knows and leaves the rest zero.
package finding

import "time"

// Class identifies a vulnerability class requested from or reported by
// a scan. Values are lowercase slugs.
type Class string

const (
	ClassSQLi            Class = "sqli"
	ClassXSS             Class = "xss"
	ClassCSRF            Class = "csrf"
	ClassSSRF            Class = "ssrf"
	ClassLFI             Class = "lfi"
	ClassRCE             Class = "rce"
	ClassOpenRedirect    Class = "open-redirect"
	ClassSecurityHeaders Class = "security-headers"
	ClassIDOR            Class = "idor"
)

// IsValid reports whether c is a recognized vulnerability class.
func (c Class) IsValid() bool {
	switch c {
	case ClassSQLi, ClassXSS, ClassCSRF, ClassSSRF, ClassLFI,
		ClassRCE, ClassOpenRedirect, ClassSecurityHeaders, ClassIDOR:
		return true
	}
	return false
}

// Source records how a finding was produced.
type Source string

const (
	// SourceDelegated marks findings reported by the remote scan executor.
	SourceDelegated Source = "delegated"

	// SourceSimulated marks synthetic findings from the local simulation.
	// Simulated findings are never confirmed; nothing was actually probed.
	SourceSimulated Source = "simulated"
)

// Vulnerability is the canonical representation of a security finding.
type Vulnerability struct {
	ID          string    `json:"id"`
	Type        Class     `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Evidence    string    `json:"evidence,omitempty"`
	Remediation string    `json:"remediation,omitempty"`
	URL         string    `json:"url"`
	Parameter   string    `json:"parameter,omitempty"`
	CWE         string    `json:"cwe,omitempty"`
	CVSS        float64   `json:"cvss,omitempty"`
	References  []string  `json:"references,omitempty"`
	Confirmed   bool      `json:"confirmed"`
	FalsePositive bool    `json:"false_positive"`
	Source      Source    `json:"source,omitempty"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Summary buckets findings by severity. False positives are excluded
// from every bucket but remain in the findings list itself.
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

// Count increments exactly one bucket for v, unless v is flagged as a
// false positive.
func (s *Summary) Count(v Vulnerability) {
	if v.FalsePositive {
		return
	}
	switch v.Severity {
	case Critical:
		s.Critical++
	case High:
		s.High++
	case Medium:
		s.Medium++
	case Low:
		s.Low++
	default:
		s.Info++
	}
}

// Total returns the sum of all buckets.
func (s Summary) Total() int {
	return s.Critical + s.High + s.Medium + s.Low + s.Info
}

// Summarize buckets a findings list.
func Summarize(vulns []Vulnerability) Summary {
	var s Summary
	for _, v := range vulns {
		s.Count(v)
	}
	return s
}
