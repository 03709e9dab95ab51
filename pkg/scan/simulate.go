package scan

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seclab/seclab/pkg/duration"
	"github.com/seclab/seclab/pkg/finding"
)

// defaultSimClasses is scanned when the config names no classes.
var defaultSimClasses = []finding.Class{
	finding.ClassSQLi,
	finding.ClassXSS,
	finding.ClassSecurityHeaders,
}

// simTemplate is the shape of one plausible simulated finding.
type simTemplate struct {
	severity    finding.Severity
	title       string
	description string
	evidence    string
	remediation string
	parameter   string
	cwe         string
	cvss        float64
}

// simTemplates holds one representative finding per class. Emitted
// findings carry Source=simulated and Confirmed=false so downstream
// consumers never mistake them for verified results.
var simTemplates = map[finding.Class]simTemplate{
	finding.ClassSQLi: {
		severity:    finding.High,
		title:       "SQL injection in search parameter",
		description: "The search parameter appears to be interpolated into a SQL statement without sanitization.",
		evidence:    "Response contained 'You have an error in your SQL syntax'",
		remediation: "Use parameterized queries or prepared statements for all database access.",
		parameter:   "q",
		cwe:         "CWE-89",
		cvss:        8.6,
	},
	finding.ClassXSS: {
		severity:    finding.High,
		title:       "Reflected cross-site scripting",
		description: "User-supplied input is reflected into the page without output encoding.",
		evidence:    "Payload <script>alert(1)</script> was reflected verbatim",
		remediation: "Encode output contextually and set a restrictive Content-Security-Policy.",
		parameter:   "name",
		cwe:         "CWE-79",
		cvss:        6.1,
	},
	finding.ClassCSRF: {
		severity:    finding.Medium,
		title:       "State-changing form without CSRF token",
		description: "A POST form performs a state change without an anti-CSRF token.",
		evidence:    "Form at /settings submitted successfully from a foreign origin",
		remediation: "Attach per-session anti-CSRF tokens to all state-changing requests.",
		cwe:         "CWE-352",
		cvss:        5.4,
	},
	finding.ClassSSRF: {
		severity:    finding.High,
		title:       "Server-side request forgery via URL parameter",
		description: "A URL parameter is fetched server-side without an allowlist.",
		evidence:    "Request to internal address 169.254.169.254 returned metadata",
		remediation: "Validate outbound request targets against an explicit allowlist.",
		parameter:   "url",
		cwe:         "CWE-918",
		cvss:        8.2,
	},
	finding.ClassLFI: {
		severity:    finding.High,
		title:       "Local file inclusion via path parameter",
		description: "A file path parameter resolves outside the web root.",
		evidence:    "Response contained /etc/passwd contents",
		remediation: "Resolve and verify canonical paths before opening files.",
		parameter:   "file",
		cwe:         "CWE-22",
		cvss:        7.5,
	},
	finding.ClassRCE: {
		severity:    finding.Critical,
		title:       "Command injection in diagnostic endpoint",
		description: "A host parameter is passed to a shell command unescaped.",
		evidence:    "Injected 'id' command output appeared in response",
		remediation: "Avoid shelling out; where unavoidable, pass arguments without a shell.",
		parameter:   "host",
		cwe:         "CWE-78",
		cvss:        9.8,
	},
	finding.ClassOpenRedirect: {
		severity:    finding.Low,
		title:       "Open redirect in login flow",
		description: "The post-login redirect target is attacker controllable.",
		evidence:    "redirect=https://evil.example was followed",
		remediation: "Restrict redirect targets to an allowlist of relative paths.",
		parameter:   "redirect",
		cwe:         "CWE-601",
		cvss:        4.3,
	},
	finding.ClassSecurityHeaders: {
		severity:    finding.Low,
		title:       "Permissive security header configuration",
		description: "Several recommended security headers are weak or absent.",
		evidence:    "X-Frame-Options missing on all sampled pages",
		remediation: "Deploy the standard hardening header set at the edge.",
		cwe:         "CWE-693",
		cvss:        3.1,
	},
	finding.ClassIDOR: {
		severity:    finding.Medium,
		title:       "Insecure direct object reference on account endpoint",
		description: "Sequential account identifiers are readable without an ownership check.",
		evidence:    "GET /api/accounts/1002 returned another user's record",
		remediation: "Authorize every object access against the session owner.",
		parameter:   "id",
		cwe:         "CWE-639",
		cvss:        6.5,
	},
}

// seededHeaderFindings are always produced by the simulation's header
// phase regardless of randomness, modelling the two headers that real
// targets most commonly lack.
func seededHeaderFindings(target string, now time.Time) []finding.Vulnerability {
	mk := func(sev finding.Severity, title, desc, evidence, fix, cwe string, cvss float64) finding.Vulnerability {
		return finding.Vulnerability{
			ID:           uuid.New().String(),
			Type:         finding.ClassSecurityHeaders,
			Severity:     sev,
			Title:        title,
			Description:  desc,
			Evidence:     evidence,
			Remediation:  fix,
			URL:          target,
			CWE:          cwe,
			CVSS:         cvss,
			Source:       finding.SourceSimulated,
			DiscoveredAt: now,
		}
	}
	return []finding.Vulnerability{
		mk(finding.Medium,
			"Missing Content-Security-Policy header",
			"No Content-Security-Policy was observed, leaving script injection unmitigated.",
			"Missing: Content-Security-Policy",
			"Define a restrictive Content-Security-Policy and roll it out in report-only mode first.",
			"CWE-693", 5.3),
		mk(finding.Low,
			"Missing Strict-Transport-Security header",
			"Responses over HTTPS omit Strict-Transport-Security, allowing protocol downgrade.",
			"Missing: Strict-Transport-Security",
			"Send Strict-Transport-Security with a max-age of at least six months.",
			"CWE-319", 4.8),
	}
}

// runSimulated produces findings locally in phases: a fixed header
// phase first, then one phase per requested class. Cancellation is
// honored only at phase boundaries, never mid-phase.
func (o *Orchestrator) runSimulated(s *session) {
	classes := s.cfg.Classes
	if len(classes) == 0 {
		classes = defaultSimClasses
	}
	totalPhases := len(classes) + 1

	// Phase 1: header analysis.
	time.Sleep(duration.SimulationPhase)
	if s.cancelRequested() {
		s.finish(StatusCancelled, "", o.now())
		return
	}
	seeded := seededHeaderFindings(s.cfg.TargetURL, o.now())
	s.mu.Lock()
	s.findings = append(s.findings, seeded...)
	s.requestCount++
	s.progress = 95 / totalPhases
	s.mu.Unlock()
	s.notify()

	for i, class := range classes {
		// Per-phase latency varies so repeated runs feel organic.
		latency := duration.SimulationPhase +
			time.Duration(o.randIntn(500))*time.Millisecond
		time.Sleep(latency)
		if s.cancelRequested() {
			s.finish(StatusCancelled, "", o.now())
			return
		}

		requests := 5 + o.randIntn(20)
		var found []finding.Vulnerability
		if tpl, ok := simTemplates[class]; ok && o.randFloat() < 0.6 {
			found = append(found, finding.Vulnerability{
				ID:           uuid.New().String(),
				Type:         class,
				Severity:     tpl.severity,
				Title:        tpl.title,
				Description:  tpl.description,
				Evidence:     tpl.evidence,
				Remediation:  tpl.remediation,
				URL:          fmt.Sprintf("%s/?%s=test", s.cfg.TargetURL, orParam(tpl.parameter)),
				Parameter:    tpl.parameter,
				CWE:          tpl.cwe,
				CVSS:         tpl.cvss,
				Source:       finding.SourceSimulated,
				DiscoveredAt: o.now(),
			})
		}

		s.mu.Lock()
		s.findings = append(s.findings, found...)
		s.requestCount += requests
		p := 95 * (i + 2) / totalPhases
		if p > s.progress {
			s.progress = p
		}
		s.mu.Unlock()
		s.notify()
	}

	s.finish(StatusCompleted, "", o.now())
}

func orParam(p string) string {
	if p == "" {
		return "id"
	}
	return p
}
