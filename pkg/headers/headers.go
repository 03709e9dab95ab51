// Package headers analyzes HTTP responses against a fixed catalogue of
// ten recommended security headers and produces a 0-100 score.
package headers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/seclab/seclab/pkg/duration"
	"github.com/seclab/seclab/pkg/httpclient"
	"github.com/seclab/seclab/pkg/iohelper"
)

// Verdict classifies one header's presence and quality.
type Verdict string

const (
	VerdictGood    Verdict = "good"
	VerdictWarning Verdict = "warning"
	VerdictMissing Verdict = "missing"
	VerdictBad     Verdict = "bad"
)

// CatalogueEntry is one recommended security header. Recommended is
// used verbatim in remediation text. Check, when set, downgrades a
// present header to warning or bad for known-weak values.
type CatalogueEntry struct {
	Name        string
	Recommended string
	Check       func(value string) Verdict
}

// Catalogue returns the fixed list of ten recommended headers, in
// report order.
func Catalogue() []CatalogueEntry {
	return []CatalogueEntry{
		{
			Name:        "Strict-Transport-Security",
			Recommended: "max-age=31536000; includeSubDomains",
			Check: func(v string) Verdict {
				if !strings.Contains(strings.ToLower(v), "max-age") {
					return VerdictBad
				}
				return VerdictGood
			},
		},
		{
			Name:        "Content-Security-Policy",
			Recommended: "default-src 'self'",
			Check: func(v string) Verdict {
				lower := strings.ToLower(v)
				if strings.Contains(lower, "unsafe-inline") || strings.Contains(lower, "unsafe-eval") {
					return VerdictWarning
				}
				return VerdictGood
			},
		},
		{
			Name:        "X-Content-Type-Options",
			Recommended: "nosniff",
			Check: func(v string) Verdict {
				if strings.EqualFold(strings.TrimSpace(v), "nosniff") {
					return VerdictGood
				}
				return VerdictBad
			},
		},
		{
			Name:        "X-Frame-Options",
			Recommended: "DENY",
			Check: func(v string) Verdict {
				switch strings.ToUpper(strings.TrimSpace(v)) {
				case "DENY", "SAMEORIGIN":
					return VerdictGood
				}
				return VerdictWarning
			},
		},
		{
			Name:        "X-XSS-Protection",
			Recommended: "1; mode=block",
			Check: func(v string) Verdict {
				if strings.TrimSpace(v) == "0" {
					return VerdictWarning
				}
				return VerdictGood
			},
		},
		{
			Name:        "Referrer-Policy",
			Recommended: "strict-origin-when-cross-origin",
			Check: func(v string) Verdict {
				if strings.EqualFold(strings.TrimSpace(v), "unsafe-url") {
					return VerdictWarning
				}
				return VerdictGood
			},
		},
		{
			Name:        "Permissions-Policy",
			Recommended: "geolocation=(), microphone=(), camera=()",
		},
		{
			Name:        "Cross-Origin-Opener-Policy",
			Recommended: "same-origin",
		},
		{
			Name:        "Cross-Origin-Resource-Policy",
			Recommended: "same-origin",
		},
		{
			Name:        "Cross-Origin-Embedder-Policy",
			Recommended: "require-corp",
		},
	}
}

// HeaderResult is the per-header classification in a report.
type HeaderResult struct {
	Name        string  `json:"name"`
	Verdict     Verdict `json:"verdict"`
	Value       string  `json:"value,omitempty"`
	Recommended string  `json:"recommended"`
}

// Report is the outcome of one header analysis.
type Report struct {
	TargetURL  string         `json:"target_url"`
	Results    []HeaderResult `json:"results"`
	Score      int            `json:"score"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
}

// MissingCount returns how many catalogue headers were absent.
func (r Report) MissingCount() int {
	n := 0
	for _, hr := range r.Results {
		if hr.Verdict == VerdictMissing {
			n++
		}
	}
	return n
}

// Analyzer fetches a target and evaluates its response headers.
type Analyzer struct {
	client *http.Client
}

// NewAnalyzer wraps the given client; nil builds a probing client.
func NewAnalyzer(client *http.Client) *Analyzer {
	if client == nil {
		client = httpclient.New(httpclient.Config{Timeout: duration.HTTPProbing})
	}
	return &Analyzer{client: client}
}

// Analyze fetches the target URL and evaluates its headers.
func (a *Analyzer) Analyze(ctx context.Context, targetURL string) (Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return Report{}, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return Report{}, err
	}
	defer iohelper.DrainAndClose(resp.Body)

	report := Evaluate(resp.Header)
	report.TargetURL = targetURL
	return report, nil
}

// Evaluate classifies the given headers against the catalogue. The
// score starts at 100 and loses 10 points per missing header, floored
// at 0; weak values classify as warning or bad without costing points.
func Evaluate(h http.Header) Report {
	report := Report{AnalyzedAt: time.Now()}

	missing := 0
	for _, entry := range Catalogue() {
		value := h.Get(entry.Name)
		result := HeaderResult{
			Name:        entry.Name,
			Value:       value,
			Recommended: entry.Recommended,
		}
		switch {
		case value == "":
			result.Verdict = VerdictMissing
			missing++
		case entry.Check != nil:
			result.Verdict = entry.Check(value)
		default:
			result.Verdict = VerdictGood
		}
		report.Results = append(report.Results, result)
	}

	score := 100 - 10*missing
	if score < 0 {
		score = 0
	}
	report.Score = score
	return report
}
