// Package zapclient implements scan.Executor against a ZAP-compatible
// JSON API: active scans are started with ascan actions, polled via
// status views, and findings read from the alerts view.
package zapclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/seclab/seclab/pkg/duration"
	"github.com/seclab/seclab/pkg/finding"
	"github.com/seclab/seclab/pkg/httpclient"
	"github.com/seclab/seclab/pkg/iohelper"
	"github.com/seclab/seclab/pkg/retry"
	"github.com/seclab/seclab/pkg/scan"
)

var (
	ErrAPIFailure = errors.New("zapclient: api call failed")
	ErrBadHandle  = errors.New("zapclient: malformed scan handle")
)

// Config holds connection settings for the scan engine API.
type Config struct {
	// BaseURL of the API, e.g. "http://127.0.0.1:8090".
	BaseURL string

	// APIKey is sent as the apikey query parameter when set.
	APIKey string

	// Timeout for individual API calls. Zero means
	// duration.HTTPScanning.
	Timeout time.Duration

	// Retry governs transient-failure retries on scan start.
	Retry retry.Config

	Logger *slog.Logger
}

// DefaultConfig returns settings for a locally running engine.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:8090",
		Timeout: duration.HTTPScanning,
		Retry:   retry.DefaultConfig(),
	}
}

// Client speaks the engine's JSON API. It implements scan.Executor.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New builds a client, filling zero config fields with defaults.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = def.Retry
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	hc := httpclient.DefaultConfig()
	hc.Timeout = cfg.Timeout
	return &Client{
		cfg:    cfg,
		client: httpclient.New(hc),
		logger: cfg.Logger,
	}
}

// call performs one GET against an API path and returns the parsed
// body. Non-200 responses are errors; the engine reports its own
// failures as JSON bodies with 4xx statuses.
func (c *Client) call(ctx context.Context, path string, params url.Values) (gjson.Result, error) {
	if params == nil {
		params = url.Values{}
	}
	if c.cfg.APIKey != "" {
		params.Set("apikey", c.cfg.APIKey)
	}
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("zapclient: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %v", ErrAPIFailure, err)
	}
	defer iohelper.DrainAndClose(resp.Body)

	body, err := iohelper.ReadBodyDefault(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: read body: %v", ErrAPIFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("%w: %s returned %d: %s",
			ErrAPIFailure, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return gjson.ParseBytes(body), nil
}

// Start launches an active scan against the target and returns a
// handle carrying the engine scan id and the target URL. Transient
// failures are retried per the configured policy.
func (c *Client) Start(ctx context.Context, targetURL string, classes []finding.Class) (string, error) {
	params := url.Values{}
	params.Set("url", targetURL)
	params.Set("recurse", "true")
	if len(classes) > 0 {
		params.Set("scanPolicyName", policyName(classes))
	}

	var scanID string
	err := retry.Do(ctx, c.cfg.Retry, func() error {
		res, err := c.call(ctx, "/JSON/ascan/action/scan/", params)
		if err != nil {
			return err
		}
		id := res.Get("scan").String()
		if id == "" {
			return retry.Stop(fmt.Errorf("%w: no scan id in response", ErrAPIFailure))
		}
		scanID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	c.logger.Info("active scan started", "scanId", scanID, "target", targetURL)
	return scanID + "|" + targetURL, nil
}

func splitHandle(handle string) (scanID, target string, err error) {
	scanID, target, ok := strings.Cut(handle, "|")
	if !ok || scanID == "" || target == "" {
		return "", "", ErrBadHandle
	}
	return scanID, target, nil
}

// Snapshot reads the scan's percentage status and current alerts.
func (c *Client) Snapshot(ctx context.Context, handle string) (scan.Snapshot, error) {
	scanID, target, err := splitHandle(handle)
	if err != nil {
		return scan.Snapshot{}, err
	}

	status, err := c.call(ctx, "/JSON/ascan/view/status/", url.Values{"scanId": {scanID}})
	if err != nil {
		return scan.Snapshot{}, err
	}

	alerts, err := c.call(ctx, "/JSON/core/view/alerts/", url.Values{"baseurl": {target}})
	if err != nil {
		return scan.Snapshot{}, err
	}

	findings := mapAlerts(alerts.Get("alerts"))
	snap := scan.Snapshot{
		Status:   "running",
		Findings: findings,
		Summary:  finding.Summarize(findings),
	}
	if status.Get("status").String() == "100" {
		now := time.Now()
		snap.Status = "completed"
		snap.CompletedAt = &now
	}
	return snap, nil
}

// Cancel stops the active scan.
func (c *Client) Cancel(ctx context.Context, handle string) error {
	scanID, _, err := splitHandle(handle)
	if err != nil {
		return err
	}
	_, err = c.call(ctx, "/JSON/ascan/action/stop/", url.Values{"scanId": {scanID}})
	return err
}

// ExportReport fetches the engine's native report. Supported formats
// are "html", "xml", "md" and "json".
func (c *Client) ExportReport(ctx context.Context, handle, format string) (string, error) {
	if _, _, err := splitHandle(handle); err != nil {
		return "", err
	}
	var path string
	switch format {
	case "html":
		path = "/OTHER/core/other/htmlreport/"
	case "xml":
		path = "/OTHER/core/other/xmlreport/"
	case "md":
		path = "/OTHER/core/other/mdreport/"
	case "json":
		path = "/OTHER/core/other/jsonreport/"
	default:
		return "", fmt.Errorf("zapclient: unsupported report format %q", format)
	}

	params := url.Values{}
	if c.cfg.APIKey != "" {
		params.Set("apikey", c.cfg.APIKey)
	}
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("zapclient: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPIFailure, err)
	}
	defer iohelper.DrainAndClose(resp.Body)
	body, err := iohelper.ReadBody(resp.Body, 16*iohelper.DefaultMaxBodySize)
	if err != nil {
		return "", fmt.Errorf("%w: read report: %v", ErrAPIFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: report export returned %d", ErrAPIFailure, resp.StatusCode)
	}
	return string(body), nil
}

// mapAlerts converts engine alerts into the unified finding shape.
func mapAlerts(alerts gjson.Result) []finding.Vulnerability {
	var out []finding.Vulnerability
	alerts.ForEach(func(_, a gjson.Result) bool {
		sev := finding.ParseSeverity(strings.ToLower(a.Get("risk").String()))
		conf := strings.ToLower(a.Get("confidence").String())
		v := finding.Vulnerability{
			ID:           alertID(a),
			Type:         classForAlert(a),
			Severity:     sev,
			Title:        a.Get("alert").String(),
			Description:  a.Get("description").String(),
			Evidence:     a.Get("evidence").String(),
			Remediation:  a.Get("solution").String(),
			URL:          a.Get("url").String(),
			Parameter:    a.Get("param").String(),
			Confirmed:    conf == "confirmed" || conf == "high",
			Source:       finding.SourceDelegated,
			DiscoveredAt: time.Now(),
		}
		if cwe := a.Get("cweid").String(); cwe != "" && cwe != "0" && cwe != "-1" {
			v.CWE = "CWE-" + cwe
		}
		if ref := a.Get("reference").String(); ref != "" {
			v.References = strings.Split(strings.TrimSpace(ref), "\n")
		}
		out = append(out, v)
		return true
	})
	return out
}

func alertID(a gjson.Result) string {
	if id := a.Get("id").String(); id != "" {
		return id
	}
	return uuid.New().String()
}

// classForAlert maps alert names onto local vulnerability classes by
// keyword. Unmatched alerts land in the headers bucket when they talk
// about headers and otherwise keep an empty class.
func classForAlert(a gjson.Result) finding.Class {
	name := strings.ToLower(a.Get("alert").String())
	switch {
	case strings.Contains(name, "sql"):
		return finding.ClassSQLi
	case strings.Contains(name, "cross site scripting"), strings.Contains(name, "xss"):
		return finding.ClassXSS
	case strings.Contains(name, "csrf"), strings.Contains(name, "cross-site request"):
		return finding.ClassCSRF
	case strings.Contains(name, "request forgery"), strings.Contains(name, "ssrf"):
		return finding.ClassSSRF
	case strings.Contains(name, "path traversal"), strings.Contains(name, "file inclusion"):
		return finding.ClassLFI
	case strings.Contains(name, "command injection"), strings.Contains(name, "code injection"):
		return finding.ClassRCE
	case strings.Contains(name, "redirect"):
		return finding.ClassOpenRedirect
	case strings.Contains(name, "header"), strings.Contains(name, "content security policy"):
		return finding.ClassSecurityHeaders
	default:
		return finding.Class("")
	}
}

// policyName derives a scan policy name from the requested classes so
// engines with per-class policies can narrow coverage.
func policyName(classes []finding.Class) string {
	parts := make([]string, 0, len(classes))
	for _, c := range classes {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, "+")
}
