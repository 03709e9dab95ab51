package scan

import (
	"fmt"
	"sync"
	"time"

	"github.com/seclab/seclab/pkg/duration"
	"github.com/seclab/seclab/pkg/finding"
)

// Status is the lifecycle state of a scan session.
type Status string

const (
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusError
}

// Mode records which execution path a session took.
type Mode string

const (
	// ModeDelegated means an external executor runs the scan and the
	// orchestrator polls it.
	ModeDelegated Mode = "delegated"

	// ModeSimulated means the executor was unavailable and findings
	// come from the local phased simulation.
	ModeSimulated Mode = "simulated"
)

// Config describes one scan request.
type Config struct {
	// TargetURL is the root of the application under test. Required.
	TargetURL string

	// Classes restricts the scan to these vulnerability classes.
	// Empty means the executor's default coverage; the simulation
	// falls back to a small representative set.
	Classes []finding.Class

	// Depth bounds crawl depth for executors that crawl.
	Depth int

	// Concurrency is the requested parallel worker count.
	Concurrency int

	// RateLimit caps requests per second at the executor, 0 = none.
	RateLimit int

	// AuthMode names how the executor should authenticate to the
	// target ("none", "basic", "bearer", ...). Opaque to the
	// orchestrator; the simulation ignores it.
	AuthMode string

	// CustomHeaders are attached to every probe request.
	CustomHeaders map[string]string

	// RespectRobots asks crawling executors to honor robots.txt.
	RespectRobots bool

	// PollInterval overrides how often a delegated session is polled.
	// Zero means duration.ScanPollInterval.
	PollInterval time.Duration
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return duration.ScanPollInterval
}

// Session is a point-in-time copy of one scan's state. Callers receive
// copies; the orchestrator's goroutine is the only writer of the
// backing state.
type Session struct {
	ID           string
	Config       Config
	Mode         Mode
	Status       Status
	Progress int // 0..100

	// RequestCount is the number of probe requests issued. Only the
	// simulation tracks it; delegated executors do not report request
	// totals, so it stays zero in delegated mode.
	RequestCount int
	Findings     []finding.Vulnerability
	Summary      finding.Summary
	StartedAt    time.Time
	CompletedAt  time.Time
	Error        string
}

// ProgressFunc is invoked on every observable session change. It runs
// on the session's own goroutine, so it must not call back into the
// orchestrator's blocking operations.
type ProgressFunc func(s Session)

// session is the mutable backing state. Its mutex guards every field
// below it; the run goroutine and registry reads both take it.
type session struct {
	mu sync.Mutex

	id           string
	cfg          Config
	mode         Mode
	status       Status
	progress     int
	requestCount int
	findings     []finding.Vulnerability
	startedAt    time.Time
	completedAt  time.Time
	errMsg       string

	handle     string // executor handle, delegated mode only
	cancelCh   chan struct{}
	cancelOnce sync.Once
	onProgress ProgressFunc
}

func (s *session) snapshotLocked() Session {
	out := Session{
		ID:           s.id,
		Config:       s.cfg,
		Mode:         s.mode,
		Status:       s.status,
		Progress:     s.progress,
		RequestCount: s.requestCount,
		Findings:     make([]finding.Vulnerability, len(s.findings)),
		Summary:      finding.Summarize(s.findings),
		StartedAt:    s.startedAt,
		CompletedAt:  s.completedAt,
		Error:        s.errMsg,
	}
	copy(out.Findings, s.findings)
	return out
}

// Snapshot returns a copy safe to hand to callers.
func (s *session) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// notify fires the progress callback with a fresh snapshot.
func (s *session) notify() {
	s.mu.Lock()
	cb := s.onProgress
	snap := s.snapshotLocked()
	s.mu.Unlock()
	if cb != nil {
		cb(snap)
	}
}

// setProgress advances progress monotonically. Regressions from a
// delegated executor are ignored so the bar never moves backwards.
func (s *session) setProgress(p int) {
	s.mu.Lock()
	if p > s.progress {
		s.progress = p
	}
	s.mu.Unlock()
}

// cancelRequested reports whether StopScan has been called.
func (s *session) cancelRequested() bool {
	select {
	case <-s.cancelCh:
		return true
	default:
		return false
	}
}

// finish transitions to a terminal status exactly once. Later calls
// are ignored so a cancel racing a natural completion settles on
// whichever lands first.
func (s *session) finish(st Status, errMsg string, now time.Time) {
	s.mu.Lock()
	if s.status.Terminal() {
		s.mu.Unlock()
		return
	}
	s.status = st
	s.errMsg = errMsg
	s.completedAt = now
	if st == StatusCompleted {
		s.progress = 100
	}
	s.mu.Unlock()
	s.notify()
}

func (s *session) String() string {
	snap := s.Snapshot()
	return fmt.Sprintf("scan %s [%s/%s] %d%%", snap.ID, snap.Mode, snap.Status, snap.Progress)
}
