package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seclab/seclab/pkg/finding"
	"github.com/seclab/seclab/pkg/headers"
	"github.com/seclab/seclab/pkg/report"
)

// Sentinel errors for registry operations.
var (
	ErrNoSession  = errors.New("scan: unknown session")
	ErrNoFinding  = errors.New("scan: unknown finding")
	ErrBadTarget  = errors.New("scan: invalid target url")
	ErrNotRunning = errors.New("scan: session not running")
)

// Orchestrator registers scan sessions, drives them to a terminal
// status on dedicated goroutines, and answers registry queries with
// copies of their state.
type Orchestrator struct {
	mu       sync.RWMutex
	sessions map[string]*session

	executor Executor
	analyzer *headers.Analyzer
	logger   *slog.Logger
	rng      *rand.Rand
	rngMu    sync.Mutex
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithExecutor sets the delegated scan executor. Without one every
// session runs the local simulation.
func WithExecutor(e Executor) Option {
	return func(o *Orchestrator) { o.executor = e }
}

// WithAnalyzer sets the header analyzer used by AnalyzeHeaders.
func WithAnalyzer(a *headers.Analyzer) Option {
	return func(o *Orchestrator) { o.analyzer = a }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithRand injects the randomness source used by the simulation.
// Tests pass a seeded source to make phase outcomes reproducible.
func WithRand(r *rand.Rand) Option {
	return func(o *Orchestrator) { o.rng = r }
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator builds an orchestrator. Zero options give a
// simulation-only instance with default logger and randomness.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.analyzer == nil {
		o.analyzer = headers.NewAnalyzer(nil)
	}
	return o
}

// randFloat draws from the injected source under its own lock; the
// source itself is not safe for concurrent sessions.
func (o *Orchestrator) randFloat() float64 {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return o.rng.Float64()
}

func (o *Orchestrator) randIntn(n int) int {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return o.rng.Intn(n)
}

func validateTarget(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadTarget, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrBadTarget, raw)
	}
	return nil
}

// StartScan validates the config, registers a running session and
// returns its initial snapshot immediately. The scan itself proceeds
// on a per-session goroutine: delegated to the executor when Start
// succeeds, otherwise the local simulation.
func (o *Orchestrator) StartScan(ctx context.Context, cfg Config, onProgress ProgressFunc) (Session, error) {
	if err := validateTarget(cfg.TargetURL); err != nil {
		return Session{}, err
	}

	s := &session{
		id:         uuid.New().String(),
		cfg:        cfg,
		status:     StatusRunning,
		startedAt:  o.now(),
		cancelCh:   make(chan struct{}),
		onProgress: onProgress,
	}

	o.mu.Lock()
	o.sessions[s.id] = s
	o.mu.Unlock()

	go o.run(ctx, s)

	return s.Snapshot(), nil
}

// run drives one session to a terminal status. A panic anywhere in
// the session lands it in StatusError instead of killing the process.
func (o *Orchestrator) run(ctx context.Context, s *session) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("scan session panicked", "session", s.id, "panic", r)
			s.finish(StatusError, fmt.Sprintf("internal error: %v", r), o.now())
		}
	}()

	if o.executor != nil {
		handle, err := o.executor.Start(ctx, s.cfg.TargetURL, s.cfg.Classes)
		if err == nil {
			s.mu.Lock()
			s.mode = ModeDelegated
			s.handle = handle
			s.mu.Unlock()
			s.notify()
			o.runDelegated(ctx, s)
			return
		}
		o.logger.Warn("scan executor unavailable, falling back to simulation",
			"session", s.id, "error", err)
	}

	s.mu.Lock()
	s.mode = ModeSimulated
	s.mu.Unlock()
	s.notify()
	o.runSimulated(s)
}

// runDelegated polls the executor until it reports a terminal status
// or the session is cancelled. Poll failures are logged and retried on
// the next tick; only Start failures fall back to simulation.
func (o *Orchestrator) runDelegated(ctx context.Context, s *session) {
	interval := s.cfg.pollInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.cancelDelegated(s)
			s.finish(StatusCancelled, "", o.now())
			return
		case <-s.cancelCh:
			o.cancelDelegated(s)
			s.finish(StatusCancelled, "", o.now())
			return
		case <-ticker.C:
		}

		snap, err := o.executor.Snapshot(ctx, s.handle)
		if err != nil {
			o.logger.Warn("scan poll failed", "session", s.id, "error", err)
			continue
		}

		s.mu.Lock()
		s.findings = reconcileFindings(s.findings, snap.Findings)
		s.mu.Unlock()

		st := mapStatus(snap.Status)
		if st.Terminal() {
			if st == StatusError {
				s.finish(st, "executor reported failure", o.now())
			} else {
				s.finish(st, "", o.now())
			}
			return
		}

		// The executor exposes no fine-grained progress, so estimate:
		// creep forward each tick but never claim done while running.
		s.mu.Lock()
		p := s.progress + 5
		if p > 95 {
			p = 95
		}
		if p > s.progress {
			s.progress = p
		}
		s.mu.Unlock()
		s.notify()
	}
}

func (o *Orchestrator) cancelDelegated(s *session) {
	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.executor.Cancel(cctx, s.handle); err != nil {
		o.logger.Warn("scan executor cancel failed", "session", s.id, "error", err)
	}
}

// StopScan requests cancellation. Delegated sessions forward the
// cancel to the executor; simulated sessions halt at the next phase
// boundary. Stopping an already terminal session is an error.
func (o *Orchestrator) StopScan(id string) error {
	o.mu.RLock()
	s, ok := o.sessions[id]
	o.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	s.mu.Lock()
	terminal := s.status.Terminal()
	s.mu.Unlock()
	if terminal {
		return ErrNotRunning
	}
	s.cancelOnce.Do(func() { close(s.cancelCh) })
	return nil
}

// GetSession returns a copy of the session state.
func (o *Orchestrator) GetSession(id string) (Session, error) {
	o.mu.RLock()
	s, ok := o.sessions[id]
	o.mu.RUnlock()
	if !ok {
		return Session{}, ErrNoSession
	}
	return s.Snapshot(), nil
}

// ListSessions returns copies of all sessions, newest first.
func (o *Orchestrator) ListSessions() []Session {
	o.mu.RLock()
	out := make([]Session, 0, len(o.sessions))
	for _, s := range o.sessions {
		out = append(out, s.Snapshot())
	}
	o.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// DeleteSession removes a session from the registry. A running
// session is cancelled first; its goroutine finishes against the
// detached state and is then unreachable.
func (o *Orchestrator) DeleteSession(id string) error {
	o.mu.Lock()
	s, ok := o.sessions[id]
	if ok {
		delete(o.sessions, id)
	}
	o.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	s.cancelOnce.Do(func() { close(s.cancelCh) })
	return nil
}

// MarkFalsePositive flags a finding. Summary buckets recompute on the
// next snapshot since Summarize skips flagged findings.
func (o *Orchestrator) MarkFalsePositive(sessionID, findingID string, fp bool) error {
	return o.updateFinding(sessionID, findingID, func(v *finding.Vulnerability) {
		v.FalsePositive = fp
	})
}

// ConfirmFinding marks a finding as manually verified.
func (o *Orchestrator) ConfirmFinding(sessionID, findingID string) error {
	return o.updateFinding(sessionID, findingID, func(v *finding.Vulnerability) {
		v.Confirmed = true
	})
}

// reconcileFindings replaces the finding list with the executor's
// latest snapshot while carrying local moderation forward: a finding
// marked false-positive or confirmed between polls keeps those flags
// when the next snapshot reports the same finding id again.
func reconcileFindings(current, fresh []finding.Vulnerability) []finding.Vulnerability {
	moderated := make(map[string]finding.Vulnerability)
	for _, f := range current {
		if f.FalsePositive || f.Confirmed {
			moderated[f.ID] = f
		}
	}
	out := make([]finding.Vulnerability, 0, len(fresh))
	for _, f := range fresh {
		if prev, ok := moderated[f.ID]; ok {
			f.FalsePositive = prev.FalsePositive
			f.Confirmed = f.Confirmed || prev.Confirmed
		}
		out = append(out, f)
	}
	return out
}

func (o *Orchestrator) updateFinding(sessionID, findingID string, fn func(*finding.Vulnerability)) error {
	o.mu.RLock()
	s, ok := o.sessions[sessionID]
	o.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.findings {
		if s.findings[i].ID == findingID {
			fn(&s.findings[i])
			return nil
		}
	}
	return ErrNoFinding
}

// AnalyzeHeaders probes the target and grades its security headers.
func (o *Orchestrator) AnalyzeHeaders(ctx context.Context, targetURL string) (headers.Report, error) {
	if err := validateTarget(targetURL); err != nil {
		return headers.Report{}, err
	}
	return o.analyzer.Analyze(ctx, targetURL)
}

// GenerateReport renders a text report for a session. Delegated
// sessions could ask the executor for its native report instead; the
// local renderer keeps output uniform across modes.
func (o *Orchestrator) GenerateReport(id string) (string, error) {
	snap, err := o.GetSession(id)
	if err != nil {
		return "", err
	}
	r := report.ScanReport{
		Target:      snap.Config.TargetURL,
		Mode:        string(snap.Mode),
		StartedAt:   snap.StartedAt,
		CompletedAt: snap.CompletedAt,
		Summary:     snap.Summary,
		Findings:    snap.Findings,
	}
	return r.Text(), nil
}
