package scan

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seclab/seclab/pkg/finding"
)

// fakeExecutor scripts executor behaviour for orchestrator tests.
type fakeExecutor struct {
	mu        sync.Mutex
	startErr  error
	snapshots []func() (Snapshot, error)
	snapCalls int
	cancelled bool
}

func (f *fakeExecutor) Start(_ context.Context, target string, _ []finding.Class) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	return "handle-1", nil
}

func (f *fakeExecutor) Snapshot(context.Context, string) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.snapCalls
	f.snapCalls++
	if i >= len(f.snapshots) {
		i = len(f.snapshots) - 1
	}
	return f.snapshots[i]()
}

func (f *fakeExecutor) Cancel(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = true
	return nil
}

func (f *fakeExecutor) snapshotCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapCalls
}

func (f *fakeExecutor) wasCancelled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

func (f *fakeExecutor) ExportReport(context.Context, string, string) (string, error) {
	return "", errors.New("not implemented")
}

func runningSnapshot(findings ...finding.Vulnerability) func() (Snapshot, error) {
	return func() (Snapshot, error) {
		return Snapshot{Status: "running", Findings: findings}, nil
	}
}

func completedSnapshot(findings ...finding.Vulnerability) func() (Snapshot, error) {
	return func() (Snapshot, error) {
		now := time.Now()
		return Snapshot{Status: "completed", Findings: findings, CompletedAt: &now}, nil
	}
}

func seededOrchestrator(opts ...Option) *Orchestrator {
	opts = append(opts, WithRand(rand.New(rand.NewSource(42))))
	return NewOrchestrator(opts...)
}

// waitTerminal subscribes via the progress callback and returns the
// terminal snapshot.
func startAndWait(t *testing.T, o *Orchestrator, cfg Config) Session {
	t.Helper()
	done := make(chan Session, 1)
	s, err := o.StartScan(context.Background(), cfg, func(snap Session) {
		if snap.Status.Terminal() {
			select {
			case done <- snap:
			default:
			}
		}
	})
	require.NoError(t, err)
	require.Equal(t, StatusRunning, s.Status)
	select {
	case final := <-done:
		return final
	case <-time.After(10 * time.Second):
		t.Fatal("scan never reached a terminal status")
		return Session{}
	}
}

func TestStartScan_InvalidTarget(t *testing.T) {
	o := seededOrchestrator()
	for _, target := range []string{"", "ftp://example.com", "http://", "://bad"} {
		_, err := o.StartScan(context.Background(), Config{TargetURL: target}, nil)
		assert.ErrorIs(t, err, ErrBadTarget, "target %q", target)
	}
}

func TestSimulatedScan_CompletesWithSeededFindings(t *testing.T) {
	o := seededOrchestrator()
	final := startAndWait(t, o, Config{
		TargetURL: "https://app.example.com",
		Classes:   []finding.Class{finding.ClassSecurityHeaders},
	})

	assert.Equal(t, ModeSimulated, final.Mode)
	assert.Equal(t, StatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.False(t, final.CompletedAt.IsZero())
	assert.Positive(t, final.RequestCount)

	require.GreaterOrEqual(t, len(final.Findings), 2,
		"header phase must seed two findings regardless of randomness")
	titles := map[string]bool{}
	for _, f := range final.Findings {
		titles[f.Title] = true
		assert.Equal(t, finding.SourceSimulated, f.Source)
		assert.False(t, f.Confirmed, "simulated findings are never confirmed")
		assert.NotEmpty(t, f.ID)
	}
	assert.True(t, titles["Missing Content-Security-Policy header"])
	assert.True(t, titles["Missing Strict-Transport-Security header"])
}

func TestStartFailure_FallsBackToSimulation(t *testing.T) {
	exec := &fakeExecutor{startErr: errors.New("engine unreachable")}
	o := seededOrchestrator(WithExecutor(exec))

	final := startAndWait(t, o, Config{
		TargetURL: "https://app.example.com",
		Classes:   []finding.Class{finding.ClassSecurityHeaders},
	})

	assert.Equal(t, ModeSimulated, final.Mode)
	assert.Equal(t, StatusCompleted, final.Status)
	assert.GreaterOrEqual(t, len(final.Findings), 2)
}

func TestDelegatedScan_PollsToCompletion(t *testing.T) {
	vuln := finding.Vulnerability{
		ID:       "f-1",
		Type:     finding.ClassSQLi,
		Severity: finding.High,
		Title:    "SQL injection",
	}
	exec := &fakeExecutor{snapshots: []func() (Snapshot, error){
		runningSnapshot(),
		runningSnapshot(vuln),
		completedSnapshot(vuln),
	}}
	o := seededOrchestrator(WithExecutor(exec))

	final := startAndWait(t, o, Config{
		TargetURL:    "https://app.example.com",
		PollInterval: 10 * time.Millisecond,
	})

	assert.Equal(t, ModeDelegated, final.Mode)
	assert.Equal(t, StatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
	require.Len(t, final.Findings, 1)
	assert.Equal(t, "SQL injection", final.Findings[0].Title)
	assert.Equal(t, 1, final.Summary.High)
	assert.Zero(t, final.RequestCount, "the executor does not report request totals")
}

func TestDelegatedScan_ModerationSurvivesPolling(t *testing.T) {
	vuln := finding.Vulnerability{
		ID:       "f-1",
		Type:     finding.ClassSQLi,
		Severity: finding.High,
		Title:    "SQL injection",
	}
	exec := &fakeExecutor{snapshots: []func() (Snapshot, error){runningSnapshot(vuln)}}
	o := seededOrchestrator(WithExecutor(exec))

	s, err := o.StartScan(context.Background(), Config{
		TargetURL:    "https://app.example.com",
		PollInterval: 5 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	defer o.StopScan(s.ID)

	require.Eventually(t, func() bool {
		got, err := o.GetSession(s.ID)
		return err == nil && len(got.Findings) == 1
	}, 2*time.Second, time.Millisecond, "first poll never delivered the finding")

	require.NoError(t, o.MarkFalsePositive(s.ID, "f-1", true))
	require.NoError(t, o.ConfirmFinding(s.ID, "f-1"))

	// Let several more polls refresh the finding list; the executor
	// keeps reporting the finding without local flags.
	before := exec.snapshotCalls()
	require.Eventually(t, func() bool {
		return exec.snapshotCalls() >= before+2
	}, 2*time.Second, time.Millisecond)

	got, err := o.GetSession(s.ID)
	require.NoError(t, err)
	require.Len(t, got.Findings, 1)
	assert.True(t, got.Findings[0].FalsePositive, "false-positive flag must survive the next poll")
	assert.True(t, got.Findings[0].Confirmed, "confirmed flag must survive the next poll")
	assert.Equal(t, 0, got.Summary.High, "moderated finding stays out of the buckets")
}

func TestDelegatedScan_PollFailureRetriesNextTick(t *testing.T) {
	fail := func() (Snapshot, error) { return Snapshot{}, errors.New("poll failed") }
	exec := &fakeExecutor{snapshots: []func() (Snapshot, error){
		fail,
		fail,
		completedSnapshot(),
	}}
	o := seededOrchestrator(WithExecutor(exec))

	final := startAndWait(t, o, Config{
		TargetURL:    "https://app.example.com",
		PollInterval: 10 * time.Millisecond,
	})
	assert.Equal(t, StatusCompleted, final.Status)
}

func TestDelegatedScan_ProgressCappedWhileRunning(t *testing.T) {
	exec := &fakeExecutor{snapshots: []func() (Snapshot, error){runningSnapshot()}}
	o := seededOrchestrator(WithExecutor(exec))

	var mu sync.Mutex
	maxSeen := 0
	s, err := o.StartScan(context.Background(), Config{
		TargetURL:    "https://app.example.com",
		PollInterval: time.Millisecond,
	}, func(snap Session) {
		mu.Lock()
		if snap.Progress > maxSeen {
			maxSeen = snap.Progress
		}
		mu.Unlock()
	})
	require.NoError(t, err)

	// Give it enough ticks to hit the cap many times over.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, o.StopScan(s.ID))

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, maxSeen, 95, "progress must never claim done while running")
}

func TestStopScan_CancelsDelegated(t *testing.T) {
	exec := &fakeExecutor{snapshots: []func() (Snapshot, error){runningSnapshot()}}
	o := seededOrchestrator(WithExecutor(exec))

	done := make(chan Session, 1)
	s, err := o.StartScan(context.Background(), Config{
		TargetURL:    "https://app.example.com",
		PollInterval: 5 * time.Millisecond,
	}, func(snap Session) {
		if snap.Status.Terminal() {
			select {
			case done <- snap:
			default:
			}
		}
	})
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, o.StopScan(s.ID))

	select {
	case final := <-done:
		assert.Equal(t, StatusCancelled, final.Status)
		assert.False(t, final.CompletedAt.IsZero())
	case <-time.After(5 * time.Second):
		t.Fatal("session never cancelled")
	}
	assert.True(t, exec.wasCancelled(), "cancel must be forwarded to the executor")
}

func TestStopScan_SimulatedHaltsAtPhaseBoundary(t *testing.T) {
	o := seededOrchestrator()
	done := make(chan Session, 1)
	s, err := o.StartScan(context.Background(), Config{
		TargetURL: "https://app.example.com",
		Classes: []finding.Class{
			finding.ClassSQLi, finding.ClassXSS, finding.ClassSSRF,
			finding.ClassLFI, finding.ClassRCE,
		},
	}, func(snap Session) {
		if snap.Status.Terminal() {
			select {
			case done <- snap:
			default:
			}
		}
	})
	require.NoError(t, err)
	require.NoError(t, o.StopScan(s.ID))

	select {
	case final := <-done:
		assert.Equal(t, StatusCancelled, final.Status)
	case <-time.After(10 * time.Second):
		t.Fatal("simulated session never cancelled")
	}
}

func TestStopScan_Errors(t *testing.T) {
	o := seededOrchestrator()
	assert.ErrorIs(t, o.StopScan("nope"), ErrNoSession)

	final := startAndWait(t, o, Config{
		TargetURL: "https://app.example.com",
		Classes:   []finding.Class{finding.ClassSecurityHeaders},
	})
	assert.ErrorIs(t, o.StopScan(final.ID), ErrNotRunning)
}

func TestRegistry_GetListDelete(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	tick := 0
	o := seededOrchestrator(
		WithExecutor(&fakeExecutor{snapshots: []func() (Snapshot, error){runningSnapshot()}}),
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		}),
	)

	var ids []string
	for i := 0; i < 3; i++ {
		s, err := o.StartScan(context.Background(), Config{
			TargetURL:    "https://app.example.com",
			PollInterval: time.Hour, // never ticks during the test
		}, nil)
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	got, err := o.GetSession(ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], got.ID)
	_, err = o.GetSession("missing")
	assert.ErrorIs(t, err, ErrNoSession)

	list := o.ListSessions()
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID, "newest session must come first")
	assert.Equal(t, ids[0], list[2].ID)

	require.NoError(t, o.DeleteSession(ids[1]))
	assert.Len(t, o.ListSessions(), 2)
	assert.ErrorIs(t, o.DeleteSession(ids[1]), ErrNoSession)

	for _, id := range []string{ids[0], ids[2]} {
		_ = o.StopScan(id)
	}
}

func TestMarkFalsePositive_RecomputesSummary(t *testing.T) {
	vuln := finding.Vulnerability{ID: "f-1", Severity: finding.High, Title: "SQLi"}
	exec := &fakeExecutor{snapshots: []func() (Snapshot, error){completedSnapshot(vuln)}}
	o := seededOrchestrator(WithExecutor(exec))

	final := startAndWait(t, o, Config{
		TargetURL:    "https://app.example.com",
		PollInterval: 10 * time.Millisecond,
	})
	require.Equal(t, 1, final.Summary.High)

	require.NoError(t, o.MarkFalsePositive(final.ID, "f-1", true))
	got, err := o.GetSession(final.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Summary.High, "false positives leave every bucket")
	assert.Len(t, got.Findings, 1, "the finding itself stays on record")
	assert.True(t, got.Findings[0].FalsePositive)

	require.NoError(t, o.ConfirmFinding(final.ID, "f-1"))
	got, _ = o.GetSession(final.ID)
	assert.True(t, got.Findings[0].Confirmed)

	assert.ErrorIs(t, o.MarkFalsePositive(final.ID, "missing", true), ErrNoFinding)
	assert.ErrorIs(t, o.MarkFalsePositive("missing", "f-1", true), ErrNoSession)
}

func TestGenerateReport(t *testing.T) {
	o := seededOrchestrator()
	final := startAndWait(t, o, Config{
		TargetURL: "https://app.example.com",
		Classes:   []finding.Class{finding.ClassSecurityHeaders},
	})

	text, err := o.GenerateReport(final.ID)
	require.NoError(t, err)
	assert.Contains(t, text, "Security Scan Report")
	assert.Contains(t, text, "https://app.example.com")
	assert.Contains(t, text, "simulated")

	_, err = o.GenerateReport("missing")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMapStatus(t *testing.T) {
	tests := map[string]Status{
		"running":   StatusRunning,
		"pending":   StatusRunning,
		"completed": StatusCompleted,
		"done":      StatusCompleted,
		"cancelled": StatusCancelled,
		"stopped":   StatusCancelled,
		"failed":    StatusError,
		"error":     StatusError,
		"paused":    StatusPaused,
		"":          StatusRunning,
		"warp":      StatusRunning,
	}
	for in, want := range tests {
		assert.Equal(t, want, mapStatus(in), "mapStatus(%q)", in)
	}
}

func TestStatus_Terminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusError} {
		assert.True(t, s.Terminal(), "%s", s)
	}
	for _, s := range []Status{StatusRunning, StatusPaused} {
		assert.False(t, s.Terminal(), "%s", s)
	}
}
