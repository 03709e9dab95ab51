// Package scan owns the lifecycle of vulnerability-scan sessions. It
// delegates execution to an external scan executor when one is
// available and falls back to a local phased simulation when the
// delegated start fails, reconciling external state into a local
// session snapshot either way.
package scan

import (
	"context"
	"time"

	"github.com/seclab/seclab/pkg/finding"
)

// Snapshot is the executor's view of a running scan at one poll tick.
type Snapshot struct {
	// Status in the executor's own vocabulary; mapped locally.
	Status string

	// Findings reported so far, already in unified shape.
	Findings []finding.Vulnerability

	// Summary as reported by the executor. The orchestrator recomputes
	// buckets locally from Findings, so this is advisory.
	Summary finding.Summary

	// CompletedAt is set once the executor considers the scan finished.
	CompletedAt *time.Time
}

// Executor is the external scan engine contract. All methods are
// fallible; only a Start failure triggers the local simulation
// fallback; a failed poll is logged and retried on the next tick.
type Executor interface {
	// Start begins a scan and returns an opaque session handle.
	Start(ctx context.Context, targetURL string, classes []finding.Class) (string, error)

	// Snapshot returns the current state for a handle.
	Snapshot(ctx context.Context, handle string) (Snapshot, error)

	// Cancel requests the executor stop the scan.
	Cancel(ctx context.Context, handle string) error

	// ExportReport renders the executor's own report in the given
	// format ("text", "html", ...).
	ExportReport(ctx context.Context, handle, format string) (string, error)
}

// mapStatus translates the executor's status vocabulary onto the local
// one. "paused" is accepted because the type space allows it, but the
// orchestrator itself never produces it. Unknown words count as still
// running so a vocabulary drift never finalizes a session early.
func mapStatus(s string) Status {
	switch s {
	case "completed", "succeeded", "done", "finished":
		return StatusCompleted
	case "cancelled", "canceled", "stopped", "aborted":
		return StatusCancelled
	case "failed", "error":
		return StatusError
	case "paused":
		return StatusPaused
	default:
		return StatusRunning
	}
}
