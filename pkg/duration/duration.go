// Package duration provides canonical time constants for the engine.
// All time-based tuning lives here rather than as scattered literals,
// so the fuzz delay, poll cadence, and response thresholds stay in sync
// between the components and their tests.
package duration

import "time"

// HTTP client timeouts.
const (
	// HTTPProbing is for quick probes like header analysis (5s).
	HTTPProbing = 5 * time.Second

	// HTTPScanning is for scan executor API calls (15s).
	HTTPScanning = 15 * time.Second

	// HTTPFuzzing is for payload dispatch (30s) - the default.
	HTTPFuzzing = 30 * time.Second
)

// Engine cadence.
const (
	// FuzzDelay is the minimum pause between fuzz payloads.
	FuzzDelay = 100 * time.Millisecond

	// ScanPollInterval is how often a delegated scan polls the executor.
	ScanPollInterval = 2 * time.Second

	// SimulationPhase is the fixed latency of the header-analysis phase
	// in a locally simulated scan.
	SimulationPhase = 500 * time.Millisecond
)

// Response classification.
const (
	// SlowResponse is the latency above which a fuzz result is flagged
	// as interesting.
	SlowResponse = 5 * time.Second
)
