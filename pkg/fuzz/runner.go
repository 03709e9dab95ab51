package fuzz

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/seclab/seclab/pkg/duration"
	"github.com/seclab/seclab/pkg/exchange"
	"github.com/seclab/seclab/pkg/payloads"
)

// ErrBusy is returned when Run is called while a run is in flight.
// The engine is single-flight system-wide; a new run only starts after
// the previous one finishes or is stopped.
var ErrBusy = errors.New("fuzz: run already in progress")

// Result records one payload application. Response is nil when the
// dispatch failed; such results are never interesting by the status or
// latency rules since there is nothing to measure.
type Result struct {
	Payload     string             `json:"payload"`
	Request     *exchange.Request  `json:"request"`
	Response    *exchange.Response `json:"response,omitempty"`
	Err         string             `json:"error,omitempty"`
	Interesting bool               `json:"interesting"`
	Notes       []string           `json:"notes,omitempty"`
}

// Config holds fuzz engine configuration.
type Config struct {
	// Executor dispatches mutated requests. Defaults to HTTPExecutor
	// over the shared client.
	Executor Executor

	// Registry supplies payload sets. Defaults to the built-ins.
	Registry *payloads.Registry

	// Delay is the minimum pause between payloads, a crude rate
	// limiter to keep target load predictable (default 100ms).
	Delay time.Duration

	// Logger for per-payload diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Callbacks are optional per-run observers.
type Callbacks struct {
	// OnProgress is invoked after each payload with (done, total).
	OnProgress func(done, total int)

	// OnResult is invoked with each result as it arrives.
	OnResult func(Result)
}

// Runner executes fuzz runs sequentially, one payload at a time.
type Runner struct {
	executor Executor
	registry *payloads.Registry
	delay    time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopped atomic.Bool
	results []Result
}

// NewRunner creates a runner, filling zero config values with defaults.
func NewRunner(cfg Config) *Runner {
	if cfg.Executor == nil {
		cfg.Executor = NewHTTPExecutor(nil)
	}
	if cfg.Registry == nil {
		cfg.Registry = payloads.NewRegistry()
	}
	if cfg.Delay <= 0 {
		cfg.Delay = duration.FuzzDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{
		executor: cfg.Executor,
		registry: cfg.Registry,
		delay:    cfg.Delay,
		logger:   cfg.Logger,
	}
}

// Registry exposes the payload registry for registration and merging.
func (r *Runner) Registry() *payloads.Registry { return r.registry }

// Stop requests the active run to halt. The abort takes effect between
// payloads, never mid-request.
func (r *Runner) Stop() { r.stopped.Store(true) }

// Results returns a snapshot of the current result list in arrival order.
func (r *Runner) Results() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Result, len(r.results))
	copy(out, r.results)
	return out
}

// Run applies every payload of the named set to the base request at the
// chosen insertion point, sequentially. Starting a run discards the
// previous run's results. A single failed dispatch is recorded and does
// not abort the run. Returns the ordered results; the error is non-nil
// only for configuration problems (unknown set, bad insertion point,
// concurrent run).
func (r *Runner) Run(ctx context.Context, base *exchange.Request, point InsertionPoint, setID string, cb Callbacks) ([]Result, error) {
	set, err := r.registry.Get(setID)
	if err != nil {
		return nil, err
	}
	// Validate the insertion point up front so a bad point is a
	// synchronous config error, not a per-payload one.
	if _, err := mutate(base, point, "probe"); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	r.running = true
	r.results = nil
	r.mu.Unlock()
	r.stopped.Store(false)

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	limiter := rate.NewLimiter(rate.Every(r.delay), 1)
	total := len(set.Payloads)

	for i, payload := range set.Payloads {
		if r.stopped.Load() || ctx.Err() != nil {
			break
		}
		if err := limiter.Wait(ctx); err != nil {
			break
		}

		result := r.apply(ctx, base, point, payload)

		r.mu.Lock()
		r.results = append(r.results, result)
		r.mu.Unlock()

		if cb.OnResult != nil {
			cb.OnResult(result)
		}
		if cb.OnProgress != nil {
			cb.OnProgress(i+1, total)
		}
	}

	return r.Results(), nil
}

// apply mutates, dispatches, and classifies a single payload.
func (r *Runner) apply(ctx context.Context, base *exchange.Request, point InsertionPoint, payload string) Result {
	req, err := mutate(base, point, payload)
	if err != nil {
		return Result{Payload: payload, Err: err.Error()}
	}

	result := Result{Payload: payload, Request: req}

	resp, err := r.executor.Dispatch(ctx, req)
	if err != nil {
		result.Err = err.Error()
		r.logger.Debug("dispatch failed",
			slog.String("payload", payload),
			slog.String("error", err.Error()))
		return result
	}

	result.Response = resp
	result.Interesting, result.Notes = classify(payload, resp)
	return result
}

// dbErrorMarkers are body signatures of leaked database errors.
// Lowercase; matching is case-insensitive.
var dbErrorMarkers = []string{
	"sql syntax",
	"mysql_fetch",
	"ora-",
	"sqlite error",
	"pg::",
	"unclosed quotation mark",
	"syntax error",
}

// classify applies the interestingness heuristic: four independent
// OR-ed conditions, not a weighted score.
func classify(payload string, resp *exchange.Response) (bool, []string) {
	var notes []string

	lower := strings.ToLower(string(resp.Body))
	for _, marker := range dbErrorMarkers {
		if strings.Contains(lower, marker) {
			notes = append(notes, "database error signature: "+marker)
			break
		}
	}
	if bytes.Contains(resp.Body, []byte(payload)) {
		notes = append(notes, "payload reflected in response")
	}
	if resp.StatusCode >= 500 {
		notes = append(notes, "server error status")
	}
	if resp.Latency > duration.SlowResponse {
		notes = append(notes, "response slower than threshold")
	}

	return len(notes) > 0, notes
}
