package intercept

import (
	"context"
	"log/slog"
	"sync"

	"github.com/seclab/seclab/pkg/exchange"
)

// Outcome is the result of submitting a captured request.
//
// Dropped means the request must be discarded and never forwarded; this
// covers both drop-rule matches and held exchanges that were discarded
// by the operator. Otherwise Request is the request to forward, which
// may differ from the submitted one if it was modified during release.
type Outcome struct {
	Dropped bool
	Request *exchange.Request
}

// Proxy orchestrates capture, rule evaluation, and the pause/resume
// protocol. All exchanges it captures live in its Store.
type Proxy struct {
	mu     sync.Mutex
	store  *exchange.Store
	rules  []Rule // evaluated in insertion order
	active bool
	logger *slog.Logger
}

// NewProxy creates a proxy backed by the given store. A nil logger
// falls back to slog.Default().
func NewProxy(store *exchange.Store, logger *slog.Logger) *Proxy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Proxy{store: store, logger: logger}
}

// Store exposes the exchange store for inspection.
func (p *Proxy) Store() *exchange.Store { return p.store }

// Active reports whether global interception is on.
func (p *Proxy) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// SetActive toggles global hold-for-release behavior. Turning it off
// releases every currently-held exchange, unmodified, in capture order.
func (p *Proxy) SetActive(active bool) {
	p.mu.Lock()
	p.active = active
	p.mu.Unlock()

	if active {
		return
	}
	for _, id := range p.store.HeldIDs() {
		ex, ok := p.store.Get(id)
		if !ok {
			continue
		}
		ex.Request.Intercepted = false
		p.store.Resolve(id, exchange.Verdict{Request: ex.Request, Forwarded: true})
		p.logger.Debug("released on deactivate", slog.String("id", id))
	}
}

// UpsertRule adds a rule or, when an existing rule has the same name,
// replaces its definition in place, preserving evaluation position.
// Malformed patterns are rejected here, not at match time.
func (p *Proxy) UpsertRule(name string, dim Dimension, pattern string, action Action) (Rule, error) {
	rule, err := compileRule(name, dim, pattern, action)
	if err != nil {
		return Rule{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.rules {
		if normalizeName(p.rules[i].Name) == normalizeName(name) {
			rule.ID = p.rules[i].ID
			rule.Enabled = p.rules[i].Enabled
			p.rules[i] = rule
			return rule, nil
		}
	}
	p.rules = append(p.rules, rule)
	return rule, nil
}

// RemoveRule deletes a rule by ID.
func (p *Proxy) RemoveRule(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.rules {
		if p.rules[i].ID == id {
			p.rules = append(p.rules[:i], p.rules[i+1:]...)
			return nil
		}
	}
	return ErrUnknownRule
}

// ToggleRule flips a rule's enabled flag and returns the new state.
func (p *Proxy) ToggleRule(id string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.rules {
		if p.rules[i].ID == id {
			p.rules[i].Enabled = !p.rules[i].Enabled
			return p.rules[i].Enabled, nil
		}
	}
	return false, ErrUnknownRule
}

// Rules returns a snapshot of the rule set in evaluation order.
func (p *Proxy) Rules() []Rule {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// evaluate returns the action of the first enabled matching rule, or
// empty when no rule applies.
func (p *Proxy) evaluate(req *exchange.Request) Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.rules {
		r := &p.rules[i]
		if r.Enabled && r.matches(req) {
			return r.Action
		}
	}
	return ""
}

// Submit is the capture entry point. A drop match discards the request
// without storing an exchange. A forward match, or no match while
// interception is inactive, stores the exchange and forwards the
// request unchanged. No match while interception is active (or an
// intercept match) stores the exchange and suspends until Release or
// Discard; ctx cancellation abandons the wait and discards the
// exchange.
func (p *Proxy) Submit(ctx context.Context, req *exchange.Request) (Outcome, error) {
	action := p.evaluate(req)

	if action == ActionDrop {
		p.logger.Debug("dropped by rule", slog.String("url", req.URL()))
		return Outcome{Dropped: true}, nil
	}

	p.store.Put(req)

	hold := action == ActionIntercept
	if action == "" {
		hold = p.Active()
	}
	if !hold {
		return Outcome{Request: req}, nil
	}

	ch := p.store.Hold(req.ID)
	p.logger.Debug("holding exchange", slog.String("id", req.ID), slog.String("url", req.URL()))

	select {
	case <-ctx.Done():
		p.store.Delete(req.ID)
		return Outcome{}, ctx.Err()
	case v := <-ch:
		if !v.Forwarded {
			return Outcome{Dropped: true}, nil
		}
		return Outcome{Request: v.Request}, nil
	}
}

// AttachResponse correlates a response to its stored request. It is a
// no-op if the request was dropped or is unknown.
func (p *Proxy) AttachResponse(resp *exchange.Response) {
	p.store.AttachResponse(resp)
}

// Release resolves a held exchange, optionally substituting a modified
// request (method, headers, body, and URL may all change). The
// interception flag is cleared before resolving. Releasing an unknown
// or already-resolved exchange is a no-op.
func (p *Proxy) Release(id string, modified *exchange.Request) {
	ex, ok := p.store.Get(id)
	if !ok {
		return
	}

	req := ex.Request
	if modified != nil {
		m := modified.Clone()
		m.ID = req.ID
		m.CapturedAt = req.CapturedAt
		ex.Request = m
		req = m
	}
	req.Intercepted = false

	p.store.Resolve(id, exchange.Verdict{Request: req, Forwarded: true})
}

// Discard abandons a held exchange and removes it from the store. The
// suspended submitter observes a dropped outcome, not an error.
// Discarding an unknown exchange is a no-op, as is any later Release
// of the same ID.
func (p *Proxy) Discard(id string) {
	p.store.Delete(id)
}
